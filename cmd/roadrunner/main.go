// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/roadrunner/blob/master/LICENSE.txt.

// Command roadrunner builds a router from a route table file and resolves the given lookups.
//
// Usage:
//
//	roadrunner --config routes.yaml [flags] BUCKET PATH [BUCKET PATH ...]
//
// Each lookup is printed as a JSON object on its own line.
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/pflag"
	"github.com/tigerwill90/roadrunner"
	"github.com/tigerwill90/roadrunner/internal/config"
	"github.com/tigerwill90/roadrunner/internal/slogpretty"
)

type lookupResult struct {
	Bucket   string            `json:"bucket"`
	Path     string            `json:"path"`
	Found    bool              `json:"found"`
	Value    string            `json:"value,omitempty"`
	Pattern  string            `json:"pattern,omitempty"`
	Params   map[string]string `json:"params,omitempty"`
	Captures []string          `json:"captures,omitempty"`
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("roadrunner", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.StringP("config", "c", "", "route table file (yaml, json or toml)")
	fs.Bool("ignore-trailing-slash", false, "treat /foo and /foo/ as the same route")
	fs.Bool("segment-wildcards", false, "turn every '*' segment into an anonymous single-segment parameter")
	fs.Bool("changing-param-names", false, "allow routes to name the same parameter position differently")
	fs.Bool("strict", false, "abort on the first rejected route")
	fs.String("log-level", "info", "log level (debug, info, warn, error)")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: roadrunner [flags] BUCKET PATH [BUCKET PATH ...]\n\nFlags:\n")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}

	lookups := fs.Args()
	if len(lookups)%2 != 0 {
		fmt.Fprintf(stderr, "expected BUCKET PATH pairs, got %d arguments\n", len(lookups))
		fs.Usage()
		return 2
	}

	cfg, err := config.Load(*configPath, fs)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	lvl, err := cfg.Level()
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	logger := slog.New(slogpretty.New(stderr, lvl))

	r, err := buildRouter(cfg, logger)
	if err != nil {
		logger.Error("failed to build router", slog.Any("error", err))
		return 1
	}

	enc := json.NewEncoder(stdout)
	for i := 0; i < len(lookups); i += 2 {
		out, err := resolve(r, lookups[i], lookups[i+1])
		if err != nil {
			logger.Error("invalid lookup", slog.String("bucket", lookups[i]), slog.String("path", lookups[i+1]), slog.Any("error", err))
			return 1
		}
		logger.Debug("lookup", slog.String("bucket", out.Bucket), slog.String("path", out.Path), slog.Bool("found", out.Found))
		if err := enc.Encode(out); err != nil {
			logger.Error("failed to write result", slog.Any("error", err))
			return 1
		}
	}

	return 0
}

// buildRouter registers every route of the table. Rejected routes are skipped unless the configuration is strict.
func buildRouter(cfg *config.Config, logger *slog.Logger) (*roadrunner.Router[string], error) {
	opts := append(cfg.Options(), roadrunner.WithLogger(logger))
	r, err := roadrunner.New[string](opts...)
	if err != nil {
		return nil, err
	}

	lr := r.LockRouter()
	defer lr.Release()

	var registered int
	for _, rte := range cfg.Routes {
		if err := lr.AddRoute(rte.Bucket, rte.Path, rte.Value, rte.RouteOptions()...); err != nil {
			if cfg.Strict {
				return nil, err
			}
			logger.Warn("route skipped", slog.String("bucket", rte.Bucket), slog.String("path", rte.Path), slog.Any("error", err))
			continue
		}
		registered++
	}

	logger.Info("router ready", slog.Int("routes", registered), slog.Int("skipped", len(cfg.Routes)-registered))
	return r, nil
}

func resolve(r *roadrunner.Router[string], bucket, path string) (lookupResult, error) {
	out := lookupResult{Bucket: bucket, Path: path}
	res, err := r.FindRoute(bucket, path)
	if err != nil {
		return out, err
	}
	if res == nil {
		return out, nil
	}

	out.Found = true
	out.Value = res.Value
	out.Pattern = res.Pattern
	out.Params = res.Params
	out.Captures = res.Captures
	return out, nil
}
