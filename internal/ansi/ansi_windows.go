// Copyright 2023 GreyXor. All rights reserved.
// Mount of this source code is governed by a MIT license that can be found
// at https://gitlab.com/greyxor/slogor/-/blob/main/LICENSE?ref_type=heads.

package ansi

import (
	"os"

	"golang.org/x/sys/windows"
)

// init enables colors on both standard streams. The pretty logger writes to stderr while lookup results go to stdout.
func init() {
	_ = enableVirtualTerminal(os.Stdout)
	_ = enableVirtualTerminal(os.Stderr)
}

// enableVirtualTerminal turns on escape sequence processing for the console attached to f. It fails when f is not a
// console, e.g. a redirected stream.
// See https://learn.microsoft.com/en-us/windows/console/setconsolemode
func enableVirtualTerminal(f *os.File) error {
	h := windows.Handle(f.Fd())

	var mode uint32
	if err := windows.GetConsoleMode(h, &mode); err != nil {
		return err
	}

	return windows.SetConsoleMode(h, mode|windows.ENABLE_PROCESSED_OUTPUT|
		windows.ENABLE_WRAP_AT_EOL_OUTPUT|windows.ENABLE_VIRTUAL_TERMINAL_PROCESSING)
}
