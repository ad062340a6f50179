// SPDX-License-Identifier: MIT
// SPDX-FileCopyrightText: Copyright (c) 2025 PromptSmith

// Package globals contains global variables and functions
package globals

import (
	"fmt"
	"io"
	"os"
)

// Output is where LogAndExit writes its message
var Output io.Writer = os.Stdout

// exit is replaced in tests
var exit = os.Exit

// LogAndExit logs a message and exits with a given code. Non-zero codes write to stderr.
func LogAndExit(message string, code int) {
	w := Output
	if code != 0 && w == os.Stdout {
		w = os.Stderr
	}
	_, _ = fmt.Fprintln(w, message)
	exit(code)
}
