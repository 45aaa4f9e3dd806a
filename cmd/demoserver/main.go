// Copyright (c) 2024 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Command demoserver serves the demo routes.
package main

import (
	"log/slog"
	"os"
)

func main() {
	err := newRootCmd().Execute()
	if err != nil {
		slog.Default().Error("failed to run", slog.Any("error", err))
		os.Exit(1)
	}
}
