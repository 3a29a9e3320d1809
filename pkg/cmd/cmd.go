// Package cmd provides small shared utilities for the engine's command line
// entry points (cmd/pipforge, cmd/pipforge-worker).
package cmd

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Mainify wraps a non-standard Cobra entry point (one returning an error)
// and generates a standard Cobra entry point. This lets an entry point rely
// on defer-based cleanup, which wouldn't run if it just called os.Exit
// itself on failure.
func Mainify(entry func(*cobra.Command, []string) error) func(*cobra.Command, []string) {
	return func(command *cobra.Command, arguments []string) {
		if err := entry(command, arguments); err != nil {
			Fatal(err)
		}
	}
}

// Warning prints a warning message to standard error.
func Warning(message string) {
	fmt.Fprintln(color.Error, color.YellowString("Warning:"), message)
}

// Error prints an error message to standard error.
func Error(err error) {
	fmt.Fprintln(os.Stderr, "Error:", err)
}

// Fatal prints an error message to standard error and terminates the
// process with a non-zero exit code.
func Fatal(err error) {
	Error(err)
	os.Exit(1)
}
