// SPDX-FileCopyrightText: Copyright (C) 2026  MatiPl01
// SPDX-License-Identifier: AGPL-3.0-only

// Package common provides shared plumbing for the cipher command line tools.
package common

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/carlmjohnson/versioninfo"
	"github.com/charmbracelet/colorprofile"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
)

// usageErrors are error message fragments caused by a bad invocation
// rather than by a failed operation.
var usageErrors = []string{
	"flag needs an argument:",
	"unknown flag:",
	"unknown shorthand flag:",
	"unknown command",
	"invalid argument",
	"required flag",
	"accepts",
	"arg(s), received",
	"failed to load config file",
	"config: ",
}

// ExecuteWithFang runs cmd through fang with the version and error
// handling shared by every tool, and exits non-zero on failure.
func ExecuteWithFang(cmd *cobra.Command) {
	if err := fang.Execute(
		context.Background(),
		cmd,
		fang.WithVersion(versioninfo.Short()),
		fang.WithErrorHandler(ErrorHandlerWithUsage(cmd)),
	); err != nil {
		os.Exit(1)
	}
}

// ErrorHandlerWithUsage prints err and, when the error came from a bad
// invocation, the usage of cmd to the same writer, downsampled to what the
// terminal supports.  Other errors get a pointer to --help.
func ErrorHandlerWithUsage(cmd *cobra.Command) fang.ErrorHandler {
	return func(w io.Writer, styles fang.Styles, err error) {
		_, _ = fmt.Fprintln(w, styles.ErrorHeader.String())
		_, _ = fmt.Fprintln(w, styles.ErrorText.Render(err.Error()+"."))
		_, _ = fmt.Fprintln(w)

		if !IsUsageError(err) {
			_, _ = fmt.Fprintln(w, lipgloss.JoinHorizontal(
				lipgloss.Left,
				styles.ErrorText.UnsetWidth().Render("Try"),
				styles.Program.Flag.Render("--help"),
				styles.ErrorText.UnsetWidth().UnsetMargins().UnsetTransform().PaddingLeft(1).Render("for usage."),
			))
			_, _ = fmt.Fprintln(w)
			return
		}

		if help := cmd.HelpFunc(); help != nil {
			cmd.SetOut(colorprofile.NewWriter(w, os.Environ()))
			help(cmd, []string{})
		}
	}
}

// IsUsageError reports whether err should be answered with the usage text.
func IsUsageError(err error) bool {
	s := err.Error()
	for _, fragment := range usageErrors {
		if strings.Contains(s, fragment) {
			return true
		}
	}
	return false
}
