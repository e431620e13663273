// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/stacklok/twauth/pkg/config"
	"github.com/stacklok/twauth/pkg/versions"
)

// newVersionCmd creates a new version command
func newVersionCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show the version of twauth",
		Long:  `Display detailed version information about twauth, including version number, git commit, build date, and Go version.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info := versions.GetVersionInfo()
			return writeValue(cmd.OutOrStdout(), output, info, func(w io.Writer) error {
				return printVersionInfo(w, info)
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", config.OutputText, "Output format: text, json or yaml")

	return cmd
}

// printVersionInfo prints the version information
func printVersionInfo(w io.Writer, info versions.VersionInfo) error {
	_, err := fmt.Fprintf(w, "twauth %s\nCommit: %s\nBuilt: %s\nGo version: %s\nPlatform: %s\n",
		info.Version, info.Commit, info.BuildDate, info.GoVersion, info.Platform)
	return err
}
