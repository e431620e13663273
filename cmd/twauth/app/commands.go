// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package app provides the entry point for the twauth command-line application.
package app

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/stacklok/twauth/pkg/config"
	"github.com/stacklok/twauth/pkg/logger"
)

// NewRootCmd creates a new root command for the twauth CLI.
func NewRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:               "twauth",
		DisableAutoGenTag: true,
		SilenceUsage:      true,
		Short:             "twauth obtains Twitter OAuth1 user credentials from the command line",
		Long: `twauth obtains OAuth1 user credentials for a Twitter application.

It first tries to hand the login off to an installed Twitter application and
falls back to the three-legged OAuth1 flow in the system browser when no
application accepts the handoff.`,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			v := viper.GetViper()
			config.SetDefaults(v)
			if err := bindFlags(v, cmd); err != nil {
				return err
			}
			if configPath == "" {
				path, err := config.DefaultConfigPath()
				if err != nil {
					return fmt.Errorf("failed to resolve config path: %w", err)
				}
				configPath = path
			}
			if err := config.ReadFile(v, configPath); err != nil {
				return err
			}
			// Re-initialize now that --debug has been parsed.
			logger.Initialize()
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug mode")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the config file (default $XDG_CONFIG_HOME/twauth/config.yaml)")

	rootCmd.AddCommand(newLoginCmd())
	rootCmd.AddCommand(newOpenURLCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// bindFlags binds every flag that names a setting to its viper key. Flag
// names use dashes where keys use underscores.
func bindFlags(v *viper.Viper, cmd *cobra.Command) error {
	for flag, key := range flagKeys {
		f := cmd.Flags().Lookup(flag)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("failed to bind flag --%s: %w", flag, err)
		}
	}
	return nil
}

var flagKeys = map[string]string{
	"debug":             "debug",
	"consumer-key":      config.KeyConsumerKey,
	"consumer-secret":   config.KeyConsumerSecret,
	"callback-scheme":   config.KeyCallbackScheme,
	"use-browser":       config.KeyUseBrowser,
	"no-browser":        config.KeyNoBrowser,
	"callback-port":     config.KeyCallbackPort,
	"sso-scheme":        config.KeySSOScheme,
	"sso-schemes":       config.KeySSOSchemes,
	"sso-timeout":       config.KeySSOTimeout,
	"allowed-sources":   config.KeyAllowedSources,
	"relay-port":        config.KeyRelayPort,
	"output":            config.KeyOutput,
	"ca-bundle":         config.KeyCABundle,
	"request-token-url": config.KeyRequestTokenURL,
	"authorize-url":     config.KeyAuthorizeURL,
	"access-token-url":  config.KeyAccessTokenURL,
}
