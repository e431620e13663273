// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/stacklok/twauth/pkg/authflow"
	"github.com/stacklok/twauth/pkg/logger"
	"github.com/stacklok/twauth/pkg/relay"
)

// ErrNotHandled is returned when the running login did not consume the URL.
var ErrNotHandled = errors.New("the running login did not accept the URL")

func newOpenURLCmd() *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "open-url <url>",
		Short: "Forward a URL opened by another application to a running login",
		Long: `Forward a URL to the "twauth login" currently waiting for a redirect.

Register this command as the handler of the callback scheme so that the
provider application can return to twauth. --source identifies the
application that opened the URL and must match an allowed source prefix.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := authflow.ParseRedirectURL(args[0])
			if err != nil {
				return err
			}

			statePath, err := relay.DefaultStatePath()
			if err != nil {
				return fmt.Errorf("failed to resolve relay state path: %w", err)
			}
			return forwardURL(cmd, statePath, u, source)
		},
	}

	cmd.Flags().StringVar(&source, "source", "", "Identifier of the application that opened the URL")
	_ = cmd.MarkFlagRequired("source")

	return cmd
}

func forwardURL(cmd *cobra.Command, statePath string, u *url.URL, source string) error {
	ctx := cmd.Context()
	state, err := relay.ReadState(ctx, statePath)
	if err != nil {
		return err
	}

	client, err := relay.NewClient(state)
	if err != nil {
		return err
	}
	if err := client.Healthy(ctx); err != nil {
		return fmt.Errorf("login published by pid %d is not answering: %w", state.PID, err)
	}

	handled, err := client.Redirect(ctx, u, source)
	if err != nil {
		return err
	}
	if !handled {
		return ErrNotHandled
	}
	logger.Debugw("Forwarded URL to running login", "scheme", u.Scheme, "pid", state.PID)
	return nil
}
