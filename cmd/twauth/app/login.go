// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"github.com/stacklok/twauth/pkg/authflow"
	"github.com/stacklok/twauth/pkg/config"
	twerrors "github.com/stacklok/twauth/pkg/errors"
	"github.com/stacklok/twauth/pkg/handoff"
	"github.com/stacklok/twauth/pkg/host"
	"github.com/stacklok/twauth/pkg/lifecycle"
	"github.com/stacklok/twauth/pkg/logger"
	"github.com/stacklok/twauth/pkg/metrics"
	"github.com/stacklok/twauth/pkg/networking"
	"github.com/stacklok/twauth/pkg/oauth1"
	"github.com/stacklok/twauth/pkg/relay"
	"github.com/stacklok/twauth/pkg/websession"
)

// ErrLoginCancelled is returned when the login ended without credentials
// because the user or a signal cancelled it.
var ErrLoginCancelled = errors.New("login cancelled")

func newLoginCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and print OAuth1 user credentials",
		Long: `Log in to Twitter and print the resulting OAuth1 access token.

The login is first handed to an installed Twitter application through its URL
scheme (see --sso-schemes). The application returns to twauth through
"twauth open-url"; press Enter if you come back without finishing, to cancel.
When no application accepts the handoff, or with --use-browser, the OAuth1
authorize page is opened in the system browser and the callback is received
on a loopback port.`,
		Args: cobra.NoArgs,
		RunE: loginCmdFunc,
	}

	cmd.Flags().String("consumer-key", "", "OAuth1 consumer key")
	cmd.Flags().String("consumer-secret", "", "OAuth1 consumer secret")
	cmd.Flags().String("callback-scheme", "", "Callback URL scheme (default twitterkit-<consumer key>)")
	cmd.Flags().Bool("use-browser", false, "Skip the application handoff and use the browser flow")
	cmd.Flags().Bool("no-browser", false, "Print the authorize URL instead of opening a browser")
	cmd.Flags().Int("callback-port", 0, "Loopback port for the OAuth callback (0 picks a free port)")
	cmd.Flags().String("sso-scheme", handoff.DefaultScheme, "URL scheme of the provider application")
	cmd.Flags().StringSlice("sso-schemes", nil, "URL schemes this desktop has a registered handler for")
	cmd.Flags().Duration("sso-timeout", 0, "Give up on a pending application handoff after this long (0 waits)")
	cmd.Flags().StringSlice("allowed-sources", nil, "Additional source application prefixes accepted on redirects")
	cmd.Flags().Int("relay-port", 0, "Loopback port for the redirect relay (0 picks a free port)")
	cmd.Flags().StringP("output", "o", config.OutputText, "Output format: text, json or yaml")
	cmd.Flags().String("ca-bundle", "", "CA certificate bundle for the provider endpoints")
	cmd.Flags().String("request-token-url", authflow.TwitterEndpoints.RequestTokenURL, "OAuth1 request token endpoint")
	cmd.Flags().String("authorize-url", authflow.TwitterEndpoints.AuthorizeURL, "OAuth1 authorize endpoint")
	cmd.Flags().String("access-token-url", authflow.TwitterEndpoints.AccessTokenURL, "OAuth1 access token endpoint")

	return cmd
}

func loginCmdFunc(cmd *cobra.Command, _ []string) error {
	settings, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	result, err := runLogin(ctx, settings, cmd.InOrStdin(), cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	switch result.Status {
	case authflow.StatusSuccess:
		return writeResult(cmd.OutOrStdout(), settings.Output, result)
	case authflow.StatusCancelled:
		return ErrLoginCancelled
	default:
		if result.Err != nil {
			return fmt.Errorf("login failed: %w", result.Err)
		}
		return errors.New("login failed")
	}
}

// runLogin wires the desktop collaborators, serves the relay while the
// login runs, and returns the login's Result.
func runLogin(ctx context.Context, settings *config.Settings, stdin io.Reader, stderr io.Writer) (authflow.Result, error) {
	authCfg, err := settings.AuthConfig()
	if err != nil {
		return authflow.Result{}, err
	}

	httpClient, err := networking.NewHttpClientBuilder().WithCABundle(settings.CABundle).Build()
	if err != nil {
		return authflow.Result{}, err
	}

	recorder, err := metrics.NewRecorder()
	if err != nil {
		return authflow.Result{}, twerrors.NewInternalError("failed to create metrics recorder", err)
	}

	desktop := host.NewDesktop(
		host.WithSchemes(settings.SSOSchemes...),
		host.WithNoBrowser(settings.NoBrowser),
		host.WithOutput(stderr),
	)
	sessions := websession.NewLoopback(desktop, settings.CallbackPort)
	defer func() {
		if err := sessions.Close(); err != nil {
			logger.Debugf("Failed to release callback port: %v", err)
		}
	}()

	foreground := lifecycle.NewNotifier()
	auth, err := authflow.New(authCfg, authflow.Dependencies{
		Launcher:   handoff.NewLauncher(desktop, handoff.DefaultScheme),
		Foreground: foreground,
		Sessions:   sessions,
		Handshakes: oauth1.NewFactory(oauth1.WithHTTPClient(httpClient)),
		Observer:   &promptObserver{Recorder: recorder, out: stderr},
	})
	if err != nil {
		return authflow.Result{}, err
	}

	listener, err := networking.ListenLoopbackOrAny(settings.RelayPort)
	if err != nil {
		return authflow.Result{}, fmt.Errorf("failed to bind relay listener: %w", err)
	}

	state := relay.NewState(listener.Addr().String())
	statePath, err := relay.DefaultStatePath()
	if err != nil {
		_ = listener.Close()
		return authflow.Result{}, fmt.Errorf("failed to resolve relay state path: %w", err)
	}
	unpublish, err := relay.Publish(ctx, statePath, state)
	if err != nil {
		_ = listener.Close()
		return authflow.Result{}, err
	}
	defer unpublish()

	go readForeground(stdin, foreground)

	var result authflow.Result
	g, gctx := errgroup.WithContext(ctx)
	relayCtx, stopRelay := context.WithCancel(gctx)
	g.Go(func() error {
		return relay.NewServer(auth, state.Token, relay.WithMetricsHandler(recorder.Handler())).Serve(relayCtx, listener)
	})
	g.Go(func() error {
		defer stopRelay()
		var err error
		result, err = auth.Login(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return authflow.Result{}, err
	}
	return result, nil
}

// readForeground treats each line on stdin as the user returning to the
// terminal.
func readForeground(stdin io.Reader, foreground *lifecycle.Notifier) {
	scanner := bufio.NewScanner(stdin)
	for scanner.Scan() {
		foreground.Activate()
	}
}

// promptObserver records metrics and tells the user how to continue once
// the flow has picked its path.
type promptObserver struct {
	*metrics.Recorder
	out io.Writer
}

func (p *promptObserver) PathSelected(path authflow.Path) {
	p.Recorder.PathSelected(path)
	if path == authflow.PathSSO {
		_, _ = fmt.Fprintln(p.out, "Continue in the Twitter application. Press Enter here to cancel if you come back without logging in.")
	}
}
