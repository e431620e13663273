// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"context"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/twauth/pkg/authflow"
	"github.com/stacklok/twauth/pkg/config"
	"github.com/stacklok/twauth/pkg/relay"
	"github.com/stacklok/twauth/pkg/relay/mocks"
)

func TestNewRootCmd(t *testing.T) {
	t.Parallel()

	root := NewRootCmd()

	names := map[string]bool{}
	for _, c := range root.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["login"])
	assert.True(t, names["open-url"])
	assert.True(t, names["version"])
	assert.NotNil(t, root.PersistentFlags().Lookup("debug"))
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}

func TestBindFlags(t *testing.T) {
	t.Parallel()

	login := newLoginCmd()
	require.NoError(t, login.ParseFlags([]string{
		"--consumer-key", "key",
		"--sso-schemes", "twitterauth,twitter",
		"--sso-timeout", "2m",
		"-o", "yaml",
	}))

	v := viper.New()
	config.SetDefaults(v)
	require.NoError(t, bindFlags(v, login))

	assert.Equal(t, "key", v.GetString(config.KeyConsumerKey))
	assert.Equal(t, []string{"twitterauth", "twitter"}, v.GetStringSlice(config.KeySSOSchemes))
	assert.Equal(t, "2m0s", v.GetDuration(config.KeySSOTimeout).String())
	assert.Equal(t, config.OutputYAML, v.GetString(config.KeyOutput))

	// Every settings flag of login is bound.
	for flag := range flagKeys {
		if flag == "debug" {
			continue
		}
		assert.NotNil(t, login.Flags().Lookup(flag), "login is missing --%s", flag)
	}
}

func TestForwardURL(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	redirector := mocks.NewMockRedirector(ctrl)
	redirector.EXPECT().
		HandleRedirect(gomock.Any(), "com.twitter.ios").
		DoAndReturn(func(u *url.URL, _ string) bool {
			resp, ok := authflow.ParseSSOResponse(u)
			assert.True(t, ok)
			assert.Equal(t, "s+t", resp.Secret)
			return true
		})
	redirector.EXPECT().HandleRedirect(gomock.Any(), "com.example").Return(false)

	state := relay.NewState("")
	server := httptest.NewServer(relay.NewServer(redirector, state.Token).Router())
	t.Cleanup(server.Close)
	state.Addr = server.Listener.Addr().String()

	statePath := filepath.Join(t.TempDir(), "relay.json")
	unpublish, err := relay.Publish(context.Background(), statePath, state)
	require.NoError(t, err)
	t.Cleanup(unpublish)

	cmd := newOpenURLCmd()
	cmd.SetContext(context.Background())
	u, err := authflow.ParseRedirectURL("twitterkit-key://secret=s%2Bt&token=t&username=alice")
	require.NoError(t, err)

	require.NoError(t, forwardURL(cmd, statePath, u, "com.twitter.ios"))
	assert.ErrorIs(t, forwardURL(cmd, statePath, u, "com.example"), ErrNotHandled)
}

func TestForwardURL_NoLogin(t *testing.T) {
	t.Parallel()

	cmd := newOpenURLCmd()
	cmd.SetContext(context.Background())

	err := forwardURL(cmd, filepath.Join(t.TempDir(), "relay.json"), &url.URL{Scheme: "twitterkit-key"}, "com.twitter")
	assert.ErrorIs(t, err, relay.ErrNoRelay)
}
