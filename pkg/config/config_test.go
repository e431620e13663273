// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/twauth/pkg/authflow"
	"github.com/stacklok/twauth/pkg/errors"
	"github.com/stacklok/twauth/pkg/handoff"
)

func newViper(values map[string]any) *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}

func TestLoad_Defaults(t *testing.T) {
	t.Parallel()

	s, err := Load(newViper(map[string]any{
		KeyConsumerKey:    "AbC123",
		KeyConsumerSecret: "secret",
	}))
	require.NoError(t, err)

	assert.Equal(t, "twitterkit-abc123", s.CallbackScheme)
	assert.Equal(t, handoff.DefaultScheme, s.SSOScheme)
	assert.Equal(t, OutputText, s.Output)
	assert.Equal(t, authflow.TwitterEndpoints, s.Endpoints)
	assert.Zero(t, s.SSOTimeout)
	assert.Empty(t, s.SSOSchemes)
	assert.False(t, s.UseBrowser)
}

func TestLoad_Values(t *testing.T) {
	t.Parallel()

	s, err := Load(newViper(map[string]any{
		KeyConsumerKey:    "key",
		KeyConsumerSecret: "secret",
		KeyCallbackScheme: "myapp",
		KeyUseBrowser:     true,
		KeyCallbackPort:   8765,
		KeySSOSchemes:     []string{"twitterauth", " twitter , other"},
		KeySSOTimeout:     "90s",
		KeyAllowedSources: "com.example.app",
		KeyOutput:         "JSON",
		KeyAuthorizeURL:   "https://example.com/oauth/authorize",
		KeyRelayPort:      9000,
	}))
	require.NoError(t, err)

	assert.Equal(t, "myapp", s.CallbackScheme)
	assert.True(t, s.UseBrowser)
	assert.Equal(t, 8765, s.CallbackPort)
	assert.Equal(t, []string{"twitterauth", "twitter", "other"}, s.SSOSchemes)
	assert.Equal(t, 90*time.Second, s.SSOTimeout)
	assert.Equal(t, []string{"com.example.app"}, s.AllowedSources)
	assert.Equal(t, OutputJSON, s.Output)
	assert.Equal(t, "https://example.com/oauth/authorize", s.Endpoints.AuthorizeURL)
	assert.Equal(t, authflow.TwitterEndpoints.AccessTokenURL, s.Endpoints.AccessTokenURL)
	assert.Equal(t, 9000, s.RelayPort)
}

func TestLoad_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		values  map[string]any
		wantErr []string
	}{
		{
			name:    "missing credentials",
			values:  map[string]any{},
			wantErr: []string{"consumer_key is required", "consumer_secret is required"},
		},
		{
			name: "bad port",
			values: map[string]any{
				KeyConsumerKey: "k", KeyConsumerSecret: "s", KeyCallbackPort: 70000,
			},
			wantErr: []string{"callback_port must be between"},
		},
		{
			name: "negative timeout",
			values: map[string]any{
				KeyConsumerKey: "k", KeyConsumerSecret: "s", KeySSOTimeout: "-1s",
			},
			wantErr: []string{"sso_timeout cannot be negative"},
		},
		{
			name: "unknown output",
			values: map[string]any{
				KeyConsumerKey: "k", KeyConsumerSecret: "s", KeyOutput: "xml",
			},
			wantErr: []string{`got "xml"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Load(newViper(tt.values))
			require.Error(t, err)
			for _, want := range tt.wantErr {
				assert.Contains(t, err.Error(), want)
			}
		})
	}
}

func TestLoad_Environment(t *testing.T) { //nolint:paralleltest // Sets environment variables
	t.Setenv("TWAUTH_CONSUMER_KEY", "envkey")
	t.Setenv("TWAUTH_CONSUMER_SECRET", "envsecret")
	t.Setenv("TWAUTH_SSO_SCHEMES", "twitterauth,twitter")
	t.Setenv("TWAUTH_ENDPOINTS_ACCESS_TOKEN", "https://example.com/oauth/access_token")

	s, err := Load(newViper(nil))
	require.NoError(t, err)

	assert.Equal(t, "envkey", s.ConsumerKey)
	assert.Equal(t, "envsecret", s.ConsumerSecret)
	assert.Equal(t, []string{"twitterauth", "twitter"}, s.SSOSchemes)
	assert.Equal(t, "https://example.com/oauth/access_token", s.Endpoints.AccessTokenURL)
}

func TestReadFile(t *testing.T) {
	t.Parallel()

	t.Run("missing file is ignored", func(t *testing.T) {
		t.Parallel()

		v := newViper(nil)
		require.NoError(t, ReadFile(v, filepath.Join(t.TempDir(), "config.yaml")))
		require.NoError(t, ReadFile(v, ""))
	})

	t.Run("yaml values", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`consumer_key: filekey
consumer_secret: filesecret
sso_schemes:
  - twitterauth
endpoints:
  request_token: https://example.com/oauth/request_token
`), 0o600))

		v := newViper(nil)
		require.NoError(t, ReadFile(v, path))

		s, err := Load(v)
		require.NoError(t, err)
		assert.Equal(t, "filekey", s.ConsumerKey)
		assert.Equal(t, []string{"twitterauth"}, s.SSOSchemes)
		assert.Equal(t, "https://example.com/oauth/request_token", s.Endpoints.RequestTokenURL)
		assert.Equal(t, authflow.TwitterEndpoints.AuthorizeURL, s.Endpoints.AuthorizeURL)
	})

	t.Run("broken yaml", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("consumer_key: [unterminated"), 0o600))

		assert.Error(t, ReadFile(newViper(nil), path))
	})
}

func TestSettings_AuthConfig(t *testing.T) {
	t.Parallel()

	s := &Settings{
		ConsumerKey:    "key",
		ConsumerSecret: "secret",
		CallbackScheme: "myapp",
		SSOScheme:      "twitterauth",
		SSOTimeout:     time.Minute,
		AllowedSources: []string{"com.example"},
		Endpoints:      authflow.TwitterEndpoints,
		Output:         OutputText,
	}

	cfg, err := s.AuthConfig()
	require.NoError(t, err)
	assert.Equal(t, "myapp", cfg.CallbackScheme())
	assert.Equal(t, time.Minute, cfg.SSOTimeout)
	assert.Contains(t, cfg.AllowedSources, "com.example")

	s.CallbackScheme = "not a scheme"
	_, err = s.AuthConfig()
	assert.True(t, errors.IsInvalidArgument(err))
}
