// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package config loads twauth settings from flags, TWAUTH_* environment
// variables and an optional YAML file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"

	"github.com/stacklok/twauth/pkg/authflow"
	"github.com/stacklok/twauth/pkg/handoff"
	"github.com/stacklok/twauth/pkg/logger"
)

// EnvPrefix prefixes every environment variable read by twauth.
const EnvPrefix = "TWAUTH"

// Setting keys.
const (
	KeyConsumerKey     = "consumer_key"
	KeyConsumerSecret  = "consumer_secret"
	KeyCallbackScheme  = "callback_scheme"
	KeyUseBrowser      = "use_browser"
	KeyNoBrowser       = "no_browser"
	KeyCallbackPort    = "callback_port"
	KeySSOScheme       = "sso_scheme"
	KeySSOSchemes      = "sso_schemes"
	KeySSOTimeout      = "sso_timeout"
	KeyAllowedSources  = "allowed_sources"
	KeyRelayPort       = "relay_port"
	KeyOutput          = "output"
	KeyCABundle        = "ca_bundle"
	KeyRequestTokenURL = "endpoints.request_token"
	KeyAuthorizeURL    = "endpoints.authorize"
	KeyAccessTokenURL  = "endpoints.access_token"
)

// Output formats for login results.
const (
	OutputText = "text"
	OutputJSON = "json"
	OutputYAML = "yaml"
)

// Settings is the resolved configuration of one invocation.
type Settings struct {
	ConsumerKey    string
	ConsumerSecret string
	CallbackScheme string
	UseBrowser     bool
	NoBrowser      bool
	CallbackPort   int
	SSOScheme      string
	SSOSchemes     []string
	SSOTimeout     time.Duration
	AllowedSources []string
	RelayPort      int
	Output         string
	CABundle       string
	Endpoints      authflow.Endpoints
}

// DefaultConfigPath returns $XDG_CONFIG_HOME/twauth/config.yaml.
func DefaultConfigPath() (string, error) {
	return xdg.ConfigFile("twauth/config.yaml")
}

// SetDefaults registers default values and environment binding on v.
func SetDefaults(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	v.SetDefault(KeySSOScheme, handoff.DefaultScheme)
	v.SetDefault(KeyOutput, OutputText)
	v.SetDefault(KeyRequestTokenURL, authflow.TwitterEndpoints.RequestTokenURL)
	v.SetDefault(KeyAuthorizeURL, authflow.TwitterEndpoints.AuthorizeURL)
	v.SetDefault(KeyAccessTokenURL, authflow.TwitterEndpoints.AccessTokenURL)
}

// ReadFile merges the YAML file at path into v. A missing file is not an error.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		logger.Debugf("No config file at %s", path)
		return nil
	}

	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	logger.Debugf("Loaded config file %s", path)
	return nil
}

// Load resolves Settings from v. SetDefaults must have been called.
func Load(v *viper.Viper) (*Settings, error) {
	s := &Settings{
		ConsumerKey:    strings.TrimSpace(v.GetString(KeyConsumerKey)),
		ConsumerSecret: strings.TrimSpace(v.GetString(KeyConsumerSecret)),
		CallbackScheme: strings.TrimSpace(v.GetString(KeyCallbackScheme)),
		UseBrowser:     v.GetBool(KeyUseBrowser),
		NoBrowser:      v.GetBool(KeyNoBrowser),
		CallbackPort:   v.GetInt(KeyCallbackPort),
		SSOScheme:      strings.TrimSpace(v.GetString(KeySSOScheme)),
		SSOSchemes:     splitList(v.GetStringSlice(KeySSOSchemes)),
		SSOTimeout:     v.GetDuration(KeySSOTimeout),
		AllowedSources: splitList(v.GetStringSlice(KeyAllowedSources)),
		RelayPort:      v.GetInt(KeyRelayPort),
		Output:         strings.ToLower(strings.TrimSpace(v.GetString(KeyOutput))),
		CABundle:       v.GetString(KeyCABundle),
		Endpoints: authflow.Endpoints{
			RequestTokenURL: v.GetString(KeyRequestTokenURL),
			AuthorizeURL:    v.GetString(KeyAuthorizeURL),
			AccessTokenURL:  v.GetString(KeyAccessTokenURL),
		},
	}
	if s.CallbackScheme == "" && s.ConsumerKey != "" {
		s.CallbackScheme = DefaultCallbackScheme(s.ConsumerKey)
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// DefaultCallbackScheme is the scheme registered for consumerKey when none
// is configured.
func DefaultCallbackScheme(consumerKey string) string {
	return "twitterkit-" + strings.ToLower(consumerKey)
}

// Validate checks settings that do not depend on the host.
func (s *Settings) Validate() error {
	var errs []error
	if s.ConsumerKey == "" {
		errs = append(errs, fmt.Errorf("%s is required", KeyConsumerKey))
	}
	if s.ConsumerSecret == "" {
		errs = append(errs, fmt.Errorf("%s is required", KeyConsumerSecret))
	}
	for key, port := range map[string]int{KeyCallbackPort: s.CallbackPort, KeyRelayPort: s.RelayPort} {
		if port < 0 || port > 65535 {
			errs = append(errs, fmt.Errorf("%s must be between 0 and 65535, got %d", key, port))
		}
	}
	if s.SSOTimeout < 0 {
		errs = append(errs, fmt.Errorf("%s cannot be negative", KeySSOTimeout))
	}
	switch s.Output {
	case OutputText, OutputJSON, OutputYAML:
	default:
		errs = append(errs, fmt.Errorf("%s must be one of %s, %s or %s, got %q", KeyOutput, OutputText, OutputJSON, OutputYAML, s.Output))
	}
	return errors.Join(errs...)
}

// AuthConfig builds the authenticator configuration.
func (s *Settings) AuthConfig() (*authflow.Config, error) {
	return authflow.NewConfig(
		s.ConsumerKey,
		s.ConsumerSecret,
		s.CallbackScheme,
		s.UseBrowser,
		authflow.WithEndpoints(s.Endpoints),
		authflow.WithSSOScheme(s.SSOScheme),
		authflow.WithAllowedSources(s.AllowedSources...),
		authflow.WithSSOTimeout(s.SSOTimeout),
	)
}

// splitList accepts both YAML lists and comma-separated environment values.
func splitList(in []string) []string {
	var out []string
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
