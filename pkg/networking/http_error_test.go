// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package networking

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHTTPError(t *testing.T) {
	t.Parallel()

	err := NewHTTPError(404, "http://example.com/api", "not found")
	require.Error(t, err)
	assert.Equal(t, "HTTP 404 for URL http://example.com/api: not found", err.Error())
}

func TestIsHTTPError(t *testing.T) {
	t.Parallel()

	wrapped := fmt.Errorf("relay: %w", NewHTTPError(401, "http://127.0.0.1/v1/redirect", "unauthorized"))

	tests := []struct {
		name       string
		err        error
		statusCode int
		expected   bool
	}{
		{name: "any status", err: wrapped, statusCode: 0, expected: true},
		{name: "matching status", err: wrapped, statusCode: 401, expected: true},
		{name: "other status", err: wrapped, statusCode: 500, expected: false},
		{name: "plain error", err: fmt.Errorf("boom"), statusCode: 0, expected: false},
		{name: "nil", err: nil, statusCode: 0, expected: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.expected, IsHTTPError(tt.err, tt.statusCode))
		})
	}
}

func TestErrorFromResponse(t *testing.T) {
	t.Parallel()

	reqURL, err := url.Parse("http://127.0.0.1:9000/v1/redirect")
	require.NoError(t, err)

	tests := []struct {
		name    string
		status  int
		body    string
		wantNil bool
		wantMsg string
	}{
		{name: "success", status: http.StatusOK, body: "{}", wantNil: true},
		{name: "body preview", status: http.StatusUnauthorized, body: " bad token\n", wantMsg: "bad token"},
		{name: "empty body uses status text", status: http.StatusBadGateway, wantMsg: "Bad Gateway"},
		{name: "long body is truncated", status: http.StatusBadRequest, body: strings.Repeat("x", 2*DefaultErrorPreviewSize), wantMsg: strings.Repeat("x", DefaultErrorPreviewSize)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			resp := &http.Response{
				StatusCode: tt.status,
				Body:       io.NopCloser(strings.NewReader(tt.body)),
				Request:    &http.Request{URL: reqURL},
			}
			err := ErrorFromResponse(resp)
			if tt.wantNil {
				assert.NoError(t, err)
				return
			}
			require.True(t, IsHTTPError(err, tt.status))
			httpErr := err.(*HTTPError)
			assert.Equal(t, tt.wantMsg, httpErr.Message)
			assert.Equal(t, reqURL.String(), httpErr.URL)
		})
	}
}
