// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package app

import (
	"fmt"
	"io"

	"github.com/stacklok/twauth/pkg/authflow"
)

func writeResult(w io.Writer, format string, result authflow.Result) error {
	return writeValue(w, format, result, func(w io.Writer) error {
		if result.ScreenName != "" {
			if _, err := fmt.Fprintf(w, "Logged in as @%s\n", result.ScreenName); err != nil {
				return err
			}
		}
		_, err := fmt.Fprintf(w, "oauth_token: %s\noauth_token_secret: %s\n", result.Token, result.TokenSecret)
		return err
	})
}
