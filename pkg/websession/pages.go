// SPDX-FileCopyrightText: Copyright 2025 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package websession

import (
	"bytes"
	"html/template"
	"net/http"

	"github.com/stacklok/twauth/pkg/logger"
)

type page struct {
	Title   string
	Class   string
	Message string
	Link    string
}

var (
	successPage = page{
		Title:   "Authentication Successful",
		Class:   "success",
		Message: "You have successfully authorized twauth. You can now close this window and return to the terminal.",
	}
	cancelledPage = page{
		Title:   "Authentication Cancelled",
		Class:   "info",
		Message: "The login was cancelled. You can close this window.",
	}
)

func pendingPage(authorizeURL string) page {
	return page{
		Title:   "twauth Login",
		Class:   "info",
		Message: "Waiting for you to authorize twauth.",
		Link:    authorizeURL,
	}
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>{{.Title}}</title>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <style>
        body { font-family: Arial, sans-serif; margin: 40px; text-align: center; }
        .container { max-width: 600px; margin: 0 auto; }
        .message { padding: 20px; border-radius: 5px; margin: 20px 0; }
        .info { background-color: #e7f3ff; border: 1px solid #b3d9ff; color: #0066cc; }
        .success { background-color: #e7f6e7; border: 1px solid #b3e6b3; color: #006600; }
        .error { background-color: #ffe7e7; border: 1px solid #ffb3b3; color: #cc0000; }
    </style>
</head>
<body>
    <div class="container">
        <h1>{{.Title}}</h1>
        <div class="message {{.Class}}">
            <p>{{.Message}}</p>
            {{- if .Link}}
            <p><a href="{{.Link}}">Continue to authorize</a> or <a href="/cancel">cancel</a>.</p>
            {{- end}}
        </div>
    </div>
</body>
</html>
`))

// setSecurityHeaders sets common security headers for all responses
func setSecurityHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.Header().Set("X-Frame-Options", "DENY")
	w.Header().Set("Referrer-Policy", "no-referrer")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Content-Security-Policy", "default-src 'self'; style-src 'unsafe-inline'; script-src 'none'; object-src 'none';")
}

func writePage(w http.ResponseWriter, status int, p page) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, p); err != nil {
		logger.Warnf("Failed to render %q page: %v", p.Title, err)
		http.Error(w, p.Title, http.StatusInternalServerError)
		return
	}
	setSecurityHeaders(w)
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.Warnf("Failed to write HTML content: %v", err)
	}
}

func writeErrorPage(w http.ResponseWriter, err error) {
	writePage(w, http.StatusBadRequest, page{
		Title:   "Authentication Failed",
		Class:   "error",
		Message: err.Error() + ". Please try again.",
	})
}
