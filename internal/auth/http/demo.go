package http

import (
	_ "embed"
	"net/http"
)

//go:embed static/index.html
var demoPage []byte

// DemoHandler serves the browser page for trying register, login and profile.
func DemoHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Content-Security-Policy", "default-src 'self'; script-src 'unsafe-inline'; style-src 'unsafe-inline'; img-src data:")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(demoPage)
	}
}
