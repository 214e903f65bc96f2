package api

import (
	"net/http"
	"time"
)

// NewServer creates a configured *http.Server. WriteTimeout stays unset for
// the websocket endpoint.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
