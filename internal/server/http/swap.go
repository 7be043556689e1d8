package http

import (
	"net/http"
	"sync/atomic"
)

// SwappableHandler is an http.Handler whose target can be replaced
// atomically while serving. Configuration reloads build a fresh,
// immutable negotiation chain and swap it in; concurrent requests
// observe either the old chain or the new one, never a mix.
type SwappableHandler struct {
	current atomic.Pointer[http.Handler]
}

// NewSwappableHandler creates a SwappableHandler serving the given
// handler.
func NewSwappableHandler(handler http.Handler) *SwappableHandler {
	s := &SwappableHandler{}
	s.Swap(handler)
	return s
}

// Swap replaces the target handler.
func (s *SwappableHandler) Swap(handler http.Handler) {
	if handler == nil {
		handler = http.NotFoundHandler()
	}
	s.current.Store(&handler)
}

// ServeHTTP dispatches to the current target handler.
func (s *SwappableHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	(*s.current.Load()).ServeHTTP(w, r)
}
