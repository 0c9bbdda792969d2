package controlapi

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"

	"sonance/internal/mixaudio"
)

// Server is the diagnostic HTTP/WebSocket surface described by the
// control API component. It combines the chi router with the
// telemetry hub.
type Server struct {
	mixer  *mixaudio.Mixer
	hub    *TelemetryHub
	router *chi.Mux
}

// NewServer creates a control API server bound to mixer.
//
// Background workers do NOT start until Start is called, so the
// router can be used with httptest without opening any listener or
// goroutine.
func NewServer(mixer *mixaudio.Mixer, clips map[string]*mixaudio.Clip, corsOrigins []string) *Server {
	hub := NewTelemetryHub()
	s := &Server{
		mixer: mixer,
		hub:   hub,
	}
	s.router = NewRouter(Config{
		Mixer:       mixer,
		Hub:         hub,
		Clips:       clips,
		CORSOrigins: corsOrigins,
	})
	return s
}

// Start begins background workers and serves HTTP on addr. The only
// method that starts goroutines or opens a network listener.
func (s *Server) Start(addr string) error {
	go s.hub.Run()
	s.hub.StartBroadcastLoop(s.mixer)

	log.Printf("🩺 control API starting on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

// Router returns the HTTP handler, for use with httptest.NewServer.
func (s *Server) Router() http.Handler {
	return s.router
}
