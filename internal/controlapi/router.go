package controlapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"sonance/internal/mixaudio"
)

// VoiceInspector is the minimal read surface the router needs from the
// mixer; kept as an interface so tests can supply a stub without a
// real mixer.
type VoiceInspector interface {
	VoiceCount() int
	SampleRate() int
	Voices() []mixaudio.VoiceTelemetry
}

// Config collects everything NewRouter needs to build the diagnostic
// HTTP surface.
type Config struct {
	Mixer VoiceInspector
	Hub   *TelemetryHub

	// CORSOrigins defaults to ["*"] if nil.
	CORSOrigins []string

	// Clips lets /mixer/clip/{id}/waveform.png resolve an id to a
	// decoded clip for rendering.
	Clips map[string]*mixaudio.Clip

	// DisableLogging disables the chi request logger (useful in tests).
	DisableLogging bool
}

// NewRouter builds the chi router. Pure: no goroutines, no listeners
// opened — safe to pass to httptest.NewServer.
func NewRouter(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	if !cfg.DisableLogging {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)

	origins := cfg.CORSOrigins
	if origins == nil {
		origins = []string{"*"}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	r.Handle("/metrics", metricsHandler())

	r.Route("/mixer", func(r chi.Router) {
		r.Get("/voices", func(w http.ResponseWriter, req *http.Request) {
			telemetry := cfg.Mixer.Voices()
			voices := make([]map[string]interface{}, len(telemetry))
			for i, v := range telemetry {
				voices[i] = map[string]interface{}{
					"id":       v.ID,
					"position": v.Position,
					"paused":   v.Paused,
				}
			}
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(map[string]interface{}{
				"active_voices": cfg.Mixer.VoiceCount(),
				"sample_rate":   cfg.Mixer.SampleRate(),
				"voices":        voices,
			})
		})

		r.Get("/clip/{id}/waveform.png", func(w http.ResponseWriter, req *http.Request) {
			id := chi.URLParam(req, "id")
			clip, ok := cfg.Clips[id]
			if !ok {
				http.NotFound(w, req)
				return
			}
			waveformHandler(clip)(w, req)
		})

		if cfg.Hub != nil {
			r.Get("/ws", cfg.Hub.HandleWebSocket)
		}
	})

	return r
}

func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		RecordRequest(r.Method, r.URL.Path, time.Since(start))
	})
}
