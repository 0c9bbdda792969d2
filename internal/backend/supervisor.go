package backend

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/time/rate"

	"sonance/internal/mixaudio"
)

// Supervisor owns a Device and keeps it open, reopening on a rate
// limiter whenever ConsumeBroken reports a failed stream.
// This is the retry-with-backoff behavior the corpus implements with
// golang.org/x/time/rate for its own reconnect loops.
type Supervisor struct {
	device  Device
	mixer   *mixaudio.Mixer
	limiter *rate.Limiter

	settings Settings
}

// NewSupervisor wraps device, reconnecting at most once per interval
// with a small initial burst allowance.
func NewSupervisor(device Device, mixer *mixaudio.Mixer, settings Settings, interval time.Duration) *Supervisor {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &Supervisor{
		device:   device,
		mixer:    mixer,
		limiter:  rate.NewLimiter(rate.Every(interval), 3),
		settings: settings,
	}
}

// Run opens the device and polls ConsumeBroken until ctx is canceled,
// reopening whenever the device reports broken and the limiter admits
// it. poll bounds how often ConsumeBroken is checked; the audio thread
// itself never blocks on this loop.
func (s *Supervisor) Run(ctx context.Context, poll time.Duration) error {
	if poll <= 0 {
		poll = 250 * time.Millisecond
	}
	if err := s.open(); err != nil {
		return err
	}
	defer s.device.Close()

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if !s.device.ConsumeBroken() {
				continue
			}
			if !s.limiter.Allow() {
				log.Printf("⚠️ backend broken, reconnect rate-limited")
				continue
			}
			log.Printf("🔌 backend broken, reopening")
			s.device.Close()
			if err := s.open(); err != nil {
				log.Printf("❌ backend reopen failed: %v", err)
			}
		}
	}
}

func (s *Supervisor) open() error {
	sampleRate, err := s.device.Open(s.mixer, s.settings)
	if err != nil {
		return fmt.Errorf("backend: open failed: %w", err)
	}
	s.mixer.SetSampleRate(sampleRate)
	log.Printf("🔊 backend opened at %d Hz", sampleRate)
	return nil
}
