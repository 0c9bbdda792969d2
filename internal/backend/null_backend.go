package backend

import (
	"sync"
	"sync/atomic"

	"sonance/internal/mixaudio"
)

// NullBackend is an always-silent Device for headless demos and tests,
// grounded on the reference corpus's pattern of a no-op device stub
// that still honors the real interface's contract.
// It never opens any OS audio device; callers drive it manually via
// Pump instead of receiving callbacks from a realtime thread.
type NullBackend struct {
	mu         sync.Mutex
	mixer      *mixaudio.Mixer
	sampleRate int
	opened     bool
	broken     atomic.Bool
	scratch    []float32
}

// NewNullBackend constructs an unopened null backend. sampleRate is the
// rate it reports from Open; <= 0 defaults to 48000.
func NewNullBackend(sampleRate int) *NullBackend {
	if sampleRate <= 0 {
		sampleRate = 48000
	}
	return &NullBackend{sampleRate: sampleRate}
}

// Open binds mixer without starting any real stream.
func (b *NullBackend) Open(mixer *mixaudio.Mixer, _ Settings) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.mixer = mixer
	b.opened = true
	return b.sampleRate, nil
}

// Close marks the backend closed. Idempotent.
func (b *NullBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.opened = false
	return nil
}

// ConsumeBroken reads and clears the broken flag. A null backend makes
// no device I/O, so the flag is only ever set by MarkBroken.
func (b *NullBackend) ConsumeBroken() bool {
	return b.broken.Swap(false)
}

// Pump manually drives one callback-equivalent render of numFrames
// stereo frames, discarding the output. This is how tests and headless
// demo harnesses exercise the mixer without a real sound card.
func (b *NullBackend) Pump(numFrames int) {
	b.mu.Lock()
	mixer := b.mixer
	b.mu.Unlock()
	if mixer == nil || !b.opened {
		return
	}
	need := numFrames * 2
	if cap(b.scratch) < need {
		b.scratch = make([]float32, need)
	}
	buf := b.scratch[:need]
	mixer.RenderStereo(buf)
}

// MarkBroken lets a test simulate a device failure for supervisor
// reconnect-backoff tests.
func (b *NullBackend) MarkBroken() {
	b.broken.Store(true)
}
