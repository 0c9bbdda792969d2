// Package backend adapts sonance's Mixer to a platform audio device.
// It is the external-collaborator boundary: the core only ever sees a
// pull callback handed a writable buffer, the stream's sample rate,
// and a broken flag. Nothing in here runs the sample-accurate voice
// state machine; it only decides when the mixer gets asked to fill a
// buffer.
package backend

import "sonance/internal/mixaudio"

// Settings collects the recognized backend options. The core neither
// defines nor parses these beyond BufferSize; the low-level-variant
// fields are opaque passthrough values.
type Settings struct {
	// BufferSize is the device frame buffer size in frames. Nil means
	// "let the backend choose".
	BufferSize *uint32

	// PerformanceMode and Usage are opaque enums some backends
	// recognize (e.g. a mobile low-latency backend); sonance never
	// interprets them.
	PerformanceMode string
	Usage           string
}

// Device is the abstract contract any platform audio device must
// satisfy. Open binds mixer to the device's pull callback;
// once bound, the backend thread — not the caller of Open — invokes
// RenderStereo/RenderMono on mixer for the lifetime of the stream.
// PortAudioBackend and NullBackend both satisfy it.
type Device interface {
	// Open starts the stream, binding it to mixer. It reports the
	// sample rate the device actually opened at.
	Open(mixer *mixaudio.Mixer, settings Settings) (sampleRate int, err error)
	// Close tears the stream down. Safe to call on a backend that was
	// never opened or is already closed.
	Close() error
	// ConsumeBroken reads and clears the sticky device-broken flag.
	// true means the owner should Close and reopen.
	ConsumeBroken() bool
}
