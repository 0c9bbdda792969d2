package mixaudio

import "sync/atomic"

// nextVoiceID hands out process-wide unique voice identities. Music and
// sfx voices both draw from it so ids never collide across voice kinds.
var nextVoiceID atomic.Uint64

// newVoiceID allocates the next voice identity. Exported to the
// package only; NewMusic and NewSfx call it so every handle/renderer
// pair agrees on its id without the caller ever choosing one.
func newVoiceID() uint64 {
	return nextVoiceID.Add(1)
}

// VoiceTelemetry is a point-in-time snapshot of one voice, published by
// the audio thread at the end of a callback and read by the control
// thread (e.g. the control API's /mixer/voices and /mixer/ws). Position
// and Paused are meaningful for Music voices; a Sfx voice (a pool of
// independently-advancing one-shot plays, not a single playhead)
// reports Position 0 and Paused as "no play currently in flight".
type VoiceTelemetry struct {
	ID       uint64
	Position float64
	Paused   bool
}

// Voice is the capability set the mixer needs from a renderer: music
// and sfx renderers are the two concrete variants. A tagged
// union of the two avoids the extra indirection of a slice of
// interfaces pointing at heap-boxed variants on the audio thread; Go's
// interface dispatch here is the idiomatic equivalent and is what the
// mixer uses.
type Voice interface {
	Alive() bool
	RenderMono(sampleRate int, buf []float32)
	RenderStereo(sampleRate int, buf []float32)
	Telemetry() VoiceTelemetry
}

// Mixer holds the set of active voices and composes their output into
// a callback buffer every callback. All of its methods other
// than AddVoice, Voices, VoiceCount, and the latency-sample accessors
// are audio-thread only; AddVoice is safe to call from any thread.
type Mixer struct {
	voices     []Voice
	pending    *spscRing[Voice]
	latency    *spscRing[float64]
	sampleRate int
	published  atomic.Pointer[[]VoiceTelemetry]
}

// NewMixer constructs a mixer. latencyCapacity bounds the telemetry
// queue; <= 0 uses a default of 64.
func NewMixer(sampleRate int, latencyCapacity int) *Mixer {
	if latencyCapacity <= 0 {
		latencyCapacity = 64
	}
	m := &Mixer{
		voices:     make([]Voice, 0, 16),
		pending:    newSPSCRing[Voice](256),
		latency:    newSPSCRing[float64](latencyCapacity),
		sampleRate: sampleRate,
	}
	empty := make([]VoiceTelemetry, 0)
	m.published.Store(&empty)
	return m
}

// AddVoice hands a new renderer to the mixer via the SPSC
// voice-registration queue. Non-blocking; the mixer actually adopts
// the voice at the top of its next callback. Returns ErrBufferFull (a
// no-op) if the registration queue is saturated.
func (m *Mixer) AddVoice(v Voice) error {
	if !m.pending.tryPush(v) {
		return ErrBufferFull
	}
	return nil
}

// SetSampleRate updates the sample rate the mixer reports to voices on
// the next callback (device open / device switch).
func (m *Mixer) SetSampleRate(sampleRate int) {
	m.sampleRate = sampleRate
}

// SampleRate returns the sample rate currently used for rendering.
func (m *Mixer) SampleRate() int {
	return m.sampleRate
}

// VoiceCount reports the number of active voices as of the end of the
// mixer's last callback. For telemetry only; safe to call from any
// thread, since it reads the same published snapshot as Voices.
func (m *Mixer) VoiceCount() int {
	return len(*m.published.Load())
}

// RenderMono fills buf with silence, adopts any pending voices, sums
// every active voice's contribution, and evicts the voices that died
// this callback, preserving the relative order of the survivors.
// buf holds len(buf) mono samples.
func (m *Mixer) RenderMono(buf []float32) {
	for i := range buf {
		buf[i] = 0
	}
	m.adoptPending()
	for _, v := range m.voices {
		v.RenderMono(m.sampleRate, buf)
	}
	m.evictDead()
	m.publishTelemetry()
}

// RenderStereo is RenderMono's stereo counterpart; buf holds
// len(buf)/2 stereo frames, interleaved left/right.
func (m *Mixer) RenderStereo(buf []float32) {
	for i := range buf {
		buf[i] = 0
	}
	m.adoptPending()
	for _, v := range m.voices {
		v.RenderStereo(m.sampleRate, buf)
	}
	m.evictDead()
	m.publishTelemetry()
}

// publishTelemetry snapshots every surviving voice's id/position/paused
// state and atomically publishes it for Voices to read from any thread.
func (m *Mixer) publishTelemetry() {
	snap := make([]VoiceTelemetry, len(m.voices))
	for i, v := range m.voices {
		snap[i] = v.Telemetry()
	}
	m.published.Store(&snap)
}

// Voices returns the most recently published per-voice telemetry
// (id, position, paused). Safe to call from any thread; reflects the
// voice set as of the end of the mixer's last callback.
func (m *Mixer) Voices() []VoiceTelemetry {
	return *m.published.Load()
}

func (m *Mixer) adoptPending() {
	m.pending.drainAll(func(v Voice) {
		m.voices = append(m.voices, v)
	})
}

func (m *Mixer) evictDead() {
	alive := m.voices[:0]
	for _, v := range m.voices {
		if v.Alive() {
			alive = append(alive, v)
		}
	}
	m.voices = alive
}

// RecordLatency pushes one playback_delay sample (seconds) into the
// bounded telemetry queue. Call this from the backend's
// pull callback; a full queue silently drops the sample.
func (m *Mixer) RecordLatency(seconds float64) {
	m.latency.tryPush(seconds)
}

// DrainLatencySamples pops every pending latency sample in FIFO order.
// Intended for the control thread's telemetry consumer.
func (m *Mixer) DrainLatencySamples() []float64 {
	var out []float64
	m.latency.drainAll(func(v float64) {
		out = append(out, v)
	})
	return out
}
