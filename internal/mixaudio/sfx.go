package mixaudio

import (
	"sync/atomic"
	"weak"
)

// PlaySfxParams carries the per-play parameters of a one-shot sfx play.
type PlaySfxParams struct {
	Amplifier float32
}

type sfxEntry struct {
	position float64
	params   PlaySfxParams
}

// sfxShared mirrors musicShared's role for sfx voices: it lets the
// renderer detect, via a weak.Pointer, whether the owning SfxHandle
// still exists, plus an explicit deterministic Close.
type sfxShared struct {
	closed atomic.Bool
}

// SfxHandle is the control-side reference to an sfx voice.
type SfxHandle struct {
	id     uint64
	queue  *spscRing[PlaySfxParams]
	shared *sfxShared
}

// SfxRenderer is the audio-thread side of an sfx voice: a bounded pool
// of in-flight one-shot plays, each advancing independently.
type SfxRenderer struct {
	id         uint64
	queue      *spscRing[PlaySfxParams]
	weakShared weak.Pointer[sfxShared]

	clip   *Clip
	active []sfxEntry
}

// NewSfx constructs an sfx voice over clip with the given play-queue
// capacity (<= 0 uses DefaultSfxQueueCapacity), returning the
// control-side handle and the audio-thread renderer.
func NewSfx(clip *Clip, capacity int) (*SfxHandle, *SfxRenderer) {
	if capacity <= 0 {
		capacity = DefaultSfxQueueCapacity
	}
	queue := newSPSCRing[PlaySfxParams](capacity)
	shared := &sfxShared{}
	id := newVoiceID()

	handle := &SfxHandle{id: id, queue: queue, shared: shared}
	renderer := &SfxRenderer{
		id:         id,
		queue:      queue,
		weakShared: weak.Make(shared),
		clip:       clip,
	}
	return handle, renderer
}

// ID returns the voice identity shared with this handle's renderer;
// stable for the voice's lifetime and unique across every Music and
// Sfx voice the process has created.
func (h *SfxHandle) ID() uint64 { return h.id }

// Play enqueues a new one-shot play starting from the beginning of the
// clip. Non-blocking; returns ErrBufferFull (a no-op) if the queue is
// saturated.
func (h *SfxHandle) Play(params PlaySfxParams) error {
	if !h.queue.tryPush(params) {
		return ErrBufferFull
	}
	return nil
}

// Close marks the handle side dead immediately, the same way
// MusicHandle.Close does.
func (h *SfxHandle) Close() {
	h.shared.closed.Store(true)
}

// Alive is true while any entry remains queued or in flight, or while
// the owning SfxHandle still exists.
func (r *SfxRenderer) Alive() bool {
	if len(r.active) > 0 || r.queue.len() > 0 {
		return true
	}
	shared := r.weakShared.Value()
	return shared != nil && !shared.closed.Load()
}

// Telemetry reports this voice's id. Position is always 0 and Paused
// reflects "no play currently in flight" — an sfx voice is a pool of
// independently-advancing one-shot plays, not a single playhead, so
// per-play position isn't meaningful at the voice level.
func (r *SfxRenderer) Telemetry() VoiceTelemetry {
	return VoiceTelemetry{ID: r.id, Paused: len(r.active) == 0}
}

// RenderMono renders len(buf) mono samples, adding into buf.
func (r *SfxRenderer) RenderMono(sampleRate int, buf []float32) {
	r.render(sampleRate, len(buf), func(i int, f Frame) {
		buf[i] += f.Avg()
	})
}

// RenderStereo renders len(buf)/2 stereo samples, adding into buf.
func (r *SfxRenderer) RenderStereo(sampleRate int, buf []float32) {
	r.render(sampleRate, len(buf)/2, func(i int, f Frame) {
		buf[2*i] += f.Left
		buf[2*i+1] += f.Right
	})
}

func (r *SfxRenderer) render(sampleRate, numFrames int, write func(i int, f Frame)) {
	r.queue.drainAll(func(p PlaySfxParams) {
		r.active = append(r.active, sfxEntry{position: 0, params: p})
	})
	if sampleRate <= 0 {
		return
	}
	delta := 1.0 / float64(sampleRate)

	alive := r.active[:0]
	for _, e := range r.active {
		pos := e.position
		finished := false
		for i := 0; i < numFrames; i++ {
			f, ok := r.clip.Sample(pos)
			if !ok {
				finished = true
				break
			}
			write(i, f.Scale(e.params.Amplifier))
			pos += delta
		}
		if !finished {
			e.position = pos
			alive = append(alive, e)
		}
	}
	r.active = alive
}
