package mixaudio

import (
	"math"
	"sync/atomic"
	"weak"
)

// MusicSettings configures a music voice.
type MusicSettings struct {
	// LoopMixTime is the loop crossfade overlap in seconds. Negative
	// means "no loop".
	LoopMixTime float64
	// Amplifier scales every sample before mixing.
	Amplifier float32
	// PlaybackRate is the clip-seconds-per-output-second speed; 1 is
	// normal speed. Zero is treated as 1.
	PlaybackRate float64
	// CommandBufferSize sizes the command channel; <= 0 uses
	// DefaultCommandBufferSize.
	CommandBufferSize int
}

type fadeMode uint8

const (
	fadeNone fadeMode = iota
	fadeIn
	fadeOut
)

type fadeState struct {
	mode          fadeMode
	totalSamples  int64
	cursorSamples int64
}

// musicShared is the small cross-thread block published by the audio
// thread and observed by the control thread. It is owned (kept alive)
// by MusicHandle; MusicRenderer only
// ever holds a weak.Pointer to it, mirroring the spec's weak
// back-reference design. closed additionally gives deterministic,
// GC-timing-independent teardown: Close sets it directly, rather than
// relying solely on the handle becoming unreachable.
type musicShared struct {
	positionBits atomic.Uint32
	paused       atomic.Bool
	closed       atomic.Bool
}

// MusicHandle is the control-side reference to a music voice. All
// mutating methods are non-blocking: they push a command into the
// SPSC channel consumed by the renderer on the audio thread, and
// return ErrBufferFull (a no-op) if the channel is saturated.
type MusicHandle struct {
	id     uint64
	cmds   *spscRing[command]
	shared *musicShared
}

// MusicRenderer is the audio-thread side of a music voice; the mixer
// calls RenderMono/RenderStereo on it every callback. It must never be
// used from more than one goroutine/thread at a time.
type MusicRenderer struct {
	id         uint64
	cmds       *spscRing[command]
	weakShared weak.Pointer[musicShared]

	clip           *Clip
	settings       MusicSettings
	paused         bool
	index          int64
	lastSampleRate int
	lowPass        float32
	lastOutput     Frame
	fade           fadeState
}

// NewMusic constructs a music voice over clip, returning the
// control-side handle and the audio-thread renderer.
func NewMusic(clip *Clip, settings MusicSettings) (*MusicHandle, *MusicRenderer) {
	bufSize := settings.CommandBufferSize
	if bufSize <= 0 {
		bufSize = DefaultCommandBufferSize
	}
	if settings.PlaybackRate == 0 {
		settings.PlaybackRate = 1
	}

	cmds := newSPSCRing[command](bufSize)
	shared := &musicShared{}
	shared.paused.Store(true)
	id := newVoiceID()

	handle := &MusicHandle{id: id, cmds: cmds, shared: shared}
	renderer := &MusicRenderer{
		id:         id,
		cmds:       cmds,
		weakShared: weak.Make(shared),
		clip:       clip,
		settings:   settings,
		paused:     true,
		fade:       fadeState{mode: fadeNone},
	}
	return handle, renderer
}

// ID returns the voice identity shared with this handle's renderer;
// stable for the voice's lifetime and unique across every Music and
// Sfx voice the process has created. Matches the id reported in
// VoiceTelemetry once the mixer publishes this voice.
func (h *MusicHandle) ID() uint64 { return h.id }

func (h *MusicHandle) push(c command) error {
	if !h.cmds.tryPush(c) {
		return ErrBufferFull
	}
	return nil
}

// Play resumes playback.
func (h *MusicHandle) Play() error { return h.push(command{kind: cmdResume}) }

// Pause pauses playback.
func (h *MusicHandle) Pause() error { return h.push(command{kind: cmdPause}) }

// SetAmplifier overwrites the voice's linear amplitude scale.
func (h *MusicHandle) SetAmplifier(a float32) error {
	return h.push(command{kind: cmdSetAmplifier, arg: a})
}

// SeekTo moves playback to the given position in seconds.
func (h *MusicHandle) SeekTo(seconds float32) error {
	return h.push(command{kind: cmdSeekTo, arg: seconds})
}

// SetLowPass overwrites the one-pole low-pass coefficient, in [0, 1).
func (h *MusicHandle) SetLowPass(coeff float32) error {
	return h.push(command{kind: cmdSetLowPass, arg: coeff})
}

// FadeIn starts a fade-in over the given number of seconds, unpausing
// the voice if it was paused.
func (h *MusicHandle) FadeIn(seconds float32) error {
	return h.push(command{kind: cmdFadeIn, arg: seconds})
}

// FadeOut starts a fade-out over the given number of seconds; the
// voice pauses itself once the fade completes.
func (h *MusicHandle) FadeOut(seconds float32) error {
	return h.push(command{kind: cmdFadeOut, arg: seconds})
}

// Position reads the last position (in seconds) published by the
// renderer, with sequentially-consistent visibility.
func (h *MusicHandle) Position() float64 {
	bits := h.shared.positionBits.Load()
	return float64(math.Float32frombits(bits))
}

// Paused reads the last pause state published by the renderer.
func (h *MusicHandle) Paused() bool {
	return h.shared.paused.Load()
}

// Close marks the voice dead immediately. The mixer evicts the
// renderer at its next eviction pass. Dropping the handle
// without calling Close also eventually makes the voice dead, once the
// garbage collector reclaims the shared block the renderer only holds
// weakly — Close exists so teardown doesn't depend on GC timing.
func (h *MusicHandle) Close() {
	h.shared.closed.Store(true)
}

// Alive reports whether the owning MusicHandle still exists.
func (r *MusicRenderer) Alive() bool {
	shared := r.weakShared.Value()
	return shared != nil && !shared.closed.Load()
}

// Telemetry reports this voice's id and its last-published
// position/paused state, the same values MusicHandle.Position and
// MusicHandle.Paused read.
func (r *MusicRenderer) Telemetry() VoiceTelemetry {
	shared := r.weakShared.Value()
	if shared == nil {
		return VoiceTelemetry{ID: r.id, Paused: true}
	}
	return VoiceTelemetry{
		ID:       r.id,
		Position: float64(math.Float32frombits(shared.positionBits.Load())),
		Paused:   shared.paused.Load(),
	}
}

// RenderMono renders numFrames = len(buf) mono samples, adding into
// buf.
func (r *MusicRenderer) RenderMono(sampleRate int, buf []float32) {
	shared := r.weakShared.Value()
	if shared == nil || shared.closed.Load() {
		return
	}
	r.render(shared, sampleRate, len(buf), func(i int, f Frame) {
		buf[i] += f.Avg()
	})
}

// RenderStereo renders numFrames = len(buf)/2 stereo samples, adding
// into buf.
func (r *MusicRenderer) RenderStereo(sampleRate int, buf []float32) {
	shared := r.weakShared.Value()
	if shared == nil || shared.closed.Load() {
		return
	}
	r.render(shared, sampleRate, len(buf)/2, func(i int, f Frame) {
		buf[2*i] += f.Left
		buf[2*i+1] += f.Right
	})
}

func (r *MusicRenderer) render(shared *musicShared, sampleRate, numFrames int, write func(i int, f Frame)) {
	r.prepare(shared, sampleRate)
	if r.paused {
		return
	}

	delta := r.settings.PlaybackRate / float64(sampleRate)
	position := float64(r.index) * delta

	for i := 0; i < numFrames; i++ {
		f, ok := r.frame(shared, position, delta)
		if !ok {
			break
		}
		r.lastOutput = Frame{
			Left:  r.lowPass*r.lastOutput.Left + (1-r.lowPass)*f.Left,
			Right: r.lowPass*r.lastOutput.Right + (1-r.lowPass)*f.Right,
		}
		write(i, r.lastOutput)
		position += delta
	}

	deltaF32 := float32(r.settings.PlaybackRate) / float32(sampleRate)
	shared.positionBits.Store(math.Float32bits(float32(r.index) * deltaF32))
}

// prepare rescales sample-rate-dependent counters on a device rate
// change, then drains every pending command.
func (r *MusicRenderer) prepare(shared *musicShared, sampleRate int) {
	if r.lastSampleRate != 0 && sampleRate != r.lastSampleRate {
		ratio := float64(sampleRate) / float64(r.lastSampleRate)
		r.index = int64(math.Round(float64(r.index) * ratio))
		r.fade.totalSamples = int64(math.Round(float64(r.fade.totalSamples) * ratio))
		r.fade.cursorSamples = int64(math.Round(float64(r.fade.cursorSamples) * ratio))
	}
	r.lastSampleRate = sampleRate

	r.cmds.drainAll(func(c command) {
		r.applyCommand(shared, c)
	})
}

func (r *MusicRenderer) applyCommand(shared *musicShared, c command) {
	switch c.kind {
	case cmdPause:
		r.paused = true
		shared.paused.Store(true)
	case cmdResume:
		r.paused = false
		shared.paused.Store(false)
	case cmdSetAmplifier:
		r.settings.Amplifier = c.arg
	case cmdSeekTo:
		r.index = int64(math.Round(float64(c.arg) * float64(r.lastSampleRate) / r.settings.PlaybackRate))
	case cmdSetLowPass:
		r.lowPass = c.arg
	case cmdFadeIn:
		r.fade = fadeState{mode: fadeIn, totalSamples: int64(math.Round(float64(c.arg) * float64(r.lastSampleRate)))}
		r.paused = false
		shared.paused.Store(false)
	case cmdFadeOut:
		r.fade = fadeState{mode: fadeOut, totalSamples: int64(math.Round(float64(c.arg) * float64(r.lastSampleRate)))}
	}
}

// frame produces (or declines to produce) one sample at position,
// mutating index/fade/paused as a side effect.
func (r *MusicRenderer) frame(shared *musicShared, position, delta float64) (Frame, bool) {
	L := r.clip.LengthSeconds()
	crossfade := r.settings.LoopMixTime

	if f, ok := r.clip.Sample(position); ok {
		if crossfade >= 0 && position+crossfade-L >= 0 {
			if o, ok2 := r.clip.Sample(position + crossfade - L); ok2 {
				f = f.Add(o)
			}
		}
		r.index++

		var m float32 = 1
		switch r.fade.mode {
		case fadeNone:
			m = 1
		case fadeIn:
			r.fade.cursorSamples++
			if r.fade.cursorSamples >= r.fade.totalSamples {
				r.fade.mode = fadeNone
				m = 1
			} else {
				m = float32(r.fade.cursorSamples) / float32(r.fade.totalSamples)
			}
		case fadeOut:
			r.fade.cursorSamples++
			if r.fade.cursorSamples >= r.fade.totalSamples {
				r.fade.mode = fadeNone
				r.paused = true
				shared.paused.Store(true)
				return Frame{}, false
			}
			m = 1 - float32(r.fade.cursorSamples)/float32(r.fade.totalSamples)
		}
		return f.Scale(r.settings.Amplifier * m), true
	}

	// Past the end of the clip.
	if crossfade >= 0 {
		posPrime := position - L + crossfade
		if delta != 0 {
			r.index = int64(math.Round(posPrime / delta))
		}
		if f2, ok := r.clip.Sample(posPrime); ok {
			return f2.Scale(r.settings.Amplifier), true
		}
		return Frame{}, true
	}

	r.paused = true
	shared.paused.Store(true)
	return Frame{}, false
}
