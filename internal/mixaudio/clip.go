package mixaudio

import (
	"bytes"
	"math"
)

// Clip is an immutable, shared decoded PCM asset. Once constructed it is
// never mutated; it is safe to hold from any number of voices and any
// number of threads simultaneously.
type Clip struct {
	frames     []Frame
	sampleRate int
}

// NewClipFromFrames builds a Clip directly from already-decoded
// frames, bypassing the decoder.
func NewClipFromFrames(frames []Frame, sampleRate int) *Clip {
	cp := make([]Frame, len(frames))
	copy(cp, frames)
	return &Clip{frames: cp, sampleRate: sampleRate}
}

// DecodeClip parses a compressed audio byte buffer and produces an
// immutable Clip ready for sharing. It dispatches on container magic:
// OGG ("OggS") goes through jfreymuth/oggvorbis, everything else is
// attempted as MP3 via hajimehoshi/go-mp3. Decoding is allowed to
// allocate freely; it must never run on the audio thread.
func DecodeClip(data []byte) (*Clip, error) {
	if len(data) >= 4 && bytes.Equal(data[:4], []byte("OggS")) {
		return decodeVorbisClip(data)
	}
	return decodeMP3Clip(data)
}

// SampleRate returns the clip's fixed sample rate.
func (c *Clip) SampleRate() int { return c.sampleRate }

// FrameCount returns the number of frames in the clip.
func (c *Clip) FrameCount() int { return len(c.frames) }

// Frames returns the clip's underlying frame slice. Callers must treat
// it as read-only; Clip never mutates it after construction.
func (c *Clip) Frames() []Frame { return c.frames }

// LengthSeconds returns frame_count / sample_rate.
func (c *Clip) LengthSeconds() float64 {
	if c.sampleRate == 0 {
		return 0
	}
	return float64(len(c.frames)) / float64(c.sampleRate)
}

// Sample returns the linearly interpolated frame at positionSeconds, or
// (Frame{}, false) once positionSeconds reaches or passes the clip's
// length. positionSeconds < 0 is undefined input and is not
// guarded against here.
func (c *Clip) Sample(positionSeconds float64) (Frame, bool) {
	n := len(c.frames)
	if n == 0 || positionSeconds >= c.LengthSeconds() {
		return Frame{}, false
	}
	p := positionSeconds * float64(c.sampleRate)
	i := int(math.Floor(p))
	if i >= n {
		return Frame{}, false
	}
	t := float32(p - float64(i))
	j := i + 1
	if j >= n {
		j = n - 1
	}
	return interpFrame(c.frames[i], c.frames[j], t), true
}
