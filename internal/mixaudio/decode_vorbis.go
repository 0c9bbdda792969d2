package mixaudio

import (
	"bytes"
	"io"

	"github.com/jfreymuth/oggvorbis"
)

// decodeVorbisClip decodes an OGG Vorbis container to a Clip. It pulls
// interleaved float32 packets until EOF, converts mono to stereo by
// duplication, uses channels 0/1 directly for stereo, and takes the
// first two channels of anything wider.
func decodeVorbisClip(data []byte) (*Clip, error) {
	r, err := oggvorbis.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, &FormatError{Reason: err.Error()}
	}

	sampleRate := r.SampleRate()
	if sampleRate <= 0 {
		return nil, &FormatError{Reason: "no sample rate reported by default track"}
	}
	channels := r.Channels()
	if channels <= 0 {
		return nil, &FormatError{Reason: "no channel count reported by default track"}
	}

	var frames []Frame
	buf := make([]float32, 4096*channels)
	for {
		n, err := r.Read(buf)
		if n > 0 {
			frames = appendPacketFrames(frames, buf[:n], channels)
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			if isToleratedDecodeQuirk(err) {
				continue
			}
			return nil, &DecodeError{Reason: "vorbis packet decode failed", Err: err}
		}
		if n == 0 {
			break
		}
	}

	return &Clip{frames: frames, sampleRate: sampleRate}, nil
}

// appendPacketFrames converts one packet's interleaved float32 samples
// (channels-wide) into Frame values, applying the channel-folding
// rule, and appends them to dst.
func appendPacketFrames(dst []Frame, samples []float32, channels int) []Frame {
	switch {
	case channels == 1:
		for i := 0; i < len(samples); i++ {
			s := samples[i]
			dst = append(dst, Frame{Left: s, Right: s})
		}
	case channels >= 2:
		for i := 0; i+channels <= len(samples); i += channels {
			dst = append(dst, Frame{Left: samples[i], Right: samples[i+1]})
		}
	}
	return dst
}
