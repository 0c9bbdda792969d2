package mixaudio

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/hajimehoshi/go-mp3"
)

// decodeMP3Clip decodes an MP3 byte buffer to a Clip. go-mp3 always
// produces 16-bit little-endian interleaved stereo PCM, so the
// mono/stereo/multichannel folding rule always takes the stereo case;
// it is still routed through appendPacketFrames for a single
// conversion path shared with the vorbis decoder.
//
// Some inputs make the underlying bitstream parser report a spurious
// "invalid main_data offset" on an individual packet pull. That one
// message is tolerated and the packet is skipped; any other
// decode error aborts the whole decode.
func decodeMP3Clip(data []byte) (*Clip, error) {
	dec, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, &FormatError{Reason: err.Error()}
	}

	sampleRate := dec.SampleRate()
	if sampleRate <= 0 {
		return nil, &FormatError{Reason: "no sample rate reported by default track"}
	}

	const channels = 2
	var frames []Frame
	raw := make([]byte, 4096*channels*2)
	samples := make([]float32, 4096*channels)

	for {
		n, err := dec.Read(raw)
		if n > 0 {
			usable := n - n%(channels*2)
			m := decodePCM16LE(raw[:usable], samples)
			frames = appendPacketFrames(frames, samples[:m], channels)
		}
		if err != nil {
			if err == io.EOF {
				break
			}
			if isToleratedDecodeQuirk(err) {
				continue
			}
			return nil, &DecodeError{Reason: "mp3 packet decode failed", Err: err}
		}
		if n == 0 {
			break
		}
	}

	return &Clip{frames: frames, sampleRate: sampleRate}, nil
}

// decodePCM16LE converts raw 16-bit little-endian PCM bytes into
// [-1, 1]-ranged float32 samples, writing into dst and returning the
// number of samples written.
func decodePCM16LE(raw []byte, dst []float32) int {
	n := len(raw) / 2
	for i := 0; i < n; i++ {
		v := int16(binary.LittleEndian.Uint16(raw[i*2:]))
		dst[i] = float32(v) / 32768.0
	}
	return n
}
