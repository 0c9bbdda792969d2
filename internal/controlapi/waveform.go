package controlapi

import (
	"bytes"
	"image/color"
	"image/png"
	"net/http"

	"github.com/fogleman/gg"

	"sonance/internal/mixaudio"
)

const (
	waveformWidth  = 960
	waveformHeight = 200
)

// renderWaveformPNG draws a min/max envelope of clip's left channel.
// It buckets frames into one column per pixel so the image size is
// independent of clip length.
func renderWaveformPNG(clip *mixaudio.Clip) []byte {
	dc := gg.NewContext(waveformWidth, waveformHeight)
	dc.SetColor(color.RGBA{R: 0x10, G: 0x12, B: 0x18, A: 0xff})
	dc.Clear()

	frames := clip.Frames()
	mid := float64(waveformHeight) / 2

	dc.SetColor(color.RGBA{R: 0x30, G: 0x34, B: 0x40, A: 0xff})
	dc.SetLineWidth(1)
	dc.DrawLine(0, mid, float64(waveformWidth), mid)
	dc.Stroke()

	if len(frames) == 0 {
		return encodePNG(dc)
	}

	bucket := len(frames) / waveformWidth
	if bucket < 1 {
		bucket = 1
	}

	dc.SetColor(color.RGBA{R: 0x4e, G: 0xcd, B: 0xc4, A: 0xff})
	for x := 0; x < waveformWidth; x++ {
		start := x * bucket
		if start >= len(frames) {
			break
		}
		end := start + bucket
		if end > len(frames) {
			end = len(frames)
		}

		min32, max32 := frames[start].Left, frames[start].Left
		for _, f := range frames[start:end] {
			if f.Left < min32 {
				min32 = f.Left
			}
			if f.Left > max32 {
				max32 = f.Left
			}
		}

		yTop := mid - float64(max32)*mid
		yBot := mid - float64(min32)*mid
		dc.SetLineWidth(1)
		dc.DrawLine(float64(x), yTop, float64(x), yBot)
		dc.Stroke()
	}

	return encodePNG(dc)
}

func encodePNG(dc *gg.Context) []byte {
	var buf bytes.Buffer
	png.Encode(&buf, dc.Image())
	return buf.Bytes()
}

// waveformHandler builds a handler serving the waveform PNG for a
// single fixed clip, since the mixer itself has no clip registry. The
// router looks the clip up by id and builds this handler on every
// request, so the PNG is re-rendered each time.
func waveformHandler(clip *mixaudio.Clip) http.HandlerFunc {
	png := renderWaveformPNG(clip)
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write(png)
	}
}
