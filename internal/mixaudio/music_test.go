package mixaudio

import "testing"

func stepClip(n int, sampleRate int) *Clip {
	frames := make([]Frame, n)
	for i := range frames {
		v := float32(1)
		if i%2 == 1 {
			v = -1
		}
		frames[i] = Frame{Left: v, Right: v}
	}
	return NewClipFromFrames(frames, sampleRate)
}

func TestMusicStartsPausedUntilPlay(t *testing.T) {
	clip := stepClip(4, 1)
	handle, renderer := NewMusic(clip, MusicSettings{Amplifier: 1, PlaybackRate: 1})

	buf := make([]float32, 4)
	renderer.RenderMono(1, buf)
	for i, s := range buf {
		if s != 0 {
			t.Errorf("buf[%d] = %v before Play(), want 0 (silence)", i, s)
		}
	}
	handle.Close()
}

func TestMusicPlayAdvancesPosition(t *testing.T) {
	clip := stepClip(8, 1)
	handle, renderer := NewMusic(clip, MusicSettings{Amplifier: 1, PlaybackRate: 1})
	handle.Play()

	buf := make([]float32, 4)
	renderer.RenderMono(1, buf)

	want := []float32{1, -1, 1, -1}
	for i, s := range buf {
		if s != want[i] {
			t.Errorf("buf[%d] = %v, want %v", i, s, want[i])
		}
	}
	if pos := handle.Position(); pos != 4 {
		t.Errorf("Position() = %v, want 4", pos)
	}
}

func TestMusicPauseStopsAdvancing(t *testing.T) {
	clip := stepClip(8, 1)
	handle, renderer := NewMusic(clip, MusicSettings{Amplifier: 1, PlaybackRate: 1})
	handle.Play()

	buf := make([]float32, 2)
	renderer.RenderMono(1, buf)

	handle.Pause()
	renderer.RenderMono(1, buf)
	if !handle.Paused() {
		t.Error("Paused() should be true after Pause()")
	}
	if pos := handle.Position(); pos != 2 {
		t.Errorf("Position() after pause = %v, want unchanged at 2", pos)
	}
}

func TestMusicSeekTo(t *testing.T) {
	clip := stepClip(8, 1)
	handle, renderer := NewMusic(clip, MusicSettings{Amplifier: 1, PlaybackRate: 1})
	handle.Play()
	handle.SeekTo(4)

	buf := make([]float32, 2)
	renderer.RenderMono(1, buf)

	want := []float32{1, -1}
	for i, s := range buf {
		if s != want[i] {
			t.Errorf("buf[%d] = %v, want %v after seeking to 4", i, s, want[i])
		}
	}
}

func TestMusicClosedHandleKillsRenderer(t *testing.T) {
	clip := stepClip(4, 1)
	handle, renderer := NewMusic(clip, MusicSettings{Amplifier: 1, PlaybackRate: 1})
	handle.Play()

	if !renderer.Alive() {
		t.Fatal("renderer should be alive before Close")
	}
	handle.Close()
	if renderer.Alive() {
		t.Error("renderer should report dead immediately after Close")
	}
}

func TestMusicNonLoopingPausesAtEnd(t *testing.T) {
	clip := stepClip(2, 1)
	handle, renderer := NewMusic(clip, MusicSettings{Amplifier: 1, PlaybackRate: 1, LoopMixTime: -1})
	handle.Play()

	buf := make([]float32, 4)
	renderer.RenderMono(1, buf)

	if !handle.Paused() {
		t.Error("a non-looping voice should pause itself once it runs past the end of the clip")
	}
}

func TestMusicPositionNonDecreasingAcrossCallbacks(t *testing.T) {
	clip := stepClip(64, 4)
	handle, renderer := NewMusic(clip, MusicSettings{Amplifier: 1, PlaybackRate: 1, LoopMixTime: -1})
	handle.Play()

	buf := make([]float32, 4)
	last := handle.Position()
	for i := 0; i < 8; i++ {
		renderer.RenderMono(4, buf)
		pos := handle.Position()
		if pos < last {
			t.Fatalf("position decreased across callback %d: %v -> %v", i, last, pos)
		}
		last = pos
	}
}

func TestMusicSampleRateChangePreservesPosition(t *testing.T) {
	clip := stepClip(64, 4)
	handle, renderer := NewMusic(clip, MusicSettings{Amplifier: 1, PlaybackRate: 1, LoopMixTime: -1})
	handle.Play()

	buf := make([]float32, 4)
	renderer.RenderMono(4, buf) // index -> 4, position = 4 * (1/4) = 1.0s
	before := handle.Position()

	renderer.RenderMono(8, nil) // rate doubles with no samples rendered; prepare() rescales index
	after := handle.Position()

	if diff := after - before; diff < -0.01 || diff > 0.01 {
		t.Errorf("position not preserved across sample-rate change: before=%v after=%v", before, after)
	}
}

func TestMusicAmplifierScalesOutput(t *testing.T) {
	clip := stepClip(4, 1)
	handle, renderer := NewMusic(clip, MusicSettings{Amplifier: 1, PlaybackRate: 1})
	handle.Play()
	handle.SetAmplifier(0.5)

	buf := make([]float32, 1)
	renderer.RenderMono(1, buf)
	if buf[0] != 0.5 {
		t.Errorf("buf[0] = %v, want 0.5 after SetAmplifier(0.5)", buf[0])
	}
}
