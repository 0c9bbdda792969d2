package mixaudio

import "testing"

// S2 — stereo pass-through.
func TestScenarioStereoPassThrough(t *testing.T) {
	clip := NewClipFromFrames([]Frame{
		{Left: 1, Right: -1},
		{Left: 0.5, Right: -0.5},
	}, 2)
	handle, renderer := NewSfx(clip, 4)
	handle.Play(PlaySfxParams{Amplifier: 1})

	buf := make([]float32, 4)
	renderer.RenderStereo(2, buf)

	want := []float32{1, -1, 0.5, -0.5}
	for i, s := range buf {
		if s != want[i] {
			t.Errorf("buf[%d] = %v, want %v", i, s, want[i])
		}
	}
}

// S3 — amplifier command.
func TestScenarioAmplifierCommand(t *testing.T) {
	clip := NewClipFromFrames([]Frame{
		{Left: 1, Right: 1}, {Left: 1, Right: 1}, {Left: 1, Right: 1}, {Left: 1, Right: 1},
	}, 1)
	handle, renderer := NewMusic(clip, MusicSettings{Amplifier: 1, PlaybackRate: 1, LoopMixTime: -1})
	handle.Play()
	handle.SetAmplifier(0.25)

	buf := make([]float32, 8)
	renderer.RenderStereo(1, buf)

	for i, s := range buf {
		if s != 0.25 {
			t.Errorf("buf[%d] = %v, want 0.25", i, s)
		}
	}
}

// S4 — fade in.
func TestScenarioFadeIn(t *testing.T) {
	frames := make([]Frame, 8)
	for i := range frames {
		frames[i] = Frame{Left: 1, Right: 1}
	}
	clip := NewClipFromFrames(frames, 4)
	handle, renderer := NewMusic(clip, MusicSettings{Amplifier: 1, PlaybackRate: 1, LoopMixTime: -1})
	handle.FadeIn(1.0)

	buf := make([]float32, 4)
	renderer.RenderMono(4, buf)

	want := []float32{0.25, 0.5, 0.75, 1.0}
	for i, s := range buf {
		if s != want[i] {
			t.Errorf("buf[%d] = %v, want %v", i, s, want[i])
		}
	}
}

// S5 — fade out.
func TestScenarioFadeOut(t *testing.T) {
	frames := make([]Frame, 8)
	for i := range frames {
		frames[i] = Frame{Left: 1, Right: 1}
	}
	clip := NewClipFromFrames(frames, 4)
	handle, renderer := NewMusic(clip, MusicSettings{Amplifier: 1, PlaybackRate: 1, LoopMixTime: -1})
	handle.Play()
	handle.FadeOut(1.0)

	buf := make([]float32, 4)
	renderer.RenderMono(4, buf)

	want := []float32{0.75, 0.5, 0.25, 0}
	for i, s := range buf {
		if s != want[i] {
			t.Errorf("buf[%d] = %v, want %v", i, s, want[i])
		}
	}
	if !handle.Paused() {
		t.Error("voice should be paused once the fade-out completes")
	}

	more := make([]float32, 2)
	renderer.RenderMono(4, more)
	if more[0] != 0 || more[1] != 0 {
		t.Errorf("subsequent callbacks after fade-out completes should be silent, got %v", more)
	}
}

// S6 — loop crossfade. Clip of 4 frames at sample rate 1, loop_mix_time
// 2.0: the first two frames play untouched, frames 2 and 3 mix with the
// overlap region ((3,3)+(1,1)=(4,4), (4,4)+(2,2)=(6,6)), and once
// position reaches length_seconds (4) playback wraps into the overlap
// region and replays frames 2 and 3 straight (no further mixing),
// matching the full 12-sample/6-frame scenario spec.md specifies.
func TestScenarioLoopCrossfade(t *testing.T) {
	clip := NewClipFromFrames([]Frame{
		{Left: 1, Right: 1}, {Left: 2, Right: 2}, {Left: 3, Right: 3}, {Left: 4, Right: 4},
	}, 1)
	handle, renderer := NewMusic(clip, MusicSettings{Amplifier: 1, PlaybackRate: 1, LoopMixTime: 2.0})
	handle.Play()

	buf := make([]float32, 12)
	renderer.RenderStereo(1, buf)

	want := []float32{1, 1, 2, 2, 4, 4, 6, 6, 3, 3, 4, 4}
	for i, s := range buf {
		if s != want[i] {
			t.Errorf("buf[%d] = %v, want %v", i, s, want[i])
		}
	}
}

// Property 11: with loop_mix_time == 0, a music voice never returns
// none at end-of-clip — it wraps precisely at length_seconds instead of
// stopping. A crossfade of exactly 0 means the overlap sample and the
// post-wrap sample are both taken at position 0, so the frame at
// position == length_seconds must equal frames[0] untouched.
func TestPropertyZeroLoopMixTimeWrapsPreciselyAtLength(t *testing.T) {
	clip := NewClipFromFrames([]Frame{
		{Left: 1, Right: 1}, {Left: 2, Right: 2}, {Left: 3, Right: 3}, {Left: 4, Right: 4},
	}, 1)
	handle, renderer := NewMusic(clip, MusicSettings{Amplifier: 1, PlaybackRate: 1, LoopMixTime: 0})
	handle.Play()

	// Render exactly length_seconds (4) samples, then one more: the
	// 5th sample lands at position == length_seconds and must still be
	// live output (frames[0]), never silence from a "none" result.
	buf := make([]float32, 5*2)
	renderer.RenderStereo(1, buf)

	if buf[8] == 0 && buf[9] == 0 {
		t.Fatalf("frame at position == length_seconds produced silence, want a wrapped sample (none should never occur with loop_mix_time 0): buf=%v", buf)
	}
	want := []float32{1, 1}
	if buf[8] != want[0] || buf[9] != want[1] {
		t.Errorf("frame at position == length_seconds = (%v, %v), want (%v, %v)", buf[8], buf[9], want[0], want[1])
	}
}

// General form of Property 12: for loop_mix_time > 0 and any position
// p in [length_seconds - loop_mix_time, length_seconds), the output
// equals sample(p) + sample(p + loop_mix_time - length_seconds) — the
// crossfade-overlap addition holds at every position in the overlap
// window, not just the two S6 happens to exercise.
func TestPropertyLoopCrossfadeOverlapGeneralForm(t *testing.T) {
	frames := make([]Frame, 10)
	for i := range frames {
		frames[i] = Frame{Left: float32(i + 1), Right: float32(i + 1)}
	}
	clip := NewClipFromFrames(frames, 1)
	const loopMixTime = 3.0
	const length = 10.0

	for _, p := range []float64{7, 8, 9} {
		handle, renderer := NewMusic(clip, MusicSettings{Amplifier: 1, PlaybackRate: 1, LoopMixTime: loopMixTime})
		handle.Play()
		handle.SeekTo(float32(p))

		buf := make([]float32, 2)
		renderer.RenderStereo(1, buf)

		base, ok := clip.Sample(p)
		if !ok {
			t.Fatalf("clip.Sample(%v) unexpectedly not ok", p)
		}
		overlap, ok := clip.Sample(p + loopMixTime - length)
		if !ok {
			t.Fatalf("clip.Sample(%v) unexpectedly not ok", p+loopMixTime-length)
		}
		want := base.Add(overlap)

		if buf[0] != want.Left || buf[1] != want.Right {
			t.Errorf("position %v: got (%v, %v), want (%v, %v)", p, buf[0], buf[1], want.Left, want.Right)
		}
	}
}
