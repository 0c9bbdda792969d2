package mixaudio

import "testing"

func clickClip() *Clip {
	return NewClipFromFrames([]Frame{
		{Left: 1, Right: 1},
		{Left: -1, Right: -1},
	}, 1)
}

func TestSfxOneShotPlaysAndFinishes(t *testing.T) {
	handle, renderer := NewSfx(clickClip(), 4)
	if err := handle.Play(PlaySfxParams{Amplifier: 1}); err != nil {
		t.Fatalf("Play() error: %v", err)
	}

	buf := make([]float32, 4)
	renderer.RenderMono(1, buf)

	want := []float32{1, -1, 0, 0}
	for i, s := range buf {
		if s != want[i] {
			t.Errorf("buf[%d] = %v, want %v", i, s, want[i])
		}
	}
	handle.Close()
	if renderer.Alive() {
		t.Error("renderer should be dead once the one-shot finishes and no handle keeps it alive")
	}
}

func TestSfxHandleKeepsRendererAliveWithNoPlaysInFlight(t *testing.T) {
	handle, renderer := NewSfx(clickClip(), 4)
	if !renderer.Alive() {
		t.Fatal("renderer should stay alive while its handle exists, even with nothing queued")
	}
	handle.Close()
}

func TestSfxAmplifierScalesOutput(t *testing.T) {
	handle, renderer := NewSfx(clickClip(), 4)
	handle.Play(PlaySfxParams{Amplifier: 0.5})

	buf := make([]float32, 1)
	renderer.RenderMono(1, buf)

	if buf[0] != 0.5 {
		t.Errorf("buf[0] = %v, want 0.5", buf[0])
	}
}

func TestSfxOverlappingPlaysSum(t *testing.T) {
	handle, renderer := NewSfx(clickClip(), 4)
	handle.Play(PlaySfxParams{Amplifier: 1})
	handle.Play(PlaySfxParams{Amplifier: 1})

	buf := make([]float32, 1)
	renderer.RenderMono(1, buf)

	if buf[0] != 2 {
		t.Errorf("buf[0] = %v, want 2 (two overlapping plays)", buf[0])
	}
}

func TestSfxPlayQueueBufferFull(t *testing.T) {
	handle, _ := NewSfx(clickClip(), 2)
	var err error
	for i := 0; i < 5; i++ {
		if err = handle.Play(PlaySfxParams{Amplifier: 1}); err != nil {
			break
		}
	}
	if err != ErrBufferFull {
		t.Fatalf("expected ErrBufferFull once the queue saturates, got %v", err)
	}
}
