package backend

import (
	"fmt"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"

	"sonance/internal/mixaudio"
)

// PortAudioBackend drives the mixer from a real output device via
// gordonklaus/portaudio, the library three of the reference repos in
// this corpus use for audio I/O. Its pull callback is invoked on
// portaudio's own realtime thread.
type PortAudioBackend struct {
	stream     *portaudio.Stream
	mixer      *mixaudio.Mixer
	broken     atomic.Bool
	sampleRate int
}

// NewPortAudioBackend constructs an unopened backend.
func NewPortAudioBackend() *PortAudioBackend {
	return &PortAudioBackend{}
}

// Open initializes portaudio, opens the default output device, and
// starts a stream whose callback calls mixer.RenderStereo every pull.
// It reports the actual sample rate the device opened at, which may
// differ from any prior stream's rate (the mixer is told via
// Mixer.SetSampleRate by the caller).
func (b *PortAudioBackend) Open(mixer *mixaudio.Mixer, settings Settings) (int, error) {
	if err := portaudio.Initialize(); err != nil {
		return 0, fmt.Errorf("backend: portaudio init failed: %w", err)
	}

	host, err := portaudio.DefaultHostApi()
	if err != nil {
		portaudio.Terminate()
		return 0, fmt.Errorf("backend: no default host api: %w", err)
	}
	if host.DefaultOutputDevice == nil {
		portaudio.Terminate()
		return 0, fmt.Errorf("backend: no default output device")
	}

	params := portaudio.HighLatencyParameters(nil, host.DefaultOutputDevice)
	params.Output.Channels = 2
	if settings.BufferSize != nil {
		params.FramesPerBuffer = int(*settings.BufferSize)
	}

	b.mixer = mixer
	stream, err := portaudio.OpenStream(params, b.callback)
	if err != nil {
		portaudio.Terminate()
		return 0, fmt.Errorf("backend: failed to open output stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return 0, fmt.Errorf("backend: failed to start output stream: %w", err)
	}

	b.stream = stream
	b.sampleRate = int(params.SampleRate)
	if b.sampleRate <= 0 {
		b.sampleRate = int(host.DefaultOutputDevice.DefaultSampleRate)
	}
	return b.sampleRate, nil
}

// callback is invoked on portaudio's audio thread. It never blocks or
// logs: it calls mixer.RenderStereo and mixer.RecordLatency, and sets
// the broken flag if rendering panics. It is not allocation-free:
// mixer.RenderStereo allocates a fresh telemetry snapshot on every call.
func (b *PortAudioBackend) callback(out []float32, timeInfo portaudio.StreamCallbackTimeInfo) {
	defer func() {
		if recover() != nil {
			b.broken.Store(true)
		}
	}()
	b.mixer.RenderStereo(out)
	delay := timeInfo.OutputBufferDacTime - timeInfo.CurrentTime
	b.mixer.RecordLatency(delay.Seconds())
}

// ConsumeBroken reads and clears the sticky broken flag.
func (b *PortAudioBackend) ConsumeBroken() bool {
	return b.broken.Swap(false)
}

// Close stops and closes the stream and terminates portaudio.
func (b *PortAudioBackend) Close() error {
	if b.stream == nil {
		return nil
	}
	err := b.stream.Close()
	b.stream = nil
	portaudio.Terminate()
	return err
}
