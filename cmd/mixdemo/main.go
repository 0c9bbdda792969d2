// =============================================================================
// SONANCE - MIX DEMO
// =============================================================================
// Standalone harness that decodes a music clip and an optional sfx
// clip, wires them into a Mixer, opens a backend (portaudio by
// default, null when SONANCE_NULL_BACKEND=true; there is no automatic
// fallback to null when no device is available), and serves the
// diagnostic control API alongside it.
//
// USAGE:
//   go run ./cmd/mixdemo path/to/track.ogg [path/to/click.ogg]
// =============================================================================
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"sonance/internal/backend"
	"sonance/internal/config"
	"sonance/internal/controlapi"
	"sonance/internal/mixaudio"
)

func recordIfBufferFull(err error, queue string) {
	if err == mixaudio.ErrBufferFull {
		controlapi.RecordBufferFull(queue)
	}
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	log.Println("================================")
	log.Println("  SONANCE - MIX DEMO")
	log.Println("================================")

	if len(os.Args) < 2 {
		log.Fatal("usage: mixdemo <music.ogg|mp3> [sfx.ogg|mp3]")
	}

	cfg := config.Load()

	musicClip := mustDecodeClip(os.Args[1])
	log.Printf("🎵 loaded music clip: %.2fs @ %d Hz", musicClip.LengthSeconds(), musicClip.SampleRate())

	mixer := mixaudio.NewMixer(cfg.Mixer.SampleRate, cfg.Mixer.LatencyCapacity)

	musicHandle, musicRenderer := mixaudio.NewMusic(musicClip, mixaudio.MusicSettings{
		LoopMixTime:       cfg.Voice.LoopMixTime,
		Amplifier:         cfg.Voice.Amplifier,
		PlaybackRate:      cfg.Voice.PlaybackRate,
		CommandBufferSize: cfg.Voice.CommandBufferSize,
	})
	if err := mixer.AddVoice(musicRenderer); err != nil {
		recordIfBufferFull(err, "voice_register")
		log.Fatalf("❌ failed to register music voice: %v", err)
	}
	if err := musicHandle.Play(); err != nil {
		recordIfBufferFull(err, "music_command")
		log.Printf("⚠️ failed to start music: %v", err)
	}

	clips := map[string]*mixaudio.Clip{"music": musicClip}

	var sfxHandle *mixaudio.SfxHandle
	if len(os.Args) > 2 {
		sfxClip := mustDecodeClip(os.Args[2])
		log.Printf("🔊 loaded sfx clip: %.2fs @ %d Hz", sfxClip.LengthSeconds(), sfxClip.SampleRate())
		var sfxRenderer *mixaudio.SfxRenderer
		sfxHandle, sfxRenderer = mixaudio.NewSfx(sfxClip, cfg.Voice.SfxQueueCapacity)
		if err := mixer.AddVoice(sfxRenderer); err != nil {
			recordIfBufferFull(err, "voice_register")
			log.Fatalf("❌ failed to register sfx voice: %v", err)
		}
		clips["sfx"] = sfxClip
	}

	var device backend.Device
	if cfg.Backend.UseNullBackend {
		device = backend.NewNullBackend(cfg.Mixer.SampleRate)
	} else {
		device = backend.NewPortAudioBackend()
	}

	settings := backend.Settings{
		PerformanceMode: cfg.Backend.PerformanceMode,
		Usage:           cfg.Backend.Usage,
	}
	if cfg.Backend.BufferSize > 0 {
		bs := cfg.Backend.BufferSize
		settings.BufferSize = &bs
	}

	supervisor := backend.NewSupervisor(device, mixer, settings, cfg.Backend.ReconnectInterval)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := supervisor.Run(ctx, cfg.Backend.PollInterval); err != nil && err != context.Canceled {
			log.Printf("❌ backend supervisor stopped: %v", err)
		}
	}()

	if cfg.ControlAPI.Enabled {
		server := controlapi.NewServer(mixer, clips, cfg.ControlAPI.CORSOrigins)
		go func() {
			if err := server.Start(cfg.ControlAPI.ListenAddr); err != nil {
				log.Printf("⚠️ control API stopped: %v", err)
			}
		}()
		log.Printf("🩺 control API listening on %s", cfg.ControlAPI.ListenAddr)
	}

	if sfxHandle != nil {
		go func() {
			ticker := time.NewTicker(2 * time.Second)
			defer ticker.Stop()
			for range ticker.C {
				recordIfBufferFull(sfxHandle.Play(mixaudio.PlaySfxParams{Amplifier: 1}), "sfx_play")
			}
		}()
	}

	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			log.Printf("📊 voices=%d position=%.2fs paused=%v",
				mixer.VoiceCount(), musicHandle.Position(), musicHandle.Paused())
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	log.Println("")
	log.Println("Mix demo ready! Press Ctrl+C to stop.")
	log.Println("")
	<-quit

	log.Println("Shutting down mix demo...")
	cancel()
	musicHandle.Close()
	if sfxHandle != nil {
		sfxHandle.Close()
	}
	log.Println("Mix demo stopped!")
}

func mustDecodeClip(path string) *mixaudio.Clip {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("❌ failed to read %s: %v", path, err)
	}
	clip, err := mixaudio.DecodeClip(data)
	if err != nil {
		log.Fatalf("❌ failed to decode %s: %v", path, err)
	}
	return clip
}
