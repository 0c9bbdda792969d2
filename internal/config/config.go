// Package config provides centralized configuration management.
// This is the SINGLE SOURCE OF TRUTH for mixer, voice, backend, and
// control API settings.
//
// IMPORTANT: When changing values, only modify this file.
// All other parts of the codebase should reference these values.
package config

import (
	"os"
	"strconv"
	"time"
)

// =============================================================================
// MIXER CONFIGURATION
// =============================================================================

// MixerConfig holds the top-level mixer settings.
type MixerConfig struct {
	SampleRate      int // Initial sample rate in Hz, before a backend opens
	LatencyCapacity int // Bounded latency-sample telemetry queue size
}

// DefaultMixer returns the default mixer configuration.
func DefaultMixer() MixerConfig {
	return MixerConfig{
		SampleRate:      48000,
		LatencyCapacity: 64,
	}
}

// MixerFromEnv returns mixer configuration with environment variable
// overrides.
func MixerFromEnv() MixerConfig {
	cfg := DefaultMixer()

	if sr := getEnvInt("SONANCE_SAMPLE_RATE", 0); sr > 0 {
		cfg.SampleRate = sr
	}
	if lc := getEnvInt("SONANCE_LATENCY_CAPACITY", 0); lc > 0 {
		cfg.LatencyCapacity = lc
	}

	return cfg
}

// =============================================================================
// VOICE CONFIGURATION
// =============================================================================

// VoiceConfig holds per-voice defaults shared by music and sfx voices.
type VoiceConfig struct {
	CommandBufferSize int // Music control-command SPSC queue capacity
	SfxQueueCapacity  int // Sfx play-request SPSC queue capacity
	LoopMixTime       float64
	Amplifier         float32
	PlaybackRate      float64
}

// DefaultVoice returns the default voice configuration.
func DefaultVoice() VoiceConfig {
	return VoiceConfig{
		CommandBufferSize: 16,
		SfxQueueCapacity:  4096,
		LoopMixTime:       0,
		Amplifier:         1.0,
		PlaybackRate:      1.0,
	}
}

// VoiceFromEnv returns voice configuration with environment variable
// overrides.
func VoiceFromEnv() VoiceConfig {
	cfg := DefaultVoice()

	if cb := getEnvInt("SONANCE_COMMAND_BUFFER_SIZE", 0); cb > 0 {
		cfg.CommandBufferSize = cb
	}
	if sq := getEnvInt("SONANCE_SFX_QUEUE_CAPACITY", 0); sq > 0 {
		cfg.SfxQueueCapacity = sq
	}
	if lm := getEnvFloat("SONANCE_LOOP_MIX_TIME", -1); lm >= 0 {
		cfg.LoopMixTime = lm
	}
	if amp := getEnvFloat("SONANCE_AMPLIFIER", -1); amp >= 0 {
		cfg.Amplifier = float32(amp)
	}

	return cfg
}

// =============================================================================
// BACKEND CONFIGURATION
// =============================================================================

// BackendConfig holds platform audio device settings.
type BackendConfig struct {
	BufferSize        uint32        // 0 means "let the backend choose"
	PerformanceMode   string        // opaque passthrough, never parsed
	Usage             string        // opaque passthrough, never parsed
	ReconnectInterval time.Duration // Supervisor rate-limiter period
	PollInterval      time.Duration // Supervisor ConsumeBroken poll period
	UseNullBackend    bool          // force the always-silent backend
}

// DefaultBackend returns the default backend configuration.
func DefaultBackend() BackendConfig {
	return BackendConfig{
		BufferSize:        0,
		PerformanceMode:   "",
		Usage:             "",
		ReconnectInterval: 2 * time.Second,
		PollInterval:      250 * time.Millisecond,
		UseNullBackend:    false,
	}
}

// BackendFromEnv returns backend configuration with environment
// variable overrides.
func BackendFromEnv() BackendConfig {
	cfg := DefaultBackend()

	if bs := getEnvInt("SONANCE_BUFFER_SIZE", 0); bs > 0 {
		cfg.BufferSize = uint32(bs)
	}
	if pm := os.Getenv("SONANCE_PERFORMANCE_MODE"); pm != "" {
		cfg.PerformanceMode = pm
	}
	if u := os.Getenv("SONANCE_USAGE"); u != "" {
		cfg.Usage = u
	}
	if ri := getEnvInt("SONANCE_RECONNECT_SECONDS", 0); ri > 0 {
		cfg.ReconnectInterval = time.Duration(ri) * time.Second
	}
	if os.Getenv("SONANCE_NULL_BACKEND") == "true" {
		cfg.UseNullBackend = true
	}

	return cfg
}

// =============================================================================
// CONTROL API CONFIGURATION
// =============================================================================

// ControlAPIConfig holds the diagnostic HTTP surface's settings.
type ControlAPIConfig struct {
	ListenAddr  string
	CORSOrigins []string
	Enabled     bool
}

// DefaultControlAPI returns the default control API configuration.
func DefaultControlAPI() ControlAPIConfig {
	return ControlAPIConfig{
		ListenAddr:  ":8090",
		CORSOrigins: []string{"*"},
		Enabled:     true,
	}
}

// ControlAPIFromEnv returns control API configuration with environment
// variable overrides.
func ControlAPIFromEnv() ControlAPIConfig {
	cfg := DefaultControlAPI()

	if addr := os.Getenv("SONANCE_CONTROL_ADDR"); addr != "" {
		cfg.ListenAddr = addr
	}
	if origins := os.Getenv("SONANCE_CORS_ORIGINS"); origins != "" {
		cfg.CORSOrigins = splitComma(origins)
	}
	if os.Getenv("SONANCE_CONTROL_API_DISABLED") == "true" {
		cfg.Enabled = false
	}

	return cfg
}

// =============================================================================
// COMPLETE APP CONFIGURATION
// =============================================================================

// AppConfig holds the complete application configuration.
type AppConfig struct {
	Mixer      MixerConfig
	Voice      VoiceConfig
	Backend    BackendConfig
	ControlAPI ControlAPIConfig
}

// Load returns the complete configuration with environment overrides.
func Load() AppConfig {
	return AppConfig{
		Mixer:      MixerFromEnv(),
		Voice:      VoiceFromEnv(),
		Backend:    BackendFromEnv(),
		ControlAPI: ControlAPIFromEnv(),
	}
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func splitComma(s string) []string {
	var out []string
	start := 0
	for i := 0; i <= len(s); i++ {
		if i == len(s) || s[i] == ',' {
			if i > start {
				out = append(out, s[start:i])
			}
			start = i + 1
		}
	}
	return out
}
