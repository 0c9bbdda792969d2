package mixaudio

import "errors"

// Sentinel errors surfaced across the package boundary.
// Audio-thread code never returns these to a caller that could block on
// them; they only ever cross back to the control thread.
var (
	// ErrDecode covers any unrecoverable decode failure other than the
	// tolerated "invalid main_data offset" packet quirk.
	ErrDecode = errors.New("mixaudio: decode error")

	// ErrFormat covers a missing default track or an absent sample rate.
	ErrFormat = errors.New("mixaudio: format error")

	// ErrBufferFull is returned by any SPSC producer (command channel,
	// sfx play queue, voice-registration queue) when the consumer hasn't
	// drained fast enough. The call that returned it was a no-op.
	ErrBufferFull = errors.New("mixaudio: buffer full")
)

// DecodeError wraps ErrDecode with the offending packet/container detail.
type DecodeError struct {
	Reason string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return "mixaudio: decode error: " + e.Reason + ": " + e.Err.Error()
	}
	return "mixaudio: decode error: " + e.Reason
}

func (e *DecodeError) Unwrap() error { return ErrDecode }

// FormatError wraps ErrFormat with the offending detail.
type FormatError struct {
	Reason string
}

func (e *FormatError) Error() string { return "mixaudio: format error: " + e.Reason }

func (e *FormatError) Unwrap() error { return ErrFormat }

// isToleratedDecodeQuirk reports whether err is the specific per-packet
// decoder quirk that the source decoder library is known to raise
// spuriously. It is skipped rather than aborting the whole decode.
func isToleratedDecodeQuirk(err error) bool {
	return err != nil && err.Error() == "invalid main_data offset"
}
