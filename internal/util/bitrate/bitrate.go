package bitrate

// FromBps converts bits per second to whole kbps, rounding to nearest.
func FromBps(bps int) int {
	if bps <= 0 {
		return 0
	}
	return (bps + 500) / 1000
}

// Clamp returns v constrained to [min, max].
func Clamp(v, min, max int64) int64 {
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}

// SafeAudioKbps keeps an audio re-encode bitrate within 64..320 kbps;
// zero or negative selects 128.
func SafeAudioKbps(v int) int {
	if v <= 0 {
		return 128
	}
	if v < 64 {
		return 64
	}
	if v > 320 {
		return 320
	}
	return v
}
