package merger

import (
	"strconv"
	"strings"
)

// ProgressState tracks ffmpeg -progress key=value output across lines.
type ProgressState struct {
	DurationSec float64
	OutTimeUs   int64
}

// UpdateFromLine folds one progress line into the state. When the line is a
// "progress=" marker it returns the percent done (-1 if the duration is
// unknown) and ok=true.
func (ps *ProgressState) UpdateFromLine(line string) (percent float64, ok bool) {
	kv := strings.SplitN(line, "=", 2)
	if len(kv) != 2 {
		return 0, false
	}
	key := strings.TrimSpace(kv[0])
	val := strings.TrimSpace(kv[1])

	switch key {
	case "out_time_ms", "out_time_us":
		// both keys carry microseconds
		if v, err := strconv.ParseInt(val, 10, 64); err == nil {
			ps.OutTimeUs = v
		}
	case "progress":
		if val == "end" {
			return 100, true
		}
		if ps.DurationSec <= 0 {
			return -1, true
		}
		p := float64(ps.OutTimeUs) / (ps.DurationSec * 1_000_000) * 100
		if p < 0 {
			p = 0
		}
		if p > 100 {
			p = 100
		}
		return p, true
	}
	return 0, false
}
