package merger

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	ffmpeg_go "github.com/u2takey/ffmpeg-go"

	"tubegrab/internal/model"
)

// Muxer combines a video-only and an audio-only file. onPercent receives
// 0..100 as the mux advances; it may be called with -1 when the duration
// is unknown.
type Muxer interface {
	Mux(ctx context.Context, task model.MergeTask, onPercent func(float64)) error
}

// FFmpegMuxer runs ffmpeg through ffmpeg-go. ffmpeg and ffprobe are taken
// from PATH.
type FFmpegMuxer struct {
	AudioCodec string
	AudioKbps  int
	Verbose    bool
	Log        *logrus.Entry
}

func (m *FFmpegMuxer) Mux(ctx context.Context, task model.MergeTask, onPercent func(float64)) error {
	log := m.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}

	durationSec, err := probeDuration(task.VideoPath)
	if err != nil {
		// progress degrades to indeterminate; the merge itself can still run
		log.WithError(err).Debug("probe failed")
	}

	pr, pw := io.Pipe()
	done := make(chan struct{})
	go func() {
		defer close(done)
		ps := &ProgressState{DurationSec: durationSec}
		sc := bufio.NewScanner(pr)
		for sc.Scan() {
			if pct, ok := ps.UpdateFromLine(sc.Text()); ok && onPercent != nil {
				onPercent(pct)
			}
		}
		// keep ffmpeg from blocking on a full pipe if the scanner gave up
		_, _ = io.Copy(io.Discard, pr)
	}()

	var stderr bytes.Buffer
	var errOut io.Writer = &stderr
	if m.Verbose {
		errOut = io.MultiWriter(&stderr, os.Stderr)
	}

	stream := buildMerge(ctx, task, m.AudioCodec, m.AudioKbps).
		WithOutput(pw).
		WithErrorOutput(errOut)
	log.WithField("args", strings.Join(stream.GetArgs(), " ")).Debug("running ffmpeg")

	runErr := stream.Run()
	pw.Close()
	<-done

	if runErr != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if line := lastLine(stderr.Bytes()); line != "" {
			return fmt.Errorf("ffmpeg: %w: %s", runErr, line)
		}
		return fmt.Errorf("ffmpeg: %w", runErr)
	}
	return nil
}

type probeResult struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// probeDuration returns the container duration of path in seconds.
func probeDuration(path string) (float64, error) {
	out, err := ffmpeg_go.Probe(path)
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}
	return parseProbeDuration([]byte(out))
}

func parseProbeDuration(data []byte) (float64, error) {
	var pr probeResult
	if err := json.Unmarshal(data, &pr); err != nil {
		return 0, fmt.Errorf("parse ffprobe output: %w", err)
	}
	if pr.Format.Duration == "" {
		return 0, fmt.Errorf("ffprobe reported no duration")
	}
	d, err := strconv.ParseFloat(pr.Format.Duration, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", pr.Format.Duration, err)
	}
	return d, nil
}

// lastLine returns the last non-blank line of b, trimmed.
func lastLine(b []byte) string {
	lines := strings.Split(strings.TrimSpace(string(b)), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if s := strings.TrimSpace(lines[i]); s != "" {
			return s
		}
	}
	return ""
}
