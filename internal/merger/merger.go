package merger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"tubegrab/internal/model"
	"tubegrab/internal/progress"
	"tubegrab/internal/util"
	"tubegrab/internal/util/bitrate"
)

// ErrMissingInput is returned when either merge input is absent or empty.
var ErrMissingInput = errors.New("merge input missing or empty")

// StepMerge is the progress step name used for merges.
const StepMerge = "merge"

// Merger runs a Muxer and owns the lifecycle of its input and output files.
type Merger struct {
	muxer    Muxer
	reporter progress.Reporter
	log      *logrus.Entry
}

// New returns a Merger. A nil reporter discards progress.
func New(muxer Muxer, reporter progress.Reporter, log *logrus.Entry) *Merger {
	if reporter == nil {
		reporter = progress.Nop{}
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Merger{muxer: muxer, reporter: reporter, log: log}
}

// Merge muxes task.VideoPath and task.AudioPath into task.OutputPath.
//
// Both inputs must exist and be non-empty before the muxer runs. Progress is
// reported in byte-equivalents of the combined input size. On success the
// video input and then the audio input are removed; on failure both are
// kept and any partial output is removed.
func (m *Merger) Merge(ctx context.Context, task model.MergeTask) (model.OutputFile, error) {
	videoSize, err := util.NonEmptyFile(task.VideoPath)
	if err != nil {
		return model.OutputFile{}, m.fail(fmt.Errorf("%w: video: %v", ErrMissingInput, err))
	}
	audioSize, err := util.NonEmptyFile(task.AudioPath)
	if err != nil {
		return model.OutputFile{}, m.fail(fmt.Errorf("%w: audio: %v", ErrMissingInput, err))
	}
	if task.OutputPath == "" {
		return model.OutputFile{}, m.fail(errors.New("output path is required"))
	}
	if err := util.EnsureDir(filepath.Dir(task.OutputPath)); err != nil {
		return model.OutputFile{}, m.fail(fmt.Errorf("ensure output dir: %w", err))
	}

	total := videoSize + audioSize
	m.reporter.Update(progress.Update{Step: StepMerge, Stage: progress.StageMerging, Current: 0, Total: total})
	onPercent := func(pct float64) {
		if pct < 0 {
			return
		}
		m.reporter.Update(progress.Update{
			Step:    StepMerge,
			Stage:   progress.StageMerging,
			Current: byteEquivalent(pct, total),
			Total:   total,
		})
	}

	log := m.log.WithField("output", task.OutputPath)
	log.Debug("merge started")
	if err := m.muxer.Mux(ctx, task, onPercent); err != nil {
		if rmErr := util.RemoveIfExists(task.OutputPath); rmErr != nil {
			log.WithError(rmErr).Warn("could not remove partial output")
		}
		return model.OutputFile{}, m.fail(err)
	}

	fi, err := os.Stat(task.OutputPath)
	if err != nil {
		return model.OutputFile{}, m.fail(fmt.Errorf("stat output: %w", err))
	}

	for _, in := range []string{task.VideoPath, task.AudioPath} {
		if err := os.Remove(in); err != nil {
			log.WithError(err).WithField("input", in).Warn("could not remove merge input")
		}
	}

	out := model.OutputFile{Path: task.OutputPath, Bytes: fi.Size()}
	log.WithField("bytes", out.Bytes).Debug("merge finished")
	m.reporter.Result(progress.Result{Step: StepMerge, OutputPath: out.Path, Bytes: out.Bytes})
	return out, nil
}

func (m *Merger) fail(err error) error {
	m.reporter.Result(progress.Result{Step: StepMerge, Err: err})
	return err
}

// byteEquivalent maps a percent onto total bytes, clamped to [0, total].
func byteEquivalent(pct float64, total int64) int64 {
	return bitrate.Clamp(int64(math.Round(pct/100*float64(total))), 0, total)
}
