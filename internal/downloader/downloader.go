package downloader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"tubegrab/internal/model"
	"tubegrab/internal/progress"
	"tubegrab/internal/util"
)

// StreamSource opens the byte stream of one format of a URL.
type StreamSource interface {
	Stream(ctx context.Context, rawURL string, d model.StreamDescriptor) (io.ReadCloser, error)
}

// Fetcher writes streams to files while reporting progress.
type Fetcher struct {
	src      StreamSource
	reporter progress.Reporter
	log      *logrus.Entry
}

// New returns a Fetcher reading from src. A nil reporter discards progress.
func New(src StreamSource, reporter progress.Reporter, log *logrus.Entry) *Fetcher {
	if reporter == nil {
		reporter = progress.Nop{}
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Fetcher{src: src, reporter: reporter, log: log}
}

// Fetch downloads task.Format of task.URL to task.Path under the progress
// step name. It returns once the stream hit EOF and the file was closed.
// On failure the partial file is left in place.
func (f *Fetcher) Fetch(ctx context.Context, step string, task model.DownloadTask) (model.OutputFile, error) {
	if task.Path == "" {
		return model.OutputFile{}, errors.New("destination path is required")
	}
	log := f.log.WithFields(logrus.Fields{
		"step":   step,
		"format": task.Format.ID,
		"path":   task.Path,
	})

	if err := util.EnsureDir(filepath.Dir(task.Path)); err != nil {
		return model.OutputFile{}, f.fail(step, fmt.Errorf("ensure output dir: %w", err))
	}
	file, err := os.Create(task.Path)
	if err != nil {
		return model.OutputFile{}, f.fail(step, fmt.Errorf("opening output file: %w", err))
	}

	stream, err := f.src.Stream(ctx, task.URL, task.Format)
	if err != nil {
		file.Close()
		return model.OutputFile{}, f.fail(step, err)
	}
	defer stream.Close()

	var w io.Writer = file
	if task.Format.SizeKnown() {
		w = io.MultiWriter(file, progress.NewCounter(f.reporter, step, task.Format.ContentLength))
	} else {
		f.reporter.Log(progress.Log{Step: step, Line: "size unknown, progress is not shown"})
	}

	log.Debug("download started")
	written, copyErr := io.Copy(w, &ctxReader{ctx: ctx, r: stream})
	closeErr := file.Close()
	if copyErr != nil {
		return model.OutputFile{}, f.fail(step, fmt.Errorf("download failed: %w", copyErr))
	}
	if closeErr != nil {
		return model.OutputFile{}, f.fail(step, fmt.Errorf("closing output file: %w", closeErr))
	}

	log.WithField("bytes", written).Debug("download finished")
	f.reporter.Result(progress.Result{Step: step, OutputPath: task.Path, Bytes: written})
	return model.OutputFile{Path: task.Path, Bytes: written}, nil
}

func (f *Fetcher) fail(step string, err error) error {
	f.reporter.Result(progress.Result{Step: step, Err: err})
	return err
}

// ctxReader stops a copy once ctx is done.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}
