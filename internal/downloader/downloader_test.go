package downloader

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"tubegrab/internal/model"
	"tubegrab/internal/progress"
)

type recordingReporter struct {
	updates []progress.Update
	logs    []progress.Log
	results []progress.Result
}

func (r *recordingReporter) Update(u progress.Update) { r.updates = append(r.updates, u) }
func (r *recordingReporter) Log(l progress.Log)       { r.logs = append(r.logs, l) }
func (r *recordingReporter) Result(res progress.Result) {
	r.results = append(r.results, res)
}

// chunkReader returns its chunks one Read at a time, then err (io.EOF if nil).
type chunkReader struct {
	chunks [][]byte
	err    error
	closed bool
}

func (c *chunkReader) Read(p []byte) (int, error) {
	if len(c.chunks) == 0 {
		if c.err != nil {
			return 0, c.err
		}
		return 0, io.EOF
	}
	n := copy(p, c.chunks[0])
	c.chunks[0] = c.chunks[0][n:]
	if len(c.chunks[0]) == 0 {
		c.chunks = c.chunks[1:]
	}
	return n, nil
}

func (c *chunkReader) Close() error {
	c.closed = true
	return nil
}

type fakeSource struct {
	stream *chunkReader
	err    error
	gotURL string
	gotID  string
}

func (f *fakeSource) Stream(_ context.Context, rawURL string, d model.StreamDescriptor) (io.ReadCloser, error) {
	f.gotURL, f.gotID = rawURL, d.ID
	if f.err != nil {
		return nil, f.err
	}
	return f.stream, nil
}

func chunks(parts ...string) [][]byte {
	out := make([][]byte, len(parts))
	for i, p := range parts {
		out[i] = []byte(p)
	}
	return out
}

func TestFetchKnownSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "clip-video.mp4")
	src := &fakeSource{stream: &chunkReader{chunks: chunks("0123", "4567", "89")}}
	rep := &recordingReporter{}

	task := model.DownloadTask{
		URL:    "https://www.youtube.com/watch?v=abc",
		Format: model.StreamDescriptor{ID: "137", ContentLength: 10},
		Path:   path,
	}
	out, err := New(src, rep, nil).Fetch(context.Background(), "video", task)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if out.Path != path || out.Bytes != 10 {
		t.Errorf("Fetch() = %+v", out)
	}
	if src.gotURL != task.URL || src.gotID != "137" {
		t.Errorf("source called with %q/%q", src.gotURL, src.gotID)
	}
	if !src.stream.closed {
		t.Error("stream was not closed")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(data) != "0123456789" {
		t.Errorf("file = %q", data)
	}

	if len(rep.updates) == 0 {
		t.Fatal("no progress updates")
	}
	last := rep.updates[len(rep.updates)-1]
	if last.Current != 10 || last.Total != 10 || last.Step != "video" {
		t.Errorf("last update = %+v", last)
	}
	if len(rep.logs) != 0 {
		t.Errorf("unexpected notices: %+v", rep.logs)
	}
	if len(rep.results) != 1 || rep.results[0].Err != nil || rep.results[0].Bytes != 10 {
		t.Errorf("results = %+v", rep.results)
	}
}

func TestFetchUnknownSize(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip.mp4")
	payload := bytes.Repeat([]byte("xyz"), 5000)
	var parts [][]byte
	for i := 0; i < len(payload); i += 1024 {
		end := i + 1024
		if end > len(payload) {
			end = len(payload)
		}
		parts = append(parts, append([]byte(nil), payload[i:end]...))
	}
	rep := &recordingReporter{}

	_, err := New(&fakeSource{stream: &chunkReader{chunks: parts}}, rep, nil).
		Fetch(context.Background(), "single", model.DownloadTask{Format: model.StreamDescriptor{ID: "18"}, Path: path})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !bytes.Equal(data, payload) {
		t.Errorf("file differs from stream: %d vs %d bytes", len(data), len(payload))
	}
	if len(rep.updates) != 0 {
		t.Errorf("bounded progress shown for unknown size: %d updates", len(rep.updates))
	}
	if len(rep.logs) != 1 || !strings.Contains(rep.logs[0].Line, "size unknown") {
		t.Errorf("logs = %+v", rep.logs)
	}
}

func TestFetchReadErrorLeavesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clip-audio.mp4")
	boom := errors.New("connection reset")
	rep := &recordingReporter{}
	src := &fakeSource{stream: &chunkReader{chunks: chunks("abc"), err: boom}}

	_, err := New(src, rep, nil).Fetch(context.Background(), "audio", model.DownloadTask{
		Format: model.StreamDescriptor{ID: "140", ContentLength: 100},
		Path:   path,
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Fetch() error = %v, want %v", err, boom)
	}
	data, readErr := os.ReadFile(path)
	if readErr != nil {
		t.Fatalf("partial file missing: %v", readErr)
	}
	if string(data) != "abc" {
		t.Errorf("partial file = %q", data)
	}
	if len(rep.results) != 1 || rep.results[0].Err == nil {
		t.Errorf("results = %+v", rep.results)
	}
}

func TestFetchStreamOpenError(t *testing.T) {
	boom := errors.New("403")
	rep := &recordingReporter{}
	_, err := New(&fakeSource{err: boom}, rep, nil).Fetch(context.Background(), "video", model.DownloadTask{
		Path: filepath.Join(t.TempDir(), "x.mp4"),
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Fetch() error = %v", err)
	}
	if len(rep.results) != 1 || !errors.Is(rep.results[0].Err, boom) {
		t.Errorf("results = %+v", rep.results)
	}
}

func TestFetchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(&fakeSource{stream: &chunkReader{chunks: chunks("abc")}}, nil, nil).
		Fetch(ctx, "video", model.DownloadTask{Path: filepath.Join(t.TempDir(), "x.mp4")})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Fetch() error = %v, want context.Canceled", err)
	}
}

func TestFetchRequiresPath(t *testing.T) {
	if _, err := New(&fakeSource{}, nil, nil).Fetch(context.Background(), "video", model.DownloadTask{}); err == nil {
		t.Fatal("expected error for empty path")
	}
}
