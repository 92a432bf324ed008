package pipeline

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tubegrab/internal/model"
	"tubegrab/internal/ui"
)

type fakeResolver struct {
	info     model.VideoInfo
	err      error
	resolved []string
}

func (f *fakeResolver) Match(raw string) bool {
	return strings.HasPrefix(raw, "https://www.youtube.com/watch?v=")
}

func (f *fakeResolver) Resolve(_ context.Context, raw string) (model.VideoInfo, error) {
	f.resolved = append(f.resolved, raw)
	return f.info, f.err
}

func (f *fakeResolver) Stream(context.Context, string, model.StreamDescriptor) (io.ReadCloser, error) {
	return nil, errors.New("not used")
}

// scriptedAsker answers prompts in order. It records every prompt it saw.
type scriptedAsker struct {
	answers []string
	prompts []ui.Prompt
}

func (a *scriptedAsker) Ask(_ context.Context, p ui.Prompt) (string, error) {
	a.prompts = append(a.prompts, p)
	if len(a.answers) == 0 {
		return "", ui.ErrAborted
	}
	ans := a.answers[0]
	a.answers = a.answers[1:]
	return ans, nil
}

type fakeFetcher struct {
	calls  []string // "step:formatID"
	tasks  []model.DownloadTask
	failOn string
	events *[]string
}

func (f *fakeFetcher) Fetch(_ context.Context, step string, task model.DownloadTask) (model.OutputFile, error) {
	f.calls = append(f.calls, step+":"+task.Format.ID)
	f.tasks = append(f.tasks, task)
	if f.events != nil {
		*f.events = append(*f.events, "fetch:"+step)
	}
	if step == f.failOn {
		return model.OutputFile{}, errors.New("connection reset")
	}
	return model.OutputFile{Path: task.Path, Bytes: 10}, nil
}

type fakeMerger struct {
	tasks  []model.MergeTask
	err    error
	events *[]string
}

func (m *fakeMerger) Merge(_ context.Context, task model.MergeTask) (model.OutputFile, error) {
	m.tasks = append(m.tasks, task)
	if m.events != nil {
		*m.events = append(*m.events, "merge")
	}
	if m.err != nil {
		return model.OutputFile{}, m.err
	}
	return model.OutputFile{Path: task.OutputPath, Bytes: 20}, nil
}

const watchURL = "https://www.youtube.com/watch?v=abc123"

var fixedNow = time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC)

func sampleInfo() model.VideoInfo {
	return model.VideoInfo{
		ID:    "abc123",
		Title: "My Clip",
		Formats: []model.StreamDescriptor{
			{ID: "18", Container: "mp4", HasVideo: true, HasAudio: true, QualityLabel: "360p", Height: 360, AudioBitrateKbps: 96},
			{ID: "137", Container: "mp4", HasVideo: true, QualityLabel: "1080p", Height: 1080, ContentLength: 2048},
			{ID: "136", Container: "mp4", HasVideo: true, QualityLabel: "720p", Height: 720},
			{ID: "248", Container: "webm", HasVideo: true, QualityLabel: "1080p", Height: 1080},
			{ID: "140", Container: "mp4", HasAudio: true, AudioBitrateKbps: 128},
			{ID: "251", Container: "webm", HasAudio: true, AudioBitrateKbps: 160},
		},
	}
}

func newTestService(t *testing.T, res *fakeResolver, asker *scriptedAsker, f *fakeFetcher, m *fakeMerger) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	opts := []Option{
		WithResolver(res),
		WithFetcher(f),
		WithAsker(asker),
		WithOutDir(dir),
		WithClock(func() time.Time { return fixedNow }),
	}
	if m != nil {
		opts = append(opts, WithMerger(m))
	}
	s, err := NewService(opts...)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return s, dir
}

func choiceValues(p ui.Prompt) []string {
	var out []string
	for _, c := range p.Choices {
		out = append(out, c.Label)
	}
	return out
}

func TestRunSeparate(t *testing.T) {
	var events []string
	res := &fakeResolver{info: sampleInfo()}
	// video menu: [1080p, 720p] -> "0"; audio menu: [128kbps] -> "0"
	asker := &scriptedAsker{answers: []string{watchURL, "0", "0"}}
	f := &fakeFetcher{events: &events}
	m := &fakeMerger{events: &events}
	s, dir := newTestService(t, res, asker, f, m)

	out, err := s.RunSeparate(context.Background())
	if err != nil {
		t.Fatalf("RunSeparate() error = %v", err)
	}

	if got := strings.Join(events, ","); got != "fetch:video,fetch:audio,merge" {
		t.Errorf("order = %s", got)
	}
	if got := strings.Join(f.calls, ","); got != "video:137,audio:140" {
		t.Errorf("fetches = %s", got)
	}

	if got := choiceValues(asker.prompts[1]); strings.Join(got, ",") != "1080p,720p" {
		t.Errorf("video menu = %v", got)
	}
	if got := choiceValues(asker.prompts[2]); strings.Join(got, ",") != "128kbps" {
		t.Errorf("audio menu = %v", got)
	}
	if hint := asker.prompts[1].Choices[0].Hint; hint != "mp4, 2.0 KB" {
		t.Errorf("hint = %q", hint)
	}

	base := "My-Clip-2024-03-09-14-05-07"
	wantVideo := filepath.Join(dir, base+"-video.mp4")
	wantAudio := filepath.Join(dir, base+"-audio.mp4")
	wantOut := filepath.Join(dir, base+".mp4")
	if f.tasks[0].Path != wantVideo || f.tasks[1].Path != wantAudio {
		t.Errorf("fetch paths = %q, %q", f.tasks[0].Path, f.tasks[1].Path)
	}
	if f.tasks[0].URL != watchURL {
		t.Errorf("fetch URL = %q", f.tasks[0].URL)
	}
	want := model.MergeTask{VideoPath: wantVideo, AudioPath: wantAudio, OutputPath: wantOut}
	if len(m.tasks) != 1 || m.tasks[0] != want {
		t.Errorf("merge tasks = %+v", m.tasks)
	}
	if out.Path != wantOut {
		t.Errorf("output = %q", out.Path)
	}
}

func TestRunSeparateFetchFailureSkipsMerge(t *testing.T) {
	for _, step := range []string{StepVideo, StepAudio} {
		t.Run(step, func(t *testing.T) {
			asker := &scriptedAsker{answers: []string{watchURL, "1", "0"}}
			f := &fakeFetcher{failOn: step}
			m := &fakeMerger{}
			s, _ := newTestService(t, &fakeResolver{info: sampleInfo()}, asker, f, m)

			_, err := s.RunSeparate(context.Background())
			if !errors.Is(err, ErrFetch) {
				t.Fatalf("RunSeparate() error = %v, want ErrFetch", err)
			}
			if len(m.tasks) != 0 {
				t.Error("merge ran after failed fetch")
			}
			if step == StepVideo && len(f.calls) != 1 {
				t.Errorf("audio fetched after video failure: %v", f.calls)
			}
		})
	}
}

func TestRunSeparateMergeFailure(t *testing.T) {
	asker := &scriptedAsker{answers: []string{watchURL, "0", "0"}}
	m := &fakeMerger{err: errors.New("ffmpeg exited 1")}
	s, _ := newTestService(t, &fakeResolver{info: sampleInfo()}, asker, &fakeFetcher{}, m)

	if _, err := s.RunSeparate(context.Background()); !errors.Is(err, ErrMerge) {
		t.Fatalf("RunSeparate() error = %v, want ErrMerge", err)
	}
}

func TestRunSeparateNoFormats(t *testing.T) {
	info := model.VideoInfo{ID: "x", Title: "t", Formats: []model.StreamDescriptor{
		{ID: "18", Container: "mp4", HasVideo: true, HasAudio: true},
	}}
	asker := &scriptedAsker{answers: []string{watchURL}}
	f := &fakeFetcher{}
	s, _ := newTestService(t, &fakeResolver{info: info}, asker, f, &fakeMerger{})

	if _, err := s.RunSeparate(context.Background()); !errors.Is(err, ErrNoFormats) {
		t.Fatalf("RunSeparate() error = %v, want ErrNoFormats", err)
	}
	if len(f.calls) != 0 || len(asker.prompts) != 1 {
		t.Errorf("fetches = %v, prompts = %d", f.calls, len(asker.prompts))
	}
}

func TestRunSingleShortcutsOnMuxedOnly(t *testing.T) {
	info := model.VideoInfo{ID: "abc123", Title: "Clip", Formats: []model.StreamDescriptor{
		{ID: "18", Container: "mp4", HasVideo: true, HasAudio: true, QualityLabel: "360p", Height: 360},
	}}
	for _, pick := range []string{choiceHighestAudio, choiceHighestVideo, "0"} {
		t.Run(pick, func(t *testing.T) {
			asker := &scriptedAsker{answers: []string{watchURL, pick}}
			f := &fakeFetcher{}
			m := &fakeMerger{}
			s, dir := newTestService(t, &fakeResolver{info: info}, asker, f, m)

			out, err := s.RunSingle(context.Background())
			if err != nil {
				t.Fatalf("RunSingle() error = %v", err)
			}
			if got := strings.Join(f.calls, ","); got != "single:18" {
				t.Errorf("fetches = %s", got)
			}
			if len(m.tasks) != 0 {
				t.Error("single mode merged")
			}
			want := filepath.Join(dir, "Clip-2024-03-09-14-05-07.mp4")
			if out.Path != want {
				t.Errorf("output = %q, want %q", out.Path, want)
			}
		})
	}
}

func TestRunSingleMenu(t *testing.T) {
	asker := &scriptedAsker{answers: []string{watchURL, choiceHighestAudio}}
	f := &fakeFetcher{}
	s, _ := newTestService(t, &fakeResolver{info: sampleInfo()}, asker, f, nil)

	if _, err := s.RunSingle(context.Background()); err != nil {
		t.Fatalf("RunSingle() error = %v", err)
	}
	labels := choiceValues(asker.prompts[1])
	want := "Highest quality audio,Highest quality video,360p,128kbps,160kbps"
	if got := strings.Join(labels, ","); got != want {
		t.Errorf("menu = %s, want %s", got, want)
	}
	if got := strings.Join(f.calls, ","); got != "single:251" {
		t.Errorf("fetches = %s", got)
	}
}

func TestInvalidURLReprompts(t *testing.T) {
	asker := &scriptedAsker{answers: []string{"not a url", "https://vimeo.com/1", watchURL, "0"}}
	res := &fakeResolver{info: sampleInfo()}
	s, _ := newTestService(t, res, asker, &fakeFetcher{}, nil)

	if _, err := s.RunSingle(context.Background()); err != nil {
		t.Fatalf("RunSingle() error = %v", err)
	}
	urlPrompts := 0
	for _, p := range asker.prompts {
		if p.Kind == ui.KindText {
			urlPrompts++
		}
	}
	if urlPrompts != 3 {
		t.Errorf("URL prompts = %d, want 3", urlPrompts)
	}
	if len(res.resolved) != 1 || res.resolved[0] != watchURL {
		t.Errorf("resolved = %v", res.resolved)
	}
	if err := asker.prompts[0].Validate("nope"); err == nil {
		t.Error("URL prompt validator accepted an invalid URL")
	}
}

func TestResolveFailure(t *testing.T) {
	asker := &scriptedAsker{answers: []string{watchURL}}
	f := &fakeFetcher{}
	s, _ := newTestService(t, &fakeResolver{err: errors.New("video unavailable")}, asker, f, nil)

	if _, err := s.RunSingle(context.Background()); !errors.Is(err, ErrResolve) {
		t.Fatalf("RunSingle() error = %v, want ErrResolve", err)
	}
	if len(f.calls) != 0 {
		t.Error("fetched after failed resolve")
	}
}

func TestAbortedPrompt(t *testing.T) {
	s, _ := newTestService(t, &fakeResolver{info: sampleInfo()}, &scriptedAsker{}, &fakeFetcher{}, nil)
	if _, err := s.RunSingle(context.Background()); !errors.Is(err, ui.ErrAborted) {
		t.Fatalf("RunSingle() error = %v, want ErrAborted", err)
	}
}

func TestNewServiceRequires(t *testing.T) {
	if _, err := NewService(WithFetcher(&fakeFetcher{}), WithAsker(&scriptedAsker{}), WithOutDir("x")); err == nil {
		t.Error("expected error without resolver")
	}
	if _, err := NewService(WithResolver(&fakeResolver{}), WithFetcher(&fakeFetcher{}), WithAsker(&scriptedAsker{})); err == nil {
		t.Error("expected error without output dir")
	}
}
