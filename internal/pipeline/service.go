// Package pipeline drives the interactive download workflow: URL prompt,
// format menus, fetches and the final merge.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"tubegrab/internal/downloader"
	"tubegrab/internal/merger"
	"tubegrab/internal/model"
	"tubegrab/internal/resolver"
	"tubegrab/internal/ui"
	"tubegrab/internal/util/format"
	"tubegrab/internal/util/media"
)

var (
	// ErrResolve wraps failures to turn a URL into format metadata.
	ErrResolve = errors.New("could not resolve video")
	// ErrFetch wraps stream download failures.
	ErrFetch = errors.New("download failed")
	// ErrMerge wraps merge failures.
	ErrMerge = errors.New("merge failed")
	// ErrNoFormats is returned when a menu would be empty.
	ErrNoFormats = errors.New("no matching formats")
)

// Progress step names.
const (
	StepVideo  = "video"
	StepAudio  = "audio"
	StepSingle = "single"
)

const (
	choiceHighestAudio = "highest-audio"
	choiceHighestVideo = "highest-video"
)

// Fetcher downloads one stream to one file.
type Fetcher interface {
	Fetch(ctx context.Context, step string, task model.DownloadTask) (model.OutputFile, error)
}

// Merger muxes a video-only and an audio-only file.
type Merger interface {
	Merge(ctx context.Context, task model.MergeTask) (model.OutputFile, error)
}

// Service orchestrates the two interactive modes.
type Service struct {
	resolver resolver.Resolver
	fetcher  Fetcher
	merger   Merger
	asker    ui.Asker
	outDir   string
	now      func() time.Time
	log      *logrus.Entry
}

// Option configures a Service.
type Option func(*Service)

// WithResolver sets the backend that recognizes URLs and lists formats.
func WithResolver(r resolver.Resolver) Option {
	return func(s *Service) {
		s.resolver = r
	}
}

// WithFetcher sets the stream fetcher.
func WithFetcher(f Fetcher) Option {
	return func(s *Service) {
		s.fetcher = f
	}
}

// WithMerger sets the merger used in separate-streams mode.
func WithMerger(m Merger) Option {
	return func(s *Service) {
		s.merger = m
	}
}

// WithAsker sets how questions are put to the user.
func WithAsker(a ui.Asker) Option {
	return func(s *Service) {
		s.asker = a
	}
}

// WithOutDir sets the directory all output files are written to.
func WithOutDir(dir string) Option {
	return func(s *Service) {
		s.outDir = dir
	}
}

// WithClock overrides the time source used for output names.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithLogger sets the logger.
func WithLogger(l *logrus.Entry) Option {
	return func(s *Service) {
		s.log = l
	}
}

// NewService constructs a Service. Resolver, fetcher and asker are
// required; the merger is only needed for RunSeparate.
func NewService(opts ...Option) (*Service, error) {
	s := &Service{}
	for _, o := range opts {
		o(s)
	}
	if s.resolver == nil {
		return nil, errors.New("resolver is required")
	}
	if s.fetcher == nil {
		return nil, errors.New("fetcher is required")
	}
	if s.asker == nil {
		return nil, errors.New("asker is required")
	}
	if s.outDir == "" {
		return nil, errors.New("output directory is required")
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.log == nil {
		s.log = logrus.NewEntry(logrus.StandardLogger())
	}
	return s, nil
}

// RunSeparate asks for a URL, a video-only and an audio-only mp4 format,
// downloads both and merges them into one file.
func (s *Service) RunSeparate(ctx context.Context) (model.OutputFile, error) {
	if s.merger == nil {
		return model.OutputFile{}, errors.New("merger is required")
	}
	url, info, err := s.promptAndResolve(ctx)
	if err != nil {
		return model.OutputFile{}, err
	}

	videos := resolver.VideoOnly(info.Formats, "mp4")
	audios := resolver.AudioOnly(info.Formats, "mp4")
	if len(videos) == 0 || len(audios) == 0 {
		s.log.WithFields(logrus.Fields{"video": len(videos), "audio": len(audios)}).Info("no matching formats")
		return model.OutputFile{}, ErrNoFormats
	}

	video, err := s.pick(ctx, "Select video quality:", videos, false)
	if err != nil {
		return model.OutputFile{}, err
	}
	audio, err := s.pick(ctx, "Select audio quality:", audios, false)
	if err != nil {
		return model.OutputFile{}, err
	}

	at := s.now()
	videoTask := model.DownloadTask{
		URL:    url,
		Format: video,
		Path:   media.OutputPath(s.outDir, info, at, media.PartVideo, video.Container),
	}
	audioTask := model.DownloadTask{
		URL:    url,
		Format: audio,
		Path:   media.OutputPath(s.outDir, info, at, media.PartAudio, audio.Container),
	}

	if _, err := s.fetcher.Fetch(ctx, StepVideo, videoTask); err != nil {
		return model.OutputFile{}, fmt.Errorf("%w: video: %w", ErrFetch, err)
	}
	if _, err := s.fetcher.Fetch(ctx, StepAudio, audioTask); err != nil {
		return model.OutputFile{}, fmt.Errorf("%w: audio: %w", ErrFetch, err)
	}

	out, err := s.merger.Merge(ctx, model.MergeTask{
		VideoPath:  videoTask.Path,
		AudioPath:  audioTask.Path,
		OutputPath: media.OutputPath(s.outDir, info, at, media.PartNone, video.Container),
	})
	if err != nil {
		return model.OutputFile{}, fmt.Errorf("%w: %w", ErrMerge, err)
	}
	return out, nil
}

// RunSingle asks for a URL and one audio-bearing format (or a "highest
// quality" shortcut) and downloads it straight to its final name.
func (s *Service) RunSingle(ctx context.Context) (model.OutputFile, error) {
	url, info, err := s.promptAndResolve(ctx)
	if err != nil {
		return model.OutputFile{}, err
	}

	muxed := resolver.WithAudio(info.Formats)
	if len(muxed) == 0 {
		s.log.Info("no matching formats")
		return model.OutputFile{}, ErrNoFormats
	}

	d, err := s.pick(ctx, "Select format:", muxed, true)
	if err != nil {
		return model.OutputFile{}, err
	}

	task := model.DownloadTask{
		URL:    url,
		Format: d,
		Path:   media.OutputPath(s.outDir, info, s.now(), media.PartNone, d.Container),
	}
	out, err := s.fetcher.Fetch(ctx, StepSingle, task)
	if err != nil {
		return model.OutputFile{}, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	return out, nil
}

// promptAndResolve asks for a URL until the resolver recognizes one, then
// resolves it.
func (s *Service) promptAndResolve(ctx context.Context) (string, model.VideoInfo, error) {
	prompt := ui.Prompt{
		Kind:    ui.KindText,
		Message: "Enter video URL:",
		Validate: func(v string) error {
			if !s.resolver.Match(v) {
				return fmt.Errorf("%q is not a supported video URL", v)
			}
			return nil
		},
	}

	var url string
	for {
		answer, err := s.asker.Ask(ctx, prompt)
		if err != nil {
			return "", model.VideoInfo{}, err
		}
		answer = strings.TrimSpace(answer)
		if s.resolver.Match(answer) {
			url = answer
			break
		}
		s.log.WithField("url", answer).Warn("invalid URL, try again")
	}

	s.log.WithField("url", url).Debug("resolving")
	info, err := s.resolver.Resolve(ctx, url)
	if err != nil {
		return "", model.VideoInfo{}, fmt.Errorf("%w: %w", ErrResolve, err)
	}
	s.log.WithFields(logrus.Fields{
		"id":      info.ID,
		"title":   info.Title,
		"formats": len(info.Formats),
	}).Info("resolved")
	return url, info, nil
}

// pick shows ds as a menu and returns the chosen descriptor. With
// shortcuts, "Highest quality audio/video" entries are offered first and
// resolved by ranking ds.
func (s *Service) pick(ctx context.Context, message string, ds []model.StreamDescriptor, shortcuts bool) (model.StreamDescriptor, error) {
	choices := make([]ui.Choice, 0, len(ds)+2)
	if shortcuts {
		choices = append(choices,
			ui.Choice{Label: "Highest quality audio", Value: choiceHighestAudio},
			ui.Choice{Label: "Highest quality video", Value: choiceHighestVideo},
		)
	}
	for i, d := range ds {
		choices = append(choices, ui.Choice{
			Label: d.Label(),
			Hint:  hint(d),
			Value: strconv.Itoa(i),
		})
	}

	answer, err := s.asker.Ask(ctx, ui.Prompt{Kind: ui.KindSingleChoice, Message: message, Choices: choices})
	if err != nil {
		return model.StreamDescriptor{}, err
	}

	var (
		d  model.StreamDescriptor
		ok bool
	)
	switch answer {
	case choiceHighestAudio:
		d, ok = resolver.HighestAudio(ds)
	case choiceHighestVideo:
		d, ok = resolver.HighestVideo(ds)
	default:
		i, convErr := strconv.Atoi(answer)
		if convErr == nil && i >= 0 && i < len(ds) {
			d, ok = ds[i], true
		}
	}
	if !ok {
		return model.StreamDescriptor{}, fmt.Errorf("unknown choice %q", answer)
	}
	s.log.WithFields(logrus.Fields{"format": d.ID, "label": d.Label()}).Debug("format selected")
	return d, nil
}

func hint(d model.StreamDescriptor) string {
	parts := []string{d.Container}
	if d.SizeKnown() {
		parts = append(parts, format.HumanizeBytes(d.ContentLength))
	}
	return strings.Join(parts, ", ")
}

var (
	_ Fetcher = (*downloader.Fetcher)(nil)
	_ Merger  = (*merger.Merger)(nil)
)
