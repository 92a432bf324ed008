package resolver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"

	"github.com/kkdai/youtube/v2"

	"tubegrab/internal/model"
	"tubegrab/internal/util/bitrate"
)

// YouTube resolves URLs with the in-process github.com/kkdai/youtube client.
type YouTube struct {
	client *youtube.Client

	mu     sync.Mutex
	videos map[string]*youtube.Video // keyed by video ID
}

// NewYouTube returns a resolver using hc for all requests.
func NewYouTube(hc *http.Client) *YouTube {
	return &YouTube{
		client: &youtube.Client{HTTPClient: hc},
		videos: make(map[string]*youtube.Video),
	}
}

// Match accepts YouTube watch, shorts, embed, live and youtu.be URLs that
// carry a well-formed video ID.
func (y *YouTube) Match(rawURL string) bool {
	u, ok := parseLoose(rawURL)
	if !ok || !isYouTubeHost(u.Host) {
		return false
	}
	_, ok = youTubeVideoID(u)
	return ok
}

// videoID extracts the ID handed to the client; the client only ever sees
// bare IDs, never URLs.
func videoID(rawURL string) (string, error) {
	if u, ok := parseLoose(rawURL); ok && isYouTubeHost(u.Host) {
		if id, ok := youTubeVideoID(u); ok {
			return id, nil
		}
	}
	return "", fmt.Errorf("no video ID in %q", rawURL)
}

func (y *YouTube) Resolve(ctx context.Context, rawURL string) (model.VideoInfo, error) {
	id, err := videoID(rawURL)
	if err != nil {
		return model.VideoInfo{}, err
	}
	video, err := y.client.GetVideoContext(ctx, id)
	if err != nil {
		return model.VideoInfo{}, fmt.Errorf("get video info: %w", err)
	}

	y.mu.Lock()
	y.videos[video.ID] = video
	y.mu.Unlock()

	info := model.VideoInfo{
		ID:       video.ID,
		Title:    video.Title,
		Author:   video.Author,
		Duration: video.Duration,
		Formats:  make([]model.StreamDescriptor, 0, len(video.Formats)),
	}
	for _, f := range video.Formats {
		info.Formats = append(info.Formats, descriptorFromFormat(f))
	}
	return info, nil
}

func (y *YouTube) Stream(ctx context.Context, rawURL string, d model.StreamDescriptor) (io.ReadCloser, error) {
	id, err := videoID(rawURL)
	if err != nil {
		return nil, err
	}
	y.mu.Lock()
	video := y.videos[id]
	y.mu.Unlock()
	if video == nil {
		if video, err = y.client.GetVideoContext(ctx, id); err != nil {
			return nil, fmt.Errorf("get video info: %w", err)
		}
	}

	itag, err := strconv.Atoi(d.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, d.ID)
	}
	format := findFormat(video.Formats, itag, d.MimeType)
	if format == nil {
		return nil, fmt.Errorf("%w: itag %d", ErrUnknownFormat, itag)
	}

	stream, _, err := y.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return nil, fmt.Errorf("starting stream: %w", err)
	}
	return stream, nil
}

// findFormat looks up itag, preferring an exact mime match when the same
// itag is listed more than once (multi-language audio).
func findFormat(formats youtube.FormatList, itag int, mime string) *youtube.Format {
	var fallback *youtube.Format
	for i := range formats {
		f := &formats[i]
		if f.ItagNo != itag {
			continue
		}
		if f.MimeType == mime {
			return f
		}
		if fallback == nil {
			fallback = f
		}
	}
	return fallback
}

func descriptorFromFormat(f youtube.Format) model.StreamDescriptor {
	hasVideo := strings.HasPrefix(f.MimeType, "video/")
	hasAudio := f.AudioChannels > 0 || strings.HasPrefix(f.MimeType, "audio/")

	br := f.Bitrate
	if br == 0 {
		br = f.AverageBitrate
	}
	d := model.StreamDescriptor{
		ID:            strconv.Itoa(f.ItagNo),
		Container:     mimeToContainer(f.MimeType),
		MimeType:      f.MimeType,
		HasVideo:      hasVideo,
		HasAudio:      hasAudio,
		ContentLength: f.ContentLength,
		Height:        f.Height,
		Bitrate:       br,
	}
	if hasVideo {
		d.QualityLabel = f.QualityLabel
	}
	if hasAudio && !hasVideo {
		avg := f.AverageBitrate
		if avg == 0 {
			avg = f.Bitrate
		}
		d.AudioBitrateKbps = bitrate.FromBps(avg)
	}
	return d
}
