package resolver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/lrstanley/go-ytdlp"
	"github.com/sirupsen/logrus"

	"tubegrab/internal/model"
)

// ytdlpInfo mirrors fields from yt-dlp --dump-json output that we care about.
type ytdlpInfo struct {
	ID       string        `json:"id"`
	Title    string        `json:"title"`
	Uploader string        `json:"uploader"`
	Duration float64       `json:"duration"`
	Formats  []ytdlpFormat `json:"formats"`
}

type ytdlpFormat struct {
	FormatID       string            `json:"format_id"`
	Ext            string            `json:"ext"`
	URL            string            `json:"url"`
	Protocol       string            `json:"protocol"`
	VCodec         string            `json:"vcodec"`
	ACodec         string            `json:"acodec"`
	Height         int               `json:"height"`
	FPS            float64           `json:"fps"`
	ABR            float64           `json:"abr"`
	TBR            float64           `json:"tbr"`
	Filesize       float64           `json:"filesize"`
	FilesizeApprox float64           `json:"filesize_approx"`
	HTTPHeaders    map[string]string `json:"http_headers"`
}

// metadataFunc returns the raw --dump-json stdout for a URL.
type metadataFunc func(ctx context.Context, rawURL string) (string, error)

// YTDLP resolves URLs by shelling out to yt-dlp through go-ytdlp and
// streams the direct format URLs it reports over HTTP.
type YTDLP struct {
	hc       *http.Client
	metadata metadataFunc

	mu      sync.Mutex
	formats map[string]map[string]ytdlpFormat // url -> format_id -> format
}

// NewYTDLP returns a yt-dlp backed resolver.
func NewYTDLP(hc *http.Client, verbose bool) *YTDLP {
	return &YTDLP{
		hc:       hc,
		metadata: dumpJSON(verbose),
		formats:  make(map[string]map[string]ytdlpFormat),
	}
}

func dumpJSON(verbose bool) metadataFunc {
	return func(ctx context.Context, rawURL string) (string, error) {
		cmd := ytdlp.New().
			DumpJSON().
			NoPlaylist()
		res, err := cmd.Run(ctx, rawURL)
		if res != nil && verbose {
			logrus.WithField("stderr", strings.TrimSpace(res.Stderr)).Debug("yt-dlp finished")
		}
		if err != nil && (res == nil || strings.TrimSpace(res.Stdout) == "") {
			return "", fmt.Errorf("yt-dlp: %w", err)
		}
		return res.Stdout, nil
	}
}

// Match accepts any absolute http(s) URL; yt-dlp decides the rest.
func (y *YTDLP) Match(rawURL string) bool {
	_, ok := parseLoose(rawURL)
	return ok
}

func (y *YTDLP) Resolve(ctx context.Context, rawURL string) (model.VideoInfo, error) {
	out, err := y.metadata(ctx, rawURL)
	if err != nil {
		return model.VideoInfo{}, fmt.Errorf("metadata fetch failed: %w", err)
	}
	info, err := parseInfo(out)
	if err != nil {
		return model.VideoInfo{}, err
	}

	byID := make(map[string]ytdlpFormat, len(info.Formats))
	vi := model.VideoInfo{
		ID:       info.ID,
		Title:    info.Title,
		Author:   info.Uploader,
		Duration: time.Duration(info.Duration * float64(time.Second)),
	}
	for _, f := range info.Formats {
		d, ok := descriptorFromYTDLP(f)
		if !ok {
			continue
		}
		byID[f.FormatID] = f
		vi.Formats = append(vi.Formats, d)
	}

	y.mu.Lock()
	y.formats[rawURL] = byID
	y.mu.Unlock()
	return vi, nil
}

func (y *YTDLP) Stream(ctx context.Context, rawURL string, d model.StreamDescriptor) (io.ReadCloser, error) {
	y.mu.Lock()
	f, ok := y.formats[rawURL][d.ID]
	y.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, d.ID)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.URL, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range f.HTTPHeaders {
		req.Header.Set(k, v)
	}
	resp, err := y.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("starting stream: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("starting stream: unexpected status %s", resp.Status)
	}
	return resp.Body, nil
}

// parseInfo decodes yt-dlp --dump-json output. yt-dlp may print more than
// one object; the last line that decodes with an ID wins.
func parseInfo(stdout string) (ytdlpInfo, error) {
	data := strings.TrimSpace(stdout)
	var info ytdlpInfo
	err := json.NewDecoder(strings.NewReader(data)).Decode(&info)
	if err == nil && info.ID != "" {
		return info, nil
	}
	if err == nil {
		err = errors.New("missing id")
	}
	lines := strings.Split(data, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if line == "" {
			continue
		}
		var tmp ytdlpInfo
		if json.Unmarshal([]byte(line), &tmp) == nil && tmp.ID != "" {
			return tmp, nil
		}
	}
	return ytdlpInfo{}, fmt.Errorf("parse metadata JSON: %w", err)
}

// descriptorFromYTDLP converts a yt-dlp format. Formats without a direct
// HTTP URL or without any media track are dropped.
func descriptorFromYTDLP(f ytdlpFormat) (model.StreamDescriptor, bool) {
	if f.URL == "" || f.FormatID == "" {
		return model.StreamDescriptor{}, false
	}
	if f.Protocol != "" && f.Protocol != "http" && f.Protocol != "https" {
		return model.StreamDescriptor{}, false
	}
	hasVideo := f.VCodec != "" && f.VCodec != "none"
	hasAudio := f.ACodec != "" && f.ACodec != "none"
	if !hasVideo && !hasAudio {
		return model.StreamDescriptor{}, false
	}

	// m4a is the mp4 container holding audio only.
	container := f.Ext
	if container == "m4a" {
		container = "mp4"
	}
	size := f.Filesize
	if size <= 0 {
		size = f.FilesizeApprox
	}
	d := model.StreamDescriptor{
		ID:            f.FormatID,
		Container:     container,
		MimeType:      mimeFor(f.Ext, hasVideo),
		HasVideo:      hasVideo,
		HasAudio:      hasAudio,
		ContentLength: int64(size),
		Height:        f.Height,
		Bitrate:       int(math.Round(f.TBR * 1000)),
	}
	if hasVideo && f.Height > 0 {
		d.QualityLabel = fmt.Sprintf("%dp", f.Height)
		if f.FPS > 30 {
			d.QualityLabel += fmt.Sprintf("%d", int(math.Round(f.FPS)))
		}
	}
	if hasAudio && !hasVideo {
		d.AudioBitrateKbps = int(math.Round(f.ABR))
	}
	return d, true
}

func mimeFor(ext string, video bool) string {
	if ext == "" {
		return ""
	}
	if ext == "m4a" {
		return "audio/mp4"
	}
	if video {
		return "video/" + ext
	}
	return "audio/" + ext
}
