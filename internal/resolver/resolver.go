// Package resolver turns a video URL into stream descriptors and byte
// streams. Two backends exist: the in-process YouTube client and yt-dlp.
package resolver

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"tubegrab/internal/model"
)

// ErrUnknownFormat is returned by Stream when a descriptor was not part of
// the last Resolve for that URL.
var ErrUnknownFormat = errors.New("format not found")

// Resolver is the source of formats and bytes for the fetcher.
type Resolver interface {
	// Match reports whether rawURL is something this resolver can handle.
	Match(rawURL string) bool
	// Resolve fetches metadata and the full list of formats.
	Resolve(ctx context.Context, rawURL string) (model.VideoInfo, error)
	// Stream opens the byte stream of one format of rawURL.
	Stream(ctx context.Context, rawURL string, d model.StreamDescriptor) (io.ReadCloser, error)
}

// Options configure a backend built by New.
type Options struct {
	HTTPTimeout time.Duration
	Verbose     bool
}

// New returns the backend for kind.
func New(kind model.ResolverKind, opts Options) (Resolver, error) {
	hc := &http.Client{Timeout: opts.HTTPTimeout}
	switch kind {
	case model.ResolverYouTube, "":
		return NewYouTube(hc), nil
	case model.ResolverYTDLP:
		return NewYTDLP(hc, opts.Verbose), nil
	default:
		return nil, fmt.Errorf("unknown resolver %q (valid: youtube|ytdlp)", kind)
	}
}
