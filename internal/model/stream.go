package model

import (
	"fmt"
	"time"
)

// StreamDescriptor identifies one downloadable variant of a source video.
type StreamDescriptor struct {
	ID           string // itag (youtube) or format_id (yt-dlp)
	Container    string // e.g. "mp4", "webm"
	MimeType     string
	HasVideo     bool
	HasAudio     bool
	QualityLabel string // e.g. "1080p60"; empty for audio-only streams

	AudioBitrateKbps int   // 0 if unknown
	ContentLength    int64 // bytes; 0 if unknown

	Height  int // 0 if unknown or audio-only
	Bitrate int // bps; 0 if unknown
}

// Label is the human-readable name shown in choice menus.
func (d StreamDescriptor) Label() string {
	if d.QualityLabel != "" {
		return d.QualityLabel
	}
	if d.AudioBitrateKbps > 0 {
		return fmt.Sprintf("%dkbps", d.AudioBitrateKbps)
	}
	return d.ID
}

// SizeKnown reports whether ContentLength can bound a progress indicator.
func (d StreamDescriptor) SizeKnown() bool {
	return d.ContentLength > 0
}

// VideoInfo is what a resolver returns for a URL.
type VideoInfo struct {
	ID       string
	Title    string
	Author   string
	Duration time.Duration
	Formats  []StreamDescriptor
}
