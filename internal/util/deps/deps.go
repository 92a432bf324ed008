package deps

import (
	"errors"
	"fmt"
	"os/exec"
)

// ErrMissing is wrapped by every lookup failure.
var ErrMissing = errors.New("missing dependency")

// FindYTDLP returns the path to yt-dlp in PATH.
func FindYTDLP() (string, error) {
	if p, err := exec.LookPath("yt-dlp"); err == nil {
		return p, nil
	}
	return "", fmt.Errorf("%w: could not find yt-dlp in PATH, install yt-dlp or use --resolver youtube", ErrMissing)
}

// FindFFmpeg returns the path to the ffmpeg binary in PATH.
func FindFFmpeg() (string, error) {
	if p, err := exec.LookPath("ffmpeg"); err == nil {
		return p, nil
	}
	return "", fmt.Errorf("%w: could not find ffmpeg in PATH, install ffmpeg", ErrMissing)
}
