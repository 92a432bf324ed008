package media

import (
	"path/filepath"
	"strings"
	"time"

	"tubegrab/internal/model"
	"tubegrab/internal/util"
)

// StampLayout is the per-run timestamp appended to every output name.
const StampLayout = "2006-01-02-15-04-05"

// Part distinguishes the temporary halves of a separate-streams download.
type Part string

const (
	PartNone  Part = ""
	PartVideo Part = "video"
	PartAudio Part = "audio"
)

// Basename returns "<sanitized-title>-<stamp>" for info at time at.
func Basename(info model.VideoInfo, at time.Time) string {
	title := util.SanitizeTitle(strings.TrimSpace(info.Title))
	if title == "" {
		title = util.SanitizeTitle(info.ID)
	}
	if title == "" {
		title = "video"
	}
	return title + "-" + at.Format(StampLayout)
}

// OutputPath builds the full path of a file in dir:
// <basename>[-video|-audio].<container>.
func OutputPath(dir string, info model.VideoInfo, at time.Time, part Part, container string) string {
	name := Basename(info, at)
	if part != PartNone {
		name += "-" + string(part)
	}
	if container == "" {
		container = "mp4"
	}
	return filepath.Join(dir, name+"."+container)
}
