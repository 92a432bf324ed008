package resolver

import (
	"strings"

	"tubegrab/internal/model"
)

// VideoOnly returns descriptors in container that carry video and no audio.
func VideoOnly(ds []model.StreamDescriptor, container string) []model.StreamDescriptor {
	return filter(ds, func(d model.StreamDescriptor) bool {
		return d.HasVideo && !d.HasAudio && strings.EqualFold(d.Container, container)
	})
}

// AudioOnly returns descriptors in container that carry audio and no video.
func AudioOnly(ds []model.StreamDescriptor, container string) []model.StreamDescriptor {
	return filter(ds, func(d model.StreamDescriptor) bool {
		return d.HasAudio && !d.HasVideo && strings.EqualFold(d.Container, container)
	})
}

// WithAudio returns every descriptor that carries audio, muxed or not.
func WithAudio(ds []model.StreamDescriptor) []model.StreamDescriptor {
	return filter(ds, func(d model.StreamDescriptor) bool { return d.HasAudio })
}

func filter(ds []model.StreamDescriptor, keep func(model.StreamDescriptor) bool) []model.StreamDescriptor {
	out := make([]model.StreamDescriptor, 0, len(ds))
	for _, d := range ds {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}

// HighestVideo picks the best video among ds: tallest, then highest
// bitrate, then preferred container. Descriptors without video are only
// considered when nothing in ds has video.
func HighestVideo(ds []model.StreamDescriptor) (model.StreamDescriptor, bool) {
	pool := filter(ds, func(d model.StreamDescriptor) bool { return d.HasVideo })
	if len(pool) == 0 {
		pool = ds
	}
	return best(pool, betterVideo)
}

// HighestAudio picks the best audio among ds: highest audio bitrate, then
// audio-only over muxed, then overall bitrate, then preferred container.
func HighestAudio(ds []model.StreamDescriptor) (model.StreamDescriptor, bool) {
	pool := filter(ds, func(d model.StreamDescriptor) bool { return d.HasAudio })
	if len(pool) == 0 {
		pool = ds
	}
	return best(pool, betterAudio)
}

func best(ds []model.StreamDescriptor, better func(a, b model.StreamDescriptor) bool) (model.StreamDescriptor, bool) {
	if len(ds) == 0 {
		return model.StreamDescriptor{}, false
	}
	top := ds[0]
	for _, d := range ds[1:] {
		if better(d, top) {
			top = d
		}
	}
	return top, true
}

func betterVideo(a, b model.StreamDescriptor) bool {
	if a.Height != b.Height {
		return a.Height > b.Height
	}
	if a.Bitrate != b.Bitrate {
		return a.Bitrate > b.Bitrate
	}
	return containerPriority(a.Container) < containerPriority(b.Container)
}

func betterAudio(a, b model.StreamDescriptor) bool {
	if a.AudioBitrateKbps != b.AudioBitrateKbps {
		return a.AudioBitrateKbps > b.AudioBitrateKbps
	}
	if a.HasVideo != b.HasVideo {
		return !a.HasVideo
	}
	if a.Bitrate != b.Bitrate {
		return a.Bitrate > b.Bitrate
	}
	return containerPriority(a.Container) < containerPriority(b.Container)
}

// containerPriority returns a priority score for containers (lower = better).
// Prefers containers that mux without re-encoding into mp4.
func containerPriority(container string) int {
	switch strings.ToLower(strings.TrimPrefix(container, ".")) {
	case "mp4":
		return 0
	case "m4a":
		return 1
	case "webm":
		return 2
	case "3gp":
		return 3
	default:
		return 100
	}
}

// mimeToContainer maps "video/mp4; codecs=..." to "mp4".
func mimeToContainer(mime string) string {
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	parts := strings.Split(strings.TrimSpace(mime), "/")
	if len(parts) != 2 || parts[1] == "" {
		return ""
	}
	switch parts[1] {
	case "3gpp":
		return "3gp"
	default:
		return parts[1]
	}
}
