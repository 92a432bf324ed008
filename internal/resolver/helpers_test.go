package resolver

import (
	"testing"

	"tubegrab/internal/model"
)

type descriptorView struct {
	model.StreamDescriptor
}

func (d descriptorView) expect(t *testing.T, id, container string, video, audio bool, label string, abr int, size int64) {
	t.Helper()
	if d.ID != id {
		t.Errorf("ID = %q, want %q", d.ID, id)
	}
	if d.Container != container {
		t.Errorf("Container = %q, want %q", d.Container, container)
	}
	if d.HasVideo != video || d.HasAudio != audio {
		t.Errorf("HasVideo/HasAudio = %v/%v, want %v/%v", d.HasVideo, d.HasAudio, video, audio)
	}
	if d.QualityLabel != label {
		t.Errorf("QualityLabel = %q, want %q", d.QualityLabel, label)
	}
	if d.AudioBitrateKbps != abr {
		t.Errorf("AudioBitrateKbps = %d, want %d", d.AudioBitrateKbps, abr)
	}
	if d.ContentLength != size {
		t.Errorf("ContentLength = %d, want %d", d.ContentLength, size)
	}
}
