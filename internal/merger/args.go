package merger

import (
	"context"
	"fmt"

	ffmpeg_go "github.com/u2takey/ffmpeg-go"

	"tubegrab/internal/model"
	"tubegrab/internal/util/bitrate"
)

// outputArgs returns the output options for a merge: the video stream is
// copied untouched and the audio is re-encoded to codec at kbps.
func outputArgs(codec string, kbps int) ffmpeg_go.KwArgs {
	if codec == "" {
		codec = "aac"
	}
	return ffmpeg_go.KwArgs{
		"c:v":      "copy",
		"c:a":      codec,
		"b:a":      fmt.Sprintf("%dk", bitrate.SafeAudioKbps(kbps)),
		"movflags": "+faststart",
	}
}

// buildMerge assembles the ffmpeg graph that muxes task's inputs into its
// output, with machine-readable progress on stdout.
func buildMerge(ctx context.Context, task model.MergeTask, codec string, kbps int) *ffmpeg_go.Stream {
	video := ffmpeg_go.Input(task.VideoPath).Video()
	audio := ffmpeg_go.Input(task.AudioPath).Audio()
	return ffmpeg_go.OutputContext(ctx, []*ffmpeg_go.Stream{video, audio}, task.OutputPath, outputArgs(codec, kbps)).
		GlobalArgs("-progress", "pipe:1", "-nostats").
		OverWriteOutput()
}
