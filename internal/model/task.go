package model

// DownloadTask is a single fetch of one stream to one file.
type DownloadTask struct {
	URL    string
	Format StreamDescriptor
	Path   string
}

// MergeTask combines a video-only and an audio-only file into OutputPath.
// The two inputs are consumed (deleted) when the merge succeeds.
type MergeTask struct {
	VideoPath  string
	AudioPath  string
	OutputPath string
}

// OutputFile describes a finished file on disk.
type OutputFile struct {
	Path  string
	Bytes int64
}

// ResolverKind selects the backend used to enumerate and stream formats.
type ResolverKind string

const (
	ResolverYouTube ResolverKind = "youtube"
	ResolverYTDLP   ResolverKind = "ytdlp"
)

// Mode is one of the two interactive flows.
type Mode string

const (
	ModeSeparate Mode = "separate" // video-only + audio-only, then merge
	ModeSingle   Mode = "single"   // one already-muxed stream
)

// CLIOptions holds user-configurable runtime options as resolved from
// flags, environment and the config file.
type CLIOptions struct {
	OutDir      string
	Verbose     bool
	LogLevel    string
	Resolver    ResolverKind
	HTTPTimeout int // seconds; 0 means no timeout
	AudioCodec  string
	AudioKbps   int
}
