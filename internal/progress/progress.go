package progress

// Stage identifies a high-level step in a run.
type Stage string

const (
	StageDownloading Stage = "downloading"
	StageMerging     Stage = "merging"
)

// Update conveys progress for a step. Current and Total are bytes (or a
// byte-equivalent for merges); Total is 0 when the size is unknown.
type Update struct {
	Step    string // "video", "audio", "merge", "download"
	Stage   Stage
	Current int64
	Total   int64
}

// Percent returns 0..100, or -1 when Total is unknown.
func (u Update) Percent() float64 {
	if u.Total <= 0 {
		return -1
	}
	p := float64(u.Current) / float64(u.Total) * 100
	if p > 100 {
		return 100
	}
	return p
}

// Log is a free-form notice associated with a step.
type Log struct {
	Step string
	Line string
}

// Result is emitted once per step when it completes or fails. It stops
// whatever indicator the step started.
type Result struct {
	Step       string
	OutputPath string
	Bytes      int64
	Err        error // nil on success
}

// Reporter is implemented by the terminal bar, the log reporter and tests.
type Reporter interface {
	Update(u Update)
	Log(l Log)
	Result(r Result)
}

// Nop discards everything.
type Nop struct{}

func (Nop) Update(Update) {}
func (Nop) Log(Log)       {}
func (Nop) Result(Result) {}
