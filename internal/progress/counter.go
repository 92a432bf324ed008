package progress

// Counter is an io.Writer that reports every chunk written to it as a
// byte delta against a fixed total.
type Counter struct {
	rep     Reporter
	step    string
	total   int64
	written int64
}

// NewCounter starts a bounded indicator for step and returns the writer
// that advances it.
func NewCounter(rep Reporter, step string, total int64) *Counter {
	if rep == nil {
		rep = Nop{}
	}
	c := &Counter{rep: rep, step: step, total: total}
	rep.Update(Update{Step: step, Stage: StageDownloading, Current: 0, Total: total})
	return c
}

func (c *Counter) Write(p []byte) (int, error) {
	c.written += int64(len(p))
	c.rep.Update(Update{
		Step:    c.step,
		Stage:   StageDownloading,
		Current: c.written,
		Total:   c.total,
	})
	return len(p), nil
}
