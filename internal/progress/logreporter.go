package progress

import (
	"github.com/sirupsen/logrus"
)

// LogReporter renders progress as log lines, one per crossed decile.
// It is used when stdout is not a terminal.
type LogReporter struct {
	Logger *logrus.Entry

	lastDecile map[string]int
}

// NewLogReporter returns a reporter writing through logger.
func NewLogReporter(logger *logrus.Entry) *LogReporter {
	return &LogReporter{Logger: logger, lastDecile: make(map[string]int)}
}

func (r *LogReporter) Update(u Update) {
	pct := u.Percent()
	if pct < 0 {
		return
	}
	d := int(pct) / 10
	if last, ok := r.lastDecile[u.Step]; ok && d <= last {
		return
	}
	r.lastDecile[u.Step] = d
	r.Logger.WithFields(logrus.Fields{
		"step":    u.Step,
		"stage":   u.Stage,
		"percent": d * 10,
		"bytes":   u.Current,
		"total":   u.Total,
	}).Info("progress")
}

func (r *LogReporter) Log(l Log) {
	r.Logger.WithField("step", l.Step).Info(l.Line)
}

func (r *LogReporter) Result(res Result) {
	delete(r.lastDecile, res.Step)
	entry := r.Logger.WithField("step", res.Step)
	if res.Err != nil {
		entry.WithError(res.Err).Warn("step stopped")
		return
	}
	entry.WithFields(logrus.Fields{
		"path":  res.OutputPath,
		"bytes": res.Bytes,
	}).Info("step finished")
}
