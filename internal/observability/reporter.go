package observability

import (
	"log"
)

// LogReporter writes error reports to a logger and counts them. It never
// fails and never blocks on anything but the log writer.
type LogReporter struct {
	logger *log.Logger
}

// NewLogReporter returns a reporter writing to logger, or to the standard
// logger when logger is nil.
func NewLogReporter(logger *log.Logger) *LogReporter {
	if logger == nil {
		logger = log.Default()
	}
	return &LogReporter{logger: logger}
}

// Report records err for userID under operation op.
func (r *LogReporter) Report(userID string, err error, op string) {
	if err == nil {
		return
	}
	syncErrors.WithLabelValues(op).Inc()
	r.logger.Printf("sync error op=%s user=%q: %v", op, userID, err)
}
