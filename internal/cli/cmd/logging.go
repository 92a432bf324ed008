package cmd

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"tubegrab/internal/model"
)

// setupLogging configures the standard logrus logger from opts. --verbose
// forces debug regardless of --log-level.
func setupLogging(opts model.CLIOptions) error {
	level, err := logrus.ParseLevel(opts.LogLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", opts.LogLevel, err)
	}
	if opts.Verbose {
		level = logrus.DebugLevel
	}
	logrus.SetLevel(level)
	logrus.SetOutput(os.Stderr)
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "15:04:05",
	})
	return nil
}

// runLogger returns the entry every component of one run logs through.
func runLogger(mode model.Mode) *logrus.Entry {
	return logrus.WithFields(logrus.Fields{
		"run":  uuid.New().String()[:8],
		"mode": string(mode),
	})
}
