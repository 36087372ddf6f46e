package logging

import (
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// New builds the process logger. The TUI owns stdout and stderr, so log
// output goes to the file at path, or nowhere when path is empty.
func New(path string) (*logrus.Logger, error) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	if path == "" {
		return log, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}
	log.SetOutput(f)
	log.SetLevel(logrus.DebugLevel)
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return log, nil
}
