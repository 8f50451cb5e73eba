package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const (
	logDir      = "logs"
	logFileName = "whackamole.log"
	maxLogSize  = 10 * 1024 * 1024
)

// setupLogging sends logs to logs/whackamole.log when debug is set and
// discards them otherwise; the screen owns stdout and stderr. A log file
// over maxLogSize is renamed with a timestamp first. The caller closes the
// returned file.
func setupLogging(debug bool) *os.File {
	if !debug {
		log.Logger = zerolog.New(io.Discard)
		return nil
	}

	if err := os.MkdirAll(logDir, 0o755); err != nil {
		log.Logger = zerolog.New(io.Discard)
		return nil
	}

	logPath := filepath.Join(logDir, logFileName)
	if info, err := os.Stat(logPath); err == nil && info.Size() > maxLogSize {
		rotated := filepath.Join(logDir, fmt.Sprintf("whackamole-%s.log", time.Now().Format("20060102-150405")))
		_ = os.Rename(logPath, rotated)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Logger = zerolog.New(io.Discard)
		return nil
	}

	zerolog.SetGlobalLevel(zerolog.DebugLevel)
	log.Logger = zerolog.New(f).With().Timestamp().Logger()
	return f
}
