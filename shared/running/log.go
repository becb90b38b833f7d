package running

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// LogOptions mirrors the logging section of the config file.
type LogOptions struct {
	Stderr     bool
	Debug      bool
	File       string
	MaxSize    int
	MaxBackups int
	MaxAge     int
}

var debugLogging bool

// InitLog points the standard logger at stderr or at a rotating log file.
// The returned function closes the file.
func InitLog(opts LogOptions) (func() error, error) {
	debugLogging = opts.Debug

	if opts.Stderr || opts.File == "" {
		log.SetOutput(os.Stderr)
		return func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0755); err != nil {
		return nil, err
	}

	lj := &lumberjack.Logger{
		Filename:   opts.File,
		MaxSize:    opts.MaxSize, // megabytes
		MaxBackups: opts.MaxBackups,
		MaxAge:     opts.MaxAge, // days
		Compress:   true,
	}
	log.SetOutput(lj)
	return lj.Close, nil
}

// DiscardLog silences the standard logger.
func DiscardLog() {
	log.SetOutput(io.Discard)
}

// Debugf logs only when debug logging is enabled.
func Debugf(format string, args ...any) {
	if debugLogging {
		log.Printf("[debug] "+strings.TrimSuffix(format, "\n"), args...)
	}
}
