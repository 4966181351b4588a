package output

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/diode"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

type LogConfig struct {
	Debug bool
	// File receives a plain-text copy of every record; rotated by size.
	File string
	// Console defaults to os.Stderr.
	Console io.Writer
	// BufferSize is the number of records the async writer holds before dropping.
	BufferSize int
}

// InitLogger points the global zerolog logger at an asynchronous writer so that
// download tasks never wait on log I/O. The returned function
// flushes queued records and releases the sinks.
func InitLogger(cfg LogConfig) (zerolog.Logger, func() error) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if cfg.Debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	if cfg.Console == nil {
		cfg.Console = os.Stderr
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 1000
	}
	writers := []io.Writer{zerolog.ConsoleWriter{
		Out:        cfg.Console,
		TimeFormat: time.DateTime,
	}}
	var file *lumberjack.Logger
	if cfg.File != "" {
		file = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    10, // MB
			MaxBackups: 5,
			MaxAge:     30, // days
		}
		writers = append(writers, zerolog.ConsoleWriter{
			Out:        file,
			TimeFormat: time.DateTime,
			NoColor:    true,
		})
	}
	// the sinks are closed here, not by the diode, so stderr stays open
	sink := struct{ io.Writer }{zerolog.MultiLevelWriter(writers...)}
	dw := diode.NewWriter(sink, cfg.BufferSize, 10*time.Millisecond, func(missed int) {
		fmt.Fprintf(os.Stderr, "logger dropped %d messages\n", missed)
	})
	log.Logger = zerolog.New(dw).With().Timestamp().Str("run", uuid.NewString()[:8]).Logger()
	return log.Logger, func() error {
		err := dw.Close()
		if file != nil {
			if ferr := file.Close(); err == nil {
				err = ferr
			}
		}
		return err
	}
}
