// Package logging fans log events out to a console sink and a file sink.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

type Options struct {
	Level string // debug, info, warn or error
	// Human readable sink, usually os.Stdout. Nil disables it.
	Console io.Writer
	NoColor bool
	// JSON lines sink, truncated on open. Empty disables it.
	File string
}

type Sinks struct {
	writers []io.Writer
	files   []*os.File
}

// New builds a logger writing to every sink enabled in opts.
// Close the returned sinks to flush the log file.
func New(opts Options) (zerolog.Logger, *Sinks, error) {
	level := zerolog.InfoLevel
	if opts.Level != "" {
		parsed, err := zerolog.ParseLevel(opts.Level)
		if err != nil {
			return zerolog.Nop(), nil, errors.Wrapf(err, "log level %q", opts.Level)
		}
		level = parsed
	}

	sinks := &Sinks{}
	if opts.Console != nil {
		sinks.Add(zerolog.ConsoleWriter{Out: opts.Console, TimeFormat: time.RFC3339, NoColor: opts.NoColor})
	}
	if opts.File != "" {
		f, err := os.Create(opts.File)
		if err != nil {
			return zerolog.Nop(), nil, errors.Wrap(err, "could not open log file")
		}
		sinks.files = append(sinks.files, f)
		sinks.Add(f)
	}

	logger := zerolog.New(sinks.Writer()).Level(level).With().Timestamp().Logger()
	return logger, sinks, nil
}

func (s *Sinks) Add(w io.Writer) {
	s.writers = append(s.writers, w)
}

// Writer dispatches every event to all registered sinks
func (s *Sinks) Writer() io.Writer {
	if len(s.writers) == 0 {
		return io.Discard
	}
	return zerolog.MultiLevelWriter(s.writers...)
}

func (s *Sinks) Close() error {
	var first error
	for _, f := range s.files {
		if err := f.Close(); err != nil && first == nil {
			first = err
		}
	}
	s.files = nil
	return first
}
