package internal

import (
	"io"

	"github.com/starford/annotator/internal/annotation"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	clock  annotation.Clock
	out    io.Writer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithClock sets the clock used for "today" default content.
func WithClock(c annotation.Clock) Option {
	return func(a *application) {
		a.clock = c
	}
}

// WithOutput sets where command output is written.
func WithOutput(w io.Writer) Option {
	return func(a *application) {
		a.out = w
	}
}
