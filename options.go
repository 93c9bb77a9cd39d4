package spmconv

import (
	"log/slog"

	"github.com/jamesainslie/go-spmconv/pipeline"
)

// Option configures a Converter.
type Option func(*config)

type config struct {
	replacement    string
	addPrefixSpace bool
	logger         *slog.Logger
}

func defaultConfig() config {
	return config{
		replacement:    pipeline.DefaultReplacement,
		addPrefixSpace: true,
		logger:         slog.Default(),
	}
}

// WithReplacement sets the whitespace marker used by the Metaspace stages (default: "▁").
func WithReplacement(r string) Option {
	return func(c *config) {
		if r != "" {
			c.replacement = r
		}
	}
}

// WithAddPrefixSpace sets whether a marker is prepended to words (default: true).
func WithAddPrefixSpace(b bool) Option {
	return func(c *config) {
		c.addPrefixSpace = b
	}
}

// WithLogger sets the logger (default: slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}
