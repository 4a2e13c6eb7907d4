// Package seed provides the quote sources consumed by the seeding
// workflow: local files and remote HTTP(S) endpoints serving
// newline-delimited "Character: Quote" data.
package seed

import (
	"errors"
	"log/slog"
	"strings"

	"github.com/jsamuelsen/quote-machine/internal/platform/config"
	"github.com/jsamuelsen/quote-machine/internal/ports"
)

// NewSource returns the source matching the given location: an HTTP
// source for http(s) URLs, a file source for anything else.
func NewSource(location string, cfg config.SeedConfig, logger *slog.Logger) (ports.SeedSource, error) {
	if strings.TrimSpace(location) == "" {
		return nil, errors.New("seed source location is empty")
	}

	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		return NewHTTPSource(location, cfg, logger)
	}

	return NewFileSource(location), nil
}
