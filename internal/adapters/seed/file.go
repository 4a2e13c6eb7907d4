package seed

import (
	"context"
	"io"
	"os"

	"github.com/jsamuelsen/quote-machine/internal/domain"
)

// FileSource reads seed data from a local file.
type FileSource struct {
	path string
}

// NewFileSource creates a source over the file at path. The file is not
// touched until Open is called.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path}
}

// Open opens the file. A missing or unreadable file is reported as an
// unavailable source, not a hard failure, so callers can fall back or
// retry with a different location.
func (s *FileSource) Open(_ context.Context) (io.ReadCloser, error) {
	f, err := os.Open(s.path)
	if err != nil {
		return nil, domain.NewUnavailableError("seed file", err.Error())
	}

	return f, nil
}
