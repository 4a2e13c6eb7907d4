package ports

import (
	"context"
	"io"
)

// SeedSource supplies the raw newline-delimited quote data used by the
// seeding workflow. Implementations include local files and remote HTTP
// sources; the seeder does not care which.
type SeedSource interface {
	// Open returns a reader over the source contents. The caller closes it.
	// Returns domain.ErrUnavailable if the source cannot be reached.
	Open(ctx context.Context) (io.ReadCloser, error)
}
