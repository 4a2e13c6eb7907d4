// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application layer
// to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never external DTOs or infrastructure types
//   - Error returns use domain error types (ErrNotFound, ErrEmptyStore, etc.)
//   - Keep interfaces small and focused (Interface Segregation Principle)
package ports

import (
	"context"

	"github.com/jsamuelsen/quote-machine/internal/domain"
)

// ListQuery describes filtering and paging for quote listings.
// Offset and Limit are row positions already clamped by the caller;
// the repository applies them verbatim.
type ListQuery struct {
	// Character filters to quotes whose character matches exactly,
	// ignoring case. Empty means no character filter.
	Character string

	// Search filters to quotes whose text contains this substring,
	// ignoring case. Empty means no text filter.
	Search string

	// Offset is the number of rows to skip.
	Offset int

	// Limit is the maximum number of rows to return. Zero means no rows,
	// only the count.
	Limit int
}

// QuoteRepository is the persistence port for quotes.
// Implementations must keep listing order stable (id ascending) so that
// consecutive pages never overlap or skip rows.
type QuoteRepository interface {
	// List returns one page of quotes matching the query plus the total
	// number of matching rows across all pages.
	List(ctx context.Context, query ListQuery) ([]domain.Quote, int64, error)

	// GetByID retrieves a quote by its identifier.
	// Returns domain.ErrNotFound if the quote does not exist.
	GetByID(ctx context.Context, id int64) (*domain.Quote, error)

	// Create inserts a new quote and fills in its assigned ID.
	Create(ctx context.Context, quote *domain.Quote) error

	// CreateIfAbsent inserts the quote unless a row with the exact same
	// text and character already exists. Reports whether a row was created.
	// Used by seeding so that reloading a source stays idempotent.
	CreateIfAbsent(ctx context.Context, quote *domain.Quote) (bool, error)

	// Update persists the quote's current field values under its ID.
	// Returns domain.ErrNotFound if the quote does not exist.
	Update(ctx context.Context, quote *domain.Quote) error

	// Delete removes a quote by its identifier.
	// Returns domain.ErrNotFound if the quote does not exist.
	Delete(ctx context.Context, id int64) error

	// Random returns a uniformly random quote.
	// Returns domain.ErrEmptyStore when no quotes are stored.
	Random(ctx context.Context) (*domain.Quote, error)

	// Characters returns the distinct character names sorted ascending,
	// cased exactly as stored.
	Characters(ctx context.Context) ([]string, error)

	// CharacterCounts returns up to limit characters ordered by how many
	// quotes each has, most quoted first.
	CharacterCounts(ctx context.Context, limit int) ([]domain.CharacterCount, error)

	// Count returns the total number of stored quotes.
	Count(ctx context.Context) (int64, error)
}
