// Package app contains application services that orchestrate use cases.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jsamuelsen/quote-machine/internal/domain"
	"github.com/jsamuelsen/quote-machine/internal/ports"
)

// maxCharacterLength matches the width of the character column; longer
// names cannot be stored as typed.
const maxCharacterLength = 100

// Pagination fallbacks used when the service config leaves them unset.
const (
	fallbackDefaultPerPage = 20
	fallbackMaxPerPage     = 100
)

// ListParams describes a page request for quote listings. Zero values mean
// "use the default": first page, the configured page size, no filters.
type ListParams struct {
	Page      int
	PerPage   int
	Character string
	Search    string
}

// QuotePage is one page of quotes plus the totals a caller needs to
// render pagination controls.
type QuotePage struct {
	Items      []domain.Quote
	TotalCount int64
	Page       int
	PerPage    int
	TotalPages int
}

// QuoteService orchestrates quote use cases on top of the persistence port.
// It depends on port interfaces, not concrete implementations,
// following the Dependency Inversion Principle.
type QuoteService struct {
	repo           ports.QuoteRepository
	logger         *slog.Logger
	defaultPerPage int
	maxPerPage     int
}

// QuoteServiceConfig contains configuration for the quote service.
type QuoteServiceConfig struct {
	Repository ports.QuoteRepository
	Logger     *slog.Logger

	// DefaultPerPage is the page size used when a request does not name
	// one. Zero selects the built-in fallback.
	DefaultPerPage int

	// MaxPerPage caps the page size a request may ask for.
	// Zero selects the built-in fallback.
	MaxPerPage int
}

// NewQuoteService creates a new quote service with the provided dependencies.
func NewQuoteService(cfg QuoteServiceConfig) *QuoteService {
	if cfg.Repository == nil {
		panic("app: QuoteServiceConfig.Repository is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	defaultPerPage := cfg.DefaultPerPage
	if defaultPerPage <= 0 {
		defaultPerPage = fallbackDefaultPerPage
	}

	maxPerPage := cfg.MaxPerPage
	if maxPerPage <= 0 {
		maxPerPage = fallbackMaxPerPage
	}

	return &QuoteService{
		repo:           cfg.Repository,
		logger:         logger,
		defaultPerPage: defaultPerPage,
		maxPerPage:     maxPerPage,
	}
}

// List returns one page of quotes. Out-of-range paging parameters are
// clamped rather than rejected: page floors at 1, per-page is clamped to
// [1, max], and a page past the end returns empty items with the real
// total so clients can recover.
func (s *QuoteService) List(ctx context.Context, params ListParams) (*QuotePage, error) {
	page := params.Page
	if page < 1 {
		page = 1
	}

	perPage := params.PerPage
	switch {
	case perPage == 0:
		perPage = s.defaultPerPage
	case perPage < 1:
		perPage = 1
	case perPage > s.maxPerPage:
		perPage = s.maxPerPage
	}

	items, total, err := s.repo.List(ctx, ports.ListQuery{
		Character: params.Character,
		Search:    params.Search,
		Offset:    (page - 1) * perPage,
		Limit:     perPage,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list quotes",
			slog.Any("error", err),
		)
		return nil, err
	}

	totalPages := 0
	if total > 0 {
		totalPages = int((total + int64(perPage) - 1) / int64(perPage))
	}

	s.logger.DebugContext(ctx, "listed quotes",
		slog.Int("count", len(items)),
		slog.Int64("total", total),
		slog.Int("page", page),
		slog.Int("per_page", perPage),
	)

	return &QuotePage{
		Items:      items,
		TotalCount: total,
		Page:       page,
		PerPage:    perPage,
		TotalPages: totalPages,
	}, nil
}

// Get retrieves a single quote by its identifier.
func (s *QuoteService) Get(ctx context.Context, id int64) (*domain.Quote, error) {
	quote, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if !domain.IsNotFound(err) {
			s.logger.ErrorContext(ctx, "failed to fetch quote",
				slog.Int64("quote_id", id),
				slog.Any("error", err),
			)
		}
		return nil, err
	}

	s.logger.DebugContext(ctx, "fetched quote", slog.Int64("quote_id", id))

	return quote, nil
}

// Create stores a new quote. Both fields are trimmed before validation,
// and the stored quote starts with equal creation and update timestamps.
func (s *QuoteService) Create(ctx context.Context, quoteText, character string) (*domain.Quote, error) {
	quoteText = strings.TrimSpace(quoteText)
	character = strings.TrimSpace(character)

	if err := validateQuoteText(quoteText); err != nil {
		return nil, err
	}
	if err := validateCharacter(character); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	quote := &domain.Quote{
		QuoteText: quoteText,
		Character: character,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, quote); err != nil {
		s.logger.ErrorContext(ctx, "failed to create quote",
			slog.Any("error", err),
		)
		return nil, err
	}

	s.logger.InfoContext(ctx, "created quote",
		slog.Int64("quote_id", quote.ID),
		slog.String("character", quote.Character),
	)

	return quote, nil
}

// Update applies a partial update to an existing quote. Only the fields
// present in upd change, and a provided field must pass the same
// validation as Create. The update timestamp always moves strictly
// forward; the creation timestamp never changes.
func (s *QuoteService) Update(ctx context.Context, id int64, upd domain.QuoteUpdate) (*domain.Quote, error) {
	if upd.IsEmpty() {
		return nil, domain.NewValidationError("update", "at least one field must be provided")
	}

	quote, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if !domain.IsNotFound(err) {
			s.logger.ErrorContext(ctx, "failed to fetch quote for update",
				slog.Int64("quote_id", id),
				slog.Any("error", err),
			)
		}
		return nil, err
	}

	if upd.QuoteText != nil {
		text := strings.TrimSpace(*upd.QuoteText)
		if err := validateQuoteText(text); err != nil {
			return nil, err
		}
		quote.QuoteText = text
	}

	if upd.Character != nil {
		character := strings.TrimSpace(*upd.Character)
		if err := validateCharacter(character); err != nil {
			return nil, err
		}
		quote.Character = character
	}

	// timestamptz keeps microseconds, so a smaller bump would not survive
	// the round trip when the wall clock has not advanced.
	now := time.Now().UTC()
	if !now.After(quote.UpdatedAt) {
		now = quote.UpdatedAt.Add(time.Microsecond)
	}
	quote.UpdatedAt = now

	if err := s.repo.Update(ctx, quote); err != nil {
		if !domain.IsNotFound(err) {
			s.logger.ErrorContext(ctx, "failed to update quote",
				slog.Int64("quote_id", id),
				slog.Any("error", err),
			)
		}
		return nil, err
	}

	s.logger.InfoContext(ctx, "updated quote", slog.Int64("quote_id", id))

	return quote, nil
}

// Delete removes a quote by its identifier.
func (s *QuoteService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if !domain.IsNotFound(err) {
			s.logger.ErrorContext(ctx, "failed to delete quote",
				slog.Int64("quote_id", id),
				slog.Any("error", err),
			)
		}
		return err
	}

	s.logger.InfoContext(ctx, "deleted quote", slog.Int64("quote_id", id))

	return nil
}

// Random returns a uniformly random quote from the store.
func (s *QuoteService) Random(ctx context.Context) (*domain.Quote, error) {
	quote, err := s.repo.Random(ctx)
	if err != nil {
		if !domain.IsEmptyStore(err) {
			s.logger.ErrorContext(ctx, "failed to fetch random quote",
				slog.Any("error", err),
			)
		}
		return nil, err
	}

	s.logger.DebugContext(ctx, "fetched random quote",
		slog.Int64("quote_id", quote.ID),
	)

	return quote, nil
}

// Characters returns the distinct character names sorted ascending,
// cased exactly as stored.
func (s *QuoteService) Characters(ctx context.Context) ([]string, error) {
	characters, err := s.repo.Characters(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list characters",
			slog.Any("error", err),
		)
		return nil, err
	}

	return characters, nil
}

// Count reports how many quotes are stored.
func (s *QuoteService) Count(ctx context.Context) (int64, error) {
	count, err := s.repo.Count(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to count quotes",
			slog.Any("error", err),
		)
		return 0, err
	}

	return count, nil
}

func validateQuoteText(text string) error {
	if text == "" {
		return domain.NewValidationError("quote_text", "must not be empty")
	}

	return nil
}

func validateCharacter(character string) error {
	if character == "" {
		return domain.NewValidationError("character", "must not be empty")
	}
	if utf8.RuneCountInString(character) > maxCharacterLength {
		return domain.NewValidationError("character",
			fmt.Sprintf("must be at most %d characters", maxCharacterLength))
	}

	return nil
}
