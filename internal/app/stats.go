package app

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/jsamuelsen/quote-machine/internal/domain"
)

// topCharacterLimit caps how many characters a stats snapshot ranks.
const topCharacterLimit = 5

// StoreStats is a point-in-time summary of the quote store.
type StoreStats struct {
	TotalQuotes      int64
	UniqueCharacters int
	TopCharacters    []domain.CharacterCount
}

// Stats assembles a summary of the store. The three aggregate queries are
// independent, so they run concurrently; the first failure cancels the
// others via the group context.
func (s *QuoteService) Stats(ctx context.Context) (*StoreStats, error) {
	var stats StoreStats

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		total, err := s.repo.Count(ctx)
		if err != nil {
			return fmt.Errorf("counting quotes: %w", err)
		}
		stats.TotalQuotes = total

		return nil
	})

	g.Go(func() error {
		characters, err := s.repo.Characters(ctx)
		if err != nil {
			return fmt.Errorf("listing characters: %w", err)
		}
		stats.UniqueCharacters = len(characters)

		return nil
	})

	g.Go(func() error {
		top, err := s.repo.CharacterCounts(ctx, topCharacterLimit)
		if err != nil {
			return fmt.Errorf("ranking characters: %w", err)
		}
		stats.TopCharacters = top

		return nil
	})

	if err := g.Wait(); err != nil {
		s.logger.ErrorContext(ctx, "failed to collect store stats",
			slog.Any("error", err),
		)
		return nil, err
	}

	return &stats, nil
}
