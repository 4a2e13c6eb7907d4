package app

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/jsamuelsen/quote-machine/internal/domain"
	"github.com/jsamuelsen/quote-machine/internal/ports"
)

// sampleQuotes is the built-in starter set for demos and development.
var sampleQuotes = []struct{ Character, QuoteText string }{
	{"Bender", "Bite my shiny metal ass!"},
	{"Bender", "I'm gonna build my own theme park! With blackjack! And hookers!"},
	{"Professor", "Good news, everyone!"},
	{"Professor", "Sweet zombie Jesus!"},
	{"Fry", "Shut up and take my money!"},
	{"Fry", "I can't swallow that!"},
	{"Leela", "Bender, we're trying to save the environment!"},
	{"Zoidberg", "Why not Zoidberg?"},
	{"Hermes", "Sweet three-toed sloth of ice planet Hoth!"},
	{"Scruffy", "Scruffy believes in this company."},
}

// SeedReport tallies one seeding run.
type SeedReport struct {
	Inserted   int
	Duplicates int
	Malformed  int
}

// String renders the tallies the way the CLI and logs print them.
func (r SeedReport) String() string {
	return fmt.Sprintf("inserted=%d duplicates=%d malformed=%d",
		r.Inserted, r.Duplicates, r.Malformed)
}

// Seeder loads quotes from line-oriented sources into the store.
// Loading is idempotent: a line whose exact text and character are
// already stored counts as a duplicate instead of creating a second row.
type Seeder struct {
	repo   ports.QuoteRepository
	logger *slog.Logger
}

// SeederConfig contains configuration for the seeder.
type SeederConfig struct {
	Repository ports.QuoteRepository
	Logger     *slog.Logger
}

// NewSeeder creates a new seeder with the provided dependencies.
func NewSeeder(cfg SeederConfig) *Seeder {
	if cfg.Repository == nil {
		panic("app: SeederConfig.Repository is required")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Seeder{repo: cfg.Repository, logger: logger}
}

// Load reads "Character: Quote" lines from src and inserts the ones not
// already stored. Blank lines are skipped silently; malformed lines are
// counted and logged but never abort the run. Only a source or storage
// failure returns an error, together with the counts tallied so far.
func (s *Seeder) Load(ctx context.Context, src ports.SeedSource) (SeedReport, error) {
	var report SeedReport

	r, err := src.Open(ctx)
	if err != nil {
		return report, fmt.Errorf("opening seed source: %w", err)
	}
	defer r.Close()

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		character, quoteText, ok := parseQuoteLine(line)
		if !ok {
			report.Malformed++
			s.logger.WarnContext(ctx, "skipping malformed seed line",
				slog.Int("line", lineNo),
			)
			continue
		}

		created, err := s.insert(ctx, character, quoteText)
		if err != nil {
			return report, fmt.Errorf("seeding line %d: %w", lineNo, err)
		}
		if created {
			report.Inserted++
		} else {
			report.Duplicates++
		}
	}
	if err := scanner.Err(); err != nil {
		return report, fmt.Errorf("reading seed source: %w", err)
	}

	s.logger.InfoContext(ctx, "seed load finished",
		slog.Int("inserted", report.Inserted),
		slog.Int("duplicates", report.Duplicates),
		slog.Int("malformed", report.Malformed),
	)

	return report, nil
}

// LoadSamples inserts the built-in sample set, skipping quotes that are
// already stored.
func (s *Seeder) LoadSamples(ctx context.Context) (SeedReport, error) {
	var report SeedReport

	for _, sample := range sampleQuotes {
		created, err := s.insert(ctx, sample.Character, sample.QuoteText)
		if err != nil {
			return report, fmt.Errorf("seeding samples: %w", err)
		}
		if created {
			report.Inserted++
		} else {
			report.Duplicates++
		}
	}

	s.logger.InfoContext(ctx, "sample load finished",
		slog.Int("inserted", report.Inserted),
		slog.Int("duplicates", report.Duplicates),
	)

	return report, nil
}

func (s *Seeder) insert(ctx context.Context, character, quoteText string) (bool, error) {
	now := time.Now().UTC()

	return s.repo.CreateIfAbsent(ctx, &domain.Quote{
		QuoteText: quoteText,
		Character: character,
		CreatedAt: now,
		UpdatedAt: now,
	})
}

// parseQuoteLine splits a "Character: Quote" line on its first colon and
// trims both sides. A line with no colon, an empty side, or a character
// name wider than the character column is malformed.
func parseQuoteLine(line string) (character, quoteText string, ok bool) {
	before, after, found := strings.Cut(line, ":")
	if !found {
		return "", "", false
	}

	character = strings.TrimSpace(before)
	quoteText = strings.TrimSpace(after)
	if character == "" || quoteText == "" {
		return "", "", false
	}
	if utf8.RuneCountInString(character) > maxCharacterLength {
		return "", "", false
	}

	return character, quoteText, true
}
