package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/jsamuelsen/quote-machine/internal/adapters/seed"
	"github.com/jsamuelsen/quote-machine/internal/app"
)

// Init opens the configured database and applies any pending schema
// migrations.
func (r *Runner) Init(ctx context.Context, _ *cli.Command) error {
	_, closeStore, err := r.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	r.logger.InfoContext(ctx, "schema is up to date",
		slog.String("driver", r.cfg.Database.Driver),
	)

	return r.writePlain("schema is up to date (%s)\n", r.cfg.Database.Driver)
}

// Load seeds the store from --file or --url, falling back to the
// configured seed source when neither is set.
func (r *Runner) Load(ctx context.Context, cmd *cli.Command) error {
	location := cmd.String("file")
	if url := cmd.String("url"); url != "" {
		if location != "" {
			return errors.New("only one of --file and --url may be set")
		}
		location = url
	}
	if location == "" {
		location = r.cfg.Seed.Source
	}

	src, err := seed.NewSource(location, r.cfg.Seed, r.logger)
	if err != nil {
		return fmt.Errorf("resolving seed source: %w", err)
	}

	repo, closeStore, err := r.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	seeder := app.NewSeeder(app.SeederConfig{Repository: repo, Logger: r.logger})

	report, err := seeder.Load(ctx, src)
	if err != nil {
		return fmt.Errorf("loading quotes: %w", err)
	}

	return r.writePlain("loaded %s: %s\n", location, report)
}

// Sample loads the built-in starter quotes, skipping any already stored.
func (r *Runner) Sample(ctx context.Context, _ *cli.Command) error {
	repo, closeStore, err := r.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	seeder := app.NewSeeder(app.SeederConfig{Repository: repo, Logger: r.logger})

	report, err := seeder.LoadSamples(ctx)
	if err != nil {
		return fmt.Errorf("loading samples: %w", err)
	}

	return r.writePlain("loaded samples: %s\n", report)
}

// statsOutput is the JSON shape of the stats command.
type statsOutput struct {
	TotalQuotes      int64           `json:"total_quotes"`
	UniqueCharacters int             `json:"unique_characters"`
	TopCharacters    []characterStat `json:"top_characters"`
}

type characterStat struct {
	Character string `json:"character"`
	Count     int64  `json:"count"`
}

// Stats prints a point-in-time summary of the store.
func (r *Runner) Stats(ctx context.Context, cmd *cli.Command) error {
	repo, closeStore, err := r.openStore()
	if err != nil {
		return err
	}
	defer closeStore()

	service := app.NewQuoteService(app.QuoteServiceConfig{
		Repository:     repo,
		Logger:         r.logger,
		DefaultPerPage: r.cfg.Pagination.DefaultPerPage,
		MaxPerPage:     r.cfg.Pagination.MaxPerPage,
	})

	stats, err := service.Stats(ctx)
	if err != nil {
		return fmt.Errorf("collecting stats: %w", err)
	}

	if cmd.Bool("json") {
		out := statsOutput{
			TotalQuotes:      stats.TotalQuotes,
			UniqueCharacters: stats.UniqueCharacters,
			TopCharacters:    make([]characterStat, 0, len(stats.TopCharacters)),
		}
		for _, c := range stats.TopCharacters {
			out.TopCharacters = append(out.TopCharacters, characterStat{
				Character: c.Character,
				Count:     c.Count,
			})
		}

		return r.writeJSON(out, true)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "quotes:     %d\n", stats.TotalQuotes)
	fmt.Fprintf(&b, "characters: %d\n", stats.UniqueCharacters)
	if len(stats.TopCharacters) > 0 {
		b.WriteString("top characters:\n")
		for _, c := range stats.TopCharacters {
			fmt.Fprintf(&b, "  %-12s %d\n", c.Character, c.Count)
		}
	}

	return r.writePlain("%s", b.String())
}
