package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/jsamuelsen/quote-machine/internal/adapters/storage"
	"github.com/jsamuelsen/quote-machine/internal/platform/config"
)

// Runner holds the dependencies shared by every quotectl command.
type Runner struct {
	cfg    *config.Config
	logger *slog.Logger
	output io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config *config.Config
	Logger *slog.Logger
	Output io.Writer
}

// NewRunner creates a new Runner with the provided dependencies.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		panic("quotectl: RunnerOpts.Config is required")
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	output := opts.Output
	if output == nil {
		output = os.Stdout
	}

	return &Runner{cfg: opts.Config, logger: logger, output: output}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		initCommand, loadCommand, sampleCommand, statsCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// openStore opens the configured database, brings the schema up to date,
// and returns the repository together with a close function.
func (r *Runner) openStore() (*storage.QuoteRepository, func(), error) {
	db, err := storage.Open(&r.cfg.Database, r.logger)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}

	closeStore := func() {
		sqlDB, dbErr := db.DB()
		if dbErr != nil {
			return
		}
		if closeErr := sqlDB.Close(); closeErr != nil {
			r.logger.Warn("closing database", slog.Any("error", closeErr))
		}
	}

	if err := storage.Migrate(db, &r.cfg.Database); err != nil {
		closeStore()
		return nil, nil, fmt.Errorf("migrating database: %w", err)
	}

	return storage.NewQuoteRepository(db), closeStore, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}
	if err != nil {
		return fmt.Errorf("marshaling output: %w", err)
	}

	output = append(output, '\n')
	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	if _, err := fmt.Fprintf(r.output, format, args...); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}

	return nil
}
