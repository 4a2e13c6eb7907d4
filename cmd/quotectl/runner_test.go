package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/jsamuelsen/quote-machine/internal/platform/config"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// testRunner builds a Runner backed by a throwaway sqlite database and a
// capture buffer for command output.
func testRunner(t *testing.T) (*Runner, *bytes.Buffer) {
	t.Helper()

	cfg := &config.Config{
		Database: config.DatabaseConfig{
			Driver:       "sqlite",
			DSN:          filepath.Join(t.TempDir(), "quotes.db"),
			MaxOpenConns: 1,
		},
		Pagination: config.PaginationConfig{
			DefaultPerPage: 20,
			MaxPerPage:     100,
		},
		Seed: config.SeedConfig{
			Timeout: 5 * time.Second,
			Retry: config.RetryConfig{
				MaxAttempts:     2,
				InitialInterval: 5 * time.Millisecond,
				MaxInterval:     20 * time.Millisecond,
				Multiplier:      2.0,
			},
		},
	}

	out := &bytes.Buffer{}

	return NewRunner(RunnerOpts{
		Config: cfg,
		Logger: discardLogger(),
		Output: out,
	}), out
}

// runCommand executes one quotectl command the way main assembles it.
func runCommand(t *testing.T, r *Runner, args ...string) error {
	t.Helper()

	cmd := &cli.Command{
		Name:     "quotectl",
		Commands: r.register(),
	}

	return cmd.Run(context.Background(), append([]string{"quotectl"}, args...))
}

func TestNewRunner(t *testing.T) {
	t.Run("with all dependencies provided", func(t *testing.T) {
		cfg := &config.Config{}
		logger := discardLogger()
		out := &bytes.Buffer{}

		r := NewRunner(RunnerOpts{Config: cfg, Logger: logger, Output: out})

		assert.Same(t, cfg, r.cfg)
		assert.Same(t, logger, r.logger)
		assert.Same(t, out, r.output)
	})

	t.Run("nil config panics", func(t *testing.T) {
		assert.Panics(t, func() {
			NewRunner(RunnerOpts{})
		})
	})

	t.Run("nil logger uses default", func(t *testing.T) {
		r := NewRunner(RunnerOpts{Config: &config.Config{}})

		assert.NotNil(t, r.logger)
	})

	t.Run("nil output uses stdout", func(t *testing.T) {
		r := NewRunner(RunnerOpts{Config: &config.Config{}})

		assert.Same(t, os.Stdout, r.output)
	})
}

func TestRunner_Register(t *testing.T) {
	r, _ := testRunner(t)

	commands := r.register()

	names := make([]string, 0, len(commands))
	for _, cmd := range commands {
		names = append(names, cmd.Name)
	}

	assert.Equal(t, []string{"init", "load", "sample", "stats"}, names)
}

func TestRunner_WriteJSON(t *testing.T) {
	t.Run("compact", func(t *testing.T) {
		r, out := testRunner(t)

		require.NoError(t, r.writeJSON(map[string]int{"count": 3}, false))

		assert.Equal(t, "{\"count\":3}\n", out.String())
	})

	t.Run("pretty", func(t *testing.T) {
		r, out := testRunner(t)

		require.NoError(t, r.writeJSON(map[string]int{"count": 3}, true))

		assert.Contains(t, out.String(), "  \"count\": 3")
	})
}

func TestRunner_WritePlain(t *testing.T) {
	r, out := testRunner(t)

	require.NoError(t, r.writePlain("loaded %d quotes\n", 7))

	assert.Equal(t, "loaded 7 quotes\n", out.String())
}

func TestInitCommand(t *testing.T) {
	r, out := testRunner(t)

	require.NoError(t, runCommand(t, r, "init"))

	assert.Contains(t, out.String(), "schema is up to date (sqlite)")
}

func TestSampleCommand(t *testing.T) {
	r, out := testRunner(t)

	require.NoError(t, runCommand(t, r, "sample"))
	assert.Contains(t, out.String(), "inserted=10 duplicates=0")

	out.Reset()

	// Reloading the samples only counts duplicates.
	require.NoError(t, runCommand(t, r, "sample"))
	assert.Contains(t, out.String(), "inserted=0 duplicates=10")
}

func TestLoadCommand(t *testing.T) {
	seedLines := "Bender: Bite my shiny metal ass!\n" +
		"no colon on this line\n" +
		"Leela: We're trying to save the environment!\n"

	t.Run("from file", func(t *testing.T) {
		r, out := testRunner(t)

		path := filepath.Join(t.TempDir(), "quotes.txt")
		require.NoError(t, os.WriteFile(path, []byte(seedLines), 0o600))

		require.NoError(t, runCommand(t, r, "load", "--file", path))
		assert.Contains(t, out.String(), "inserted=2 duplicates=0 malformed=1")

		out.Reset()

		// A second pass over the same file only finds duplicates.
		require.NoError(t, runCommand(t, r, "load", "--file", path))
		assert.Contains(t, out.String(), "inserted=0 duplicates=2 malformed=1")
	})

	t.Run("from url", func(t *testing.T) {
		r, out := testRunner(t)

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(seedLines))
		}))
		defer srv.Close()

		require.NoError(t, runCommand(t, r, "load", "--url", srv.URL+"/quotes.txt"))

		assert.Contains(t, out.String(), "inserted=2 duplicates=0 malformed=1")
	})

	t.Run("rejects both file and url", func(t *testing.T) {
		r, _ := testRunner(t)

		err := runCommand(t, r, "load", "--file", "quotes.txt", "--url", "http://quotes.example.com/q.txt")

		assert.ErrorContains(t, err, "only one of --file and --url")
	})

	t.Run("no source configured", func(t *testing.T) {
		r, _ := testRunner(t)

		err := runCommand(t, r, "load")

		assert.ErrorContains(t, err, "seed source location is empty")
	})
}

func TestStatsCommand(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		r, out := testRunner(t)

		require.NoError(t, runCommand(t, r, "sample"))
		out.Reset()

		require.NoError(t, runCommand(t, r, "stats"))

		assert.Contains(t, out.String(), "quotes:     10")
		assert.Contains(t, out.String(), "characters: 7")
		assert.Contains(t, out.String(), "top characters:")
		assert.Contains(t, out.String(), "Bender")
	})

	t.Run("json", func(t *testing.T) {
		r, out := testRunner(t)

		require.NoError(t, runCommand(t, r, "sample"))
		out.Reset()

		require.NoError(t, runCommand(t, r, "stats", "--json"))

		var got statsOutput
		require.NoError(t, json.Unmarshal(out.Bytes(), &got))

		assert.Equal(t, int64(10), got.TotalQuotes)
		assert.Equal(t, 7, got.UniqueCharacters)
		require.Len(t, got.TopCharacters, 5)
		assert.Equal(t, characterStat{Character: "Bender", Count: 2}, got.TopCharacters[0])
	})

	t.Run("empty store", func(t *testing.T) {
		r, out := testRunner(t)

		require.NoError(t, runCommand(t, r, "stats"))

		assert.Contains(t, out.String(), "quotes:     0")
		assert.Contains(t, out.String(), "characters: 0")
		assert.NotContains(t, out.String(), "top characters:")
	})
}
