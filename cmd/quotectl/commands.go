// Command definitions for quotectl.
package main

import "github.com/urfave/cli/v3"

// initCommand creates the schema or upgrades it in place.
func initCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "init",
		Usage:  "Create the database schema or upgrade it to the latest version",
		Action: r.Init,
	}
}

// loadCommand seeds the store from a file or URL.
func loadCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "load",
		Usage: "Load \"Character: Quote\" lines into the store",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Path to a seed file (defaults to the configured seed source)",
			},
			&cli.StringFlag{
				Name:    "url",
				Aliases: []string{"u"},
				Usage:   "HTTP(S) URL of a seed file",
			},
		},
		Action: r.Load,
	}
}

// sampleCommand loads the built-in starter quotes.
func sampleCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "sample",
		Usage:  "Load the built-in sample quotes",
		Action: r.Sample,
	}
}

// statsCommand prints a summary of the store.
func statsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Print store totals and the most quoted characters",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output JSON",
			},
		},
		Action: r.Stats,
	}
}
