package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ceosim/game-engine/internal/catalog"
	"github.com/ceosim/game-engine/internal/finance"
	"github.com/ceosim/game-engine/internal/game"
	"github.com/ceosim/game-engine/internal/model"
	"github.com/ceosim/game-engine/internal/rng"
)

var (
	catalogPath string
	seed        int64
	maxTurns    int
	verbose     bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "ceosim",
		Short: "CEO business simulation in the terminal",
		Long: `Run a company for twenty turns: answer business events, grow from
startup to scale, and finish with a score and a ranking.

The same engine backs the HTTP server; this tool plays it locally,
auto-plays it in bulk, and browses the event catalog.`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			var w io.Writer = io.Discard
			if verbose {
				w = os.Stderr
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})))
		},
	}

	rootCmd.PersistentFlags().StringVarP(&catalogPath, "catalog", "c", "", "Path to a YAML event catalog (default: built-in)")
	rootCmd.PersistentFlags().Int64VarP(&seed, "seed", "s", 0, "Random seed (0 seeds from the clock)")
	rootCmd.PersistentFlags().IntVarP(&maxTurns, "max-turns", "t", game.DefaultMaxTurns, "Turns per game")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Debug logging on stderr")

	rootCmd.AddCommand(playCmd(), simulateCmd(), catalogCmd(), historyCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadCatalog() (*catalog.Catalog, error) {
	cat, err := catalog.Load(catalogPath)
	if err != nil {
		return nil, err
	}
	size := cat.Size()
	slog.Debug("catalog loaded",
		"path", catalogPath,
		"startup", size[model.PhaseStartup],
		"growth", size[model.PhaseGrowth],
		"scale", size[model.PhaseScale],
	)
	return cat, nil
}

// newEngine builds an engine and the random source it draws from.
func newEngine() (*game.Engine, rng.Source, error) {
	cat, err := loadCatalog()
	if err != nil {
		return nil, nil, err
	}
	src := rng.New(seed)
	cfg := game.Config{MaxTurns: maxTurns, Rates: finance.DefaultRates()}
	return game.New(cat, src, cfg), src, nil
}
