package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ceosim/game-engine/internal/model"
	"github.com/ceosim/game-engine/internal/narrative"
	"github.com/ceosim/game-engine/internal/simulate"
)

var (
	simGames    int
	simStrategy string
	simMode     string
)

func simulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Auto-play many games and compare strategies",
		Long: `Plays --games games per strategy with the same engine and prints the
ranking distribution. Use "all" to compare every strategy side by side.`,
		RunE: runSimulate,
	}
	cmd.Flags().IntVarP(&simGames, "games", "g", 100, "Games per strategy")
	cmd.Flags().StringVar(&simStrategy, "strategy", "all", "safe, aggressive, innovative, random, greedy or all")
	cmd.Flags().StringVarP(&simMode, "mode", "m", string(model.ModeSimple), "Game mode: simple or story")
	return cmd
}

func runSimulate(cmd *cobra.Command, args []string) error {
	names := []string{simStrategy}
	if simStrategy == "all" {
		names = simulate.Strategies
	}

	reports := make([]namedReport, 0, len(names))
	for _, name := range names {
		strat, err := simulate.ByName(name)
		if err != nil {
			return err
		}
		e, src, err := newEngine()
		if err != nil {
			return err
		}
		titleColor.Printf("Simulating %d %s games with the %s strategy...\n", simGames, simMode, name)
		rep, err := simulate.Run(e, simGames, model.Mode(simMode), strat, src)
		if err != nil {
			return err
		}
		reports = append(reports, namedReport{name, rep})
	}
	fmt.Println()
	printReports(os.Stdout, reports)
	return nil
}

type namedReport struct {
	strategy string
	simulate.Report
}

var rankingOrder = []model.Ranking{model.RankS, model.RankA, model.RankB, model.RankC, model.RankD}

func printReports(w io.Writer, reports []namedReport) {
	header := []string{"Strategy", "Games"}
	for _, r := range rankingOrder {
		header = append(header, string(r))
	}
	header = append(header, "Bankrupt", "Mean Score", "Best", "Mean Turns", "Mean Market Cap", "Mean Cash")

	table := tablewriter.NewTable(w, tablewriter.WithHeader(header))
	for _, r := range reports {
		row := []string{r.strategy, strconv.Itoa(r.Games)}
		for _, rank := range rankingOrder {
			row = append(row, strconv.Itoa(r.Rankings[rank]))
		}
		row = append(row,
			strconv.Itoa(r.Reasons[model.ReasonBankrupt]+r.Reasons[model.ReasonInsolvent]),
			fmt.Sprintf("%.1f", r.MeanScore),
			strconv.Itoa(r.BestScore),
			fmt.Sprintf("%.1f", r.MeanTurns),
			narrative.Money(r.MeanMarketCap),
			narrative.Money(r.MeanCash),
		)
		_ = table.Append(row)
	}
	_ = table.Render()
}
