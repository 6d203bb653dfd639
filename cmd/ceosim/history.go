package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ceosim/game-engine/internal/narrative"
	"github.com/ceosim/game-engine/internal/store"
)

var historyGame string

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List games saved by play --db",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbPath == "" {
				return fmt.Errorf("--db is required")
			}
			st, err := store.OpenSQLite(cmd.Context(), dbPath)
			if err != nil {
				return err
			}
			defer st.Close()

			if historyGame != "" {
				return printTurns(cmd.Context(), os.Stdout, st, historyGame)
			}
			return printGames(cmd.Context(), os.Stdout, st)
		},
	}
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite file written by play --db")
	cmd.Flags().StringVar(&historyGame, "game", "", "Show the turn ledger of one game")
	return cmd
}

func printGames(ctx context.Context, w io.Writer, st store.Store) error {
	games, err := st.ListGames(ctx)
	if err != nil {
		return err
	}
	if len(games) == 0 {
		fmt.Fprintln(w, "No saved games.")
		return nil
	}

	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"ID", "Company", "Mode", "Status", "Turns", "Market Cap", "Score", "Started"}),
	)
	for _, g := range games {
		s := g.State
		score := "-"
		if s.FinalResults != nil {
			score = fmt.Sprintf("%d (%s)", s.FinalResults.FinalScore, s.FinalResults.Ranking)
		}
		_ = table.Append([]string{
			g.ID,
			s.Company.Name,
			string(s.Mode),
			string(s.GamePhase),
			strconv.Itoa(s.TurnCount),
			narrative.Money(s.Company.MarketCap),
			score,
			g.CreatedAt.Local().Format("2006-01-02 15:04"),
		})
	}
	return table.Render()
}

func printTurns(ctx context.Context, w io.Writer, st store.Store, gameID string) error {
	turns, err := st.ListTurns(ctx, gameID)
	if err != nil {
		return err
	}

	table := tablewriter.NewTable(w,
		tablewriter.WithHeader([]string{"Turn", "Decision", "Type", "Outcome", "Market Cap", "Cash"}),
	)
	for _, t := range turns {
		outcome := "failure"
		if t.Success {
			outcome = "success"
		}
		_ = table.Append([]string{
			strconv.Itoa(t.Turn),
			t.DecisionID,
			string(t.DecisionType),
			outcome,
			narrative.Money(t.MarketCap),
			narrative.Money(t.Cash),
		})
	}
	return table.Render()
}
