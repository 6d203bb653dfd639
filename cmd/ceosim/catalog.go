package main

import (
	"fmt"
	"io"
	"os"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ceosim/game-engine/internal/catalog"
	"github.com/ceosim/game-engine/internal/model"
	"github.com/ceosim/game-engine/internal/narrative"
)

func catalogCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the events and decisions of each phase",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog()
			if err != nil {
				return err
			}
			printCatalog(os.Stdout, cat)
			return nil
		},
	}
}

func printCatalog(w io.Writer, cat *catalog.Catalog) {
	for _, phase := range []model.Phase{model.PhaseStartup, model.PhaseGrowth, model.PhaseScale} {
		events := cat.Events(phase)
		titleColor.Fprintf(w, "\n%s phase (%d events)\n", phase, len(events))

		table := tablewriter.NewTable(w,
			tablewriter.WithHeader([]string{"Event", "Decision", "Type", "Risk", "Cost", "Requires Cash"}),
		)
		for _, ev := range events {
			for _, d := range cat.Decisions(ev.ID) {
				_ = table.Append([]string{
					ev.ID,
					fmt.Sprintf("%s (%s)", d.Title, d.ID),
					string(d.Type),
					string(d.Risk),
					narrative.Money(d.Cost),
					narrative.Money(catalog.RequiredCash(d)),
				})
			}
		}
		_ = table.Render()
	}
}
