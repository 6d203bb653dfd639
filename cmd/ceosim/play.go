package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/ceosim/game-engine/internal/game"
	"github.com/ceosim/game-engine/internal/model"
	"github.com/ceosim/game-engine/internal/narrative"
	"github.com/ceosim/game-engine/internal/store"
)

var (
	companyName string
	playMode    string
	dbPath      string
)

var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen, color.Bold)
	failColor    = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgYellow)
	dimColor     = color.New(color.Faint)
)

func playCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "play",
		Short: "Play a game interactively",
		RunE:  runPlay,
	}
	cmd.Flags().StringVarP(&companyName, "name", "n", "Acme", "Company name")
	cmd.Flags().StringVarP(&playMode, "mode", "m", string(model.ModeSimple), "Game mode: simple or story")
	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite file to save the game to")
	return cmd
}

func runPlay(cmd *cobra.Command, args []string) error {
	e, _, err := newEngine()
	if err != nil {
		return err
	}

	var st store.Store
	if dbPath != "" {
		lite, err := store.OpenSQLite(cmd.Context(), dbPath)
		if err != nil {
			return err
		}
		defer lite.Close()
		st = lite
	}

	p := &player{engine: e, store: st, in: os.Stdin, out: os.Stdout}
	return p.run(cmd.Context(), companyName, model.Mode(playMode))
}

// player drives one interactive game over a line-oriented reader.
type player struct {
	engine *game.Engine
	store  store.Store // optional
	in     io.Reader
	out    io.Writer

	game *store.Game
}

func (p *player) run(ctx context.Context, name string, mode model.Mode) error {
	out, err := p.engine.Start(name, mode)
	if err != nil {
		return err
	}
	if !out.Accepted {
		return fmt.Errorf("cannot start: %s", out.Message)
	}
	p.game = &store.Game{ID: uuid.NewString(), State: out.State}
	if p.store != nil {
		if err := p.store.CreateGame(ctx, p.game); err != nil {
			return err
		}
		slog.Info("game saved", "id", p.game.ID)
	}

	titleColor.Fprintf(p.out, "\n%s\n\n", out.Message)
	p.printTurn()

	sc := bufio.NewScanner(p.in)
	for !game.IsGameComplete(p.game.State) {
		fmt.Fprint(p.out, "> ")
		if !sc.Scan() {
			break
		}
		quit, err := p.handle(ctx, strings.TrimSpace(sc.Text()))
		if err != nil {
			return err
		}
		if quit {
			fmt.Fprintln(p.out, "Bye.")
			return nil
		}
	}
	if err := sc.Err(); err != nil {
		return err
	}

	if game.IsGameComplete(p.game.State) {
		p.printFinal()
	}
	return nil
}

// handle executes one command line. It reports whether the player quit.
func (p *player) handle(ctx context.Context, line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false, nil
	}

	switch fields[0] {
	case "q", "quit":
		return true, nil
	case "h", "help", "?":
		p.printHelp()
		return false, nil
	case "s", "status":
		p.printStatus()
		return false, nil
	case "p", "product":
		if len(fields) < 4 {
			failColor.Fprintln(p.out, "usage: p <low|medium|high> <category> <name>")
			return false, nil
		}
		return false, p.apply(ctx, game.DevelopProduct{
			Investment: game.Investment(fields[1]),
			Category:   model.ProductCategory(fields[2]),
			Name:       strings.Join(fields[3:], " "),
		})
	case "m", "market":
		if len(fields) != 3 {
			failColor.Fprintln(p.out, "usage: m <region> <aggressive|moderate|conservative>")
			return false, nil
		}
		return false, p.apply(ctx, game.EnterMarket{RegionID: fields[1], Strategy: game.Strategy(fields[2])})
	}

	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 1 || n > len(p.game.State.AvailableDecisions) {
		failColor.Fprintf(p.out, "Unknown command %q. Type h for help.\n", line)
		return false, nil
	}
	return false, p.decide(ctx, p.game.State.AvailableDecisions[n-1].ID)
}

func (p *player) decide(ctx context.Context, decisionID string) error {
	out, err := p.engine.Submit(p.game.State, decisionID)
	if err != nil {
		return err
	}
	if !out.Accepted {
		failColor.Fprintln(p.out, out.Message)
		return nil
	}
	p.game.State = out.State
	if err := p.save(ctx, out.Result); err != nil {
		return err
	}

	if res := out.Result; res != nil {
		if res.Success {
			successColor.Fprintf(p.out, "\n✓ %s\n", res.Message)
		} else {
			failColor.Fprintf(p.out, "\n✗ %s\n", res.Message)
		}
		fmt.Fprintf(p.out, "  Market cap %s, cash %s, happy people %s, reputation %+d, staff %+d\n",
			signedMoney(res.Effects.MarketCapChange.IsNegative(), narrative.Money(res.Effects.MarketCapChange.Abs())),
			signedMoney(res.Effects.CashChange.IsNegative(), narrative.Money(res.Effects.CashChange.Abs())),
			narrative.Count(res.Effects.HappyPeopleChange),
			res.Effects.ReputationChange,
			res.Effects.EmployeesChange,
		)
		if res.SynergyCount > 0 {
			infoColor.Fprintf(p.out, "  Strategy synergy x%.2f (%d in a row)\n", res.SynergyMultiplier, res.SynergyCount)
		}
		if fb := res.Feedback; fb != nil {
			dimColor.Fprintf(p.out, "  Why: %s\n  Lesson: %s\n  Tip: %s\n", fb.Why, fb.Lesson, fb.Tip)
		}
	}
	if q := out.Quarter; q != nil {
		infoColor.Fprintf(p.out, "  Quarter closed: revenue %s, research +%d", narrative.Money(q.Revenue), q.ResearchGained)
		if len(q.Released) > 0 {
			infoColor.Fprintf(p.out, ", released %s", strings.Join(q.Released, ", "))
		}
		fmt.Fprintln(p.out)
	}
	fmt.Fprintln(p.out)

	if !game.IsGameComplete(p.game.State) {
		p.printTurn()
	}
	return nil
}

// apply runs a story action that does not consume a turn.
func (p *player) apply(ctx context.Context, a game.Action) error {
	out, err := p.engine.Reduce(p.game.State, a)
	if err != nil {
		return err
	}
	if !out.Accepted {
		failColor.Fprintln(p.out, out.Message)
		return nil
	}
	p.game.State = out.State
	if err := p.save(ctx, nil); err != nil {
		return err
	}
	successColor.Fprintln(p.out, out.Message)
	return nil
}

func (p *player) save(ctx context.Context, res *model.DecisionResult) error {
	if p.store == nil {
		return nil
	}
	if err := p.store.SaveGame(ctx, p.game); err != nil {
		return err
	}
	if res != nil {
		rec := store.NewTurnRecord(p.game.ID, p.game.State, *res)
		if err := p.store.InsertTurn(ctx, &rec); err != nil {
			return err
		}
	}
	return nil
}

func (p *player) printTurn() {
	s := p.game.State
	c := s.Company
	titleColor.Fprintf(p.out, "Turn %d/%d · %d-%02d · %s phase\n",
		s.TurnCount+1, p.engine.Config().MaxTurns, c.Year, c.Month, game.CurrentPhase(s))
	fmt.Fprintf(p.out, "Market cap %s · Cash %s · Happy people %s · Reputation %d · Staff %d\n",
		narrative.Money(c.MarketCap), narrative.Money(c.Cash), narrative.Count(s.TotalHappyPeople()),
		c.Reputation, c.Employees)
	if s.Situation != "" {
		dimColor.Fprintln(p.out, s.Situation)
	}

	if ev := s.CurrentEvent; ev != nil {
		fmt.Fprintln(p.out)
		infoColor.Fprintf(p.out, "%s [%s, %s urgency]\n", ev.Title, ev.Impact, ev.Urgency)
		fmt.Fprintln(p.out, ev.Description)
	}

	table := tablewriter.NewTable(p.out,
		tablewriter.WithHeader([]string{"#", "Decision", "Type", "Risk", "Cost", "Market Cap"}),
	)
	for i, d := range s.AvailableDecisions {
		_ = table.Append([]string{
			strconv.Itoa(i + 1),
			d.Title,
			string(d.Type),
			string(d.Risk),
			narrative.Money(d.Cost),
			narrative.Money(d.Effects.MarketCap.Min) + " to " + narrative.Money(d.Effects.MarketCap.Max),
		})
	}
	_ = table.Render()
}

func (p *player) printStatus() {
	s := p.game.State
	fmt.Fprintf(p.out, "Revenue %s · Monthly profit %s · Research %d · Decisions %d\n",
		narrative.Money(s.Company.Revenue), signedMoney(s.Company.MonthlyProfit.IsNegative(), narrative.Money(s.Company.MonthlyProfit.Abs())),
		s.ResearchPoints, len(s.PastDecisions))
	if s.Mode != model.ModeStory {
		return
	}

	regions := tablewriter.NewTable(p.out,
		tablewriter.WithHeader([]string{"Region", "Population", "Happiness", "Penetration", "Happy Reached"}),
	)
	for _, r := range s.Regions {
		_ = regions.Append([]string{
			r.ID,
			narrative.Count(r.Population),
			fmt.Sprintf("%.1f", r.HappinessLevel),
			fmt.Sprintf("%.1f%%", r.MarketPenetration),
			narrative.Count(r.HappyPeopleReached()),
		})
	}
	_ = regions.Render()
	fmt.Fprintf(p.out, "Global happiness %d\n", model.GlobalHappiness(s.Regions))

	if len(s.Products) == 0 {
		return
	}
	products := tablewriter.NewTable(p.out,
		tablewriter.WithHeader([]string{"Product", "Category", "Quality", "Price", "Status"}),
	)
	for _, pr := range s.Products {
		status := fmt.Sprintf("in development %d/%d", pr.QuartersInDev, pr.DevelopmentQuarters)
		if pr.Released {
			status = "released"
		}
		_ = products.Append([]string{pr.Name, string(pr.Category), strconv.Itoa(pr.QualityScore), narrative.Money(pr.Price), status})
	}
	_ = products.Render()
}

func (p *player) printFinal() {
	s := p.game.State
	r := s.FinalResults
	if r == nil {
		return
	}
	titleColor.Fprintf(p.out, "\nGame over (%s) after %d turns\n", s.CompletionReason, s.TurnCount)
	successColor.Fprintf(p.out, "Score %d · Ranking %s\n", r.FinalScore, r.Ranking)
	fmt.Fprintln(p.out, r.Summary)

	table := tablewriter.NewTable(p.out, tablewriter.WithHeader([]string{"Component", "Score"}))
	rows := []struct {
		name  string
		score float64
	}{
		{"Market cap", r.Breakdown.MarketCap},
		{"Happiness", r.Breakdown.Happiness},
		{"Reputation", r.Breakdown.Reputation},
		{"Products", r.Breakdown.Product},
		{"Regions", r.Breakdown.Region},
	}
	for _, row := range rows {
		_ = table.Append([]string{row.name, fmt.Sprintf("%.1f", row.score)})
	}
	_ = table.Render()

	for _, a := range r.Achievements {
		infoColor.Fprintf(p.out, "★ %s\n", a)
	}
	if p.store != nil {
		dimColor.Fprintf(p.out, "Saved as %s\n", p.game.ID)
	}
}

func (p *player) printHelp() {
	fmt.Fprintln(p.out, `Commands:
  <n>                              take decision n
  s                                show status
  p <low|medium|high> <cat> <name> develop a product (story mode)
  m <region> <strategy>            enter a market (story mode)
  q                                quit`)
}

func signedMoney(negative bool, s string) string {
	if negative {
		return "-" + s
	}
	return "+" + s
}
