package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"sodaclicker/internal/config"
	"sodaclicker/internal/domain/amount"
	"sodaclicker/internal/domain/economy"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
)

var epoch = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

func loadBalance(path string) (economy.Balance, error) {
	b := economy.DefaultBalance()
	if path == "" {
		return b, nil
	}
	b, err := config.LoadBalanceFile(path, b)
	if err != nil {
		return economy.Balance{}, err
	}
	if err := b.Validate(); err != nil {
		return economy.Balance{}, err
	}
	return b, nil
}

func newCostsCmd(balanceFile *string) *cobra.Command {
	var count int
	cmd := &cobra.Command{
		Use:   "costs [upgrade...]",
		Short: "Print the cost of each successive purchase",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := loadBalance(*balanceFile)
			if err != nil {
				return err
			}
			ids := economy.UpgradeIDs()
			if len(args) > 0 {
				ids = nil
				for _, a := range args {
					ids = append(ids, economy.UpgradeID(a))
				}
			}
			return writeCosts(cmd.OutOrStdout(), b, ids, count)
		},
	}
	cmd.Flags().IntVarP(&count, "count", "n", 10, "purchases to list per upgrade")
	return cmd
}

// writeCosts buys each upgrade count times from a bottomless wallet and
// tabulates what every purchase charged.
func writeCosts(w io.Writer, b economy.Balance, ids []economy.UpgradeID, count int) error {
	if count <= 0 {
		return fmt.Errorf("count must be positive")
	}
	header := []string{"Purchase"}
	columns := make([][]string, 0, len(ids))
	for _, id := range ids {
		if !economy.IsKnownUpgrade(id) {
			return fmt.Errorf("%w: %s", economy.ErrUnknownUpgrade, id)
		}
		header = append(header, string(id))
		g := economy.NewGame(b, epoch)
		g.State.Sips = amount.MustParse("1" + strings.Repeat("0", 200))
		col := make([]string, 0, count)
		for i := 0; i < count; i++ {
			res, err := g.Purchase(id, epoch)
			if err != nil {
				return err
			}
			col = append(col, res.Cost.Display())
		}
		columns = append(columns, col)
	}

	table := tablewriter.NewTable(w, tablewriter.WithHeader(header))
	for i := 0; i < count; i++ {
		row := []string{fmt.Sprintf("%d", i+1)}
		for _, col := range columns {
			row = append(row, col[i])
		}
		if err := table.Append(row); err != nil {
			return err
		}
	}
	return table.Render()
}

type simOptions struct {
	Duration        time.Duration
	Step            time.Duration
	ClicksPerSecond int
	Seed            uint64
}

type simReport struct {
	Game      *economy.Game
	Purchases map[economy.UpgradeID]int
	Drinks    int
	Clicks    int
	Crits     int
	Elapsed   time.Duration
}

func newSimulateCmd(balanceFile *string) *cobra.Command {
	var opts simOptions
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Play a greedy cheapest-first strategy and report the outcome",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := loadBalance(*balanceFile)
			if err != nil {
				return err
			}
			rep, err := simulate(b, opts)
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), rep)
		},
	}
	cmd.Flags().DurationVar(&opts.Duration, "duration", time.Hour, "simulated play time")
	cmd.Flags().DurationVar(&opts.Step, "step", 100*time.Millisecond, "frame length")
	cmd.Flags().IntVar(&opts.ClicksPerSecond, "cps", 3, "manual clicks per simulated second")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 1, "seed for critical click rolls")
	return cmd
}

// simulate advances a fresh game frame by frame. Clicks land on whole
// seconds; after every frame the cheapest affordable upgrade is bought until
// none is affordable.
func simulate(b economy.Balance, opts simOptions) (simReport, error) {
	if opts.Duration <= 0 || opts.Step <= 0 {
		return simReport{}, fmt.Errorf("duration and step must be positive")
	}
	if opts.ClicksPerSecond < 0 {
		return simReport{}, fmt.Errorf("cps must not be negative")
	}
	rng := rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15))
	roller := economy.RollerFunc(rng.Float64)
	g := economy.NewGame(b, epoch)
	rep := simReport{Game: g, Purchases: map[economy.UpgradeID]int{}}

	lastSecond := time.Duration(0)
	for elapsed := opts.Step; elapsed <= opts.Duration; elapsed += opts.Step {
		now := epoch.Add(elapsed)
		if elapsed-lastSecond >= time.Second {
			lastSecond = elapsed
			for i := 0; i < opts.ClicksPerSecond; i++ {
				res := g.CreditClick(economy.Click{At: now}, roller)
				rep.Clicks++
				if res.Critical {
					rep.Crits++
				}
			}
		}
		if g.Tick(now).DrinkCompleted {
			rep.Drinks++
		}
		for {
			id, ok := cheapestAffordable(g)
			if !ok {
				break
			}
			res, err := g.Purchase(id, now)
			if err != nil {
				return simReport{}, err
			}
			if !res.Success {
				break
			}
			rep.Purchases[id]++
		}
		rep.Elapsed = elapsed
	}
	return rep, nil
}

func cheapestAffordable(g *economy.Game) (economy.UpgradeID, bool) {
	var best economy.Offer
	found := false
	for _, o := range g.Offers() {
		if !o.Affordable {
			continue
		}
		if !found || o.Cost.LT(best.Cost) {
			best, found = o, true
		}
	}
	return best.Upgrade, found
}

func writeReport(w io.Writer, rep simReport) error {
	title := color.New(color.FgCyan, color.Bold)
	title.Fprintf(w, "Simulated %s\n", rep.Elapsed)

	s := rep.Game.State
	summary := tablewriter.NewTable(w, tablewriter.WithHeader([]string{"Metric", "Value"}))
	rows := [][]string{
		{"sips", s.Sips.Display()},
		{"total sips earned", s.TotalSipsEarned.Display()},
		{"sips per drink", s.SipsPerDrink.Display()},
		{"sips per second", s.SipsPerSecond.Display()},
		{"drink rate", s.DrinkRate.String()},
		{"level", s.Level.Display()},
		{"drinks", fmt.Sprintf("%d", rep.Drinks)},
		{"clicks", fmt.Sprintf("%d", rep.Clicks)},
		{"critical clicks", fmt.Sprintf("%d", rep.Crits)},
	}
	for _, r := range rows {
		if err := summary.Append(r); err != nil {
			return err
		}
	}
	if err := summary.Render(); err != nil {
		return err
	}

	bought := tablewriter.NewTable(w, tablewriter.WithHeader([]string{"Upgrade", "Bought"}))
	for _, id := range economy.UpgradeIDs() {
		if err := bought.Append([]string{string(id), fmt.Sprintf("%d", rep.Purchases[id])}); err != nil {
			return err
		}
	}
	return bought.Render()
}

func newInspectCmd(balanceFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <save.json>",
		Short: "Load a save file, report repaired fields and the resulting state",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := loadBalance(*balanceFile)
			if err != nil {
				return err
			}
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			return inspect(cmd.OutOrStdout(), b, raw, time.Now())
		},
	}
}

// inspect accepts a bare snapshot or a save-directory file that wraps one
// under "snapshot".
func inspect(w io.Writer, b economy.Balance, raw []byte, now time.Time) error {
	var envelope struct {
		Snapshot json.RawMessage `json:"snapshot"`
	}
	if json.Unmarshal(raw, &envelope) == nil && len(envelope.Snapshot) > 0 && envelope.Snapshot[0] == '{' {
		raw = envelope.Snapshot
	}
	snap, err := economy.ParseSnapshot(raw)
	if err != nil {
		return err
	}
	g, repaired := economy.LoadGame(b, snap, now)

	warn := color.New(color.FgYellow)
	ok := color.New(color.FgGreen)
	if len(repaired) == 0 {
		ok.Fprintln(w, "save is clean")
	} else {
		warn.Fprintf(w, "repaired fields: %s\n", strings.Join(repaired, ", "))
	}

	table := tablewriter.NewTable(w, tablewriter.WithHeader([]string{"Upgrade", "Owned", "Next cost", "Affordable"}))
	for _, o := range g.Offers() {
		if err := table.Append([]string{
			string(o.Upgrade),
			o.Owned.Display(),
			o.Cost.Display(),
			fmt.Sprintf("%t", o.Affordable),
		}); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}
	fmt.Fprintf(w, "sips %s, %s/drink, %s/s, level %s\n",
		g.State.Sips.Display(), g.State.SipsPerDrink.Display(), g.State.SipsPerSecond.Display(), g.State.Level.Display())
	return nil
}
