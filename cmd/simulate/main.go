package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"makan-match/internal/catalog"
	"makan-match/internal/service"
	"makan-match/internal/simulation"
)

var (
	bold   = color.New(color.Bold).SprintFunc()
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		runs        int
		seed        int64
		strategy    string
		catalogPath string
	)
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Simulate random quiz submissions and report dish distribution",
		Long: `Runs N random answer sets through the quiz and prints how often each dish
and modifier comes up, plus the modifiers that were never reached.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := loadCatalog(catalogPath)
			if err != nil {
				return err
			}
			resolver, err := service.NewResolver(strategy)
			if err != nil {
				return err
			}
			report, err := simulation.Run(cmd.Context(), cat, resolver, runs, seed)
			if err != nil {
				return err
			}
			printReport(cmd.OutOrStdout(), report)
			return nil
		},
	}
	cmd.Flags().IntVarP(&runs, "runs", "n", 100000, "Number of simulated submissions")
	cmd.Flags().Int64VarP(&seed, "seed", "s", simulation.DefaultSeed, "LCG seed")
	cmd.Flags().StringVar(&strategy, "strategy", service.StrategyWeighted, "Result strategy (weighted|hash)")
	cmd.Flags().StringVar(&catalogPath, "catalog", "", "Catalog YAML (default: embedded catalog)")
	cmd.SetContext(context.Background())
	return cmd
}

func loadCatalog(path string) (*catalog.Catalog, error) {
	if path == "" {
		return catalog.LoadDefault()
	}
	return catalog.LoadFile(path)
}

func printReport(out io.Writer, r simulation.Report) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintln(out, rule)
	fmt.Fprintf(out, "%s (%s, %d runs)\n", bold("Dish Distribution Simulation"), r.Strategy, r.Runs)
	fmt.Fprintln(out, rule)

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tDish\tCategory\tCount\tPct\t")
	for i, d := range r.Dishes {
		bar := strings.Repeat("█", int(d.Percentage/2))
		fmt.Fprintf(tw, "%d.\t%s\t%s\t%d\t%.2f%% %s\t\n", i+1, d.Dish.Name, d.Dish.Category, d.Count, d.Percentage, bar)
	}
	tw.Flush()

	max, min := r.Spread()
	expected := r.Expected()
	fmt.Fprintln(out)
	fmt.Fprintln(out, bold("Summary"))
	fmt.Fprintf(out, "Total dishes: %d\n", len(r.Dishes))
	fmt.Fprintf(out, "Expected count per dish (uniform): %.0f\n", expected)
	fmt.Fprintf(out, "Maximum count: %d\n", max)
	fmt.Fprintf(out, "Minimum count: %d\n", min)
	if expected > 0 {
		fmt.Fprintf(out, "Distribution spread: %d (%.1f%% from expected)\n", max-min, float64(max-min)/expected*100)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, bold("Distribution by category"))
	tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, c := range r.Categories {
		fmt.Fprintf(tw, "  %s\t%d\t(%.2f%%)\t\n", c.Category, c.Count, c.Percentage)
	}
	tw.Flush()

	fmt.Fprintln(out)
	fmt.Fprintln(out, bold("Modifiers"))
	withModifier := r.Runs - r.NoModifier
	fmt.Fprintf(out, "Submissions with a modifier: %d (%.2f%%)\n", withModifier, float64(withModifier)/float64(r.Runs)*100)
	tw = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, m := range r.Modifiers {
		status := green("✓")
		if m.Count == 0 {
			status = red("✗")
		}
		fmt.Fprintf(tw, "  %s\t%s\t%s\t%d\t(%.2f%%)\ttrigger: %s >= %.0f%%\t\n",
			status, m.Modifier.Name, m.DishName, m.Count, m.Percentage, m.Modifier.TriggerTrait, m.Modifier.TriggerThreshold)
	}
	tw.Flush()

	if unreachable := r.Unreachable(); len(unreachable) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, yellow(fmt.Sprintf("%d modifier(s) never triggered:", len(unreachable))))
		for _, m := range unreachable {
			fmt.Fprintf(out, "  - %s (%s)\n", m.Modifier.Name, m.DishName)
		}
	}
}
