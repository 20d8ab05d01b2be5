package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-impact/internal/export"
	"github.com/pdiddy/scholar-impact/internal/impact"
)

var yearlyCmd = &cobra.Command{
	Use:   "yearly [author-id] [other-author-id]",
	Short: "Break an author's publications down by year",
	Long: `Yearly groups the author's scored publications by publication year and
reports citations, publication count and mean percentile score per year,
followed by the author's best year.

Given a second author, prints both breakdowns side by side over every year
either author published in, with each author's best year.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runYearly,
}

func init() {
	yearlyCmd.Flags().Int("from", 0, "first year to include (0 = no bound)")
	yearlyCmd.Flags().Int("to", 0, "last year to include (0 = no bound)")
	yearlyCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(yearlyCmd)
}

func runYearly(cmd *cobra.Command, args []string) error {
	from, _ := cmd.Flags().GetInt("from")
	to, _ := cmd.Flags().GetInt("to")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	if from > 0 && to > 0 && from > to {
		return fmt.Errorf("--from %d is after --to %d", from, to)
	}

	a, err := newApp(cmd.Context(), loadConfig())
	if err != nil {
		return err
	}
	defer a.Close()

	if len(args) == 2 {
		return writeYearlyComparison(cmd.Context(), cmd.OutOrStdout(), a, args[0], args[1], from, to, jsonOutput)
	}
	return writeYearly(cmd.Context(), cmd.OutOrStdout(), a, args[0], from, to, jsonOutput)
}

// yearlyOutput is the JSON shape of the yearly command.
type yearlyOutput struct {
	Years    []impact.YearSummary `json:"years"`
	BestYear int                  `json:"best_year,omitempty"`
}

func writeYearly(ctx context.Context, w io.Writer, a *app, id string, from, to int, jsonOutput bool) error {
	bundle, err := a.service.Analyze(ctx, id)
	if impact.IsNoData(err) {
		fmt.Fprintf(w, "%s: no data\n", id)
		return nil
	}
	if err != nil {
		return err
	}

	out := yearlyOutput{Years: impact.Yearly(bundle.Publications, from, to)}
	best, ok := impact.BestYear(out.Years)
	if ok {
		out.BestYear = best
	}

	if jsonOutput {
		return export.WriteJSON(w, out)
	}

	if len(out.Years) == 0 {
		fmt.Fprintln(w, "No publications in range.")
		return nil
	}
	fmt.Fprintf(w, "%-6s  %-10s  %-12s  %s\n", "Year", "Citations", "Publications", "Mean score")
	fmt.Fprintln(w, strings.Repeat("-", 46))
	for _, y := range out.Years {
		fmt.Fprintf(w, "%-6d  %-10d  %-12d  %.2f\n", y.Year, y.Citations, y.Publications, y.MeanScore)
	}
	if ok {
		fmt.Fprintf(w, "\nBest year: %d\n", best)
	}
	return nil
}

// comparisonOutput is the JSON shape of the yearly command with two authors.
type comparisonOutput struct {
	First          string                  `json:"first"`
	Second         string                  `json:"second"`
	Years          []impact.YearComparison `json:"years"`
	FirstBestYear  int                     `json:"first_best_year,omitempty"`
	SecondBestYear int                     `json:"second_best_year,omitempty"`
}

// authorYears returns id's yearly breakdown. An author without data
// contributes no years.
func authorYears(ctx context.Context, a *app, id string, from, to int) ([]impact.YearSummary, error) {
	bundle, err := a.service.Analyze(ctx, id)
	if impact.IsNoData(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return impact.Yearly(bundle.Publications, from, to), nil
}

func writeYearlyComparison(ctx context.Context, w io.Writer, a *app, first, second string, from, to int, jsonOutput bool) error {
	firstYears, err := authorYears(ctx, a, first, from, to)
	if err != nil {
		return fmt.Errorf("%s: %w", first, err)
	}
	secondYears, err := authorYears(ctx, a, second, from, to)
	if err != nil {
		return fmt.Errorf("%s: %w", second, err)
	}

	out := comparisonOutput{
		First:  first,
		Second: second,
		Years:  impact.CompareYearly(firstYears, secondYears),
	}
	out.FirstBestYear, _ = impact.BestYear(firstYears)
	out.SecondBestYear, _ = impact.BestYear(secondYears)

	if jsonOutput {
		return export.WriteJSON(w, out)
	}

	if len(out.Years) == 0 {
		fmt.Fprintln(w, "No publications in range.")
		return nil
	}
	fmt.Fprintf(w, "%-6s  %-30s  %s\n", "", truncate(first, 30), truncate(second, 30))
	fmt.Fprintf(w, "%-6s  %-9s %-5s %-14s  %-9s %-5s %s\n",
		"Year", "Citations", "Pubs", "Mean score", "Citations", "Pubs", "Mean score")
	fmt.Fprintln(w, strings.Repeat("-", 70))
	for _, y := range out.Years {
		fmt.Fprintf(w, "%-6d  %-9d %-5d %-14.2f  %-9d %-5d %.2f\n", y.Year,
			y.First.Citations, y.First.Publications, y.First.MeanScore,
			y.Second.Citations, y.Second.Publications, y.Second.MeanScore)
	}
	if out.FirstBestYear != 0 {
		fmt.Fprintf(w, "\nBest year (%s): %d\n", first, out.FirstBestYear)
	}
	if out.SecondBestYear != 0 {
		fmt.Fprintf(w, "Best year (%s): %d\n", second, out.SecondBestYear)
	}
	return nil
}
