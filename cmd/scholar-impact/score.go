package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-impact/internal/export"
	"github.com/pdiddy/scholar-impact/internal/impact"
	"github.com/pdiddy/scholar-impact/pkg/types"
)

var scoreCmd = &cobra.Command{
	Use:   "score [author-ids...]",
	Short: "Compute the PiP-AUC index for one or more authors",
	Long: `Score fetches each author's publications, scores every paper against
the citation percentiles of papers of the same age, and reports the PiP-AUC
index together with the author's career age.

Authors with no usable publications are reported as "no data" and do not
fail the command. Cached results are reused unless --refresh is given.`,
	RunE: runScore,
}

func init() {
	scoreCmd.Flags().Bool("refresh", false, "ignore cached results and recompute")
	scoreCmd.Flags().Int("top", 0, "list the N highest-ranked publications per author")
	scoreCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(scoreCmd)
}

// scoreOptions mirrors the score command's flags.
type scoreOptions struct {
	Refresh bool
	Top     int
	JSON    bool
}

func runScore(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("provide one or more author ids")
	}

	var opts scoreOptions
	opts.Refresh, _ = cmd.Flags().GetBool("refresh")
	opts.Top, _ = cmd.Flags().GetInt("top")
	opts.JSON, _ = cmd.Flags().GetBool("json")

	a, err := newApp(cmd.Context(), loadConfig())
	if err != nil {
		return err
	}
	defer a.Close()

	return scoreAuthors(cmd.Context(), cmd.OutOrStdout(), a, args, opts)
}

// scoreAuthors scores each author and writes a report per author. It keeps
// going after a failed author and reports the failure count at the end.
func scoreAuthors(ctx context.Context, w io.Writer, a *app, ids []string, opts scoreOptions) error {
	var (
		bundles []*types.ResultBundle
		failed  int
	)
	for _, id := range ids {
		bundle, err := analyze(ctx, a, id, opts.Refresh)
		switch {
		case impact.IsNoData(err):
			if !opts.JSON {
				fmt.Fprintf(w, "%s: no data\n", id)
			}
			bundles = append(bundles, bundle)
		case err != nil:
			fmt.Fprintf(w, "failed  %s: %v\n", id, err)
			failed++
		default:
			bundles = append(bundles, bundle)
			if !opts.JSON {
				printSummary(w, id, bundle, opts.Top)
			}
		}
	}

	if opts.JSON {
		if err := export.WriteJSON(w, bundles); err != nil {
			return err
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d author(s) failed scoring", failed)
	}
	return nil
}

func analyze(ctx context.Context, a *app, id string, refresh bool) (*types.ResultBundle, error) {
	if refresh {
		return a.service.Refresh(ctx, id)
	}
	return a.service.Analyze(ctx, id)
}

func printSummary(w io.Writer, id string, b *types.ResultBundle, top int) {
	name := id
	if b.Author != nil && b.Author.Name != "" {
		name = fmt.Sprintf("%s (%s)", b.Author.Name, id)
	}
	fmt.Fprintln(w, name)
	fmt.Fprintf(w, "  PiP-AUC:       %.4f\n", b.PipAUC)
	fmt.Fprintf(w, "  Career age:    %d years\n", b.CareerAgeYears)
	fmt.Fprintf(w, "  Publications:  %d scored of %d\n", len(b.Publications), b.TotalPublications)

	if top <= 0 {
		return
	}
	fmt.Fprintf(w, "\n  %-4s  %-8s  %-6s  %-9s  %-9s  %s\n",
		"Rank", "Score", "Prod.", "Citations", "Year", "Title")
	fmt.Fprintln(w, "  "+strings.Repeat("-", 90))
	for _, p := range b.Publications[:min(top, len(b.Publications))] {
		fmt.Fprintf(w, "  %-4d  %-8.2f  %-6.0f  %-9d  %-9d  %s\n",
			p.Rank, p.PercentileScore, p.ProductivityPercentile, p.Citations, p.Year, truncate(p.Title, 50))
	}
	fmt.Fprintln(w)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
