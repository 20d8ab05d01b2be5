package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-impact/internal/export"
)

var authorsCmd = &cobra.Command{
	Use:   "authors [name]",
	Short: "Look up author ids by name",
	Long: `Authors searches the configured source for authors matching a name and
prints their ids, which the score, export and yearly commands accept. The
file source does not support search.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAuthors,
}

func init() {
	authorsCmd.Flags().Int("limit", 10, "maximum number of candidates")
	authorsCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(authorsCmd)
}

func runAuthors(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	a, err := newApp(cmd.Context(), loadConfig())
	if err != nil {
		return err
	}
	defer a.Close()

	return searchAuthors(cmd.Context(), cmd.OutOrStdout(), a, strings.Join(args, " "), limit, jsonOutput)
}

func searchAuthors(ctx context.Context, w io.Writer, a *app, name string, limit int, jsonOutput bool) error {
	candidates, err := a.service.SearchAuthors(ctx, name, limit)
	if err != nil {
		return err
	}

	if jsonOutput {
		return export.WriteJSON(w, candidates)
	}
	if len(candidates) == 0 {
		fmt.Fprintln(w, "No authors found.")
		return nil
	}

	fmt.Fprintf(w, "%-20s  %-30s  %-8s  %-6s  %s\n", "ID", "Name", "Cited by", "Works", "Affiliation")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, c := range candidates {
		fmt.Fprintf(w, "%-20s  %-30s  %-8d  %-6d  %s\n",
			c.ID, truncate(c.Name, 30), c.CitedBy, c.WorksCount, truncate(c.Affiliation, 30))
	}
	return nil
}
