package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-impact/internal/export"
	"github.com/pdiddy/scholar-impact/internal/impact"
)

var exportCmd = &cobra.Command{
	Use:   "export [author-id]",
	Short: "Export an author's scored publications as CSV, JSON or YAML",
	Long: `Export writes the author's publications with their percentile score,
rank and productivity percentile. With --output the format follows the file
extension; otherwise the result goes to stdout in --format.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringP("output", "o", "", "output file (.csv, .json, .yaml)")
	exportCmd.Flags().String("format", "csv", "stdout format: csv, json or yaml")
	exportCmd.Flags().Bool("refresh", false, "ignore cached results and recompute")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	output, _ := cmd.Flags().GetString("output")
	formatName, _ := cmd.Flags().GetString("format")
	refresh, _ := cmd.Flags().GetBool("refresh")

	format, err := export.ParseFormat(formatName)
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context(), loadConfig())
	if err != nil {
		return err
	}
	defer a.Close()

	return exportAuthor(cmd.Context(), cmd.OutOrStdout(), a, args[0], output, format, refresh)
}

func exportAuthor(ctx context.Context, w io.Writer, a *app, id, output string, format export.Format, refresh bool) error {
	bundle, err := analyze(ctx, a, id, refresh)
	if impact.IsNoData(err) {
		fmt.Fprintf(w, "%s: no data\n", id)
		return nil
	}
	if err != nil {
		return err
	}

	if output == "" {
		return export.Write(w, format, bundle)
	}
	if err := export.WriteFile(output, bundle); err != nil {
		return err
	}
	fmt.Fprintf(w, "Exported %d publications to %s\n", len(bundle.Publications), output)
	return nil
}
