package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-impact/internal/cache"
	"github.com/pdiddy/scholar-impact/internal/export"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear the result cache",
	Long: `Cache manages the local SQLite cache of computed results. Entries live
in two namespaces: author_stats (scored authors) and queries (author name
searches).`,
}

// --- list subcommand ---

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached entries",
	RunE: func(cmd *cobra.Command, args []string) error {
		namespace, _ := cmd.Flags().GetString("namespace")
		jsonOutput, _ := cmd.Flags().GetBool("json")

		store, err := cache.NewStore(loadConfig().Cache)
		if err != nil {
			return err
		}
		defer store.Close()

		return listCache(cmd.Context(), cmd.OutOrStdout(), store, namespace, jsonOutput)
	},
}

func listCache(ctx context.Context, w io.Writer, store *cache.Store, namespace string, jsonOutput bool) error {
	entries, err := store.List(ctx, namespace)
	if err != nil {
		return err
	}
	if jsonOutput {
		return export.WriteJSON(w, entries)
	}
	if len(entries) == 0 {
		fmt.Fprintln(w, "Cache is empty.")
		return nil
	}

	fmt.Fprintf(w, "%-12s  %-40s  %-20s  %-8s  %s\n", "Namespace", "Key", "Updated", "Bytes", "State")
	fmt.Fprintln(w, strings.Repeat("-", 96))
	for _, e := range entries {
		state := "fresh"
		if e.Expired {
			state = "expired"
		}
		fmt.Fprintf(w, "%-12s  %-40s  %-20s  %-8d  %s\n",
			e.Namespace, truncate(e.Key, 40), e.UpdatedAt.Format("2006-01-02 15:04:05"), e.Size, state)
	}
	fmt.Fprintf(w, "\n%d entries\n", len(entries))
	return nil
}

// --- clear subcommand ---

var cacheClearCmd = &cobra.Command{
	Use:   "clear [keys...]",
	Short: "Remove cached entries",
	Long: `Clear removes the named keys from --namespace, or every entry of the
namespace when no key is given. With --expired only entries older than the
cache TTL are removed. Keys are as printed by cache list.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		namespace, _ := cmd.Flags().GetString("namespace")
		expired, _ := cmd.Flags().GetBool("expired")

		store, err := cache.NewStore(loadConfig().Cache)
		if err != nil {
			return err
		}
		defer store.Close()

		return clearCache(cmd.Context(), cmd.OutOrStdout(), store, namespace, args, expired)
	},
}

func clearCache(ctx context.Context, w io.Writer, store *cache.Store, namespace string, keys []string, expired bool) error {
	if len(keys) > 0 {
		if namespace == "" {
			return fmt.Errorf("--namespace is required when clearing keys")
		}
		for _, key := range keys {
			if err := store.Delete(ctx, namespace, key); err != nil {
				return err
			}
		}
		fmt.Fprintf(w, "Removed %d key(s) from %s\n", len(keys), namespace)
		return nil
	}

	n, err := store.Purge(ctx, namespace, expired)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Removed %d entries\n", n)
	return nil
}

func init() {
	cacheCmd.PersistentFlags().String("namespace", "", "restrict to one namespace: author_stats or queries")
	cacheListCmd.Flags().Bool("json", false, "output entries as JSON")
	cacheClearCmd.Flags().Bool("expired", false, "only remove entries older than the cache TTL")

	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheClearCmd)

	rootCmd.AddCommand(cacheCmd)
}
