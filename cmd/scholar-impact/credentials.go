package main

import (
	"bufio"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/scholar-impact/internal/secrets"
)

// knownKeys are the credentials the source backends read.
var knownKeys = []string{secrets.KeyOpenAlexEmail, secrets.KeySemanticScholarAPIKey}

var credentialsCmd = &cobra.Command{
	Use:   "credentials",
	Short: "Manage source credentials in the OS keychain",
	Long: `Credentials stores the OpenAlex contact e-mail and the Semantic Scholar
API key in the OS keychain. Values in .secrets/ or SCHOLAR_IMPACT_* environment
variables take precedence over the keychain.`,
}

var credentialsSetCmd = &cobra.Command{
	Use:   "set [key]",
	Short: "Store a credential read from stdin",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkKey(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Enter value for %s: ", args[0])
		value, err := readLine(cmd.InOrStdin())
		if err != nil {
			return err
		}
		if err := secrets.Store(args[0], value); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s to OS keychain\n", args[0])
		return nil
	},
}

var credentialsRemoveCmd = &cobra.Command{
	Use:   "remove [key]",
	Short: "Remove a credential from the OS keychain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkKey(args[0]); err != nil {
			return err
		}
		if err := secrets.Remove(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
		return nil
	},
}

var credentialsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show which credentials are configured",
	Run: func(cmd *cobra.Command, args []string) {
		listCredentials(cmd.OutOrStdout(), loadedSecrets)
	},
}

func listCredentials(w io.Writer, s secrets.Secrets) {
	for _, key := range knownKeys {
		fmt.Fprintf(w, "%-26s  %s\n", key, mask(s.Get(key)))
	}
}

func checkKey(key string) error {
	if !slices.Contains(knownKeys, key) {
		return fmt.Errorf("unknown credential %q (want one of %s)", key, strings.Join(knownKeys, ", "))
	}
	return nil
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("reading value: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// mask hides all but the last four characters of v.
func mask(v string) string {
	switch {
	case v == "":
		return "(not set)"
	case len(v) <= 4:
		return strings.Repeat("*", len(v))
	default:
		return strings.Repeat("*", len(v)-4) + v[len(v)-4:]
	}
}

func init() {
	credentialsCmd.AddCommand(credentialsSetCmd)
	credentialsCmd.AddCommand(credentialsRemoveCmd)
	credentialsCmd.AddCommand(credentialsListCmd)

	rootCmd.AddCommand(credentialsCmd)
}
