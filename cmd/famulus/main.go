// Package main provides the famulus CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mpetrov/famulus/cli"
)

var (
	// Global flags
	provider string
	verbose  bool
)

func main() {
	// Load .env file if present (ignore "file not found" errors)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Warning: failed to load .env file: %v\n", err)
		}
	}

	rootCmd := &cobra.Command{
		Use:   "famulus",
		Short: "An LLM assistant with file, shell and Gmail capabilities",
		Long: `An interactive LLM assistant that can read and write files, run
shell commands and manage a Gmail mailbox on your behalf.

The assistant invokes tools by naming them in its replies; direct
command verbs (ls, read, run, emails, ...) bypass the model entirely.`,
	}

	rootCmd.PersistentFlags().StringVarP(&provider, "provider", "p", "", "LLM provider (openai, anthropic, deepseek, gemini)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Show verbose output")

	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(authCmd())
	rootCmd.AddCommand(toolsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func chatCmd() *cobra.Command {
	var sessionID string
	var dbPath string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive assistant session",
		Long: `Start an interactive session with the assistant.

With --session, conversation history is persisted to a SQLite database
and restored on the next run. Omitting --session with --db set starts a
fresh session under a generated id.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := cli.Options{
				Provider:  provider,
				SessionID: sessionID,
				DBPath:    dbPath,
				Verbose:   verbose,
			}
			return cli.Chat(context.Background(), opts)
		},
	}

	cmd.Flags().StringVar(&sessionID, "session", "", "Session ID for conversation persistence")
	cmd.Flags().StringVar(&dbPath, "db", "", "Database path for session storage")

	return cmd
}

func authCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "auth",
		Short: "Authorize Gmail access (one-time OAuth exchange)",
		Long: `Run the one-time Gmail OAuth flow.

Reads the OAuth client credentials from the path in GMAIL_CREDENTIALS
(default credentials.json), prints the consent URL and caches the
exchanged token. Mailbox tools stay disabled until this succeeds.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cli.Auth(context.Background())
		},
	}
}

func toolsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the tools the assistant can invoke",
		Run: func(cmd *cobra.Command, args []string) {
			cli.ListTools()
		},
	}
}
