package main

import (
	"fmt"
	"os"

	"github.com/dukaanlabs/dukaan/internal/cli"
	"github.com/dukaanlabs/dukaan/internal/cli/client"
	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:   "dukaan",
		Short: "Dukaan CLI - Local shop recommendations",
		Long: `Dukaan CLI asks the recommendation service for nearby shops.

Environment variables:
  DUKAAN_API_URL   API base URL (default: http://localhost:8080)`,
		Version: version,
	}

	rootCmd.PersistentFlags().Bool("output", false, "Output as JSON")
	rootCmd.PersistentFlags().String("api-url", "", "API base URL (overrides env)")
	cli.AddHelpJSONFlag(rootCmd)

	rootCmd.AddCommand(client.AskCmd())
	rootCmd.AddCommand(client.FeedbackCmd())

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
