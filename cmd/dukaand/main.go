package main

import (
	"fmt"
	"os"

	"github.com/dukaanlabs/dukaan/internal/cli"
	"github.com/dukaanlabs/dukaan/internal/cli/admin"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "dukaand",
		Short: "Dukaan daemon",
		Long:  "Dukaan daemon for running the recommendation API server and archiving interaction history",
	}

	cli.AddHelpJSONFlag(rootCmd)
	rootCmd.AddCommand(admin.ServeCmd())
	rootCmd.AddCommand(admin.ExportCmd())

	if len(os.Args) == 1 {
		os.Args = append(os.Args, "serve")
	}

	cli.CheckHelpJSON(rootCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
