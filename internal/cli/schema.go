// Package cli provides shared CLI utilities for dukaan and dukaand.
package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// FlagSpec describes one flag of a command in the machine-readable help.
type FlagSpec struct {
	Name      string `json:"name"`
	Shorthand string `json:"shorthand,omitempty"`
	Type      string `json:"type"`
	Default   string `json:"default,omitempty"`
	Usage     string `json:"usage,omitempty"`
}

// CommandSpec describes a command and its subtree in the machine-readable help.
type CommandSpec struct {
	Name     string        `json:"name"`
	Use      string        `json:"use,omitempty"`
	Short    string        `json:"short,omitempty"`
	Long     string        `json:"long,omitempty"`
	Flags    []FlagSpec    `json:"flags,omitempty"`
	Commands []CommandSpec `json:"commands,omitempty"`
}

// DescribeCommand walks a cobra command tree into a CommandSpec.
func DescribeCommand(cmd *cobra.Command) CommandSpec {
	spec := CommandSpec{
		Name:  cmd.Name(),
		Use:   cmd.Use,
		Short: cmd.Short,
		Long:  cmd.Long,
	}

	cmd.LocalFlags().VisitAll(func(f *pflag.Flag) {
		if f.Name == "help" || f.Name == "help-json" {
			return
		}
		spec.Flags = append(spec.Flags, FlagSpec{
			Name:      f.Name,
			Shorthand: f.Shorthand,
			Type:      f.Value.Type(),
			Default:   f.DefValue,
			Usage:     f.Usage,
		})
	})

	for _, sub := range cmd.Commands() {
		if sub.Hidden || sub.Name() == "help" {
			continue
		}
		spec.Commands = append(spec.Commands, DescribeCommand(sub))
	}

	return spec
}

// AddHelpJSONFlag registers the --help-json flag on a command.
func AddHelpJSONFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().Bool("help-json", false, "Output command schema as JSON")
}

// CheckHelpJSON scans os.Args for --help-json and, when present, prints
// the schema of the addressed subcommand and exits. It runs before
// cmd.Execute() so the flag works even with otherwise invalid args.
func CheckHelpJSON(rootCmd *cobra.Command) {
	for i, arg := range os.Args {
		if arg != "--help-json" {
			continue
		}
		target := rootCmd
		for _, name := range os.Args[1:i] {
			if sub := lookupSubcommand(target, name); sub != nil {
				target = sub
			}
		}
		out, err := json.MarshalIndent(DescribeCommand(target), "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error generating schema: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(out))
		os.Exit(0)
	}
}

func lookupSubcommand(cmd *cobra.Command, name string) *cobra.Command {
	for _, sub := range cmd.Commands() {
		if sub.Name() == name || sub.HasAlias(name) {
			return sub
		}
	}
	return nil
}
