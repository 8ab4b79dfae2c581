// Command enginectl is a thin HTTP client over engine-server, grounded on
// the teacher's root-command wiring (persistent flags + one NewXCmd per
// verb, added in init).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/flowcore/bpmnengine/cmd/enginectl/commands"
)

var rootCmd = &cobra.Command{
	Use:   "enginectl",
	Short: "Inspect and drive workflow instances against an engine-server",
}

func init() {
	rootCmd.PersistentFlags().String("addr", "http://localhost:8080", "engine-server base URL")
	rootCmd.PersistentFlags().String("output", "table", "Output format: table, json")

	rootCmd.AddCommand(commands.NewCreateDefinitionCmd())
	rootCmd.AddCommand(commands.NewTasksCmd())
	rootCmd.AddCommand(commands.NewStartCmd())
	rootCmd.AddCommand(commands.NewLoadCmd())
	rootCmd.AddCommand(commands.NewRestoreCmd())
	rootCmd.AddCommand(commands.NewCompleteCmd())
	rootCmd.AddCommand(commands.NewNavigateCmd())
	rootCmd.AddCommand(commands.NewVariablesCmd())
	rootCmd.AddCommand(commands.NewStateCmd())
	rootCmd.AddCommand(commands.NewSnapshotCmd())
	rootCmd.AddCommand(commands.NewDestroyCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
