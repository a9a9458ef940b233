package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var balanceFile string
	root := &cobra.Command{
		Use:   "sodactl",
		Short: "Inspect and simulate the soda clicker economy",
		Long: `sodactl works offline against the economy rules: print upgrade cost
tables, run a deterministic idle simulation, or inspect a save file.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&balanceFile, "balance", "", "YAML balance file overriding the defaults")

	root.AddCommand(newCostsCmd(&balanceFile))
	root.AddCommand(newSimulateCmd(&balanceFile))
	root.AddCommand(newInspectCmd(&balanceFile))
	return root
}
