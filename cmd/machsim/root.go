package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "machsim",
	Short: "machsim assembles and runs multi-core machine models.",
	Long: `machsim assembles a machine model out of registered cores, ` +
		`memory controllers, and interconnects, then drives it cycle by ` +
		`cycle until an instruction budget is reached or a core requests ` +
		`termination.`,
}

func init() {
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(listCmd)
}
