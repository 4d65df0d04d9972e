package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sarchlab/machsim/machines"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List the registered machine models and component kinds.",
	Run: func(_ *cobra.Command, _ []string) {
		regs := machines.DefaultRegistries(nil)

		fmt.Fprintln(os.Stdout, "Machines:")
		for _, name := range regs.Machines.Names() {
			fmt.Fprintf(os.Stdout, "  %s\n", name)
		}

		fmt.Fprintln(os.Stdout, "Cores:")
		for _, name := range regs.Cores.Names() {
			fmt.Fprintf(os.Stdout, "  %s\n", name)
		}

		fmt.Fprintln(os.Stdout, "Controllers:")
		for _, name := range regs.Controllers.Names() {
			fmt.Fprintf(os.Stdout, "  %s\n", name)
		}

		fmt.Fprintln(os.Stdout, "Interconnects:")
		for _, name := range regs.Interconnects.Names() {
			fmt.Fprintf(os.Stdout, "  %s\n", name)
		}
	},
}
