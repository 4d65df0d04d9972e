// Command machsim assembles a machine model from the stock component
// registries and runs its scheduling loop.
package main

import (
	"github.com/tebeka/atexit"
)

func main() {
	err := rootCmd.Execute()
	if err != nil {
		atexit.Exit(1)
	}

	atexit.Exit(0)
}
