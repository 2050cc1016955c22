package main

import (
	"os"

	"alcyxob/gym-membership/cmd/gymctl/commands"
)

func main() {
	// Errors are printed by commands.Execute.
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
