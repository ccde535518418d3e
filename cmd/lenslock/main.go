package main

import (
	"os"

	"lenslock/cmd/lenslock/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
