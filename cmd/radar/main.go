package main

import (
	"os"

	"github.com/hfcipriano/stock-radar-br/cmd/radar/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
