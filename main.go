package main

import (
	"os"

	"github.com/spigell/fitting-room/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
