package main

import (
	"os"

	"github.com/binget/binget/cmd/binget/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
