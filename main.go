package main

import (
	"os"

	"github.com/smartbrain/smartbrain/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
