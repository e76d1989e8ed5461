package main

import (
	"os"

	"github.com/bayen-ai/bayen-go/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
