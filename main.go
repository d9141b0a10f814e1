package main

import (
	"os"

	"github.com/eddge/learnengine/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
