package main

import (
	"os"

	"github.com/lucidc/cintp/cmd/cintp/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
