package main

import (
	"os"

	"github.com/xdev-exe/cortyx/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
