package main

import (
	"os"

	"github.com/hnrobert/idstore/cmd/idstore/command"
)

func main() {
	if err := command.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
