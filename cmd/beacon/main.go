package main

import (
	"os"

	"github.com/peerswarm/beacon/pkg/cmd"
)

func main() {
	if err := cmd.NewApp().Execute(); err != nil {
		os.Exit(1)
	}
}
