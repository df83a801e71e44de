package main

import (
	"os"

	"github.com/ritzau/blueprint/pkg/logging"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		logging.Error("command failed", "error", err)
		os.Exit(1)
	}
}
