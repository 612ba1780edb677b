package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/chainsafe/wallet-sync/pkg/app"
	"github.com/chainsafe/wallet-sync/pkg/app/walletsync"
	"github.com/chainsafe/wallet-sync/pkg/config"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	var runner app.Runner = walletsync.NewServer(cfg)
	if err := runner.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "wallet sync stopped: %v\n", err)
		os.Exit(1)
	}
}
