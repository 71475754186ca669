package main

import (
	"flag"
	"fmt"
	"os"
)

// CLIConfig holds command-line configuration
type CLIConfig struct {
	ConfigPath string
	Validate   bool
}

func parseFlags(args []string) (*CLIConfig, error) {
	cfg := &CLIConfig{}

	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	fs.StringVar(&cfg.ConfigPath, "config", os.Getenv("PBSERIES_CONFIG"),
		"Path to the YAML configuration file (env: PBSERIES_CONFIG)")
	fs.BoolVar(&cfg.Validate, "validate", false, "Validate configuration and exit")
	fs.Usage = func() {
		_, _ = fmt.Fprintf(fs.Output(), "Usage: %s [flags]\n\n", appName)
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return cfg, nil
}
