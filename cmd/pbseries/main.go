// Command pbseries consumes protobuf messages from Kafka or RabbitMQ,
// flattens every message of the bound type into time series points and
// appends them to the configured store.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/Aleph-Alpha/pbseries/v1/config"
	"go.uber.org/fx"
)

const appName = "pbseries"

func main() {
	if err := run(os.Args[1:]); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		_, _ = fmt.Fprintf(os.Stderr, "%s: %v\n", appName, err)
		os.Exit(1)
	}
}

func run(args []string) error {
	cli, err := parseFlags(args)
	if err != nil {
		return err
	}

	cfg, err := config.Load(cli.ConfigPath)
	if err != nil {
		return err
	}

	if cli.Validate {
		if err := fx.ValidateApp(options(cfg)...); err != nil {
			return err
		}
		_, _ = fmt.Fprintln(os.Stdout, "Configuration is valid")
		return nil
	}

	fx.New(options(cfg)...).Run()
	return nil
}
