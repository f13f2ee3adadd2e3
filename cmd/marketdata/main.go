package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

var (
	configPath     = flag.String("config", "config.yaml", "Path to the YAML config file")
	policyOverride = flag.String("policy", "", "Failure policy override: degrade or propagate")
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	commander.Register(&pricesCmd{}, "data")
	commander.Register(&metricsCmd{}, "data")
	commander.Register(&newsCmd{}, "data")
	commander.Register(&lineItemsCmd{}, "data")
	commander.Register(&insiderCmd{}, "data")
	commander.Register(&marketCapCmd{}, "data")

	commander.Register(&cacheCmd{}, "cache")

	commander.Register(&checkCmd{}, "ops")
	commander.Register(&serveCmd{}, "ops")

	flag.Parse()

	if err := initializeSystem(); err != nil {
		os.Stderr.WriteString(err.Error() + "\n")
		os.Exit(int(subcommands.ExitFailure))
	}

	status := commander.Execute(context.Background())
	shutdownSystem()
	os.Exit(int(status))
}
