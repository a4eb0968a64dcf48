package main

import (
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

var (
	// Version information (set via ldflags during build)
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	app := &cli.App{
		Name:  "soltalk",
		Usage: "Conversational Solana assistant CLI",
		Description: `A command-line tool for talking to the soltalk service.

Use this CLI to send chat messages, retrieve prepared transaction intents,
and fetch swap quotes.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		Commands: []*cli.Command{
			chatCommand(),
			{
				Name:  "intent",
				Usage: "Prepared intent commands",
				Subcommands: []*cli.Command{
					intentGetCommand(),
				},
			},
			quoteCommand(),
			{
				Name:  "server",
				Usage: "Server utility commands",
				Subcommands: []*cli.Command{
					healthCommand(),
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
