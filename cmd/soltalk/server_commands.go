package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/soltalk/soltalk/client"
)

func quoteCommand() *cli.Command {
	return &cli.Command{
		Name:      "quote",
		Usage:     "Fetch a live swap quote from the aggregator",
		ArgsUsage: "INPUT_TOKEN OUTPUT_TOKEN AMOUNT",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Aliases: []string{"s"},
				Value:   "http://localhost:8080",
				Usage:   "HTTP server URL",
				EnvVars: []string{"SOLTALK_SERVER_URL"},
			},
			&cli.IntFlag{
				Name:  "slippage-bps",
				Usage: "Slippage tolerance in basis points (server default if unset)",
			},
			&cli.StringFlag{
				Name:  "jq",
				Usage: "jq expression applied to the quote JSON",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 3 {
				return fmt.Errorf("usage: quote INPUT_TOKEN OUTPUT_TOKEN AMOUNT")
			}

			serverURL := c.String("server")
			jqExpr := c.String("jq")

			logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelError,
			}))

			cl := client.NewClient(serverURL, nil, logger)

			raw, err := cl.Quote(context.Background(), client.QuoteRequest{
				InputToken:  c.Args().Get(0),
				OutputToken: c.Args().Get(1),
				Amount:      c.Args().Get(2),
				SlippageBps: c.Int("slippage-bps"),
			})
			if err != nil {
				return fmt.Errorf("failed to fetch quote: %w", err)
			}

			if jqExpr != "" {
				return runJQ(jqExpr, raw)
			}

			data, err := json.MarshalIndent(raw, "", "  ")
			if err != nil {
				fmt.Println(string(raw))
				return nil
			}
			fmt.Println(string(data))
			return nil
		},
	}
}

func healthCommand() *cli.Command {
	return &cli.Command{
		Name:  "health",
		Usage: "Check server health",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Aliases: []string{"s"},
				Value:   "http://localhost:8080",
				Usage:   "HTTP server URL",
				EnvVars: []string{"SOLTALK_SERVER_URL"},
			},
			&cli.DurationFlag{
				Name:    "timeout",
				Aliases: []string{"t"},
				Value:   10 * time.Second,
				Usage:   "Request timeout",
			},
		},
		Action: func(c *cli.Context) error {
			serverURL := c.String("server")
			timeout := c.Duration("timeout")

			logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelError,
			}))

			cl := client.NewClient(serverURL, nil, logger)

			ctx, cancel := context.WithTimeout(context.Background(), timeout)
			defer cancel()

			if err := cl.Health(ctx); err != nil {
				return err
			}

			fmt.Println("✓ Server is healthy")
			return nil
		},
	}
}
