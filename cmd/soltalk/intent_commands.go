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

func intentGetCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Aliases:   []string{"show"},
		Usage:     "Retrieve a prepared intent by id",
		ArgsUsage: "INTENT_ID",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Aliases: []string{"s"},
				Value:   "http://localhost:8080",
				Usage:   "HTTP server URL",
				EnvVars: []string{"SOLTALK_SERVER_URL"},
			},
			&cli.StringFlag{
				Name:  "jq",
				Usage: "jq expression applied to the intent JSON",
			},
			&cli.BoolFlag{
				Name:    "json",
				Aliases: []string{"j"},
				Usage:   "Output as JSON",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("intent id is required")
			}

			intentID := c.Args().Get(0)
			serverURL := c.String("server")
			jqExpr := c.String("jq")
			jsonOutput := c.Bool("json")

			logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelError,
			}))

			cl := client.NewClient(serverURL, nil, logger)

			intent, err := cl.GetIntent(context.Background(), intentID)
			if err != nil {
				return fmt.Errorf("failed to get intent: %w", err)
			}

			if jqExpr != "" {
				raw, err := json.Marshal(intent)
				if err != nil {
					return fmt.Errorf("failed to marshal intent: %w", err)
				}
				return runJQ(jqExpr, raw)
			}

			if jsonOutput {
				data, _ := json.MarshalIndent(intent, "", "  ")
				fmt.Println(string(data))
				return nil
			}

			fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
			fmt.Println("Prepared Intent")
			fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
			fmt.Printf("Intent ID:    %s\n", intent.IntentID)
			fmt.Printf("Wallet:       %s\n", intent.Wallet)
			fmt.Printf("Fee:          %d lamports\n", intent.FeeLamports)
			fmt.Printf("Created At:   %s\n", time.UnixMilli(intent.CreatedAt).Format(time.RFC3339))
			fmt.Printf("Expires At:   %s\n", intent.ExpiresAtTime().Format(time.RFC3339))
			if len(intent.Preview) > 0 {
				data, err := json.MarshalIndent(intent.Preview, "", "  ")
				if err == nil {
					fmt.Printf("Preview:\n%s\n", string(data))
				}
			}
			fmt.Printf("Transaction:  %s\n", intent.TxBase64)
			fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")

			return nil
		},
	}
}
