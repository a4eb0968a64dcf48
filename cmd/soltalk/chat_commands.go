package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/itchyny/gojq"
	"github.com/urfave/cli/v2"

	"github.com/soltalk/soltalk/client"
	"github.com/soltalk/soltalk/service/compose"
)

func chatCommand() *cli.Command {
	return &cli.Command{
		Name:      "chat",
		Usage:     "Send one message through the assistant pipeline",
		ArgsUsage: "MESSAGE",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Aliases: []string{"s"},
				Value:   "http://localhost:8080",
				Usage:   "HTTP server URL",
				EnvVars: []string{"SOLTALK_SERVER_URL"},
			},
			&cli.StringFlag{
				Name:    "wallet",
				Aliases: []string{"w"},
				Usage:   "Connected wallet address (base58)",
				EnvVars: []string{"SOLTALK_WALLET"},
			},
			&cli.StringFlag{
				Name:  "jq",
				Usage: "jq expression applied to the extracted payload JSON",
			},
			&cli.BoolFlag{
				Name:    "json",
				Aliases: []string{"j"},
				Usage:   "Output the full response as JSON",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() < 1 {
				return fmt.Errorf("message is required")
			}

			message := c.Args().Get(0)
			serverURL := c.String("server")
			wallet := c.String("wallet")
			jqExpr := c.String("jq")
			jsonOutput := c.Bool("json")

			logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
				Level: slog.LevelError,
			}))

			cl := client.NewClient(serverURL, nil, logger)

			resp, err := cl.Chat(context.Background(), message, wallet)
			if err != nil {
				return fmt.Errorf("chat failed: %w", err)
			}

			scan := compose.ScanPayload(resp.Reply)

			if jqExpr != "" {
				if scan.State != compose.StateComplete {
					return fmt.Errorf("reply carries no complete payload to filter")
				}
				return runJQ(jqExpr, scan.Payload)
			}

			if jsonOutput {
				data, _ := json.MarshalIndent(resp, "", "  ")
				fmt.Println(string(data))
				return nil
			}

			fmt.Println(compose.StripPayloads(resp.Reply))
			if scan.State == compose.StateComplete {
				fmt.Println()
				fmt.Printf("Payload [%s]:\n", scan.Tag)
				var pretty json.RawMessage = scan.Payload
				data, err := json.MarshalIndent(pretty, "", "  ")
				if err == nil {
					fmt.Println(string(data))
				} else {
					fmt.Println(string(scan.Payload))
				}
			}
			if resp.IntentID != "" {
				fmt.Println()
				fmt.Printf("Intent ID: %s\n", resp.IntentID)
			}

			return nil
		},
	}
}

// runJQ applies a jq expression to raw JSON and prints each result.
func runJQ(expr string, raw json.RawMessage) error {
	query, err := gojq.Parse(expr)
	if err != nil {
		return fmt.Errorf("failed to parse jq expression %q: %w", expr, err)
	}
	code, err := gojq.Compile(query)
	if err != nil {
		return fmt.Errorf("failed to compile jq expression %q: %w", expr, err)
	}

	var input interface{}
	if err := json.Unmarshal(raw, &input); err != nil {
		return fmt.Errorf("payload is not valid JSON: %w", err)
	}

	iter := code.Run(input)
	for {
		v, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := v.(error); isErr {
			return fmt.Errorf("jq evaluation failed: %w", err)
		}
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal jq result: %w", err)
		}
		fmt.Println(string(data))
	}

	return nil
}
