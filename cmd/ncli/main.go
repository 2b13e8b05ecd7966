package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/coastalprograms/notion-cli-go/pkg/commands"
	"github.com/coastalprograms/notion-cli-go/pkg/core"
	"github.com/coastalprograms/notion-cli-go/pkg/di"
)

var (
	version   = "dev"
	buildTime = "unknown"
)

func main() {
	app := &cli.App{
		Name:    "ncli",
		Usage:   "Notion CLI - query and manage a Notion workspace from the command line",
		Version: fmt.Sprintf("%s (built %s)", version, buildTime),
		Authors: []*cli.Author{
			{Name: "coastalprograms"},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "api-url",
				Aliases: []string{"u"},
				Usage:   "Notion API URL",
				EnvVars: []string{"NOTION_CLI_API_URL"},
				Value:   "https://api.notion.com/v1",
			},
			&cli.StringFlag{
				Name:    "token",
				Aliases: []string{"k"},
				Usage:   "Notion integration token",
				EnvVars: []string{"NOTION_CLI_TOKEN"},
			},
			&cli.IntFlag{
				Name:    "timeout",
				Aliases: []string{"t"},
				Usage:   "Request timeout in seconds (validated only; the HTTP timeout comes from NOTION_CLI_HTTP_TIMEOUT)",
				EnvVars: []string{"NOTION_CLI_TIMEOUT"},
				Value:   300,
			},
			&cli.IntFlag{
				Name:    "retry-count",
				Aliases: []string{"r"},
				Usage:   "Number of retry attempts (validated only; the retry engine reads NOTION_CLI_MAX_RETRIES)",
				EnvVars: []string{"NOTION_CLI_RETRY_COUNT"},
				Value:   3,
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Usage:   "Enable verbose output",
				EnvVars: []string{"NOTION_CLI_VERBOSE"},
				Value:   false,
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Output format (json, table, yaml; validated only, commands print the raw response body)",
				EnvVars: []string{"NOTION_CLI_OUTPUT"},
				Value:   "table",
			},
			&cli.StringFlag{
				Name:    "config-dir",
				Aliases: []string{"c"},
				Usage:   "Configuration directory",
				EnvVars: []string{"NOTION_CLI_CONFIG_DIR"},
			},
		},
		Commands: commands.RegisterCommands(),
		Before: func(ctx *cli.Context) error {
			injector := di.Bootstrap(ctx)
			ctx.App.Metadata = map[string]interface{}{
				"injector": injector,
			}
			return nil
		},
		After: func(ctx *cli.Context) error {
			if c := core.Default(); c != nil {
				c.Shutdown()
			}
			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
