package commands

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/coastalprograms/notion-cli-go/pkg/cachekey"
	"github.com/coastalprograms/notion-cli-go/pkg/core"
	"github.com/coastalprograms/notion-cli-go/pkg/di"
	coreerrors "github.com/coastalprograms/notion-cli-go/pkg/errors"
)

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:  "search",
		Usage: "Search pages and databases by title",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Value: 20},
		},
		Action: func(ctx *cli.Context) error {
			query := ctx.Args().First()
			if query == "" {
				return coreerrors.MissingArgument("query", "search")
			}
			injector := injectorFrom(ctx)
			c := di.GetCore(injector)
			client := di.GetNotionClient(injector)

			// Composite identifiers (the query text plus the limit) are
			// canonicalized deterministically by cachekey.Key.String, so
			// identical searches share one cache slot regardless of
			// which caller issued them first.
			key := cachekey.New(cachekey.NamespaceSearch, map[string]any{
				"query": query,
				"limit": ctx.Int("limit"),
			})
			body, err := core.Fetch(c, ctx.Context, key, func(fetchCtx context.Context) ([]byte, error) {
				resp, err := client.Post(fetchCtx, "/search", map[string]any{
					"query":     query,
					"page_size": ctx.Int("limit"),
				})
				if err != nil {
					return nil, err
				}
				return resp.Body, nil
			}, core.FetchOptions{Breaker: true})
			if err != nil {
				return fail(err)
			}
			return printRaw(ctx, body)
		},
	}
}
