package commands

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/coastalprograms/notion-cli-go/pkg/cachekey"
	"github.com/coastalprograms/notion-cli-go/pkg/core"
	"github.com/coastalprograms/notion-cli-go/pkg/di"
	coreerrors "github.com/coastalprograms/notion-cli-go/pkg/errors"
)

func dataSourcesCommand() *cli.Command {
	return &cli.Command{
		Name:  "data-sources",
		Usage: "Fetch and query a database's underlying data sources",
		Subcommands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Fetch a data source by id",
				Action: func(ctx *cli.Context) error {
					id := ctx.Args().First()
					if id == "" {
						return coreerrors.MissingArgument("data source id", "data-sources get")
					}
					injector := injectorFrom(ctx)
					c := di.GetCore(injector)
					client := di.GetNotionClient(injector)

					key := cachekey.New(cachekey.NamespaceDataSource, id)
					body, err := core.Fetch(c, ctx.Context, key, func(fetchCtx context.Context) ([]byte, error) {
						resp, err := client.Get(fetchCtx, "/data_sources/"+id)
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
			},
			{
				Name:  "query",
				Usage: "Query a data source's rows",
				Action: func(ctx *cli.Context) error {
					id := ctx.Args().First()
					if id == "" {
						return coreerrors.MissingArgument("data source id", "data-sources query")
					}
					injector := injectorFrom(ctx)
					c := di.GetCore(injector)
					client := di.GetNotionClient(injector)

					key := cachekey.New(cachekey.NamespaceDataSource, id, "query")
					body, err := core.Fetch(c, ctx.Context, key, func(fetchCtx context.Context) ([]byte, error) {
						resp, err := client.Post(fetchCtx, "/data_sources/"+id+"/query", nil)
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
			},
			{
				Name:  "invalidate",
				Usage: "Drop a cached data source entry",
				Action: func(ctx *cli.Context) error {
					id := ctx.Args().First()
					if id == "" {
						return coreerrors.MissingArgument("data source id", "data-sources invalidate")
					}
					c := di.GetCore(injectorFrom(ctx))
					c.Invalidate(cachekey.New(cachekey.NamespaceDataSource, id))
					return nil
				},
			},
		},
	}
}
