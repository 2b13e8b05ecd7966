package commands

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/coastalprograms/notion-cli-go/pkg/cachekey"
	"github.com/coastalprograms/notion-cli-go/pkg/core"
	"github.com/coastalprograms/notion-cli-go/pkg/di"
	coreerrors "github.com/coastalprograms/notion-cli-go/pkg/errors"
)

func databasesCommand() *cli.Command {
	return &cli.Command{
		Name:  "databases",
		Usage: "Query and manage Notion databases",
		Subcommands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Fetch a database by id",
				Action: func(ctx *cli.Context) error {
					id := ctx.Args().First()
					if id == "" {
						return coreerrors.MissingArgument("database id", "databases get")
					}
					injector := injectorFrom(ctx)
					c := di.GetCore(injector)
					client := di.GetNotionClient(injector)

					key := cachekey.New(cachekey.NamespaceDatabase, id)
					body, err := core.Fetch(c, ctx.Context, key, func(fetchCtx context.Context) ([]byte, error) {
						resp, err := client.Get(fetchCtx, "/databases/"+id)
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
				Usage: "Query a database's pages",
				Action: func(ctx *cli.Context) error {
					id := ctx.Args().First()
					if id == "" {
						return coreerrors.MissingArgument("database id", "databases query")
					}
					injector := injectorFrom(ctx)
					c := di.GetCore(injector)
					client := di.GetNotionClient(injector)

					key := cachekey.New(cachekey.NamespaceDatabase, id, "query")
					body, err := core.Fetch(c, ctx.Context, key, func(fetchCtx context.Context) ([]byte, error) {
						resp, err := client.Post(fetchCtx, "/databases/"+id+"/query", nil)
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
				Usage: "Drop a cached database entry",
				Action: func(ctx *cli.Context) error {
					id := ctx.Args().First()
					if id == "" {
						return coreerrors.MissingArgument("database id", "databases invalidate")
					}
					c := di.GetCore(injectorFrom(ctx))
					c.Invalidate(cachekey.New(cachekey.NamespaceDatabase, id))
					return nil
				},
			},
		},
	}
}
