package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/coastalprograms/notion-cli-go/pkg/batch"
	"github.com/coastalprograms/notion-cli-go/pkg/cachekey"
	"github.com/coastalprograms/notion-cli-go/pkg/core"
	"github.com/coastalprograms/notion-cli-go/pkg/di"
	coreerrors "github.com/coastalprograms/notion-cli-go/pkg/errors"
)

func blocksCommand() *cli.Command {
	return &cli.Command{
		Name:  "blocks",
		Usage: "Fetch block children",
		Subcommands: []*cli.Command{
			{
				Name:  "children",
				Usage: "List a block's children",
				Action: func(ctx *cli.Context) error {
					id := ctx.Args().First()
					if id == "" {
						return coreerrors.MissingArgument("block id", "blocks children")
					}
					injector := injectorFrom(ctx)
					c := di.GetCore(injector)
					client := di.GetNotionClient(injector)

					key := cachekey.New(cachekey.NamespaceBlock, id, "children")
					body, err := core.Fetch(c, ctx.Context, key, func(fetchCtx context.Context) ([]byte, error) {
						resp, err := client.Get(fetchCtx, "/blocks/"+id+"/children")
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
				Name:  "children-bulk",
				Usage: "Fetch children for a comma-separated list of block ids with bounded concurrency",
				Action: func(ctx *cli.Context) error {
					ids := strings.Split(ctx.Args().First(), ",")
					injector := injectorFrom(ctx)
					c := di.GetCore(injector)
					client := di.GetNotionClient(injector)

					ops := make([]batch.Operation[[]byte], 0, len(ids))
					for _, id := range ids {
						id := strings.TrimSpace(id)
						ops = append(ops, func() ([]byte, error) {
							key := cachekey.New(cachekey.NamespaceBlock, id, "children")
							return core.Fetch(c, ctx.Context, key, func(fetchCtx context.Context) ([]byte, error) {
								resp, err := client.Get(fetchCtx, "/blocks/"+id+"/children")
								if err != nil {
									return nil, err
								}
								return resp.Body, nil
							}, core.FetchOptions{Breaker: true})
						})
					}

					results := batch.Run(ops, batch.Options{Concurrency: 5})
					for i, r := range results {
						if r.Err != nil {
							fmt.Fprintf(ctx.App.Writer, "%s: error: %v\n", ids[i], r.Err)
							continue
						}
						fmt.Fprintf(ctx.App.Writer, "%s: %s\n", ids[i], r.Value)
					}
					return nil
				},
			},
		},
	}
}
