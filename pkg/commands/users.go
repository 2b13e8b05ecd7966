package commands

import (
	"context"

	"github.com/urfave/cli/v2"

	"github.com/coastalprograms/notion-cli-go/pkg/cachekey"
	"github.com/coastalprograms/notion-cli-go/pkg/core"
	"github.com/coastalprograms/notion-cli-go/pkg/di"
	coreerrors "github.com/coastalprograms/notion-cli-go/pkg/errors"
)

func usersCommand() *cli.Command {
	return &cli.Command{
		Name:  "users",
		Usage: "List and fetch workspace users",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List all users in the workspace",
				Action: func(ctx *cli.Context) error {
					injector := injectorFrom(ctx)
					c := di.GetCore(injector)
					client := di.GetNotionClient(injector)

					key := cachekey.New(cachekey.NamespaceUser)
					body, err := core.Fetch(c, ctx.Context, key, func(fetchCtx context.Context) ([]byte, error) {
						resp, err := client.Get(fetchCtx, "/users")
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
				Name:  "get",
				Usage: "Fetch a single user by id",
				Action: func(ctx *cli.Context) error {
					id := ctx.Args().First()
					if id == "" {
						return coreerrors.MissingArgument("user id", "users get")
					}
					injector := injectorFrom(ctx)
					c := di.GetCore(injector)
					client := di.GetNotionClient(injector)

					key := cachekey.New(cachekey.NamespaceUser, id)
					body, err := core.Fetch(c, ctx.Context, key, func(fetchCtx context.Context) ([]byte, error) {
						resp, err := client.Get(fetchCtx, "/users/"+id)
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
		},
	}
}
