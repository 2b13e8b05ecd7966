package commands

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/coastalprograms/notion-cli-go/pkg/cachekey"
	"github.com/coastalprograms/notion-cli-go/pkg/core"
	"github.com/coastalprograms/notion-cli-go/pkg/di"
	coreerrors "github.com/coastalprograms/notion-cli-go/pkg/errors"
)

func pagesCommand() *cli.Command {
	return &cli.Command{
		Name:  "pages",
		Usage: "Fetch, create and update Notion pages",
		Subcommands: []*cli.Command{
			{
				Name:  "get",
				Usage: "Fetch a page by id",
				Action: func(ctx *cli.Context) error {
					id := ctx.Args().First()
					if id == "" {
						return coreerrors.MissingArgument("page id", "pages get")
					}
					injector := injectorFrom(ctx)
					c := di.GetCore(injector)
					client := di.GetNotionClient(injector)

					key := cachekey.New(cachekey.NamespacePage, id)
					body, err := core.Fetch(c, ctx.Context, key, func(fetchCtx context.Context) ([]byte, error) {
						resp, err := client.Get(fetchCtx, "/pages/"+id)
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
				Name:  "create",
				Usage: "Create a page under a parent database",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "parent-database-id", Required: true},
					&cli.StringFlag{Name: "title", Required: true},
				},
				Action: func(ctx *cli.Context) error {
					injector := injectorFrom(ctx)
					c := di.GetCore(injector)
					client := di.GetNotionClient(injector)

					body := map[string]any{
						"parent": map[string]any{"database_id": ctx.String("parent-database-id")},
						"properties": map[string]any{
							"title": map[string]any{"title": []map[string]any{
								{"text": map[string]any{"content": ctx.String("title")}},
							}},
						},
					}
					resp, err := client.Post(ctx.Context, "/pages", body)
					if err != nil {
						return fail(err)
					}
					// Creates never read through Fetch's cache path; only
					// invalidate the parent database's cached query results.
					c.Invalidate(cachekey.New(cachekey.NamespaceDatabase, ctx.String("parent-database-id"), "query"))
					return printRaw(ctx, resp.Body)
				},
			},
			{
				Name:  "update",
				Usage: "Patch a page's properties",
				Action: func(ctx *cli.Context) error {
					id := ctx.Args().First()
					if id == "" {
						return coreerrors.MissingArgument("page id", "pages update")
					}
					injector := injectorFrom(ctx)
					c := di.GetCore(injector)
					client := di.GetNotionClient(injector)

					resp, err := client.Patch(ctx.Context, "/pages/"+id, map[string]any{})
					if err != nil {
						return fail(err)
					}
					c.Invalidate(cachekey.New(cachekey.NamespacePage, id))
					return printRaw(ctx, resp.Body)
				},
			},
			{
				Name:  "archive",
				Usage: "Archive (soft-delete) a page",
				Action: func(ctx *cli.Context) error {
					id := ctx.Args().First()
					if id == "" {
						return coreerrors.MissingArgument("page id", "pages archive")
					}
					injector := injectorFrom(ctx)
					c := di.GetCore(injector)
					client := di.GetNotionClient(injector)

					_, err := client.Patch(ctx.Context, "/pages/"+id, map[string]any{"archived": true})
					if err != nil {
						return fail(err)
					}
					c.Invalidate(cachekey.New(cachekey.NamespacePage, id))
					fmt.Fprintln(os.Stderr, "archived page", id)
					return nil
				},
			},
		},
	}
}
