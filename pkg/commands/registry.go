// Package commands is the thin CLI surface exercising pkg/core end to
// end: each command builds a cachekey.Key, delegates to core.Fetch (or
// core.Invalidate for writes), and prints the raw response body. It does
// not parse the remote API's JSON schema, by design.
package commands

import (
	"github.com/samber/do/v2"
	"github.com/urfave/cli/v2"
)

// RegisterCommands returns every top-level command exposed by cmd/ncli.
func RegisterCommands() []*cli.Command {
	return []*cli.Command{
		databasesCommand(),
		dataSourcesCommand(),
		pagesCommand(),
		blocksCommand(),
		usersCommand(),
		searchCommand(),
	}
}

func injectorFrom(ctx *cli.Context) do.Injector {
	meta := ctx.App.Metadata["injector"]
	return meta.(do.Injector)
}
