package commands

import (
	"fmt"

	"github.com/urfave/cli/v2"

	coreerrors "github.com/coastalprograms/notion-cli-go/pkg/errors"
)

// printRaw writes the raw JSON response body to stdout. Pretty-printing
// and table/yaml rendering are out of scope for this CLI.
func printRaw(ctx *cli.Context, body []byte) error {
	fmt.Fprintln(ctx.App.Writer, string(body))
	return nil
}

func fail(err error) error {
	if err == nil {
		return nil
	}
	return coreerrors.FromCoreError(err)
}
