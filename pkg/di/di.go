package di

import (
	"github.com/samber/do/v2"
	"github.com/urfave/cli/v2"

	"github.com/coastalprograms/notion-cli-go/pkg/config"
	"github.com/coastalprograms/notion-cli-go/pkg/core"
	"github.com/coastalprograms/notion-cli-go/pkg/notionapi"
	"github.com/coastalprograms/notion-cli-go/pkg/services"
)

// Bootstrap initializes the dependency injection container: config,
// logger, the shared request-execution core (cache, retry, breaker,
// dedup, transport) and the Notion REST client built on top of it.
func Bootstrap(cliCtx *cli.Context) do.Injector {
	injector := do.New()

	do.ProvideValue(injector, cliCtx)

	do.Provide(injector, config.NewConfig)
	do.Provide(injector, services.NewLogger)
	do.Provide(injector, newCore)
	do.Provide(injector, newNotionClient)

	return injector
}

func newCore(injector do.Injector) (*core.Core, error) {
	logger := do.MustInvoke[services.Logger](injector)
	cfg := do.MustInvoke[config.Service](injector)

	coreCfg := config.LoadCoreConfig()
	coreCfg.Verbose = cfg.IsVerbose()

	var events core.EventSink
	if coreCfg.Verbose {
		events = core.NewZapSink(logger.Zap())
	}
	c, err := core.New(coreCfg, events)
	if err != nil {
		return nil, err
	}
	core.SetDefault(c)
	return c, nil
}

func newNotionClient(injector do.Injector) (*notionapi.Client, error) {
	cfg := do.MustInvoke[config.Service](injector)
	c := do.MustInvoke[*core.Core](injector)
	return notionapi.New(c.Transport(), cfg.GetAPIURL(), cfg.GetToken()), nil
}

// Service getter helpers for easy access from pkg/commands.

func GetConfig(injector do.Injector) config.Service {
	return do.MustInvoke[config.Service](injector)
}

func GetLogger(injector do.Injector) services.Logger {
	return do.MustInvoke[services.Logger](injector)
}

func GetCore(injector do.Injector) *core.Core {
	return do.MustInvoke[*core.Core](injector)
}

func GetNotionClient(injector do.Injector) *notionapi.Client {
	return do.MustInvoke[*notionapi.Client](injector)
}
