package app

import (
	"context"
	"flag"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"fxpub/internal/config"
	"fxpub/internal/provider"
	"fxpub/internal/site"
)

func buildCommand(ctx context.Context, appCfg *config.AppConfig, registry *provider.Registry, args []string) error {
	flags := flag.NewFlagSet("build", flag.ContinueOnError)
	dataDir := flags.String("data-dir", appCfg.Data.Dir, "data directory")
	siteDir := flags.String("site-dir", appCfg.Site.Dir, "site directory")
	if err := flags.Parse(args); err != nil {
		return err
	}

	logrus.WithField("execution_id", uuid.NewString()).Debug("running build")

	quotes, currencies, cleanup, err := openStores(ctx, *dataDir, appCfg.Data.DatabaseURL)
	if err != nil {
		return err
	}
	defer cleanup()

	builder := site.NewBuilder(quotes, currencies, registry.Descriptors(), *siteDir)
	return builder.Build(ctx)
}
