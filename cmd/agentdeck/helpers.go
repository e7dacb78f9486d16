package main

import (
	"context"
	"fmt"

	"github.com/spf13/viper"

	"github.com/agentdeckhq/agentdeck/pkg/catalog"
	"github.com/agentdeckhq/agentdeck/pkg/logger"
	"github.com/agentdeckhq/agentdeck/pkg/presenter"
	"github.com/agentdeckhq/agentdeck/pkg/store"
)

// loadCatalog builds the session catalog from the configured
// directories plus the builtin set. Per-item load failures are
// reported as warnings, not fatal errors.
func loadCatalog(ctx context.Context) (*catalog.Catalog, error) {
	var opts []catalog.LoaderOption
	if dirs := viper.GetStringSlice("catalog_dirs"); len(dirs) > 0 {
		opts = append(opts, catalog.WithItemDirs(dirs...))
	}

	loader, err := catalog.NewLoader(opts...)
	if err != nil {
		return nil, err
	}

	cat, loadErr := loader.Load(ctx)
	if cat != nil && loadErr != nil {
		presenter.Warning(fmt.Sprintf("Some catalog items were skipped: %v", loadErr))
		logger.G(ctx).WithError(loadErr).Warn("Catalog loaded with errors")
	}
	if cat == nil {
		return nil, loadErr
	}
	return cat, nil
}

// openStore opens the local project database, honoring --db-path.
func openStore(ctx context.Context) (*store.Store, error) {
	return store.Open(ctx, viper.GetString("db_path"))
}
