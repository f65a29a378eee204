package main

import (
	"context"
	"fmt"
	"time"

	"github.com/roboyoz/hotline/internal/assets"
	"github.com/roboyoz/hotline/internal/config"
	"github.com/roboyoz/hotline/internal/flow"
	"github.com/roboyoz/hotline/internal/interview"
	"github.com/roboyoz/hotline/internal/messages"
	"github.com/roboyoz/hotline/internal/recordings"
	"github.com/roboyoz/hotline/internal/storage/mongo"
	"github.com/roboyoz/hotline/internal/storage/sqlite"
)

// openStore opens the configured interview store. The returned func closes it.
func openStore(ctx context.Context, cfg *config.Config) (interview.Store, func() error, error) {
	switch cfg.Storage.Driver {
	case "", config.DriverMemory:
		return interview.NewMemoryStore(), func() error { return nil }, nil

	case config.DriverSQLite:
		store, err := sqlite.Open(ctx, cfg.SQLitePath())
		if err != nil {
			return nil, nil, err
		}
		return store, store.Close, nil

	case config.DriverMongo:
		if cfg.Storage.DSN == "" {
			return nil, nil, fmt.Errorf("storage.dsn is required for the %s driver", config.DriverMongo)
		}
		store, err := mongo.Open(ctx, cfg.Storage.DSN, cfg.Storage.Database)
		if err != nil {
			return nil, nil, err
		}
		return store, func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return store.Close(ctx)
		}, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// openAssets opens the configured asset store. The AssetSource is set only
// for blob storage, the one place recordings can be copied to.
func openAssets(cfg *config.Config) (assets.Store, *recordings.AssetSource, error) {
	switch cfg.Assets.Driver {
	case "", config.AssetsDir:
		return assets.DirStore{Root: cfg.Resolve(cfg.Assets.Dir)}, nil, nil

	case config.AssetsAzBlob:
		bs, err := assets.OpenBlobStore(cfg.Assets.AccountURL, cfg.Assets.ConnectionString, cfg.Assets.Container, cfg.Assets.Prefix)
		if err != nil {
			return nil, nil, err
		}
		return bs, &recordings.AssetSource{Store: bs, BaseURL: bs.BaseURL()}, nil

	default:
		return nil, nil, fmt.Errorf("unknown assets driver %q", cfg.Assets.Driver)
	}
}

// buildMachine loads the catalog and topics and assembles the call flow.
func buildMachine(cfg *config.Config) (*flow.Machine, *messages.Catalog, error) {
	catalog, err := messages.Load(cfg.Resolve(cfg.Catalog.Path))
	if err != nil {
		return nil, nil, err
	}
	topics, err := cfg.FlowTopics()
	if err != nil {
		return nil, nil, fmt.Errorf("topics: %w", err)
	}
	return flow.NewMachine(catalog, topics, cfg.RecordingPolicy()), catalog, nil
}
