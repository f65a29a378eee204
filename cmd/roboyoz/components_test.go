package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roboyoz/hotline/internal/assets"
	"github.com/roboyoz/hotline/internal/config"
	"github.com/roboyoz/hotline/internal/interview"
)

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	t.Run("memory", func(t *testing.T) {
		store, closeStore, err := openStore(ctx, config.New())
		require.NoError(t, err)
		assert.IsType(t, &interview.MemoryStore{}, store)
		assert.NoError(t, closeStore())
	})

	t.Run("sqlite resolves against the config file", func(t *testing.T) {
		dir := t.TempDir()
		cfg := config.New()
		cfg.Path = filepath.Join(dir, config.FileName)
		cfg.Storage.Driver = config.DriverSQLite
		store, closeStore, err := openStore(ctx, cfg)
		require.NoError(t, err)
		require.NoError(t, store.SaveInterview(ctx, interview.New("+15550100")))
		require.NoError(t, closeStore())
		assert.FileExists(t, filepath.Join(dir, config.DefaultSQLitePath))
	})

	t.Run("mongo needs a dsn", func(t *testing.T) {
		cfg := config.New()
		cfg.Storage.Driver = config.DriverMongo
		_, _, err := openStore(ctx, cfg)
		assert.ErrorContains(t, err, "storage.dsn")
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := config.New()
		cfg.Storage.Driver = "postgres"
		_, _, err := openStore(ctx, cfg)
		assert.Error(t, err)
	})
}

func TestOpenAssets(t *testing.T) {
	t.Run("dir", func(t *testing.T) {
		cfg := config.New()
		cfg.Path = filepath.Join("/srv", "hotline", config.FileName)
		store, source, err := openAssets(cfg)
		require.NoError(t, err)
		assert.Equal(t, assets.DirStore{Root: filepath.Join("/srv", "hotline", config.DefaultAssetsDir)}, store)
		assert.Nil(t, source)
	})

	t.Run("azblob", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()

		cfg := config.New()
		cfg.Assets.Driver = config.AssetsAzBlob
		cfg.Assets.Container = "media"
		cfg.Assets.Prefix = "recordings/"
		cfg.Assets.ConnectionString = "DefaultEndpointsProtocol=http;AccountName=devstoreaccount1;" +
			"AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;" +
			"BlobEndpoint=" + srv.URL + "/devstoreaccount1;"
		store, source, err := openAssets(cfg)
		require.NoError(t, err)
		require.NotNil(t, source)
		assert.Same(t, store, source.Store)
		assert.Equal(t, srv.URL+"/devstoreaccount1/media/recordings/", source.BaseURL)
	})

	t.Run("azblob needs a container", func(t *testing.T) {
		cfg := config.New()
		cfg.Assets.Driver = config.AssetsAzBlob
		_, _, err := openAssets(cfg)
		assert.Error(t, err)
	})

	t.Run("unknown driver", func(t *testing.T) {
		cfg := config.New()
		cfg.Assets.Driver = "s3"
		_, _, err := openAssets(cfg)
		assert.Error(t, err)
	})
}

func TestBuildMachine(t *testing.T) {
	machine, catalog, err := buildMachine(config.New())
	require.NoError(t, err)
	assert.Empty(t, machine.MissingMessages())
	assert.Same(t, catalog, machine.Catalog())

	cfg := config.New()
	cfg.Topics = nil
	_, _, err = buildMachine(cfg)
	assert.Error(t, err)

	cfg = config.New()
	cfg.Catalog.Path = filepath.Join(t.TempDir(), "missing.yaml")
	_, _, err = buildMachine(cfg)
	assert.Error(t, err)
}
