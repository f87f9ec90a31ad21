package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"asset-catalog/blobstore"
	"asset-catalog/blobstore/filesystemStore"
	"asset-catalog/blobstore/memoryStore"
	"asset-catalog/blobstore/s3"
	"asset-catalog/catalog"
	"asset-catalog/config"
	"asset-catalog/httpapi"
	"asset-catalog/metrics"
	"asset-catalog/orm"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	initLogging(cfg)

	index := catalog.NewIndex()
	store := initStore(cfg, index)
	blobs := initBlobStore(cfg)
	fetcher := initFetcher(cfg)

	service := catalog.NewService(
		index,
		blobs,
		fetcher,
		store,
		metrics.NewProm("asset_catalog"),
	)

	server := httpapi.NewServer(
		service,
		httpapi.DefaultResolver(),
		cfg.MaxListLimit,
		cfg.MaxTagLimit,
	)

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Info().Str("addr", addr).Msg("asset catalog listening")
	if err := server.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func initLogging(cfg *config.AppConfig) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Msgf("unknown log level '%s', defaulting to info", cfg.LogLevel)
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.HumanReadableOutput {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}
}

// initStore connects the durable store when enabled and replays it into
// the index.
func initStore(cfg *config.AppConfig, index *catalog.Index) catalog.Persister {
	if !cfg.Database.Enabled {
		log.Info().Msg("database disabled, catalog runs in-memory only")

		return nil
	}

	db, err := orm.InitDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}

	store := orm.NewStore(db)

	assets, err := store.LoadAll(context.Background())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load persisted assets")
	}
	for _, asset := range assets {
		if err := index.Insert(asset); err != nil {
			log.Warn().Err(err).
				Str("asset_id", asset.ID.String()).
				Msg("skipping persisted asset")
		}
	}
	log.Info().Int("assets", len(assets)).Msg("catalog index rebuilt from database")

	return store
}

func initBlobStore(cfg *config.AppConfig) blobstore.BlobStore {
	switch cfg.Storage.Type {
	case "filesystem":
		return initFilesystemStore(cfg)
	case "s3":
		return initS3Store(cfg)
	case "memory":
		log.Info().Msg("memory blob store initialized")

		return memoryStore.New()
	default:
		log.Warn().Msgf("unknown storage type '%s', defaulting to filesystem", cfg.Storage.Type)

		return initFilesystemStore(cfg)
	}
}

func initFilesystemStore(cfg *config.AppConfig) blobstore.BlobStore {
	fsStore, err := filesystemStore.New(cfg.Storage.Dir)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize filesystem blob store")
	}
	log.Info().
		Str("storage_dir", cfg.Storage.Dir).
		Msg("filesystem blob store initialized")

	return fsStore
}

func initS3Store(cfg *config.AppConfig) blobstore.BlobStore {
	s3Store, err := s3.New(cfg.Storage.S3)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize s3 blob store")
	}
	log.Info().Msg("s3 blob store initialized")

	return s3Store
}

func initFetcher(cfg *config.AppConfig) catalog.Fetcher {
	timeout, err := time.ParseDuration(cfg.FetchTimeout)
	if err != nil {
		log.Warn().Msgf("invalid fetch timeout '%s', defaulting to 30s", cfg.FetchTimeout)
		timeout = 30 * time.Second
	}

	return catalog.NewHTTPFetcher(timeout, cfg.MaxFetchBytes)
}
