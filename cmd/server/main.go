package main

import (
	"context"
	"fmt"

	"github.com/telecare-labs/offsync/internal/config"
	handlerhttp "github.com/telecare-labs/offsync/internal/handler/http"
	"github.com/telecare-labs/offsync/internal/logger"
	"github.com/telecare-labs/offsync/internal/server"
	"github.com/telecare-labs/offsync/internal/service"
	"github.com/telecare-labs/offsync/internal/store"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.New("offsync-server")
	cfg, err := config.GetServerConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	ctx := context.Background()

	repo, closeStore, err := newStateRepository(ctx, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating state store")
	}
	defer closeStore()

	services := service.NewServices(repo, log)
	handler := handlerhttp.NewHandler(services, log)

	srv, err := server.NewServer(handler, cfg.Server, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
}

// newStateRepository selects the state backend: PostgreSQL when a DSN is
// configured, in-memory otherwise.
func newStateRepository(ctx context.Context, cfg config.Server, log *logger.Logger) (store.StateRepository, func(), error) {
	if cfg.DatabaseDSN == "" {
		log.Warn().Msg("no database DSN configured, state is kept in memory")
		return store.NewMemoryStateRepository(), func() {}, nil
	}

	db, err := store.NewConnectPostgres(ctx, cfg.DatabaseDSN, log)
	if err != nil {
		return nil, nil, err
	}

	closeDB := func() {
		if err := db.Close(); err != nil {
			log.Err(err).Msg("error closing database")
		}
	}
	return store.NewPostgresStateRepository(db, log), closeDB, nil
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
