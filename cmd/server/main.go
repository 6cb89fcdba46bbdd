// cmd/server/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/perfdash/backend-go/internal/api"
	"github.com/perfdash/backend-go/internal/config"
	"github.com/perfdash/backend-go/internal/dataset"
	"github.com/perfdash/backend-go/internal/dates"
	"github.com/perfdash/backend-go/internal/ingest"
	"github.com/perfdash/backend-go/internal/portfolio"
	"github.com/perfdash/backend-go/internal/series"
	"github.com/perfdash/backend-go/internal/service"
	"github.com/perfdash/backend-go/internal/storage"
	"github.com/perfdash/backend-go/pkg/logger"
)

func main() {
	cfg := config.Load()
	srvLog := logger.For("server")

	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	cache, err := dates.NewCache(cfg.Cache)
	if err != nil {
		srvLog.Fatal().Err(err).Msg("failed to initialize analysis cache")
	}

	resolver := dates.NewResolver(cache)
	store := dataset.NewStore()
	analyzer := portfolio.NewAnalyzer(resolver, portfolio.ThresholdsFromConfig(cfg.Analytics))
	builder := series.NewBuilder(resolver)
	svc := service.NewAnalyticsService(store, resolver, analyzer, builder)

	var archive storage.ObjectStorage
	if cfg.Storage.Enabled {
		client, err := storage.NewMinioClient(cfg.Storage)
		if err != nil {
			srvLog.Fatal().Err(err).Msg("failed to initialize archive storage")
		}
		archive = client
	}

	preloadDataset(svc, cfg.App)

	router := api.NewRouter(svc, archive, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		srvLog.Info().Str("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			srvLog.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	srvLog.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		srvLog.Fatal().Err(err).Msg("server forced to shutdown")
	}

	srvLog.Info().Msg("server exiting")
}

// preloadDataset seeds the in-memory dataset from any CSVs already sitting in
// the upload directory, so a restart does not come up empty when exports are
// mounted locally. A missing directory is not an error.
func preloadDataset(svc *service.AnalyticsService, cfg config.AppConfig) {
	if cfg.UploadDir == "" {
		return
	}
	if _, err := os.Stat(cfg.UploadDir); os.IsNotExist(err) {
		return
	}

	loadLog := logger.For("preload")
	records, err := ingest.LoadDir(context.Background(), cfg.UploadDir, cfg.LoaderWorkers, nil)
	if err != nil {
		loadLog.Warn().Err(err).Str("dir", cfg.UploadDir).Msg("dataset preload failed")
		return
	}
	if len(records) == 0 {
		return
	}

	info := svc.ReplaceDataset(context.Background(), records)
	loadLog.Info().Int("records", info.Records).Str("range_start", info.Range.Start).Str("range_end", info.Range.End).Msg("dataset preloaded")
}
