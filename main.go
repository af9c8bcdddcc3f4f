package main

import (
	"context"
	stderrors "errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/keatontom/salesforce-opportunity-analysis/adapters/memory"
	"github.com/keatontom/salesforce-opportunity-analysis/adapters/postgres"
	"github.com/keatontom/salesforce-opportunity-analysis/app"
	"github.com/keatontom/salesforce-opportunity-analysis/internal/analysis"
	"github.com/keatontom/salesforce-opportunity-analysis/internal/config"
	"github.com/keatontom/salesforce-opportunity-analysis/internal/logging"
	"github.com/keatontom/salesforce-opportunity-analysis/internal/metrics"
	"github.com/keatontom/salesforce-opportunity-analysis/ports"
	"github.com/keatontom/salesforce-opportunity-analysis/ui"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
)

const metricsNamespace = "opportunity_analysis"

// openStore selects the report archive: sqlx when DATABASE_URL is set,
// otherwise in memory.
func openStore(ctx context.Context, cfg *config.Config, logger logging.Logger) (ports.ReportStore, *sqlx.DB, error) {
	if cfg.Database.URL == "" {
		logger.Info("no DATABASE_URL configured, archiving reports in memory")
		return memory.NewReportStore(), nil, nil
	}
	db, err := postgres.Connect(ctx, cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		return nil, nil, err
	}
	logger.Info("report archive connected", logging.String("driver", cfg.Database.Driver))
	return postgres.NewReportRepository(db), db, nil
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.NewLogger(logging.LogConfig{Level: appConfig.Logging.Level, Format: appConfig.Logging.Format})
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, db, err := openStore(ctx, appConfig, logger)
	if err != nil {
		logger.Error("failed to initialize report archive", logging.Err(err))
		os.Exit(1)
	}
	if db != nil {
		defer db.Close()
	}

	m := metrics.New(metricsNamespace)
	service := app.NewReportService(analysis.NewAnalyzer(appConfig.Analysis), store, logger, m)

	gin.SetMode(appConfig.Server.GinMode)
	server := ui.NewServer(service, logger, m, ui.Options{
		AllowedOrigins: appConfig.Server.AllowedOrigins,
		MaxUploadBytes: appConfig.Server.MaxUploadBytes(),
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(":" + appConfig.Server.Port)
	}()

	select {
	case err := <-errCh:
		if err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped", logging.Err(err))
			os.Exit(1)
		}
	case <-ctx.Done():
		logger.Info("shutting down", logging.Duration("timeout", appConfig.Server.ShutdownTimeout))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), appConfig.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed", logging.Err(err))
		}
	}
}
