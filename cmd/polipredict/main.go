package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/alexanderramin/polipredict/internal/catalog"
	"github.com/alexanderramin/polipredict/internal/cli"
	"github.com/alexanderramin/polipredict/internal/config"
	"github.com/alexanderramin/polipredict/internal/db"
	"github.com/alexanderramin/polipredict/internal/domain"
	"github.com/alexanderramin/polipredict/internal/model"
	"github.com/alexanderramin/polipredict/internal/repository"
	"github.com/alexanderramin/polipredict/internal/service"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()
	cfg := config.Load()
	logger := cfg.NewLogger(os.Stderr)

	var modelObserver model.Observer = model.NoopObserver{}
	var useCaseObserver service.UseCaseObserver = service.NoopUseCaseObserver{}
	if cfg.LogCalls {
		modelObserver = model.NewLogObserver(logger)
		useCaseObserver = service.NewLogUseCaseObserver(logger)
	}

	predictor := newPredictor(ctx, cfg, modelObserver, logger)

	// The history database is optional. Without it the history commands are
	// unavailable and a history catalog source falls back.
	var history service.HistoryService
	var historyRepo *repository.SQLiteHistoryRepo
	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		logger.Warn("history database unavailable", "path", cfg.DBPath, "error", err)
	} else {
		defer database.Close()
		historyRepo = repository.NewSQLiteHistoryRepo(database)
		history = service.NewHistoryService(historyRepo, db.NewSQLiteUnitOfWork(database), useCaseObserver)
	}

	cat := catalog.Load(ctx, catalogSource(cfg, database, historyRepo), logger)

	app := &cli.App{
		Predictions: service.NewPredictionService(predictor, useCaseObserver),
		Catalog:     service.NewCatalogService(cat),
		History:     history,
		Logger:      logger,
		Addr:        cfg.Addr,
		CORSOrigins: cfg.CORSOrigins,
	}

	// Detect interactive terminal for the dashboard entrypoint.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	rootCmd := cli.NewRootCmd(app)
	return rootCmd.ExecuteContext(ctx)
}

// newPredictor builds the configured model backend. A local artifact that
// cannot be loaded yields a predictor failing every call with the load
// error, so commands that never predict keep working.
func newPredictor(ctx context.Context, cfg config.Config, obs model.Observer, logger *slog.Logger) model.Predictor {
	if cfg.UseRemoteModel() {
		remote := model.NewRemotePredictor(model.RemoteConfig{
			Endpoint:   cfg.ModelEndpoint,
			TimeoutMs:  cfg.ModelTimeoutMs,
			MaxRetries: cfg.ModelMaxRetries,
		}, obs)
		if !remote.Available(ctx) {
			logger.Warn("model server not reachable", "endpoint", cfg.ModelEndpoint)
		}
		return remote
	}

	p, err := model.LoadPredictor(cfg.ModelPath, obs)
	if err != nil {
		logger.Debug("model artifact not loaded", "path", cfg.ModelPath, "error", err)
		loadErr := fmt.Errorf("loading model %s: %w", cfg.ModelPath, err)
		return model.PredictorFunc(func(context.Context, domain.FeatureRow) (float64, error) {
			return 0, loadErr
		})
	}
	logger.Debug("model artifact loaded", "path", cfg.ModelPath, "model", p.Name())
	return p
}

func catalogSource(cfg config.Config, database *sql.DB, repo *repository.SQLiteHistoryRepo) catalog.Source {
	if cfg.CatalogSource == config.CatalogSourceHistory {
		if database == nil {
			return nil
		}
		return catalog.NewHistorySource(repo)
	}
	return catalog.NewCSVSource(cfg.CategoriesCSV)
}
