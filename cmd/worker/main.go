package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/commerce-reconciler/internal/bootstrap"
	"github.com/kirillkom/commerce-reconciler/internal/config"
	"github.com/kirillkom/commerce-reconciler/internal/core/domain"
	"github.com/kirillkom/commerce-reconciler/internal/observability/logging"
)

func main() {
	cfg := config.Load()
	logger := logging.Setup("worker", cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	metricsMux := http.NewServeMux()
	metricsMux.Handle("/metrics", app.WorkerMetrics.Handler())
	metricsMux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: metricsMux,
	}
	go func() {
		logger.Info("worker metrics listening", "addr", metricsServer.Addr)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("worker metrics server error: %v", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeFileRegistered(ctx, func(handlerCtx context.Context, fileID string) error {
		processCtx, cancel := context.WithTimeout(handlerCtx, cfg.ProcessTimeout)
		defer cancel()
		return processFile(processCtx, app, logger, fileID)
	})
	if err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
}

// processFile runs one batch and records its outcome. A claim held by another
// worker is a skip, not a failure.
func processFile(ctx context.Context, app *bootstrap.App, logger *slog.Logger, fileID string) error {
	start := time.Now()
	app.WorkerMetrics.StartBatch()

	entity := ""
	if file, lookupErr := app.Reads.GetByID(ctx, fileID); lookupErr == nil {
		entity = string(file.EntityType)
	}

	err := app.ProcessUC.ProcessByID(ctx, fileID)
	switch {
	case err == nil:
		app.WorkerMetrics.FinishBatch("worker", entity, "processed", time.Since(start))
	case domain.IsKind(err, domain.ErrConflict):
		app.WorkerMetrics.FinishBatch("worker", entity, "skipped", time.Since(start))
		logger.Info("file skipped", "file_id", fileID, "reason", err.Error())
		return nil
	default:
		app.WorkerMetrics.FinishBatch("worker", entity, "error", time.Since(start))
		logger.Error("file processing failed", "file_id", fileID, "error", err)
		return err
	}

	if report, reportErr := app.Reads.ReportByFileID(ctx, fileID); reportErr == nil {
		app.WorkerMetrics.RecordBatchRows("worker", string(report.EntityType),
			report.Quality.CanonicalRows, report.Quality.RejectedRows,
			report.Quality.OrphanCount(), report.Quality.IdentityMerges)
	}
	logger.Info("file processed", "file_id", fileID, "duration_ms", time.Since(start).Milliseconds())
	return nil
}
