package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/kirillkom/commerce-reconciler/internal/config"
	"github.com/kirillkom/commerce-reconciler/internal/core/pipeline"
	"github.com/kirillkom/commerce-reconciler/internal/core/ports"
	"github.com/kirillkom/commerce-reconciler/internal/core/usecase"
	"github.com/kirillkom/commerce-reconciler/internal/infrastructure/catalog"
	"github.com/kirillkom/commerce-reconciler/internal/infrastructure/queue/nats"
	"github.com/kirillkom/commerce-reconciler/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/commerce-reconciler/internal/infrastructure/resilience"
	"github.com/kirillkom/commerce-reconciler/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/commerce-reconciler/internal/infrastructure/suggest/ollama"
	"github.com/kirillkom/commerce-reconciler/internal/infrastructure/tabular"
	"github.com/kirillkom/commerce-reconciler/internal/observability/metrics"
)

type App struct {
	Config config.Config

	Queue     ports.MessageQueue
	IngestUC  ports.FileIngestor
	ProcessUC ports.FileProcessor
	Reads     ports.FileReader
	Canonical ports.CanonicalReader

	WorkerMetrics *metrics.WorkerMetrics

	closeFn func()
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := postgres.EnsureSchema(ctx, db); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}
	registry := postgres.NewRegistryRepository(db)
	store := postgres.NewCanonicalRepository(db)

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init blob storage: %w", err)
	}

	workerMetrics := metrics.NewWorkerMetrics("worker")
	executor := resilience.NewExecutor(resilience.DefaultConfig())

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
		LagObserver: func(lag time.Duration) {
			workerMetrics.ObserveQueueLag("worker", lag)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load normalization catalog: %w", err)
	}
	engine := pipeline.NewEngine(cat)
	reader := tabular.NewReader()

	// Mapping suggestions are optional assistance. Without an Ollama
	// endpoint the pipelines run on alias tables alone.
	var suggester ports.MappingSuggester
	if cfg.OllamaURL != "" {
		client := ollama.NewWithOptions(cfg.OllamaURL, cfg.OllamaSuggestModel, ollama.Options{
			Timeout:            time.Duration(cfg.SuggestTimeoutSecond) * time.Second,
			RequestsPerMinute:  cfg.SuggestPerMinute,
			ResilienceExecutor: executor,
		})
		suggester = ollama.NewSuggester(client)
	}

	ingestUC := usecase.NewIngestFileUseCase(registry, storage, reader, queue)
	processUC := usecase.NewProcessFileUseCase(registry, store, storage, reader, suggester, engine)
	readsUC := usecase.NewReadModelUseCase(registry, store)

	return &App{
		Config: cfg,

		Queue:     queue,
		IngestUC:  ingestUC,
		ProcessUC: processUC,
		Reads:     readsUC,
		Canonical: readsUC,

		WorkerMetrics: workerMetrics,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
