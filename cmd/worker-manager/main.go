// cmd/worker-manager/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"risk-workers/internal/api"
	"risk-workers/internal/common/aws"
	"risk-workers/internal/common/camunda"
	"risk-workers/internal/common/config"
	"risk-workers/internal/common/database"
	"risk-workers/internal/common/logger"
	"risk-workers/internal/common/messaging"
	"risk-workers/internal/common/observability"
	"risk-workers/internal/common/search"
	"risk-workers/internal/history"

	sra "risk-workers/internal/workers/risk/score-risk-assessment"
	sal "risk-workers/internal/workers/risk/send-risk-alert"
	stp "risk-workers/internal/workers/risk/store-prediction"
)

func main() {
	bootLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	log.Info("starting risk workers", map[string]interface{}{
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
		"history":     cfg.History.Backend,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		zapLog.Fatal("metrics init failed", zap.Error(err))
	}
	tp, err := observability.InitTracer(cfg.Tracing, cfg.App.Name, cfg.App.Version)
	if err != nil {
		zapLog.Fatal("tracing init failed", zap.Error(err))
	}

	checks := map[string]api.Check{}
	var closers []func() error

	// --- History backend ---
	repo, closeRepo, err := openRepository(ctx, cfg, log)
	if err != nil {
		zapLog.Fatal("history backend unavailable", zap.String("backend", cfg.History.Backend), zap.Error(err))
	}
	if closeRepo != nil {
		closers = append(closers, closeRepo)
	}
	checks["history"] = repo.Ping

	var recorderOpts []history.RecorderOption

	// --- Elasticsearch analytics index ---
	if cfg.Database.Elasticsearch.Enabled {
		es, err := database.OpenElasticsearch(ctx, cfg.Database.Elasticsearch, database.DefaultConnectPolicy, log)
		if err != nil {
			zapLog.Fatal("elasticsearch unavailable", zap.Error(err))
		}
		indexer := search.NewPredictionIndexer(es.Client, cfg.Database.Elasticsearch.Index)
		if err := indexer.EnsureIndex(ctx); err != nil {
			zapLog.Fatal("elasticsearch index setup failed", zap.Error(err))
		}
		recorderOpts = append(recorderOpts, history.WithIndexer(indexer))
		checks["elasticsearch"] = es.Ping
	}

	// --- Kafka event stream ---
	if cfg.Kafka.Enabled {
		producer := messaging.NewProducer(cfg.Kafka.Brokers)
		closers = append(closers, producer.Close)
		recorderOpts = append(recorderOpts, history.WithPublisher(messaging.NewPredictionPublisher(producer, cfg.Kafka.Topic)))
	}

	recorder := history.NewRecorder(repo, log, recorderOpts...)

	// --- Zeebe workers ---
	var workers []*camunda.CamundaWorker
	var zeebe *camunda.Client
	if cfg.Camunda.Enabled {
		zeebe, err = camunda.NewClient(ctx, camunda.ClientConfigFrom(cfg.Camunda))
		if err != nil {
			zapLog.Fatal("zeebe client failed", zap.Error(err))
		}
		checks["zeebe"] = zeebe.HealthCheck

		workers, err = startWorkers(ctx, cfg, zeebe, recorder, obs, log)
		if err != nil {
			zapLog.Fatal("worker setup failed", zap.Error(err))
		}
	}

	// --- HTTP API ---
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(api.RouterConfig{
		ServiceName:       cfg.App.Name,
		AllowedOrigins:    cfg.HTTP.AllowedOrigins,
		Logger:            log,
		PredictionHandler: api.NewPredictionHandler(recorder, obs, log),
		HealthHandler:     api.NewHealthHandler(cfg.App.Version, checks),
	})
	server := api.NewServer(cfg.HTTP, router, log)
	serverErr := server.Start()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received", nil)
	case err := <-serverErr:
		if err != nil {
			log.Error("HTTP server failed", map[string]interface{}{"error": err.Error()})
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	for _, w := range workers {
		w.Stop()
	}
	if zeebe != nil {
		_ = zeebe.Close()
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP shutdown failed", map[string]interface{}{"error": err.Error()})
	}
	for _, closeFn := range closers {
		if err := closeFn(); err != nil {
			log.Warn("close failed", map[string]interface{}{"error": err.Error()})
		}
	}
	_ = observability.ShutdownTracer(shutdownCtx, tp)
	_ = obs.Shutdown(shutdownCtx)

	log.Info("risk workers stopped", nil)
}

// openRepository connects the configured history backend and returns its closer.
func openRepository(ctx context.Context, cfg *config.Config, log logger.Logger) (history.Repository, func() error, error) {
	switch cfg.History.Backend {
	case "redis":
		rc, err := database.OpenRedis(ctx, cfg.Database.Redis, database.DefaultConnectPolicy, log)
		if err != nil {
			return nil, nil, err
		}
		return history.NewRedisRepository(rc.Client, cfg.History.KeyPrefix, cfg.History.MaxEntries), rc.Close, nil

	case "postgres":
		pg, err := database.OpenPostgres(ctx, cfg.Database.Postgres, database.DefaultConnectPolicy, log)
		if err != nil {
			return nil, nil, err
		}
		repo := history.NewPostgresRepository(pg.DB, cfg.History.MaxEntries)
		if err := repo.Migrate(ctx); err != nil {
			_ = pg.Close()
			return nil, nil, err
		}
		return repo, pg.Close, nil

	default:
		return history.NewMemoryRepository(cfg.History.MaxEntries), nil, nil
	}
}

func startWorkers(
	ctx context.Context,
	cfg *config.Config,
	zeebe *camunda.Client,
	recorder *history.Recorder,
	obs *observability.Observability,
	log logger.Logger,
) ([]*camunda.CamundaWorker, error) {
	var workers []*camunda.CamundaWorker
	start := func(taskType string, h camunda.JobHandler) {
		if w := camunda.StartWorker(zeebe.GetClient(), taskType, config.GetWorkerConfig(cfg, taskType), h, obs, log); w != nil {
			workers = append(workers, w)
		}
	}

	scorer, err := sra.NewHandler(sra.ConfigFromApp(cfg), obs, log)
	if err != nil {
		return nil, err
	}
	start(sra.TaskType, scorer)

	store, err := stp.NewHandler(stp.ConfigFromApp(cfg), recorder, log)
	if err != nil {
		return nil, err
	}
	start(stp.TaskType, store)

	var email sal.EmailSender
	var sms sal.SMSSender
	if cfg.Alerts.Email.Enabled || cfg.Alerts.SMS.Enabled {
		awsCfg, err := aws.LoadConfig(ctx, cfg.Alerts.AWS.Region)
		if err != nil {
			return nil, err
		}
		if cfg.Alerts.Email.Enabled {
			email = aws.NewSESClient(awsCfg, cfg.Alerts.Email.FromEmail)
		}
		if cfg.Alerts.SMS.Enabled {
			sms = aws.NewSNSClient(awsCfg, cfg.Alerts.SMS.SenderID)
		}
	}
	alerts, err := sal.NewHandler(sal.ConfigFromApp(cfg), email, sms, log)
	if err != nil {
		return nil, err
	}
	start(sal.TaskType, alerts)

	return workers, nil
}
