package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"theatreops/internal/auditlog"
	"theatreops/internal/changefeed"
	"theatreops/internal/classifier"
	httpapi "theatreops/internal/http"
	"theatreops/internal/monitor"
	"theatreops/internal/notify"
	"theatreops/internal/platform/config"
	"theatreops/internal/platform/httpserver"
	"theatreops/internal/platform/logger"
	"theatreops/internal/platform/postgres"
	"theatreops/internal/platform/redis"
	"theatreops/internal/priority"
	"theatreops/internal/query"
)

// main wires the engine together and keeps the process lifecycle small.
// Business logic lives in the internal packages.
func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	cfg := config.FromEnv()
	log := logger.New(cfg.Server.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.Open(cfg.Postgres)
	if err != nil {
		log.Error("postgres unavailable", "error", err.Error())
		return err
	}
	if db != nil {
		defer db.Close()
	}

	redisClient, err := redis.New(cfg.Redis)
	if err != nil {
		log.Error("redis unavailable", "error", err.Error())
		return err
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	// Storage wiring: Postgres and Redis when configured, in-memory otherwise.
	var (
		auditStore auditlog.Store
		sink       notify.Sink
		inbox      httpapi.NotificationReader
		stats      query.StatsStore
	)
	if db != nil {
		auditStore = auditlog.NewPostgres(db)
		pgSink := notify.NewPostgresSink(db)
		sink, inbox = pgSink, pgSink
		stats = query.NewPostgresStats(db, cfg.Monitor.TargetWindowDays, cfg.Monitor.NearCapacityMark, cfg.Monitor.ExpiryWindowDays)
	} else {
		log.Warn("no postgres configured, using in-memory stores")
		auditStore = auditlog.NewMemoryStore()
		memSink := notify.NewMemorySink()
		sink, inbox = memSink, memSink
		stats = query.NewMemoryStats(cfg.Monitor.TargetWindowDays, cfg.Monitor.NearCapacityMark, cfg.Monitor.ExpiryWindowDays)
	}

	var suppressions notify.SuppressionStore
	if redisClient != nil {
		suppressions = notify.NewRedisSuppressions(redisClient, notify.WithSafetyTTL(cfg.Monitor.SuppressionTTL))
	} else {
		log.Warn("no redis configured, suppression state is process-local")
		suppressions = notify.NewMemorySuppressions()
	}

	var feed changefeed.Feed
	if len(cfg.Kafka.Brokers) > 0 {
		feed = changefeed.NewKafkaFeed(cfg.Kafka.Brokers, cfg.Kafka.TopicPrefix,
			changefeed.WithKafkaLogger(log),
			changefeed.WithConsumerGroup(cfg.Kafka.Group),
		)
	} else {
		log.Warn("no kafka brokers configured, using in-process change feed")
		feed = changefeed.NewMemoryFeed()
	}

	cls := classifier.New(classifier.Config{
		TargetWindowDays: cfg.Monitor.TargetWindowDays,
		NearCapacityMark: cfg.Monitor.NearCapacityMark,
		ExpiryWindowDays: cfg.Monitor.ExpiryWindowDays,
	})
	engine := priority.New(cfg.Monitor.TargetWindowDays)

	publisher := auditlog.NewPublisher(auditStore,
		auditlog.WithLogger(log),
		auditlog.WithAsyncBuffer(cfg.Monitor.AuditBuffer),
	)
	defer publisher.Close()

	dispatcher := notify.NewDispatcher(suppressions, sink, notify.WithLogger(log))

	controller := monitor.NewController(feed, cls, engine, publisher, dispatcher,
		monitor.WithLogger(log),
	)
	if err := controller.Start(ctx); err != nil {
		log.Error("monitor start failed", "error", err.Error())
		return err
	}
	defer controller.Stop()

	responder := query.NewResponder(stats, query.WithLogger(log))
	handler := httpapi.NewHandler(responder, inbox, publisher, controller, log)
	srv := httpserver.New(cfg.Server.Addr, httpapi.NewRouter(handler))

	log.Info("starting theatreops", "addr", cfg.Server.Addr)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err.Error())
		return err
	}

	log.Info("shutdown complete")
	return nil
}
