package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"procurement/internal/authority"
	"procurement/internal/fees"
	jwttoken "procurement/internal/jwt_token"
	"procurement/internal/ledger"
	"procurement/internal/platform/config"
	"procurement/internal/platform/httpserver"
	"procurement/internal/platform/kafka/consumer"
	"procurement/internal/platform/metrics"
	"procurement/internal/platform/redis"
	"procurement/internal/qualifier"
	qualifiermetrics "procurement/internal/qualifier/metrics"
	qualifiermodels "procurement/internal/qualifier/models"
	qualifierservice "procurement/internal/qualifier/service"
	"procurement/internal/tender"
	tendermetrics "procurement/internal/tender/metrics"
	tendermodels "procurement/internal/tender/models"
	tenderservice "procurement/internal/tender/service"
	httptransport "procurement/internal/transport/http"
	"procurement/internal/verifier"
	verifiermetrics "procurement/internal/verifier/metrics"
	verifiermodels "procurement/internal/verifier/models"
	verifierservice "procurement/internal/verifier/service"
	verifierstore "procurement/internal/verifier/store"
	"procurement/pkg/platform/audit/publisher"
	"procurement/pkg/platform/audit/store/memory"
)

const (
	activityBuffer    = 1024
	snapshotKeyPrefix = "audit"
)

type feeLedger interface {
	fees.Recorder
	fees.Lister
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the audit snapshot consumer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, config.FromContext(cmd.Context()), slog.Default())
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	var cleanup []func()
	defer func() {
		for i := len(cleanup) - 1; i >= 0; i-- {
			cleanup[i]()
		}
	}()
	checks := map[string]httptransport.HealthCheck{}

	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	if rdb != nil {
		cleanup = append(cleanup, func() { _ = rdb.Close() })
		checks["redis"] = rdb.Health
	}

	clock := newClock(cfg, rdb, logger)

	ledgerStore, err := newFeeLedger(ctx, cfg, checks, &cleanup)
	if err != nil {
		return err
	}

	activity := publisher.NewPublisher(memory.NewInMemoryStore(),
		publisher.WithAsyncBuffer(activityBuffer),
		publisher.WithErrorHandler(func(err error) {
			logger.Error("activity append failed", "error", err)
		}),
	)
	cleanup = append(cleanup, activity.Close)

	reg := metrics.NewRegistry()
	strict := authority.Strict(cfg.StrictAuthority)

	tenders := tender.NewService(ledgerStore,
		tenderservice.WithLogger(logger),
		tenderservice.WithAuditPublisher(activity),
		tenderservice.WithMetrics(tendermetrics.New(reg)),
		tenderservice.WithGate(authority.NewGate(strict)),
		tenderservice.WithSettings(tendermodels.Settings{
			MaxTenders:      cfg.Registry.MaxTenders,
			RegistrationFee: cfg.Registry.RegistrationFee,
		}),
	)
	bidders := qualifier.NewService(ledgerStore,
		qualifierservice.WithLogger(logger),
		qualifierservice.WithAuditPublisher(activity),
		qualifierservice.WithMetrics(qualifiermetrics.New(reg)),
		qualifierservice.WithGate(authority.NewGate(strict)),
		qualifierservice.WithSettings(qualifiermodels.Settings{
			MaxBidders:       cfg.Registry.MaxBidders,
			QualificationFee: cfg.Registry.QualificationFee,
		}),
	)

	var snapshots verifierservice.SnapshotStore = verifierstore.NewInMemorySnapshots()
	if rdb != nil {
		snapshots = verifierstore.NewRedisSnapshots(rdb.Client, snapshotKeyPrefix)
	}
	audits := verifierservice.New(snapshots, verifierstore.NewInMemoryRequests(),
		verifierservice.WithLogger(logger),
		verifierservice.WithAuditPublisher(activity),
		verifierservice.WithMetrics(verifiermetrics.New(reg)),
		verifierservice.WithGate(authority.NewGate(strict)),
		verifierservice.WithSettings(verifiermodels.Settings{MaxQueries: cfg.Registry.MaxQueries}),
	)

	tokens := jwttoken.NewJWTService(cfg.Auth.SigningKey, cfg.Auth.Issuer, cfg.Auth.Audience)
	router := httptransport.NewRouter(httptransport.Config{
		Logger:      logger,
		Validator:   jwttoken.NewJWTServiceAdapter(tokens),
		Clock:       clock,
		Fees:        ledgerStore,
		Activity:    activity,
		Metrics:     metrics.Handler(reg),
		MetricsPath: cfg.MetricsPath,
		Checks:      checks,
	},
		tender.NewHandler(tenders, logger),
		qualifier.NewHandler(bidders, logger),
		verifier.NewHandler(audits, logger),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.Run(gctx, httpserver.New(cfg.ListenAddr, router), cfg.ShutdownTimeout, logger)
	})

	if len(cfg.Kafka.Brokers) > 0 {
		c, err := consumer.New(consumer.Config{
			Brokers: cfg.Kafka.Brokers,
			Topic:   cfg.Kafka.Topic,
			GroupID: cfg.Kafka.GroupID,
		}, verifier.NewIngestHandler(audits, logger), logger)
		if err != nil {
			return err
		}
		cleanup = append(cleanup, c.Close)
		if err := c.EnsureTopic(ctx, cfg.Kafka.Partitions, cfg.Kafka.Replication); err != nil {
			return err
		}
		g.Go(func() error { return c.Run(gctx) })
	} else {
		logger.Info("kafka not configured, snapshot ingestion disabled")
	}

	logger.Info("procurement registry started",
		"addr", cfg.ListenAddr,
		"clock", string(cfg.Clock.Mode),
		"strict_authority", cfg.StrictAuthority,
	)
	return g.Wait()
}

func newClock(cfg *config.Config, rdb *redis.Client, logger *slog.Logger) ledger.Clock {
	if cfg.Clock.Mode == config.ClockRedis {
		return ledger.NewRedisClock(rdb.Client, cfg.Clock.RedisKey)
	}
	genesis := cfg.Clock.Genesis
	if genesis.IsZero() {
		genesis = time.Now().UTC()
		logger.Warn("clock genesis not configured, counting blocks from process start", "genesis", genesis)
	}
	return ledger.NewIntervalClock(genesis, cfg.Clock.Interval)
}

func newFeeLedger(ctx context.Context, cfg *config.Config, checks map[string]httptransport.HealthCheck, cleanup *[]func()) (feeLedger, error) {
	if cfg.Postgres.DSN == "" {
		return fees.NewInMemoryLedger(), nil
	}
	db, err := sql.Open("pgx", cfg.Postgres.DSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	*cleanup = append(*cleanup, func() { _ = db.Close() })
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("postgres ping failed: %w", err)
	}
	l := fees.NewPostgresLedger(db)
	if err := l.EnsureSchema(ctx); err != nil {
		return nil, err
	}
	checks["postgres"] = db.PingContext
	return l, nil
}
