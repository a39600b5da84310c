package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"bharatid/internal/audit"
	auditkafka "bharatid/internal/audit/kafka"
	authmetrics "bharatid/internal/auth/metrics"
	authservice "bharatid/internal/auth/service"
	"bharatid/internal/auth/store/revocation"
	"bharatid/internal/documents/blob"
	docmetrics "bharatid/internal/documents/metrics"
	docservice "bharatid/internal/documents/service"
	docstore "bharatid/internal/documents/store"
	enrollservice "bharatid/internal/enrollment/service"
	enrollstore "bharatid/internal/enrollment/store"
	jwttoken "bharatid/internal/jwt_token"
	"bharatid/internal/platform/config"
	"bharatid/internal/platform/httpserver"
	"bharatid/internal/platform/logger"
	"bharatid/internal/platform/metrics"
	"bharatid/internal/platform/postgres"
	"bharatid/internal/platform/redis"
	rlmetrics "bharatid/internal/ratelimit/metrics"
	ratemw "bharatid/internal/ratelimit/middleware"
	"bharatid/internal/ratelimit/store/bucket"
	httptransport "bharatid/internal/transport/http"
	"bharatid/pkg/platform/tx"
)

const (
	bucketSweepInterval = time.Minute
	bucketIdleTimeout   = 10 * time.Minute
	trlPurgeInterval    = 15 * time.Minute
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

// stores groups the persistence choices made from configuration.
type stores struct {
	users   enrollservice.UserStore
	docs    docservice.Store
	trl     revocation.List
	events  audit.Store
	tx      tx.Runner
	checks  map[string]httptransport.HealthChecker
	cleanup []func()
}

func (s *stores) close() {
	for i := len(s.cleanup) - 1; i >= 0; i-- {
		s.cleanup[i]()
	}
}

func openStores(ctx context.Context, cfg config.Config, reg prometheus.Registerer, log *slog.Logger) (*stores, error) {
	st := &stores{
		users:  enrollstore.NewInMemoryUserStore(),
		docs:   docstore.NewInMemoryStore(),
		trl:    revocation.NewInMemoryTRL(),
		events: audit.NewInMemoryStore(),
		tx:     tx.NewLocalRunner(),
		checks: make(map[string]httptransport.HealthChecker),
	}

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	if db != nil {
		st.users = enrollstore.NewPostgresUserStore(db)
		st.docs = docstore.NewPostgresStore(db)
		st.trl = revocation.NewPostgresTRL(db)
		st.events = audit.NewPostgresStore(db)
		st.tx = postgres.NewTxRunner(db)
		st.checks["postgres"] = pingChecker{db: db}
		st.cleanup = append(st.cleanup, func() { _ = db.Close() })
		log.Info("using postgres stores")
	} else {
		log.Warn("DATABASE_URL not set, using in-memory stores")
	}

	rdb, err := redis.New(ctx, cfg.Redis)
	if err != nil {
		st.close()
		return nil, err
	}
	if rdb != nil {
		st.trl = revocation.NewRedisTRL(rdb.Client, revocation.WithRegisterer(reg))
		st.checks["redis"] = rdb
		st.cleanup = append(st.cleanup, func() { _ = rdb.Close() })
		log.Info("using redis revocation list")
	}
	return st, nil
}

type pingChecker struct{ db *sql.DB }

func (p pingChecker) Health(ctx context.Context) error { return p.db.PingContext(ctx) }

func run(ctx context.Context, cfg config.Config, log *slog.Logger) error {
	if cfg.UsesDevSecrets() {
		log.Warn("development secrets in use, set JWT_SIGNING_KEY and ENCRYPTION_SECRET before deploying")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	st, err := openStores(ctx, cfg, reg, log)
	if err != nil {
		return err
	}
	defer st.close()

	blobs, err := blob.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("blob store: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)

	auditOpts := []audit.Option{audit.WithLogger(log)}
	if len(cfg.Audit.KafkaBrokers) > 0 {
		sink, err := auditkafka.NewSink(cfg.Audit.KafkaBrokers, cfg.Audit.KafkaTopic)
		if err != nil {
			return err
		}
		defer sink.Close()
		inbox := make(chan audit.Event, cfg.Audit.BufferSize)
		auditOpts = append(auditOpts, audit.WithForwarding(inbox))
		worker := audit.NewWorker(sink, inbox, log)
		g.Go(func() error { return worker.Run(gctx) })
		log.Info("forwarding audit events", "topic", cfg.Audit.KafkaTopic)
	}
	auditor := audit.NewPublisher(st.events, reg, auditOpts...)

	jwtService := jwttoken.NewJWTService(cfg.Auth.JWTSigningKey, cfg.Auth.Issuer)

	docs := docservice.New(st.docs, blobs, auditor,
		docservice.WithMaxUploadBytes(cfg.Storage.MaxUploadBytes),
		docservice.WithLogger(log),
		docservice.WithMetrics(docmetrics.New(reg)),
	)
	enrollment := enrollservice.New(st.users, docs, auditor,
		enrollservice.WithLogger(log),
		enrollservice.WithTxRunner(st.tx),
	)
	auth := authservice.New(enrollment, jwtService, st.trl, auditor,
		authservice.WithLogger(log),
		authservice.WithMetrics(authmetrics.New(reg)),
		authservice.WithTokenTTL(cfg.Auth.TokenTTL),
	)

	if err := enrollment.SeedAdmin(ctx, cfg.Auth.Admin); err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}

	buckets := bucket.NewInMemoryBucketStore(cfg.RateLimit.LoginPerMinute, cfg.RateLimit.LoginBurst)
	limiter := ratemw.New(buckets, log, ratemw.WithMetrics(rlmetrics.New(reg)))

	router := httptransport.NewRouter(httptransport.Deps{
		Auth:        auth,
		Enrollment:  enrollment,
		Documents:   docs,
		Validator:   jwttoken.NewJWTServiceAdapter(jwtService),
		Revocations: revocation.NewChecker(st.trl),
		Limiter:     limiter,
		Metrics:     metrics.New(reg),
		Checks:      st.checks,
		Logger:      log,
	})

	apiServer := httpserver.New(cfg.Server.Addr, router, cfg.Server.ReadHeaderTimeout)
	metricsServer := httpserver.New(cfg.Server.MetricsAddr, metrics.Handler(reg), cfg.Server.ReadHeaderTimeout)

	g.Go(func() error { return serve(apiServer, log, "api") })
	g.Go(func() error { return serve(metricsServer, log, "metrics") })
	g.Go(func() error {
		every(gctx, bucketSweepInterval, func() {
			if n := buckets.Sweep(bucketIdleTimeout); n > 0 {
				log.Debug("swept idle rate limit buckets", "count", n)
			}
		})
		return nil
	})
	if purger, ok := st.trl.(*revocation.PostgresTRL); ok {
		g.Go(func() error {
			every(gctx, trlPurgeInterval, func() {
				n, err := purger.PurgeExpired(gctx)
				if err != nil {
					log.Warn("failed to purge revocation list", "error", err)
					return
				}
				if n > 0 {
					log.Debug("purged expired revocations", "count", n)
				}
			})
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		log.Info("shutting down")
		return errors.Join(apiServer.Shutdown(shutdownCtx), metricsServer.Shutdown(shutdownCtx))
	})

	return g.Wait()
}

func serve(srv *http.Server, log *slog.Logger, name string) error {
	log.Info("listening", "server", name, "addr", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("%s server: %w", name, err)
	}
	return nil
}

func every(ctx context.Context, interval time.Duration, fn func()) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn()
		}
	}
}
