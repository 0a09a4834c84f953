package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"regexp"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	_ "agent-dispatch-service/docs"
	"agent-dispatch-service/internal/invoker"
	"agent-dispatch-service/internal/repository/postgresql"
	"agent-dispatch-service/internal/service"
	"agent-dispatch-service/internal/settlement"
	httptransport "agent-dispatch-service/internal/transport/http"
	"agent-dispatch-service/internal/worker"
)

// @title Agent Dispatch Service API
// @version 1.0
// @description Matches jobs to registered agents and dispatches them for execution.
// @BasePath /
func main() {
	_ = godotenv.Load()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if envOr("LOG_PRETTY", "") != "" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pgDSN := mustEnv("POSTGRES_DSN")
	redisAddr := mustEnv("REDIS_ADDR")

	httpAddr := envOr("HTTP_ADDR", ":8080")
	workersCount := envIntOr("WORKERS", 3)
	matchInterval := time.Duration(envIntOr("MATCH_INTERVAL_SECONDS", 30)) * time.Second
	agentTimeout := time.Duration(envIntOr("AGENT_TIMEOUT_SECONDS", 60)) * time.Second
	settlementURL := envOr("SETTLEMENT_URL", "")

	// Postgres
	pool, err := postgresql.NewPool(ctx, pgDSN)
	if err != nil {
		log.Fatal().Err(err).Msg("pg connect")
	}
	defer pool.Close()

	// Redis
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatal().Err(err).Msg("redis connect")
	}

	// DI
	jobRepo := postgresql.NewJobRepository(pool)
	agentRepo := postgresql.NewAgentRepository(pool)
	distRepo := postgresql.NewDistributionRepository(pool)

	baseQueueKey := envOr("REDIS_QUEUE_KEY", "match:queue")
	baseProcessingKey := envOr("REDIS_PROCESSING_KEY", "match:processing")
	processingMapKey := envOr("REDIS_PROCESSING_MAP_KEY", baseProcessingKey+":map")

	queue := service.NewRedisMatchQueue(
		rdb,
		processingMapKey,
		service.Lane{QueueKey: baseQueueKey + ":low", ProcessingKey: baseProcessingKey + ":low"},
		service.Lane{QueueKey: baseQueueKey + ":normal", ProcessingKey: baseProcessingKey + ":normal"},
		service.Lane{QueueKey: baseQueueKey + ":high", ProcessingKey: baseProcessingKey + ":high"},
	)

	agentInvoker := invoker.New()
	settler := settlement.New(settlementURL)

	matcher := service.NewMatcher(jobRepo, agentRepo, distRepo)
	executor := service.NewExecutor(jobRepo, agentRepo, distRepo, agentInvoker, agentTimeout)
	reconciler := service.NewReconciler(jobRepo, agentRepo, settler)
	coordinator := service.NewCoordinator(jobRepo, distRepo, matcher, executor, matchInterval)

	jobSvc := service.NewJobService(jobRepo, queue)
	agentSvc := service.NewAgentService(agentRepo)

	// Reaper: claimed-but-unmatched jobs go back onto their lane if a worker
	// died mid-claim.
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				n, err := queue.RequeueStale(ctx, 100)
				if err != nil {
					log.Error().Err(err).Msg("requeue stale claims")
					continue
				}
				if n > 0 {
					log.Info().Int64("count", n).Msg("requeued stale claims")
				}
			}
		}
	}()

	// Match workers drain the queue; the coordinator scan catches anything
	// the queue missed.
	processor := worker.NewProcessor(matcher)
	matchPool := worker.NewPool(queue, processor, workersCount)
	go matchPool.Run(ctx)
	go coordinator.Run(ctx)

	handler := httptransport.NewHandler(jobSvc, agentSvc, coordinator, executor, reconciler)
	srv := &http.Server{
		Addr:              httpAddr,
		Handler:           httptransport.Routes(handler),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().
			Str("addr", httpAddr).
			Int("workers", workersCount).
			Str("redis_addr", redisAddr).
			Str("postgres_dsn", redactDSN(pgDSN)).
			Msg("server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server")
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}

	log.Info().Msg("server stopped")
}

func mustEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatal().Str("key", key).Msg("missing env")
	}
	return v
}

func envOr(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}

func envIntOr(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

func redactDSN(dsn string) string {
	// user:pass@ -> user:****@, leaves password-less DSNs alone
	re := regexp.MustCompile(`://([^:/?#]+):([^@/]+)@`)
	return re.ReplaceAllString(dsn, `://$1:****@`)
}
