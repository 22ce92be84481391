// Worker consumes telemetry events from Kafka and pushes them to Loki, and purges ended sessions on a schedule.
// The telemetry pipeline needs KAFKA_BROKERS and LOKI_URL; session cleanup needs DATABASE_URL.
// Either part is skipped when its settings are missing.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"bahayscout/backend/internal/config"
	"bahayscout/backend/internal/db"
	"bahayscout/backend/internal/logging"
	sessionrepo "bahayscout/backend/internal/session/repository"
	"bahayscout/backend/internal/telemetry/loki"
)

// messageReader is the part of *kafka.Reader the consumer uses.
type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
}

// eventPusher is the part of *loki.Client the consumer uses.
type eventPusher interface {
	PushEventJSON(ctx context.Context, rawJSON []byte) error
}

// sessionPurger is the part of the session repository the cleanup job uses.
type sessionPurger interface {
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	log, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		fmt.Fprintln(os.Stderr, "logging:", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	started := 0

	if brokers := cfg.TelemetryKafkaBrokersList(); len(brokers) > 0 && cfg.LokiURL != "" {
		lc, err := loki.NewClient(cfg.LokiURL, nil)
		if err != nil {
			log.Fatal("loki", zap.Error(err))
		}
		reader := kafka.NewReader(kafka.ReaderConfig{
			Brokers:        brokers,
			Topic:          cfg.TelemetryKafkaTopic,
			GroupID:        cfg.KafkaGroupID,
			MinBytes:       1,
			MaxBytes:       10e6, // 10MB
			MaxWait:        time.Second,
			CommitInterval: time.Second,
		})
		defer reader.Close()
		log.Info("worker: consuming telemetry",
			zap.String("topic", cfg.TelemetryKafkaTopic), zap.String("group", cfg.KafkaGroupID), zap.String("loki", cfg.LokiURL))
		g.Go(func() error {
			consume(gctx, reader, lc, log)
			return nil
		})
		started++
	} else {
		log.Info("worker: telemetry pipeline disabled (KAFKA_BROKERS or LOKI_URL not set)")
	}

	if cfg.DatabaseURL != "" {
		conn, err := db.Open(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatal("db", zap.Error(err))
		}
		defer conn.Close()
		sessions := sessionrepo.NewPostgresRepository(conn)
		g.Go(func() error {
			return runCleanup(gctx, sessions, cfg.CleanupInterval(), cfg.Retention(), log)
		})
		started++
	} else {
		log.Info("worker: session cleanup disabled (DATABASE_URL not set)")
	}

	if started == 0 {
		log.Fatal("worker: nothing to do")
	}
	if err := g.Wait(); err != nil {
		log.Fatal("worker failed", zap.Error(err))
	}
	log.Info("worker: stopped")
}

// consume forwards every Kafka message to Loki until ctx is done. Push failures are logged and the
// message is skipped.
func consume(ctx context.Context, r messageReader, p eventPusher, log *zap.Logger) {
	for {
		msg, err := r.ReadMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Warn("worker: kafka read error", zap.Error(err))
			continue
		}
		pushCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		if err := p.PushEventJSON(pushCtx, msg.Value); err != nil {
			log.Warn("worker: loki push failed", zap.Error(err), zap.Int64("offset", msg.Offset))
		}
		cancel()
	}
}

// runCleanup schedules purgeSessions every interval (and once at start) until ctx is done.
func runCleanup(ctx context.Context, repo sessionPurger, interval, retention time.Duration, log *zap.Logger) error {
	s := gocron.NewScheduler(time.UTC)
	s.SingletonModeAll()
	if _, err := s.Every(interval).Do(purgeSessions, ctx, repo, retention, log); err != nil {
		return fmt.Errorf("schedule session cleanup: %w", err)
	}
	log.Info("worker: session cleanup scheduled", zap.Duration("interval", interval), zap.Duration("retention", retention))
	s.StartAsync()
	<-ctx.Done()
	s.Stop()
	return nil
}

// purgeSessions deletes sessions that expired or were revoked more than retention ago.
func purgeSessions(ctx context.Context, repo sessionPurger, retention time.Duration, log *zap.Logger) {
	if ctx.Err() != nil {
		return
	}
	cutoff := time.Now().UTC().Add(-retention)
	n, err := repo.PurgeBefore(ctx, cutoff)
	if err != nil {
		log.Warn("worker: session cleanup failed", zap.Error(err))
		return
	}
	log.Info("worker: sessions purged", zap.Int64("count", n), zap.Time("cutoff", cutoff))
}
