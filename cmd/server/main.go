// Server runs the BahayScout JSON API on HTTP_ADDR and the gRPC health service on GRPC_ADDR.
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc/health"

	"bahayscout/backend/internal/audit"
	audithandler "bahayscout/backend/internal/audit/handler"
	auditrepo "bahayscout/backend/internal/audit/repository"
	"bahayscout/backend/internal/config"
	"bahayscout/backend/internal/db"
	healthhandler "bahayscout/backend/internal/health/handler"
	identityhandler "bahayscout/backend/internal/identity/handler"
	identityrepo "bahayscout/backend/internal/identity/repository"
	identityservice "bahayscout/backend/internal/identity/service"
	inquiryhandler "bahayscout/backend/internal/inquiry/handler"
	inquiryrepo "bahayscout/backend/internal/inquiry/repository"
	inquiryservice "bahayscout/backend/internal/inquiry/service"
	listinghandler "bahayscout/backend/internal/listing/handler"
	listingrepo "bahayscout/backend/internal/listing/repository"
	listingservice "bahayscout/backend/internal/listing/service"
	locationhandler "bahayscout/backend/internal/location/handler"
	locationrepo "bahayscout/backend/internal/location/repository"
	"bahayscout/backend/internal/logging"
	"bahayscout/backend/internal/notify"
	notifyhandler "bahayscout/backend/internal/notify/handler"
	"bahayscout/backend/internal/policy/engine"
	profilehandler "bahayscout/backend/internal/profile/handler"
	profilerepo "bahayscout/backend/internal/profile/repository"
	profileservice "bahayscout/backend/internal/profile/service"
	"bahayscout/backend/internal/realtime"
	reporthandler "bahayscout/backend/internal/report/handler"
	reportrepo "bahayscout/backend/internal/report/repository"
	reportservice "bahayscout/backend/internal/report/service"
	"bahayscout/backend/internal/security"
	"bahayscout/backend/internal/server"
	"bahayscout/backend/internal/server/middleware"
	sessionrepo "bahayscout/backend/internal/session/repository"
	"bahayscout/backend/internal/telemetry"
	"bahayscout/backend/internal/telemetry/otel"
	"bahayscout/backend/internal/telemetry/producer"
	userrepo "bahayscout/backend/internal/user/repository"
)

const (
	shutdownTimeout  = 15 * time.Second
	readinessRefresh = 10 * time.Second
)

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

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal("server exited", zap.Error(err))
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.Logger) error {
	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, "bahayscout-api", cfg.OTLPInsecure)
	if err != nil {
		return fmt.Errorf("otel: %w", err)
	}
	providers.SetGlobal()
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := providers.Shutdown(sctx); err != nil {
			log.Warn("otel shutdown", zap.Error(err))
		}
	}()

	database, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	if !cfg.AuthEnabled() {
		return errors.New("JWT_PRIVATE_KEY and JWT_PUBLIC_KEY must be set")
	}
	signer, pub, err := security.LoadKeyPair(cfg.JWTPrivateKey, cfg.JWTPublicKey)
	if err != nil {
		return fmt.Errorf("jwt keys: %w", err)
	}
	tokens, err := security.NewTokenProvider(signer, pub, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL(), cfg.RefreshTTL())
	if err != nil {
		return fmt.Errorf("token provider: %w", err)
	}

	policy, err := engine.NewOPAEvaluator(ctx, "", log)
	if err != nil {
		return fmt.Errorf("policy: %w", err)
	}

	events := telemetry.Multi{otel.NewEventEmitter(providers.LoggerProvider)}
	if kp := producer.NewKafkaProducer(cfg.TelemetryKafkaBrokersList(), cfg.TelemetryKafkaTopic); kp != nil {
		events = append(events, kp)
		defer closeProducer(kp, log)
	}
	metrics, err := otel.NewHTTPMetrics(providers.MeterProvider)
	if err != nil {
		return fmt.Errorf("metrics: %w", err)
	}

	mailer, outbox := newMailer(cfg, log)
	notifier := notify.NewNotifier(mailer, cfg.SiteURL, log)
	hub := realtime.NewHub(log)

	auditRepo := auditrepo.NewPostgresRepository(database)
	auditLogger := audit.NewLogger(auditRepo, middleware.ClientIPFromContext, log)

	users := userrepo.NewPostgresRepository(database)
	profiles := profilerepo.NewPostgresRepository(database)
	locations := locationrepo.NewPostgresRepository(database)
	listings := listingrepo.NewPostgresRepository(database)

	authSvc := identityservice.NewAuthService(
		users,
		identityrepo.NewPostgresRepository(database),
		sessionrepo.NewPostgresRepository(database),
		security.NewHasher(cfg.BcryptCost),
		tokens,
		auditLogger,
		events,
		log,
	)
	listingSvc := listingservice.NewListingService(listings, profiles, policy, listingservice.Deps{
		Users:     users,
		Locations: locations,
		Notifier:  notifier,
		Events:    events,
		Realtime:  hub,
	}, log)
	profileSvc := profileservice.NewProfileService(profiles, users, listingSvc, log)
	inquirySvc := inquiryservice.NewInquiryService(inquiryrepo.NewPostgresRepository(database), listings, policy, inquiryservice.Deps{
		Profiles: profiles,
		Users:    users,
		Notifier: notifier,
		Realtime: hub,
		Events:   events,
	}, log)
	reportSvc := reportservice.NewReportService(reportrepo.NewPostgresRepository(database), listings, events)

	checker := healthhandler.NewChecker(database, policy)
	registrars := []server.Registrar{
		healthhandler.NewHandler(checker, log),
		identityhandler.NewHandler(authSvc, log),
		profilehandler.NewHandler(profileSvc, profiles, log),
		locationhandler.NewHandler(locations, log),
		listinghandler.NewHandler(listingSvc, profiles, log),
		inquiryhandler.NewHandler(inquirySvc, profiles, log),
		reporthandler.NewHandler(reportSvc, profiles, log),
		audithandler.NewHandler(auditRepo, profiles, log),
		realtime.NewHandler(hub, tokens, profiles, cfg.AllowedOrigins(), log),
	}
	if outbox != nil {
		registrars = append(registrars, notifyhandler.NewHandler(outbox))
	}

	httpSrv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: server.NewRouter(server.RouterConfig{
			Log:            log,
			Tokens:         tokens,
			Audit:          auditLogger,
			Events:         events,
			Metrics:        metrics,
			AllowedOrigins: cfg.AllowedOrigins(),
		}, registrars...),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	hs := health.NewServer()
	grpcSrv := server.NewGRPCServer(hs)
	lis, err := net.Listen("tcp", cfg.GRPCAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.GRPCAddr, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		hub.Run(gctx)
		return nil
	})
	g.Go(func() error {
		healthhandler.Watch(gctx, checker, hs, readinessRefresh, log)
		return nil
	})
	g.Go(func() error {
		log.Info("http server listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		log.Info("grpc health server listening", zap.String("addr", cfg.GRPCAddr))
		if err := grpcSrv.Serve(lis); err != nil {
			return fmt.Errorf("grpc: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := httpSrv.Shutdown(sctx)
		grpcSrv.GracefulStop()
		return err
	})
	err = g.Wait()

	// Let in-flight async telemetry emits finish before the exporters shut down.
	time.Sleep(telemetry.ShutdownDrainDuration)
	log.Info("server stopped")
	return err
}

// newMailer picks Resend when RESEND_API_KEY is set and logs otherwise. With EMAIL_DEV_OUTBOX the
// mailer is wrapped in an in-memory outbox that is also returned for the dev route.
func newMailer(cfg *config.Config, log *zap.Logger) (notify.Mailer, *notify.Outbox) {
	var m notify.Mailer = notify.LogMailer{Log: log}
	if cfg.ResendAPIKey != "" {
		m = notify.NewResendClient(cfg.ResendAPIKey, cfg.ResendBaseURL, cfg.EmailFrom)
	}
	if cfg.EmailDevOutbox && !cfg.IsProduction() {
		ob := notify.NewOutbox(0, m)
		return ob, ob
	}
	return m, nil
}

func closeProducer(p producer.Producer, log *zap.Logger) {
	if err := p.Close(); err != nil {
		log.Warn("kafka producer close", zap.Error(err))
	}
}
