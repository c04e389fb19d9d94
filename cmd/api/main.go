package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/ovaphlow/pitchfork/service-media-go/internal/auth"
	"github.com/ovaphlow/pitchfork/service-media-go/internal/config"
	"github.com/ovaphlow/pitchfork/service-media-go/internal/invoice"
	"github.com/ovaphlow/pitchfork/service-media-go/internal/media"
	"github.com/ovaphlow/pitchfork/service-media-go/internal/media/store"
	"github.com/ovaphlow/pitchfork/service-media-go/internal/payment"
	"github.com/ovaphlow/pitchfork/service-media-go/internal/ratelimit"
	"github.com/ovaphlow/pitchfork/service-media-go/internal/router"
	"github.com/ovaphlow/pitchfork/service-media-go/internal/user"
	"github.com/ovaphlow/pitchfork/service-media-go/pkg/database"
	"github.com/ovaphlow/pitchfork/service-media-go/pkg/utilities"
)

func main() {
	// load .env if present so os.Getenv picks values from it
	_ = godotenv.Load()

	lg, err := utilities.Init(utilities.ConfigFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer lg.Sync()
	sugar := lg.Sugar()

	cfg := config.FromEnv()
	if err := cfg.Validate(); err != nil {
		sugar.Fatalf("invalid config: %v", err)
	}
	sugar.Infow("starting service-media-go", "addr", cfg.Addr, "store", cfg.ObjectStore)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// database
	db, err := database.Connect(ctx, database.ConfigFromEnv())
	if err != nil {
		sugar.Fatalf("db connect: %v", err)
	}
	defer db.Close()
	if err := database.Migrate(ctx, db.DB); err != nil {
		sugar.Fatalf("db migrate: %v", err)
	}

	objects, err := newObjectStore(ctx, cfg)
	if err != nil {
		sugar.Fatalf("object store: %v", err)
	}

	tokens := auth.NewTokenService(cfg.JWTSecret, cfg.TokenTTL)
	userSvc := user.NewUserService(db, nil, nil, tokens, cfg.AdminSignupCode)

	deps := router.Deps{
		Config:   cfg,
		Logger:   sugar,
		Verifier: tokens,
		Users:    user.NewHandler(userSvc, sugar),
		Media:    media.NewHandler(media.NewService(objects, sugar), sugar, cfg.MaxUploadBytes),
		Ping:     db.PingContext,
	}

	if cfg.RedisAddr != "" {
		rdb, err := ratelimit.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword)
		if err != nil {
			sugar.Fatalf("redis: %v", err)
		}
		defer rdb.Close()
		limiter, err := ratelimit.NewFixedWindowLimiter(rdb, "media:ratelimit", cfg.AuthRateLimit, cfg.AuthRateWindow)
		if err != nil {
			sugar.Fatalf("rate limiter: %v", err)
		}
		deps.AuthLimiter = limiter
		sugar.Infow("auth rate limiting enabled", "limit", cfg.AuthRateLimit, "window", cfg.AuthRateWindow)
	}

	if cfg.PaymentsEnabled() {
		gw := payment.NewStripeGateway(cfg.StripeSecretKey, cfg.FrontendURL)
		deps.Payments = payment.NewHandler(gw, cfg.StripeWebhookSecret, sugar)
		deps.Invoices = invoice.NewHandler(invoice.NewGenerator(cfg.InvoiceDir, invoice.DefaultCompany), gw, sugar)
		sugar.Info("payment routes enabled")
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router.RegisterRoutes(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalf("http server failed: %v", err)
		}
	}()
	sugar.Infow("server is running; press Ctrl+C to stop", "addr", cfg.Addr)

	<-ctx.Done()
	sugar.Info("shutting down")

	doneCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(doneCtx); err != nil {
		sugar.Warnf("http server shutdown failed: %v", err)
	}
	sugar.Info("goodbye")
}

func newObjectStore(ctx context.Context, cfg *config.Config) (store.ObjectStore, error) {
	switch cfg.ObjectStore {
	case config.StoreMinio:
		return store.NewMinio(ctx, store.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
			PublicURL: cfg.MinioPublicURL,
		})
	default:
		return store.NewCloudinary(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret)
	}
}
