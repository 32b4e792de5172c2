package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"blooddonation/internal/config"
	"blooddonation/internal/database"
	"blooddonation/internal/handlers"
	"blooddonation/internal/identity"
	"blooddonation/internal/logging"
	"blooddonation/internal/middleware"
	"blooddonation/internal/payments"
	"blooddonation/internal/store"
)

func main() {
	config.Load()
	cfg := config.AppEnv

	log, err := logging.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	if err := cfg.Validate(); err != nil {
		log.Fatal("invalid configuration", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := database.Connect(ctx, cfg.MongoURI)
	if err != nil {
		log.Fatal("mongo connect failed", zap.Error(err))
	}
	db := client.Database(cfg.DBName)
	log.Info("MongoDB connected", zap.String("db", db.Name()))

	if err := database.EnsureAll(db, log); err != nil {
		log.Warn("index setup incomplete", zap.Error(err))
	}

	verifier, err := newVerifier(ctx, cfg, log)
	if err != nil {
		log.Fatal("identity setup failed", zap.Error(err))
	}

	var gateway payments.Gateway
	if cfg.StripeSecretKey != "" {
		gateway = payments.NewStripeGateway(cfg.StripeSecretKey)
	} else {
		log.Warn("STRIPE_SECRET_KEY not set, payment routes disabled")
	}

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(
		middleware.RequestLogger(log),
		middleware.Recovery(log),
		cors.New(cors.Config{
			AllowOrigins:     cfg.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			ExposeHeaders:    []string{middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		middleware.Deadline(cfg.RequestTimeout),
	)

	handlers.Register(r, handlers.Deps{
		Users:    store.NewUsers(db),
		Requests: store.NewRequests(db),
		Payments: store.NewPayments(db),
		Blogs:    store.NewBlogs(db),
		DB:       database.Pinger{DB: db},
		Verifier: verifier,
		Gateway:  gateway,
		Checkout: handlers.CheckoutConfig{Currency: cfg.Currency, SiteDomain: cfg.SiteDomain},
		Log:      log,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", zap.Error(err))
	}
	if err := client.Disconnect(shutdownCtx); err != nil {
		log.Error("mongo disconnect", zap.Error(err))
	}
}

// newVerifier prefers Firebase when a service key is configured and falls
// back to locally signed HS256 tokens.
func newVerifier(ctx context.Context, cfg config.Config, log *zap.Logger) (identity.Verifier, error) {
	if cfg.FirebaseServiceKey != "" {
		log.Info("verifying Firebase ID tokens")
		return identity.NewFirebaseVerifier(ctx, cfg.FirebaseServiceKey)
	}
	log.Info("verifying HS256 tokens")
	return identity.NewJWTVerifier(cfg.JWTSecret), nil
}
