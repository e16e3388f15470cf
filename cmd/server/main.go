// Command server runs the authentication service over an in-memory account
// store. It is the development and demo entrypoint; production deployments
// embed the engine behind their own AccountStore implementation.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	authcore "github.com/polylab/authcore"
	"github.com/polylab/authcore/httpapi"
	"github.com/polylab/authcore/logging"
	"github.com/polylab/authcore/memstore"
)

func main() {
	cfg := configFromEnv()
	log := logging.NewJSON(os.Stdout, cfg.Security.Debug)
	ctx := context.Background()

	client, cleanup, err := redisClient()
	if err != nil {
		log.Error(ctx, "redis setup failed", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	var mailer authcore.Mailer = authcore.NopMailer{}
	if cfg.Security.Debug {
		mailer = authcore.LogMailer{Log: log}
	}

	engine, err := authcore.New().
		WithConfig(cfg).
		WithRedis(client).
		WithAccounts(memstore.New()).
		WithMailer(mailer).
		WithLogger(log).
		WithAuditSink(authcore.NewJSONWriterSink(os.Stdout)).
		Build()
	if err != nil {
		log.Error(ctx, "engine build failed", "error", err)
		os.Exit(1)
	}
	defer engine.Close()

	if email := os.Getenv("ADMIN_EMAIL"); email != "" {
		pw := os.Getenv("ADMIN_PASSWORD")
		if id, err := engine.EnsureAdmin(ctx, email, pw); err != nil {
			log.Error(ctx, "admin seeding failed", "error", err)
			os.Exit(1)
		} else {
			log.Info(ctx, "admin ready", "account_id", id)
		}
	}

	mux := http.NewServeMux()
	mux.Handle("/auth/", httpapi.New(engine, log).Handler())
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	addr := envOr("LISTEN_ADDR", ":8080")
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info(ctx, "listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error(ctx, "server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "shutdown failed", "error", err)
	}
	log.Info(ctx, "stopped")
}

// redisClient connects to REDIS_ADDR, or boots an embedded miniredis when
// the variable is unset so the demo server runs with zero dependencies.
func redisClient() (redis.UniversalClient, func(), error) {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     addr,
			Password: os.Getenv("REDIS_PASSWORD"),
		})
		return client, func() { _ = client.Close() }, nil
	}

	mr, err := miniredis.Run()
	if err != nil {
		return nil, nil, err
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return client, func() {
		_ = client.Close()
		mr.Close()
	}, nil
}

func configFromEnv() authcore.Config {
	cfg := authcore.DefaultConfig()

	cfg.Security.Debug = envBool("DEBUG", false)
	cfg.Security.EnableHSTS = envBool("ENABLE_HSTS", false)
	cfg.Security.FrontendOrigin = os.Getenv("FRONTEND_ORIGIN")

	if name := os.Getenv("SESSION_COOKIE_NAME"); name != "" {
		cfg.Cookies.SessionName = name
	}
	if hours := envInt("SESSION_TTL_HOURS", 0); hours > 0 {
		cfg.Session.TTL = time.Duration(hours) * time.Hour
	}
	if limit := envInt("RATE_LIMIT_PER_MINUTE", 0); limit > 0 {
		cfg.RateLimit.Limit = limit
	}
	if issuer := os.Getenv("TOTP_ISSUER"); issuer != "" {
		cfg.TOTP.Issuer = issuer
	}

	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
