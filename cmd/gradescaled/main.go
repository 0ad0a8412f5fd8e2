package main

import (
	"context"
	"errors"
	"flag"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	api "github.com/mind-engage/mindengage-gradescale/internal/api/http"
	auth "github.com/mind-engage/mindengage-gradescale/internal/auth/middleware"
	"github.com/mind-engage/mindengage-gradescale/internal/config"
	"github.com/mind-engage/mindengage-gradescale/internal/db"
	"github.com/mind-engage/mindengage-gradescale/internal/gradescale"
	"github.com/mind-engage/mindengage-gradescale/internal/logger"
	"github.com/mind-engage/mindengage-gradescale/internal/metrics"
	"github.com/mind-engage/mindengage-gradescale/internal/ratelimit"
	"github.com/mind-engage/mindengage-gradescale/internal/tracing"
	syncx "github.com/mind-engage/mindengage-gradescale/internal/sync"
)

func main() {
	configFile := flag.String("config", os.Getenv("CONFIG_FILE"), "optional config file (yaml, toml or json); env wins")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		stdlog.Fatalf("config: %v", err)
	}

	log, err := logger.New(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		stdlog.Fatalf("logger: %v", err)
	}
	defer log.Sync()

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// --- DB ---
	ctx, cancel := context.WithTimeout(rootCtx, 10*time.Second)
	dbh, err := db.Open(ctx, db.Driver(cfg.DBDriver), cfg.DBDSN)
	cancel()
	if err != nil {
		log.Fatal("db open failed", zap.Error(err))
	}
	defer dbh.Close()
	store := gradescale.NewSQLStore(dbh, cfg.DBDriver)
	events := syncx.NewEventRepo(dbh, cfg.SiteID)

	// --- Auth (local JWT for offline/dev) ---
	authSvc := auth.NewAuthService(cfg.AuthHMACSecret)

	if cfg.TracingEnabled {
		tp, err := tracing.Init("gradescaled", cfg.TracingEndpoint)
		if err != nil {
			log.Fatal("tracing init failed", zap.Error(err))
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = tp.Shutdown(ctx)
		}()
	}

	m := metrics.New()
	limiter := ratelimit.New(cfg.RateLimitRPS, cfg.RateLimitBurst)
	go limiter.Cleanup(rootCtx)

	// --- Router ---
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, api.RequestLogger(log), middleware.Recoverer, m.Middleware, tracing.Middleware(nil))
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins(),
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Local login (enabled in offline mode by default; can be enabled online via env)
	if cfg.EnableLocalAuth {
		r.With(limiter.Middleware).Post("/auth/login", auth.LoginHandler(authSvc, auth.Login{
			AdminUser:     cfg.AdminUser,
			AdminPassHash: cfg.AdminPassHash,
			AllowDev:      cfg.Mode == config.ModeOffline,
		}))
	}

	// Protected API (JWT → role in context → RBAC)
	r.Group(func(pr chi.Router) {
		pr.Use(auth.JWTMiddleware(authSvc))
		api.MountGradeScales(pr, api.Deps{
			Store:       store,
			Events:      events,
			Log:         log,
			SaveHooks:   []func(gradescale.SaveState){m.SaveHook},
			SaveTimeout: cfg.SaveTimeout,
			Throttle:    limiter.Middleware,
		})
	})

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200) })
	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		if err := dbh.PingContext(r.Context()); err != nil {
			http.Error(w, "db unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(200)
	})
	r.Handle("/metrics", m.Handler())

	srv := &http.Server{Addr: cfg.HTTPAddr, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		<-rootCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Warn("shutdown", zap.Error(err))
		}
	}()

	log.Info("listening",
		zap.String("addr", cfg.HTTPAddr),
		zap.String("mode", string(cfg.Mode)),
		zap.String("db", cfg.DBDriver))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("serve", zap.Error(err))
	}
}
