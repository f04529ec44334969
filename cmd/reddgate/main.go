package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	rdb "github.com/redis/go-redis/v9"

	"github.com/dropDatabas3/reddgate/internal/app"
	"github.com/dropDatabas3/reddgate/internal/config"
	"github.com/dropDatabas3/reddgate/internal/email"
	httpx "github.com/dropDatabas3/reddgate/internal/http"
	"github.com/dropDatabas3/reddgate/internal/http/router"
	jwtx "github.com/dropDatabas3/reddgate/internal/jwt"
	"github.com/dropDatabas3/reddgate/internal/observability/logger"
	"github.com/dropDatabas3/reddgate/internal/rate"
	"github.com/dropDatabas3/reddgate/internal/store"
	"github.com/dropDatabas3/reddgate/internal/store/core"
	"github.com/dropDatabas3/reddgate/internal/store/memory"
	"github.com/dropDatabas3/reddgate/internal/store/pg"
)

var version = "dev" // -ldflags "-X main.version=..."

func main() {
	var cfgPath string
	flag.StringVar(&cfgPath, "config", "configs/config.yaml", "ruta al archivo de configuración")
	flag.Parse()

	// .env para dev local; en prod las env vars vienen del entorno
	_ = godotenv.Load()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		// logger todavía no inicializado
		panic("config: " + err.Error())
	}

	logger.Init(logger.Config{
		Env:         cfg.App.Env,
		Level:       cfg.Log.Level,
		ServiceName: "reddgate",
		Version:     version,
	})
	defer func() { _ = logger.Sync() }()
	log := logger.L()

	// Claves de firma: sin esto no hay servicio. Falla => abort.
	keys, err := jwtx.LoadKeySet(cfg.Keystore.Path, cfg.Keystore.Key)
	if err != nil {
		log.Fatal("signing keys unavailable", logger.Err(err))
	}
	log.Info("signing keys loaded", logger.String("kid", keys.KID))

	ctx := context.Background()

	// Storage
	var repo core.Repository
	switch cfg.Storage.Driver {
	case "postgres":
		st, err := pg.New(ctx, cfg.Storage.DSN, pg.Tuning{
			MaxConns:        cfg.Storage.Postgres.MaxConns,
			MinConns:        cfg.Storage.Postgres.MinConns,
			ConnMaxLifetime: cfg.Storage.Postgres.ConnMaxLifetime,
		})
		if err != nil {
			log.Fatal("postgres init failed", logger.Err(err))
		}
		repo = st
	default:
		repo = memory.New(cfg.RefreshTTL())
	}
	defer repo.Close()

	// Mail
	var mailer email.Sender = email.LogSender{}
	if cfg.Mail.Enabled {
		s := email.NewSMTPSender(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.From, cfg.Mail.User, cfg.Mail.Pass)
		s.TLSMode = cfg.Mail.TLSMode
		mailer = s
	}

	c := &app.Container{
		Cfg:     cfg,
		Store:   repo,
		Keys:    keys,
		Issuer:  jwtx.NewIssuer(cfg.JWT.Issuer, keys, cfg.AccessTTL()),
		Refresh: store.NewRefreshTokens(repo, cfg.RefreshTTL()),
		Mailer:  mailer,
	}

	// Rate limiting por flujo
	var loginLim, signupLim rate.Limiter
	if cfg.Rate.Enabled {
		loginWin, _ := time.ParseDuration(cfg.Rate.Login.Window)
		signupWin, _ := time.ParseDuration(cfg.Rate.Signup.Window)
		switch cfg.Rate.Kind {
		case "redis":
			client := rdb.NewClient(&rdb.Options{Addr: cfg.Rate.Redis.Addr, DB: cfg.Rate.Redis.DB})
			loginLim = rate.NewRedisLimiter(client, cfg.Rate.Redis.Prefix, cfg.Rate.Login.Limit, loginWin)
			signupLim = rate.NewRedisLimiter(client, cfg.Rate.Redis.Prefix, cfg.Rate.Signup.Limit, signupWin)
		default:
			loginLim = rate.NewMemoryLimiter(cfg.Rate.Login.Limit, loginWin)
			signupLim = rate.NewMemoryLimiter(cfg.Rate.Signup.Limit, signupWin)
		}
	}

	metricsHandler, err := httpx.RegisterMetrics(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatal("metrics registration failed", logger.Err(err))
	}

	h := router.New(router.Deps{
		Container:      c,
		LoginLimiter:   loginLim,
		SignupLimiter:  signupLim,
		MetricsHandler: metricsHandler,
	})

	srv := httpx.NewServer(cfg.Server.Addr, h)

	go func() {
		log.Info("listening", logger.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server stopped", logger.Err(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	if err := httpx.Shutdown(srv, 10*time.Second); err != nil {
		log.Warn("graceful shutdown failed", logger.Err(err))
	}
}
