package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"selfcheck/config"
	"selfcheck/dbx"
	"selfcheck/handlers"
	"selfcheck/logging"
	"selfcheck/mailer"
	"selfcheck/repository"
	"selfcheck/routes"
	"selfcheck/scoring"
	"selfcheck/services"
	"selfcheck/sessions"
	"selfcheck/utils"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New(os.Stderr, "text", "error").Error(context.Background(), "failed to load config", "error", err)
		os.Exit(1)
	}

	log := logging.New(os.Stdout, cfg.LogFormat, cfg.LogLevel)
	if err := run(cfg, log); err != nil {
		log.Error(context.Background(), "server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log logging.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info(ctx, "starting", "environment", cfg.Env, "addr", cfg.HTTPAddr)

	pool, db, err := utils.OpenDB(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return err
	}
	defer pool.Close()
	defer db.Close()

	repos := repository.NewPostgresManager()
	if err := repos.RunMigrations(ctx, db); err != nil {
		return err
	}

	rdb, err := utils.OpenRedisPool(ctx, cfg.RedisURL)
	if err != nil {
		return err
	}
	defer rdb.Close()

	var m mailer.Mailer = mailer.NewLogMailer(log)
	if cfg.Mail.SendGridAPIKey != "" {
		m = mailer.NewSendGridMailer(cfg.Mail.SendGridAPIKey, cfg.Mail.FromName, cfg.Mail.FromAddress)
	} else {
		log.Warn(ctx, "SENDGRID_API_KEY not set, welcome emails will only be logged")
	}

	store := sessions.NewRedisStore(rdb, cfg.SessionTTL)
	tx := dbx.SQLTransactor{DB: db}

	authService := services.NewAuthService(repos, db, m, log, cfg.BcryptCost)
	testService := services.NewTestService(repos, db, tx, scoring.Default(), log, cfg.TestCooldown)
	profileService := services.NewProfileService(repos, db, log)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery(), handlers.RequestLogger(log))

	err = routes.Setup(router, routes.Dependencies{
		Auth:      handlers.NewAuthHandler(authService, store, log, handlers.CookieOptions{Secure: cfg.CookieSecure, MaxAge: store.TTL()}),
		Tests:     handlers.NewTestHandler(testService, log),
		Profile:   handlers.NewProfileHandler(profileService, log),
		Health:    handlers.NewHealthHandler(db, rdb),
		Sessions:  store,
		Redis:     rdb,
		RateLimit: cfg.RateLimit,
		PublicDir: cfg.PublicDir,
		Log:       log,

		TrustedProxies: cfg.TrustedProxies,
	})
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info(ctx, "listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info(context.Background(), "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
