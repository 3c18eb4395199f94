// Package routes wires the handlers onto a gin engine.
package routes

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"selfcheck/config"
	"selfcheck/handlers"
	"selfcheck/logging"
	"selfcheck/sessions"
)

type Dependencies struct {
	Auth    *handlers.AuthHandler
	Tests   *handlers.TestHandler
	Profile *handlers.ProfileHandler
	Health  *handlers.HealthHandler

	Sessions  sessions.Store
	Redis     *redis.Client
	RateLimit config.RateLimitConfig

	// TrustedProxies feeds gin's ClientIP; nil trusts no proxy.
	TrustedProxies []string
	PublicDir string
	Log       logging.Logger
}

func Setup(router *gin.Engine, d Dependencies) error {
	if err := router.SetTrustedProxies(d.TrustedProxies); err != nil {
		return fmt.Errorf("trusted proxies: %w", err)
	}

	gate := handlers.SessionGate(d.Sessions, d.Log)
	limit := handlers.RateLimit(d.RateLimit, d.Redis, d.Log)

	RegisterAuthRoutes(router, d.Auth, gate, limit)
	RegisterTestRoutes(router, d.Tests, gate)
	RegisterInfoRoutes(router, d.Profile, gate)

	router.GET("/healthz", d.Health.Check)

	RegisterStatic(router, d.PublicDir)
	return nil
}
