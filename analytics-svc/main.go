package main

import (
	httpapi "sendr/analytics-svc/internal/api/http"
	"sendr/analytics-svc/internal/service"
	"sendr/config"
	"sendr/pkg/auth"
)

func main() {
	cfg := config.Load()
	backend := config.MustInitBackend(cfg, "")
	defer backend.Close()

	analytics := service.NewAnalyticsService(backend.DB, backend.Redis)
	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	handler := httpapi.NewHandler(analytics, issuer)

	httpapi.StartServer(":8083", httpapi.NewRouter(handler))
}
