package main

import (
	"context"
	"log"
	"time"

	httpapi "sendr/catalog-svc/internal/api/http"
	"sendr/catalog-svc/internal/service"
	"sendr/catalog-svc/internal/storage"
	"sendr/config"
	"sendr/pkg/auth"
	"sendr/pkg/ratelimit"
)

func main() {
	cfg := config.Load()
	db := config.MustInitPostgres(cfg)
	defer db.Close()

	repo := storage.NewPostgresRepository(db)
	if err := repo.EnsureSchema(); err != nil {
		log.Fatal("Failed to ensure schema:", err)
	}

	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	vendors := service.NewVendorService(repo, issuer)
	shops := service.NewShopService(repo, repo)
	products := service.NewProductService(repo, repo, service.LocalImageStore{Dir: cfg.UploadDir})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	limiter := ratelimit.New(0.5, 5)
	go limiter.Sweep(ctx, time.Minute, 10*time.Minute)

	handler := httpapi.NewHandler(vendors, shops, products, issuer, limiter)
	httpapi.StartServer(":8081", httpapi.NewRouter(handler, cfg.UploadDir))
}
