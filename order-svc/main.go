package main

import (
	"context"
	"log"
	"time"

	"sendr/config"
	httpapi "sendr/order-svc/internal/api/http"
	"sendr/order-svc/internal/cart"
	"sendr/order-svc/internal/live"
	"sendr/order-svc/internal/service"
	"sendr/order-svc/internal/storage"
	"sendr/pkg/auth"
	"sendr/pkg/ratelimit"
)

func main() {
	cfg := config.Load()
	backend := config.MustInitBackend(cfg, cfg.OrderTopic)
	defer backend.Close()

	repo := storage.NewPostgresRepository(backend.DB)
	if err := repo.EnsureSchema(); err != nil {
		log.Fatal("Failed to ensure schema:", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cartStore := cart.NewStore(backend.Redis)
	if n, err := cartStore.MigrateAll(ctx); err != nil {
		log.Printf("[order-svc] cart migration: %v", err)
	} else if n > 0 {
		log.Printf("[order-svc] migrated %d legacy carts", n)
	}

	publisher := storage.NewKafkaPublisher(backend.Events)
	pricing := service.Pricing{
		FreeDeliveryThreshold: cfg.FreeDeliveryThreshold,
		DeliveryFee:           cfg.DeliveryFee,
	}
	checkout := service.NewCheckoutService(cartStore, repo, repo, publisher, pricing, cfg.PublicOrigin)
	orders := service.NewOrderService(repo, publisher, service.DefaultQRGenerator{}, cfg.PublicOrigin)

	hub := live.NewHub(repo)
	listener := storage.NewChangeListener(cfg.PostgresDSN())
	defer listener.Close()
	changes, err := listener.Listen(ctx)
	if err != nil {
		log.Fatal("Failed to listen for order changes:", err)
	}
	go hub.Run(ctx, changes)

	limiter := ratelimit.New(1, 5)
	go limiter.Sweep(ctx, time.Minute, 10*time.Minute)

	issuer := auth.NewIssuer(cfg.JWTSecret, cfg.TokenTTL)
	handler := httpapi.NewHandler(cartStore, checkout, orders, hub, issuer, limiter)

	httpapi.StartServer(":8082", httpapi.NewRouter(handler))
}
