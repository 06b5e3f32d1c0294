package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"sendr/agg-svc/internal/service"
	"sendr/agg-svc/internal/storage"
	"sendr/config"
	"sendr/pkg/metrics"

	"github.com/gorilla/mux"
)

func main() {
	cfg := config.Load()
	rdb := config.MustInitRedis(cfg)
	defer rdb.Close()

	reader := config.NewKafkaReader(cfg, cfg.OrderTopic, cfg.AggGroupID)
	defer reader.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		r := mux.NewRouter()
		r.Handle("/metrics", metrics.Handler()).Methods("GET")
		log.Printf("[agg-svc] metrics on :9102")
		if err := http.ListenAndServe(":9102", r); err != nil {
			log.Printf("[agg-svc] metrics server: %v", err)
		}
	}()

	consumer := service.NewConsumer(reader, storage.NewStore(rdb))
	consumer.Start(ctx)
}
