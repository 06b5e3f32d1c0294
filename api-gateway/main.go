package main

import (
	"log"
	"net/http"
	"os"

	"sendr/api-gateway/internal/gateway"
	"sendr/config"

	"github.com/rs/cors"
)

func main() {
	cfg := config.Load()
	gw := gateway.NewGateway(gateway.Config{
		CatalogSvcURL:   getEnv("CATALOG_SVC_URL", "http://localhost:8081"),
		OrderSvcURL:     getEnv("ORDER_SVC_URL", "http://localhost:8082"),
		AnalyticsSvcURL: getEnv("ANALYTICS_SVC_URL", "http://localhost:8083"),
		StaticDir:       cfg.StaticDir,
	}, &http.Client{})

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.PublicOrigin, "http://127.0.0.1:8080"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})

	log.Println("API Gateway starting on port 8080")
	log.Fatal(http.ListenAndServe(":8080", c.Handler(gw.SetupRoutes())))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
