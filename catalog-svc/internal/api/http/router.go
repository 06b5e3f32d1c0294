package httpapi

import (
	"log"
	"net/http"

	"sendr/pkg/metrics"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

// NewRouter also serves uploaded images from uploadDir under /uploads/.
func NewRouter(handler *Handler, uploadDir string) http.Handler {
	r := mux.NewRouter()
	r.Use(metrics.Middleware("catalog-svc"))
	r.Handle("/metrics", metrics.Handler()).Methods("GET")
	r.PathPrefix("/uploads/").Handler(http.StripPrefix("/uploads/", http.FileServer(http.Dir(uploadDir))))
	handler.RegisterRoutes(r)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
	})
	return c.Handler(r)
}

func StartServer(addr string, handler http.Handler) {
	log.Printf("Catalog Service starting on %s", addr)
	log.Fatal(http.ListenAndServe(addr, handler))
}
