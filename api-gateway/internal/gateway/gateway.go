// Package gateway fronts the storefront: /api calls are forwarded to the
// owning service and the SPA views are served from the static bundle.
package gateway

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httputil"
	"net/url"
	"path/filepath"
	"strings"

	"sendr/pkg/metrics"

	"github.com/gorilla/mux"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	CatalogSvcURL   string
	OrderSvcURL     string
	AnalyticsSvcURL string
	StaticDir       string
}

// ViewRoutes are the client-side pages that all render the SPA index.
var ViewRoutes = []string{
	"/",
	"/cart",
	"/order/{id}",
	"/vendor",
	"/vendor/register",
	"/vendor/login",
	"/vendor/dashboard",
	"/vendor/add",
	"/vendor/edit/{id}",
	"/vendor/orders",
}

type route struct {
	prefix string
	target func(Config) string
}

// routes are matched in order, so more specific prefixes come first.
var routes = []route{
	{"/api/vendor/analytics", func(c Config) string { return c.AnalyticsSvcURL }},
	{"/api/analytics/", func(c Config) string { return c.AnalyticsSvcURL }},
	{"/api/vendor/orders", func(c Config) string { return c.OrderSvcURL }},
	{"/api/cart", func(c Config) string { return c.OrderSvcURL }},
	{"/api/session/", func(c Config) string { return c.OrderSvcURL }},
	{"/api/checkout", func(c Config) string { return c.OrderSvcURL }},
	{"/api/orders/", func(c Config) string { return c.OrderSvcURL }},
	{"/api/vendors", func(c Config) string { return c.CatalogSvcURL }},
	{"/api/shops", func(c Config) string { return c.CatalogSvcURL }},
	{"/api/products", func(c Config) string { return c.CatalogSvcURL }},
	{"/uploads/", func(c Config) string { return c.CatalogSvcURL }},
}

type Gateway struct {
	config Config
	client HTTPClient
}

func NewGateway(config Config, client HTTPClient) *Gateway {
	return &Gateway{
		config: config,
		client: client,
	}
}

// Target returns the base URL of the service owning path.
func (g *Gateway) Target(path string) (string, bool) {
	for _, rt := range routes {
		if path == strings.TrimSuffix(rt.prefix, "/") || strings.HasPrefix(path, rt.prefix) {
			return rt.target(g.config), true
		}
	}
	return "", false
}

func (g *Gateway) HealthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "api-gateway",
	})
}

func (g *Gateway) RouteHandler(w http.ResponseWriter, r *http.Request) {
	target, ok := g.Target(r.URL.Path)
	if !ok {
		log.Printf("[gateway] unmatched API route: %s %s", r.Method, r.URL.Path)
		http.Error(w, "API route not found", http.StatusNotFound)
		return
	}

	if isUpgrade(r) {
		g.proxyUpgrade(w, r, target)
		return
	}
	g.ProxyRequest(w, r, target)
}

func (g *Gateway) ProxyRequest(w http.ResponseWriter, r *http.Request, targetURL string) {
	upstream := targetURL + r.URL.Path
	if r.URL.RawQuery != "" {
		upstream += "?" + r.URL.RawQuery
	}

	req, err := http.NewRequestWithContext(r.Context(), r.Method, upstream, r.Body)
	if err != nil {
		log.Printf("[gateway] build request: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	for k, v := range r.Header {
		req.Header[k] = v
	}

	resp, err := g.client.Do(req)
	if err != nil {
		log.Printf("[gateway] proxy %s %s to %s: %v", r.Method, r.URL.Path, targetURL, err)
		http.Error(w, "Upstream unavailable", http.StatusBadGateway)
		return
	}
	defer resp.Body.Close()

	for k, v := range resp.Header {
		w.Header()[k] = v
	}
	w.WriteHeader(resp.StatusCode)

	if _, err := io.Copy(w, resp.Body); err != nil && !isCanceled(r.Context()) {
		log.Printf("[gateway] copy response: %v", err)
	}
}

// proxyUpgrade tunnels WebSocket handshakes, which the buffered client path
// cannot carry.
func (g *Gateway) proxyUpgrade(w http.ResponseWriter, r *http.Request, targetURL string) {
	target, err := url.Parse(targetURL)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	proxy := httputil.NewSingleHostReverseProxy(target)
	proxy.ErrorHandler = func(w http.ResponseWriter, r *http.Request, err error) {
		log.Printf("[gateway] upgrade %s to %s: %v", r.URL.Path, targetURL, err)
		http.Error(w, "Upstream unavailable", http.StatusBadGateway)
	}
	proxy.ServeHTTP(w, r)
}

func (g *Gateway) ServeIndex(w http.ResponseWriter, r *http.Request) {
	http.ServeFile(w, r, filepath.Join(g.config.StaticDir, "index.html"))
}

func NotFound(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "Page not found", http.StatusNotFound)
}

func (g *Gateway) SetupRoutes() http.Handler {
	r := mux.NewRouter()
	r.Use(metrics.Middleware("api-gateway"))
	r.HandleFunc("/health", g.HealthCheck).Methods("GET")
	r.Handle("/metrics", metrics.Handler()).Methods("GET")
	r.PathPrefix("/api/").HandlerFunc(g.RouteHandler)
	r.PathPrefix("/uploads/").HandlerFunc(g.RouteHandler)
	r.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.Dir(g.config.StaticDir))))
	for _, view := range ViewRoutes {
		r.HandleFunc(view, g.ServeIndex).Methods("GET")
	}
	r.NotFoundHandler = http.HandlerFunc(NotFound)
	return r
}

func isUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}

func isCanceled(ctx context.Context) bool {
	return ctx.Err() != nil
}
