package tests

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"sendr/api-gateway/internal/gateway"
	"sendr/api-gateway/internal/mocks"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var testConfig = gateway.Config{
	CatalogSvcURL:   "http://catalog-svc",
	OrderSvcURL:     "http://order-svc",
	AnalyticsSvcURL: "http://analytics-svc",
}

func okResponse(body string) *http.Response {
	resp := &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}
	resp.Header.Set("Content-Type", "application/json")
	return resp
}

func TestGateway_HealthCheck(t *testing.T) {
	gw := gateway.NewGateway(gateway.Config{}, nil)

	rr := httptest.NewRecorder()
	gw.HealthCheck(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "api-gateway", body["service"])
}

func TestGateway_RouteHandler_Proxies(t *testing.T) {
	type testCase struct {
		method  string
		path    string
		wantURL string
	}

	tests := []testCase{
		{http.MethodGet, "/api/cart", "http://order-svc/api/cart"},
		{http.MethodPost, "/api/cart/items", "http://order-svc/api/cart/items"},
		{http.MethodPut, "/api/session/location", "http://order-svc/api/session/location"},
		{http.MethodPost, "/api/checkout", "http://order-svc/api/checkout"},
		{http.MethodGet, "/api/orders/o1/qrcode", "http://order-svc/api/orders/o1/qrcode"},
		{http.MethodGet, "/api/vendor/orders?status=placed", "http://order-svc/api/vendor/orders?status=placed"},
		{http.MethodPost, "/api/vendor/orders/o1/actions", "http://order-svc/api/vendor/orders/o1/actions"},
		{http.MethodPost, "/api/vendors/login", "http://catalog-svc/api/vendors/login"},
		{http.MethodGet, "/api/shops?pincode=560001", "http://catalog-svc/api/shops?pincode=560001"},
		{http.MethodGet, "/api/products/p1", "http://catalog-svc/api/products/p1"},
		{http.MethodGet, "/uploads/product_p1.png", "http://catalog-svc/uploads/product_p1.png"},
		{http.MethodGet, "/api/vendor/analytics?date=2024-05-01", "http://analytics-svc/api/vendor/analytics?date=2024-05-01"},
		{http.MethodGet, "/api/analytics/top-products", "http://analytics-svc/api/analytics/top-products"},
	}

	for _, tc := range tests {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			client := mocks.NewHTTPClient(t)
			gw := gateway.NewGateway(testConfig, client)

			client.On("Do", mock.MatchedBy(func(req *http.Request) bool {
				return req.Method == tc.method && req.URL.String() == tc.wantURL &&
					req.Header.Get("Authorization") == "Bearer tok"
			})).Return(okResponse(`{"ok":true}`), nil).Once()

			req := httptest.NewRequest(tc.method, tc.path, nil)
			req.Header.Set("Authorization", "Bearer tok")
			rr := httptest.NewRecorder()
			gw.SetupRoutes().ServeHTTP(rr, req)

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			assert.JSONEq(t, `{"ok":true}`, rr.Body.String())
		})
	}
}

func TestGateway_RouteHandler_UnknownAPI(t *testing.T) {
	gw := gateway.NewGateway(testConfig, nil)

	rr := httptest.NewRecorder()
	gw.RouteHandler(rr, httptest.NewRequest(http.MethodGet, "/api/unknown", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestGateway_RouteHandler_ProxyError(t *testing.T) {
	client := mocks.NewHTTPClient(t)
	gw := gateway.NewGateway(testConfig, client)

	client.On("Do", mock.Anything).Return(nil, errors.New("connection failed")).Once()

	rr := httptest.NewRecorder()
	gw.RouteHandler(rr, httptest.NewRequest(http.MethodGet, "/api/products", nil))

	assert.Equal(t, http.StatusBadGateway, rr.Code)
}

func TestGateway_Views(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "index.html"), []byte("<div id=app></div>"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.js"), []byte("console.log(1)"), 0o644))

	cfg := testConfig
	cfg.StaticDir = dir
	router := gateway.NewGateway(cfg, nil).SetupRoutes()

	for _, path := range []string{"/", "/cart", "/order/abc", "/vendor", "/vendor/register", "/vendor/login",
		"/vendor/dashboard", "/vendor/add", "/vendor/edit/p1", "/vendor/orders"} {
		t.Run(path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Contains(t, rr.Body.String(), "<div id=app></div>")
		})
	}

	t.Run("static asset", func(t *testing.T) {
		rr := httptest.NewRecorder()
		router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/static/app.js", nil))
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "console.log(1)", rr.Body.String())
	})

	for _, path := range []string{"/nowhere", "/vendor/edit", "/order/a/b"} {
		t.Run("unknown "+path, func(t *testing.T) {
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, path, nil))
			assert.Equal(t, http.StatusNotFound, rr.Code)
			assert.Equal(t, "Page not found\n", rr.Body.String())
		})
	}
}

func TestGateway_WebSocketUpgrade(t *testing.T) {
	upgrader := websocket.Upgrader{}
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/orders/o1/live" {
			http.NotFound(w, r)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.WriteJSON(map[string]string{"id": "o1", "status": "placed"})
	}))
	defer upstream.Close()

	cfg := testConfig
	cfg.OrderSvcURL = upstream.URL
	front := httptest.NewServer(gateway.NewGateway(cfg, nil).SetupRoutes())
	defer front.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(front.URL, "http")+"/api/orders/o1/live", nil)
	require.NoError(t, err)
	defer conn.Close()

	var frame map[string]string
	require.NoError(t, conn.ReadJSON(&frame))
	assert.Equal(t, "placed", frame["status"])
}
