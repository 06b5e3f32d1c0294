package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"sendr/catalog-svc/internal/domain"
	"sendr/catalog-svc/internal/service"
	"sendr/pkg/auth"
	"sendr/pkg/ratelimit"

	"github.com/gorilla/mux"
)

const maxUploadSize = 10 << 20

type Handler struct {
	Vendors  service.VendorServiceInterface
	Shops    service.ShopServiceInterface
	Products service.ProductServiceInterface
	Auth     *auth.Issuer
	Limiter  *ratelimit.Limiter
}

func NewHandler(vendors service.VendorServiceInterface, shops service.ShopServiceInterface, products service.ProductServiceInterface, issuer *auth.Issuer, limiter *ratelimit.Limiter) *Handler {
	return &Handler{
		Vendors:  vendors,
		Shops:    shops,
		Products: products,
		Auth:     issuer,
		Limiter:  limiter,
	}
}

func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/health", h.healthCheck).Methods("GET")

	r.Handle("/api/vendors/register", h.limited(h.register)).Methods("POST")
	r.Handle("/api/vendors/login", h.limited(h.login)).Methods("POST")
	r.Handle("/api/vendors/me", h.Auth.Middleware(http.HandlerFunc(h.getProfile))).Methods("GET")
	r.Handle("/api/vendors/me", h.Auth.Middleware(http.HandlerFunc(h.updateProfile))).Methods("PUT")

	r.HandleFunc("/api/shops", h.getShops).Methods("GET")
	r.HandleFunc("/api/shops/{id}", h.getShop).Methods("GET")
	r.Handle("/api/shops", h.Auth.Middleware(http.HandlerFunc(h.createShop))).Methods("POST")

	r.HandleFunc("/api/products", h.getProducts).Methods("GET")
	r.HandleFunc("/api/products/{id}", h.getProduct).Methods("GET")
	r.Handle("/api/products", h.Auth.Middleware(http.HandlerFunc(h.createProduct))).Methods("POST")
	r.Handle("/api/products/{id}", h.Auth.Middleware(http.HandlerFunc(h.updateProduct))).Methods("PUT")
	r.Handle("/api/products/{id}", h.Auth.Middleware(http.HandlerFunc(h.deleteProduct))).Methods("DELETE")
	r.Handle("/api/products/{id}/image", h.Auth.Middleware(http.HandlerFunc(h.uploadProductImage))).Methods("POST")
}

func (h *Handler) limited(fn http.HandlerFunc) http.Handler {
	if h.Limiter == nil {
		return fn
	}
	return h.Limiter.Middleware(fn)
}

func (h *Handler) healthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"service":   "catalog-svc",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"
	switch {
	case errors.Is(err, service.ErrInvalidInput), errors.Is(err, service.ErrUnsupportedImage):
		status, message = http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, err.Error()
	case errors.Is(err, service.ErrForbidden):
		status, message = http.StatusForbidden, "Forbidden"
	case errors.Is(err, service.ErrVendorNotFound), errors.Is(err, service.ErrShopNotFound), errors.Is(err, service.ErrProductNotFound):
		status, message = http.StatusNotFound, err.Error()
	case errors.Is(err, domain.ErrEmailTaken):
		status, message = http.StatusConflict, err.Error()
	}
	writeJSON(w, status, map[string]string{"error": message})
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
	Phone    string `json:"phone"`
}

type session struct {
	Token  string         `json:"token"`
	Vendor *domain.Vendor `json:"vendor"`
}

func (h *Handler) register(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	vendor, token, err := h.Vendors.Register(r.Context(), c.Email, c.Password, c.Name, c.Phone)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, session{Token: token, Vendor: vendor})
}

func (h *Handler) login(w http.ResponseWriter, r *http.Request) {
	var c credentials
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	vendor, token, err := h.Vendors.Login(r.Context(), c.Email, c.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, session{Token: token, Vendor: vendor})
}

func (h *Handler) getProfile(w http.ResponseWriter, r *http.Request) {
	vendor, err := h.Vendors.Profile(r.Context(), auth.VendorIDFromContext(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vendor)
}

func (h *Handler) updateProfile(w http.ResponseWriter, r *http.Request) {
	var update domain.ProfileUpdate
	if err := json.NewDecoder(r.Body).Decode(&update); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	vendor, err := h.Vendors.UpdateProfile(r.Context(), auth.VendorIDFromContext(r.Context()), update)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, vendor)
}

func (h *Handler) getShops(w http.ResponseWriter, r *http.Request) {
	shops, err := h.Shops.List(r.Context(), r.URL.Query().Get("pincode"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shops)
}

func (h *Handler) getShop(w http.ResponseWriter, r *http.Request) {
	shop, err := h.Shops.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, shop)
}

func (h *Handler) createShop(w http.ResponseWriter, r *http.Request) {
	var shop domain.Shop
	if err := json.NewDecoder(r.Body).Decode(&shop); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Shops.Create(r.Context(), auth.VendorIDFromContext(r.Context()), &shop); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, shop)
}

func (h *Handler) getProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	products, err := h.Products.List(r.Context(), domain.ProductFilter{
		ShopID:   q.Get("shop"),
		Category: q.Get("category"),
		Query:    q.Get("q"),
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	product, err := h.Products.Get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var product domain.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.Products.Create(r.Context(), auth.VendorIDFromContext(r.Context()), &product); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	var product domain.Product
	if err := json.NewDecoder(r.Body).Decode(&product); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	product.ID = mux.Vars(r)["id"]
	if err := h.Products.Update(r.Context(), auth.VendorIDFromContext(r.Context()), &product); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.Products.Delete(r.Context(), auth.VendorIDFromContext(r.Context()), mux.Vars(r)["id"]); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) uploadProductImage(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "File too large", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		http.Error(w, "Error retrieving the file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	imageURL, err := h.Products.SetImage(r.Context(), auth.VendorIDFromContext(r.Context()), mux.Vars(r)["id"],
		header.Filename, header.Header.Get("Content-Type"), file)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message":  "Image uploaded successfully",
		"imageUrl": imageURL,
	})
}
