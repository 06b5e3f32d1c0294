package tests

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"time"

	httpapi "sendr/catalog-svc/internal/api/http"
	"sendr/catalog-svc/internal/domain"
	"sendr/catalog-svc/internal/mocks"
	"sendr/catalog-svc/internal/service"
	"sendr/pkg/auth"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type catalogFixture struct {
	router   *mux.Router
	vendors  *mocks.VendorRepository
	shops    *mocks.ShopRepository
	products *mocks.ProductRepository
	images   *mocks.ImageStore
	token    string
}

func newCatalogFixture(t *testing.T) *catalogFixture {
	t.Helper()
	f := &catalogFixture{
		vendors:  mocks.NewVendorRepository(t),
		shops:    mocks.NewShopRepository(t),
		products: mocks.NewProductRepository(t),
		images:   mocks.NewImageStore(t),
	}
	issuer := auth.NewIssuer("test-secret", time.Hour)
	token, err := issuer.Issue("v1", "v1@example.com")
	require.NoError(t, err)
	f.token = token

	handler := httpapi.NewHandler(
		service.NewVendorService(f.vendors, issuer),
		service.NewShopService(f.shops, f.vendors),
		service.NewProductService(f.products, f.shops, f.images),
		issuer,
		nil,
	)
	f.router = mux.NewRouter()
	handler.RegisterRoutes(f.router)
	return f
}

func (f *catalogFixture) do(method, path, body string, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+f.token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func TestRegisterHandler(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		setupMock func(m *mocks.VendorRepository)
		wantCode  int
	}{
		{
			name: "created",
			body: `{"email":"asha@example.com","password":"secret123","name":"Asha"}`,
			setupMock: func(m *mocks.VendorRepository) {
				m.On("CreateVendor", mock.Anything, mock.AnythingOfType("*domain.Vendor")).
					Run(func(args mock.Arguments) { args.Get(1).(*domain.Vendor).ID = "v1" }).
					Return(nil).Once()
			},
			wantCode: http.StatusCreated,
		},
		{
			name: "duplicate email",
			body: `{"email":"asha@example.com","password":"secret123"}`,
			setupMock: func(m *mocks.VendorRepository) {
				m.On("CreateVendor", mock.Anything, mock.Anything).Return(domain.ErrEmailTaken).Once()
			},
			wantCode: http.StatusConflict,
		},
		{
			name:      "weak password",
			body:      `{"email":"asha@example.com","password":"1"}`,
			setupMock: func(m *mocks.VendorRepository) {},
			wantCode:  http.StatusBadRequest,
		},
		{
			name:      "invalid JSON",
			body:      `{invalid}`,
			setupMock: func(m *mocks.VendorRepository) {},
			wantCode:  http.StatusBadRequest,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			f := newCatalogFixture(t)
			testCase.setupMock(f.vendors)

			w := f.do("POST", "/api/vendors/register", testCase.body, false)

			assert.Equal(t, testCase.wantCode, w.Code)
			if testCase.wantCode == http.StatusCreated {
				assert.Contains(t, w.Body.String(), `"token":"`)
				assert.NotContains(t, w.Body.String(), "secret123")
			}
		})
	}
}

func TestLoginHandler_InvalidCredentials(t *testing.T) {
	f := newCatalogFixture(t)
	f.vendors.On("GetVendorByEmail", mock.Anything, "asha@example.com").Return(nil, domain.ErrNotFound).Once()

	w := f.do("POST", "/api/vendors/login", `{"email":"asha@example.com","password":"x"}`, false)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"invalid email or password"}`, w.Body.String())
}

func TestProfileHandlers(t *testing.T) {
	f := newCatalogFixture(t)

	w := f.do("GET", "/api/vendors/me", "", false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	f.vendors.On("GetVendor", mock.Anything, "v1").Return(&domain.Vendor{ID: "v1", Name: "Asha"}, nil).Once()
	w = f.do("GET", "/api/vendors/me", "", true)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"uid":"v1"`)

	f.vendors.On("UpsertVendorProfile", mock.Anything, "v1", domain.ProfileUpdate{Phone: strPtr("999")}).
		Return(&domain.Vendor{ID: "v1", Phone: "999"}, nil).Once()
	w = f.do("PUT", "/api/vendors/me", `{"phone":"999"}`, true)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestShopHandlers(t *testing.T) {
	f := newCatalogFixture(t)

	f.shops.On("ListShops", mock.Anything, "560001").Return([]domain.Shop{{ID: "s1", Name: "Fresh Mart"}}, nil).Once()
	w := f.do("GET", "/api/shops?pincode=560001", "", false)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Fresh Mart")

	f.shops.On("GetShop", mock.Anything, "s9").Return(nil, domain.ErrNotFound).Once()
	w = f.do("GET", "/api/shops/s9", "", false)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = f.do("POST", "/api/shops", `{"name":"Fresh Mart","pincode":"560001"}`, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProductHandlers(t *testing.T) {
	f := newCatalogFixture(t)

	f.products.On("ListProducts", mock.Anything, domain.ProductFilter{ShopID: "s1", Query: "milk"}).
		Return([]domain.Product{{ID: "p1"}}, nil).Once()
	w := f.do("GET", "/api/products?shop=s1&q=milk", "", false)
	assert.Equal(t, http.StatusOK, w.Code)

	f.products.On("GetProduct", mock.Anything, "p9").Return(nil, domain.ErrNotFound).Once()
	w = f.do("GET", "/api/products/p9", "", false)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Product not found"}`, w.Body.String())

	f.shops.On("GetShop", mock.Anything, "s2").Return(&domain.Shop{ID: "s2", VendorID: "v2"}, nil).Once()
	w = f.do("POST", "/api/products", `{"shopId":"s2","name":"Milk","price":30}`, true)
	assert.Equal(t, http.StatusForbidden, w.Code)

	f.products.On("GetProduct", mock.Anything, "p1").Return(&domain.Product{ID: "p1", VendorID: "v1"}, nil).Once()
	f.products.On("DeleteProduct", mock.Anything, "p1").Return(int64(1), nil).Once()
	w = f.do("DELETE", "/api/products/p1", "", true)
	assert.Equal(t, http.StatusNoContent, w.Code)
}

func multipartImage(t *testing.T, filename, contentType string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("image-bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestUploadProductImageHandler(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		setupMock   func(f *catalogFixture)
		wantCode    int
	}{
		{
			name:        "png",
			contentType: "image/png",
			setupMock: func(f *catalogFixture) {
				f.products.On("GetProduct", mock.Anything, "p1").Return(&domain.Product{ID: "p1", VendorID: "v1"}, nil).Once()
				f.images.On("Save", "product_p1", "milk.png", mock.Anything).Return("/uploads/product_p1_a.png", nil).Once()
				f.products.On("UpdateProductImage", mock.Anything, "p1", "/uploads/product_p1_a.png").Return(nil).Once()
			},
			wantCode: http.StatusOK,
		},
		{
			name:        "unsupported type",
			contentType: "text/plain",
			setupMock:   func(f *catalogFixture) {},
			wantCode:    http.StatusBadRequest,
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			f := newCatalogFixture(t)
			testCase.setupMock(f)

			body, contentType := multipartImage(t, "milk.png", testCase.contentType)
			req := httptest.NewRequest("POST", "/api/products/p1/image", body)
			req.Header.Set("Content-Type", contentType)
			req.Header.Set("Authorization", "Bearer "+f.token)
			w := httptest.NewRecorder()
			f.router.ServeHTTP(w, req)

			assert.Equal(t, testCase.wantCode, w.Code)
		})
	}
}
