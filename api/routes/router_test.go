package routes

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/kkarhua/fullrest-backend/internal/auth"
	"github.com/kkarhua/fullrest-backend/internal/categories"
	"github.com/kkarhua/fullrest-backend/internal/media"
	"github.com/kkarhua/fullrest-backend/internal/products"
	"github.com/kkarhua/fullrest-backend/internal/purchases"
	"github.com/kkarhua/fullrest-backend/internal/shipments"
	"github.com/kkarhua/fullrest-backend/internal/stock"
	"github.com/kkarhua/fullrest-backend/internal/users"
	pkgauth "github.com/kkarhua/fullrest-backend/pkg/auth"
	"github.com/kkarhua/fullrest-backend/pkg/config"
	"github.com/kkarhua/fullrest-backend/pkg/db/dbtest"
	"github.com/kkarhua/fullrest-backend/pkg/enums"
	"github.com/kkarhua/fullrest-backend/pkg/logger"
	"github.com/kkarhua/fullrest-backend/pkg/metrics"
	"github.com/kkarhua/fullrest-backend/pkg/redis"
	"github.com/kkarhua/fullrest-backend/pkg/security"
	"github.com/kkarhua/fullrest-backend/pkg/storage/local"
)

type testServer struct {
	handler  http.Handler
	registry *prometheus.Registry
	users    *users.Repository
	hasher   *security.Hasher
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test"},
		JWT: config.JWTConfig{
			Secret:     "router-test-secret-0123456789abcdef",
			Issuer:     "fullrest-test",
			AccessTTL:  24 * time.Hour,
			RefreshTTL: 7 * 24 * time.Hour,
		},
		Password:     config.PasswordConfig{BcryptCost: bcrypt.MinCost},
		FeatureFlags: config.FeatureFlagsConfig{MetricsEnabled: true},
		Media:        config.MediaConfig{MaxUploadMB: 1},
		CORS:         config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}
}

func newTestServer(t *testing.T, cfg *config.Config, rdb *redis.Client) *testServer {
	t.Helper()
	logg := logger.New(logger.Options{ServiceName: "test", Level: logger.ParseLevel("error"), Output: io.Discard})
	client := dbtest.New(t)
	conn := client.DB()

	codec, err := pkgauth.NewCodec(cfg.JWT)
	require.NoError(t, err)
	hasher := security.NewHasher(cfg.Password)
	registry := prometheus.NewRegistry()
	authMetrics := metrics.NewAuthMetrics(registry)

	usersRepo := users.NewRepository(conn)
	usersSvc, err := users.NewService(usersRepo, hasher)
	require.NoError(t, err)
	authSvc, err := auth.NewService(auth.ServiceParams{
		UserRepo: usersRepo,
		Hasher:   hasher,
		Codec:    codec,
		Metrics:  authMetrics,
		Logger:   logg,
	})
	require.NoError(t, err)
	categoriesSvc, err := categories.NewService(categories.NewRepository(conn))
	require.NoError(t, err)

	store, err := local.New(t.TempDir())
	require.NoError(t, err)
	productsSvc, err := products.NewService(products.ServiceParams{Repo: products.NewRepository(conn), Images: store, Logger: logg})
	require.NoError(t, err)
	stockSvc, err := stock.NewService(stock.NewRepository(conn))
	require.NoError(t, err)
	shipmentsSvc, err := shipments.NewService(shipments.NewRepository(conn))
	require.NoError(t, err)
	purchasesSvc, err := purchases.NewService(purchases.NewRepository(conn), time.Now)
	require.NoError(t, err)
	mediaSvc, err := media.NewService(media.ServiceParams{
		Repo:     media.NewRepository(conn),
		Store:    store,
		MaxBytes: cfg.Media.MaxUploadBytes(),
		Logger:   logg,
	})
	require.NoError(t, err)

	handler := NewRouter(Params{
		Config:      cfg,
		Logger:      logg,
		Codec:       codec,
		DB:          client,
		Redis:       rdb,
		Auth:        authSvc,
		Users:       usersSvc,
		Categories:  categoriesSvc,
		Products:    productsSvc,
		Stock:       stockSvc,
		Shipments:   shipmentsSvc,
		Purchases:   purchasesSvc,
		Media:       mediaSvc,
		HTTPMetrics: metrics.NewHTTPMetrics(registry),
		AuthMetrics: authMetrics,
		Gatherer:    registry,
	})
	return &testServer{handler: handler, registry: registry, users: usersRepo, hasher: hasher}
}

func (s *testServer) do(t *testing.T, method, path, token, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) seedUser(t *testing.T, email string, role enums.Role) {
	t.Helper()
	hash, err := s.hasher.Hash("Secret123")
	require.NoError(t, err)
	_, err = s.users.Create(context.Background(), users.CreateUserDTO{
		Name:         "Seeded User",
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		Status:       enums.UserStatusActive,
	})
	require.NoError(t, err)
}

func (s *testServer) login(t *testing.T, email string) auth.LoginResponse {
	t.Helper()
	rec := s.do(t, http.MethodPost, "/api/auth/login", "", `{"email":"`+email+`","password":"Secret123"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out auth.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestAuthFlowEndToEnd(t *testing.T) {
	srv := newTestServer(t, testConfig(), nil)

	rec := srv.do(t, http.MethodPost, "/api/usuarios", "", `{"nombre":"Ana Perez","email":"a@b.com","contrasena":"Secret123"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	login := srv.login(t, "a@b.com")
	assert.Equal(t, int64(86400), login.ExpiresIn)
	assert.Equal(t, "Bearer", login.TokenType)
	require.NotNil(t, login.User)
	assert.Equal(t, enums.RoleCustomer, login.User.Role)

	rec = srv.do(t, http.MethodPost, "/api/auth/validate", login.AccessToken, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var validated auth.ValidateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &validated))
	assert.True(t, validated.Valid)
	assert.Equal(t, enums.RoleCustomer, validated.Role)
	assert.Equal(t, "a@b.com", validated.Email)

	rec = srv.do(t, http.MethodPost, "/api/auth/refresh", "", `{"refreshToken":"`+login.RefreshToken+`"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var refreshed auth.RefreshResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &refreshed))
	require.NotEmpty(t, refreshed.AccessToken)

	rec = srv.do(t, http.MethodPost, "/api/auth/validate", refreshed.AccessToken, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &validated))
	assert.Equal(t, enums.RoleCustomer, validated.Role)

	rec = srv.do(t, http.MethodPost, "/api/auth/refresh", "", `{"refreshToken":"`+login.AccessToken+`"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/auth/logout", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"logout successful"}`, rec.Body.String())
}

func TestAutoLoginRegistration(t *testing.T) {
	srv := newTestServer(t, testConfig(), nil)
	rec := srv.do(t, http.MethodPost, "/api/usuarios?autoLogin=true", "", `{"nombre":"Ana Perez","email":"a@b.com","contrasena":"Secret123"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var out auth.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.NotEmpty(t, out.AccessToken)
	assert.NotEmpty(t, out.RefreshToken)

	rec = srv.do(t, http.MethodPost, "/api/usuarios", "", `{"nombre":"Ana Perez","email":"a@b.com","contrasena":"Secret123"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestRegisterWithRoleNeedsSuperAdmin(t *testing.T) {
	srv := newTestServer(t, testConfig(), nil)
	srv.seedUser(t, "admin@b.com", enums.RoleSuperAdmin)
	srv.seedUser(t, "vendedor@b.com", enums.RoleVendor)
	admin := srv.login(t, "admin@b.com").AccessToken
	vendor := srv.login(t, "vendedor@b.com").AccessToken
	body := `{"nombre":"Vendor One","email":"v@b.com","contrasena":"Secret123","rol":"vendedor","estado":"activo"}`

	rec := srv.do(t, http.MethodPost, "/api/usuarios", "", body)
	assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
	rec = srv.do(t, http.MethodPost, "/api/usuarios", vendor, body)
	assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())
	rec = srv.do(t, http.MethodPost, "/api/usuarios", "garbage", body)
	assert.Equal(t, http.StatusForbidden, rec.Code, rec.Body.String())

	rec = srv.do(t, http.MethodPost, "/api/usuarios", admin, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created struct {
		Data users.UserDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.Equal(t, enums.RoleVendor, created.Data.Role)
	assert.Equal(t, enums.UserStatusActive, created.Data.Status)

	// the defaults need no token
	rec = srv.do(t, http.MethodPost, "/api/usuarios", "", `{"nombre":"Ana Perez","email":"ana@b.com","contrasena":"Secret123","rol":"cliente","estado":"activo"}`)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

func TestProtectedRoutes(t *testing.T) {
	srv := newTestServer(t, testConfig(), nil)
	srv.seedUser(t, "cliente@b.com", enums.RoleCustomer)
	srv.seedUser(t, "vendedor@b.com", enums.RoleVendor)
	srv.seedUser(t, "admin@b.com", enums.RoleSuperAdmin)
	customer := srv.login(t, "cliente@b.com").AccessToken
	vendor := srv.login(t, "vendedor@b.com").AccessToken
	admin := srv.login(t, "admin@b.com").AccessToken

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   string
		want   int
	}{
		{name: "garbage bearer", method: http.MethodGet, path: "/api/envios", token: "not-a-jwt", want: http.StatusUnauthorized},
		{name: "anonymous shipments", method: http.MethodGet, path: "/api/envios", want: http.StatusUnauthorized},
		{name: "customer shipments", method: http.MethodGet, path: "/api/envios", token: customer, want: http.StatusOK},
		{name: "public products", method: http.MethodGet, path: "/api/productos", want: http.StatusOK},
		{name: "public categories", method: http.MethodGet, path: "/api/categorias", want: http.StatusOK},
		{name: "customer cannot create category", method: http.MethodPost, path: "/api/categorias", token: customer, body: `{"nombre":"Bebidas"}`, want: http.StatusForbidden},
		{name: "vendor creates category", method: http.MethodPost, path: "/api/categorias", token: vendor, body: `{"nombre":"Bebidas"}`, want: http.StatusCreated},
		{name: "customer cannot read stock", method: http.MethodGet, path: "/api/stock/1", token: customer, want: http.StatusForbidden},
		{name: "vendor cannot list users", method: http.MethodGet, path: "/api/usuarios", token: vendor, want: http.StatusForbidden},
		{name: "admin lists users", method: http.MethodGet, path: "/api/usuarios", token: admin, want: http.StatusOK},
		{name: "stats for any caller", method: http.MethodGet, path: "/api/compras/stats/totales", token: customer, want: http.StatusOK},
		{name: "live probe", method: http.MethodGet, path: "/health/live", want: http.StatusOK},
		{name: "ready probe", method: http.MethodGet, path: "/health/ready", want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := srv.do(t, tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestCatalogAndStockFlow(t *testing.T) {
	srv := newTestServer(t, testConfig(), nil)
	srv.seedUser(t, "vendedor@b.com", enums.RoleVendor)
	vendor := srv.login(t, "vendedor@b.com").AccessToken

	rec := srv.do(t, http.MethodPost, "/api/categorias", vendor, `{"nombre":"Bebidas"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var category struct {
		Data categories.CategoryDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &category))

	body := `{"nombre":"Jugo de naranja","precio":1990,"stock":1,"categoriaId":` + itoa(category.Data.ID) + `}`
	rec = srv.do(t, http.MethodPost, "/api/productos", vendor, body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var product struct {
		Data products.ProductDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &product))
	id := itoa(product.Data.ID)

	rec = srv.do(t, http.MethodGet, "/api/productos?categoriaId="+itoa(category.Data.ID), "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var list struct {
		Data []products.ProductDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &list))
	assert.Len(t, list.Data, 1)

	rec = srv.do(t, http.MethodPatch, "/api/stock/"+id+"/reducir", vendor, `{"cantidad":1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var mutation struct {
		Data stock.MutationDTO `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &mutation))
	assert.Equal(t, 0, mutation.Data.Current)
	assert.Equal(t, enums.ProductStatusOutOfStock, mutation.Data.Status)

	rec = srv.do(t, http.MethodPatch, "/api/stock/"+id+"/reducir", vendor, `{"cantidad":1}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "insufficient stock, current stock: 0")

	rec = srv.do(t, http.MethodDelete, "/api/categorias/"+itoa(category.Data.ID), vendor, "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestLoginRateLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb, err := redis.New(context.Background(), config.RedisConfig{Address: mr.Addr()}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdb.Close() })

	cfg := testConfig()
	cfg.AuthRateLimit = config.AuthRateLimitConfig{LoginWindow: time.Minute, LoginIPLimit: 1}
	srv := newTestServer(t, cfg, rdb)

	body := `{"email":"nobody@b.com","password":"Secret123"}`
	rec := srv.do(t, http.MethodPost, "/api/auth/login", "", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = srv.do(t, http.MethodPost, "/api/auth/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	expected := `
# HELP auth_login_total Login attempts by outcome.
# TYPE auth_login_total counter
auth_login_total{outcome="invalid_credentials"} 1
auth_login_total{outcome="rate_limited"} 1
`
	require.NoError(t, testutil.GatherAndCompare(srv.registry, strings.NewReader(expected), "auth_login_total"))
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newTestServer(t, testConfig(), nil)
	srv.do(t, http.MethodGet, "/health/live", "", "")

	rec := srv.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `http_requests_total{method="GET",route="/health/live",status="200"} 1`)
}

func itoa(v int64) string {
	b, _ := json.Marshal(v)
	return string(b)
}
