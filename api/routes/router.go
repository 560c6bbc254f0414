package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kkarhua/fullrest-backend/api/controllers"
	"github.com/kkarhua/fullrest-backend/api/middleware"
	"github.com/kkarhua/fullrest-backend/internal/auth"
	"github.com/kkarhua/fullrest-backend/internal/authz"
	"github.com/kkarhua/fullrest-backend/internal/categories"
	"github.com/kkarhua/fullrest-backend/internal/media"
	"github.com/kkarhua/fullrest-backend/internal/products"
	"github.com/kkarhua/fullrest-backend/internal/purchases"
	"github.com/kkarhua/fullrest-backend/internal/shipments"
	"github.com/kkarhua/fullrest-backend/internal/stock"
	"github.com/kkarhua/fullrest-backend/internal/users"
	pkgauth "github.com/kkarhua/fullrest-backend/pkg/auth"
	"github.com/kkarhua/fullrest-backend/pkg/config"
	"github.com/kkarhua/fullrest-backend/pkg/logger"
	"github.com/kkarhua/fullrest-backend/pkg/metrics"
	"github.com/kkarhua/fullrest-backend/pkg/redis"
)

// Params carries everything the router wires together. Nil services answer
// with an internal error; a nil Redis disables the login rate limit.
type Params struct {
	Config *config.Config
	Logger *logger.Logger
	Codec  *pkgauth.Codec
	Policy *authz.Policy

	DB    controllers.Pinger
	Redis *redis.Client

	Auth       auth.Service
	Users      users.Service
	Categories categories.Service
	Products   products.Service
	Stock      stock.Service
	Shipments  shipments.Service
	Purchases  purchases.Service
	Media      media.Service

	HTTPMetrics *metrics.HTTPMetrics
	AuthMetrics *metrics.AuthMetrics
	Gatherer    prometheus.Gatherer
}

func NewRouter(p Params) http.Handler {
	cfg, logg := p.Config, p.Logger
	policy := p.Policy
	if policy == nil {
		policy = authz.DefaultPolicy()
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(p.HTTPMetrics),
		middleware.CORS(cfg.CORS),
		middleware.Identity(p.Codec, logg),
		middleware.Authorize(policy, logg),
	)

	loginThrottle := middleware.NewLoginThrottle(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginEmailLimit,
	).OnBlocked(func(string) {
		p.AuthMetrics.IncLogin(metrics.LoginRateLimited)
	})
	loginLimit := loginThrottle.Middleware(nil, logg)
	if p.Redis != nil {
		loginLimit = loginThrottle.Middleware(p.Redis, logg)
	}

	deps := map[string]controllers.Pinger{"db": p.DB, "redis": nil}
	if p.Redis != nil {
		deps["redis"] = p.Redis
	}
	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps))
	})
	if cfg.FeatureFlags.MetricsEnabled && p.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(p.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Get("/uploads/productos/{fileName}", controllers.ImagesServe(p.Media, logg))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.With(loginLimit).Post("/login", controllers.AuthLogin(p.Auth, logg))
			r.Post("/refresh", controllers.AuthRefresh(p.Auth, logg))
			r.Post("/logout", controllers.AuthLogout(logg))
			r.Post("/validate", controllers.AuthValidate(p.Auth, logg))
			r.Post("/validate-admin", controllers.AuthValidateAdmin(p.Auth, logg))
		})

		r.Route("/usuarios", func(r chi.Router) {
			r.Get("/", controllers.UsersList(p.Users, logg))
			r.Post("/", controllers.UsersRegister(p.Users, p.Auth, p.Codec, logg))
			r.Get("/{id}", controllers.UsersGet(p.Users, logg))
			r.Put("/{id}", controllers.UsersUpdate(p.Users, logg))
			r.Delete("/{id}", controllers.UsersDelete(p.Users, logg))
		})

		r.Route("/categorias", func(r chi.Router) {
			r.Get("/", controllers.CategoriesList(p.Categories, logg))
			r.Post("/", controllers.CategoriesCreate(p.Categories, logg))
			r.Get("/{id}", controllers.CategoriesGet(p.Categories, logg))
			r.Put("/{id}", controllers.CategoriesUpdate(p.Categories, logg))
			r.Delete("/{id}", controllers.CategoriesDelete(p.Categories, logg))
		})

		r.Route("/productos", func(r chi.Router) {
			r.Get("/", controllers.ProductsList(p.Products, logg))
			r.Post("/", controllers.ProductsCreate(p.Products, logg))
			r.Get("/{id}", controllers.ProductsGet(p.Products, logg))
			r.Put("/{id}", controllers.ProductsUpdate(p.Products, logg))
			r.Delete("/{id}", controllers.ProductsDelete(p.Products, logg))
		})

		r.Route("/stock/{id}", func(r chi.Router) {
			r.Get("/", controllers.StockGet(p.Stock, logg))
			r.Patch("/actualizar", controllers.StockSet(p.Stock, logg))
			r.Patch("/agregar", controllers.StockAdjust(p.Stock, true, logg))
			r.Patch("/reducir", controllers.StockAdjust(p.Stock, false, logg))
		})

		r.Route("/envios", func(r chi.Router) {
			r.Get("/", controllers.ShipmentsList(p.Shipments, logg))
			r.Post("/", controllers.ShipmentsCreate(p.Shipments, logg))
			r.Get("/usuario/{usuarioId}", controllers.ShipmentsListByUser(p.Shipments, logg))
			r.Get("/{id}", controllers.ShipmentsGet(p.Shipments, logg))
			r.Put("/{id}", controllers.ShipmentsUpdate(p.Shipments, logg))
			r.Delete("/{id}", controllers.ShipmentsDelete(p.Shipments, logg))
		})

		r.Route("/compras", func(r chi.Router) {
			r.Get("/", controllers.PurchasesList(p.Purchases, logg))
			r.Post("/", controllers.PurchasesCreate(p.Purchases, logg))
			r.Get("/stats/totales", controllers.PurchasesStats(p.Purchases, logg))
			r.Get("/usuario/{usuarioId}", controllers.PurchasesListByUser(p.Purchases, logg))
			r.Get("/{id}", controllers.PurchasesGet(p.Purchases, logg))
		})

		r.Route("/imagenes", func(r chi.Router) {
			r.Post("/upload/{productoId}", controllers.ImagesUpload(p.Media, cfg.Media.MaxUploadBytes(), logg))
			r.Get("/{fileName}", controllers.ImagesServe(p.Media, logg))
			r.Delete("/{productoId}", controllers.ImagesDelete(p.Media, logg))
		})
	})

	return r
}
