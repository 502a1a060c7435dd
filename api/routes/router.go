package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/collabinvest/cil-storefront/api/controllers"
	"github.com/collabinvest/cil-storefront/api/middleware"
	"github.com/collabinvest/cil-storefront/pkg/config"
	"github.com/collabinvest/cil-storefront/pkg/logger"
	pkgredis "github.com/collabinvest/cil-storefront/pkg/redis"
	"github.com/collabinvest/cil-storefront/pkg/session"
)

// Deps carries everything the HTTP surface needs. Nil Redis-backed stores
// disable rate limiting and checkout idempotency.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          controllers.Pinger
	Redis       controllers.Pinger
	RateLimits  middleware.RateLimiterStore
	Idempotency pkgredis.IdempotencyStore
	Sessions    session.Checker
	Orders      controllers.OrderCreator
	Tracking    controllers.OrderTracker
	Admin       controllers.AdminService
	// Metrics serves /metrics when set.
	Metrics http.Handler
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.RouteTag(),
		middleware.Logging(logg),
		middleware.CORS(nil),
	)

	r.Get("/health/live", controllers.HealthLive(cfg))
	r.Get("/health/ready", controllers.HealthReady(cfg, logg, readinessDeps(d)))
	if d.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", d.Metrics)
	}

	r.Route("/api", func(api chi.Router) {
		api.With(
			middleware.RateLimit(middleware.NewOrderRateLimitPolicy(cfg.RateLimit.OrderCreateWindow, cfg.RateLimit.OrderCreateLimit), d.RateLimits, logg),
			middleware.Idempotency(d.Idempotency, cfg.Orders.IdempotencyTTL, logg),
		).Post("/orders", controllers.CreateOrder(d.Orders, logg))

		api.Post("/order/track", controllers.TrackOrder(d.Tracking, logg))
		api.With(middleware.OptionalAuth(cfg.JWT, d.Sessions, logg)).
			Get("/order/{orderNumber}", controllers.GetOrderByNumber(d.Tracking, logg))

		api.Route("/admin", func(adm chi.Router) {
			adm.With(
				middleware.RateLimit(middleware.NewLoginRateLimitPolicy(cfg.RateLimit.LoginWindow, cfg.RateLimit.LoginIPLimit, cfg.RateLimit.LoginUserLimit), d.RateLimits, logg),
			).Post("/login", controllers.AdminLogin(d.Admin, logg))

			adm.Group(func(private chi.Router) {
				private.Use(middleware.Auth(cfg.JWT, d.Sessions, logg))
				private.Post("/logout", controllers.AdminLogout(d.Admin, logg))
				private.Get("/orders", controllers.AdminListOrders(d.Admin, logg))
				private.Get("/orders/{orderNumber}", controllers.AdminGetOrder(d.Admin, logg))
				private.Post("/orders/{orderNumber}/status", controllers.AdminUpdateOrderStatus(d.Admin, logg))
				private.Get("/stats", controllers.AdminStats(d.Admin, logg))
				private.Get("/emails", controllers.AdminEmails(d.Admin, logg))
				private.Get("/activity", controllers.AdminActivity(d.Admin, logg))
			})
		})
	})

	return middleware.Tracing(cfg.Service.Kind)(r)
}

func readinessDeps(d Deps) map[string]controllers.Pinger {
	deps := map[string]controllers.Pinger{}
	if d.DB != nil {
		deps["postgres"] = d.DB
	}
	if d.Redis != nil {
		deps["redis"] = d.Redis
	}
	return deps
}
