package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kunalverma/groupbuy-backend/api/controllers"
	"github.com/kunalverma/groupbuy-backend/api/middleware"
	authsvc "github.com/kunalverma/groupbuy-backend/internal/auth"
	"github.com/kunalverma/groupbuy-backend/internal/catalog"
	"github.com/kunalverma/groupbuy-backend/internal/geo"
	"github.com/kunalverma/groupbuy-backend/internal/notifications"
	"github.com/kunalverma/groupbuy-backend/internal/offers"
	"github.com/kunalverma/groupbuy-backend/internal/orders"
	"github.com/kunalverma/groupbuy-backend/internal/payments"
	"github.com/kunalverma/groupbuy-backend/internal/retailers"
	"github.com/kunalverma/groupbuy-backend/pkg/config"
	"github.com/kunalverma/groupbuy-backend/pkg/db"
	"github.com/kunalverma/groupbuy-backend/pkg/logger"
	"github.com/kunalverma/groupbuy-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *redis.Client,
	authService authsvc.Service,
	retailersService retailers.Service,
	geoService geo.Service,
	catalogService catalog.Service,
	offersService offers.Service,
	ordersService orders.Service,
	paymentsService payments.Service,
	notificationsService notifications.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.CORS(),
		middleware.Logging(logg),
	)

	otpPolicy := middleware.NewOTPRateLimitPolicy(
		"send",
		cfg.OTPRateLimit.SendWindow,
		cfg.OTPRateLimit.SendIPLimit,
		cfg.OTPRateLimit.SendPhoneLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, dbP, redisClient))
	})

	r.Get("/metrics", promhttp.Handler().ServeHTTP)

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.OTPRateLimit(otpPolicy, redisClient, logg)).Post("/send-otp", controllers.SendOTP(authService, logg))
		r.Post("/verify-otp", controllers.VerifyOTP(authService, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWT, logg))
		r.Use(middleware.Idempotency(redisClient, logg))

		r.Post("/retailers/register", controllers.RegisterRetailer(retailersService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireRetailer(logg))

			r.Route("/retailers/me", func(r chi.Router) {
				r.Get("/", controllers.MyProfile(retailersService, logg))
				r.Put("/", controllers.UpdateMyProfile(retailersService, logg))
				r.Get("/zones", controllers.MyZones(retailersService, logg))
			})

			r.Get("/zones", controllers.ListZones(geoService, logg))
			r.Get("/zones/{zoneID}/offers", controllers.ListZoneOffers(offersService, logg))

			r.Route("/catalog", func(r chi.Router) {
				r.Get("/suppliers", controllers.ListSuppliers(catalogService, logg))
				r.Get("/products", controllers.ListProducts(catalogService, logg))
				r.Get("/products/categories", controllers.ProductCategories(catalogService, logg))
				r.Get("/products/brands", controllers.ProductBrands(catalogService, logg))
				r.Get("/products/{productID}", controllers.GetProduct(catalogService, logg))
			})

			r.Get("/offers/{offerID}", controllers.GetOffer(offersService, logg))

			r.Route("/orders", func(r chi.Router) {
				r.Post("/", controllers.PlaceOrder(ordersService, logg))
				r.Get("/", controllers.MyOrders(ordersService, logg))
				r.Get("/{orderID}", controllers.GetOrder(ordersService, logg))
			})

			r.Route("/payments", func(r chi.Router) {
				r.Get("/", controllers.MyPayments(paymentsService, logg))
				r.Get("/{paymentID}", controllers.GetPayment(paymentsService, logg))
				r.Post("/{paymentID}/dispute", controllers.DisputePayment(paymentsService, logg))
			})

			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", controllers.ListNotifications(notificationsService, logg))
				r.Get("/unread-count", controllers.UnreadNotificationCount(notificationsService, logg))
				r.Post("/{notificationID}/read", controllers.MarkNotificationRead(notificationsService, logg))
				r.Post("/read-all", controllers.MarkAllNotificationsRead(notificationsService, logg))
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.RequireAdmin(logg))

			r.Post("/zones", controllers.CreateZone(geoService, logg))
			r.Post("/seed", controllers.SeedCatalog(catalogService, logg))
			r.Post("/suppliers", controllers.CreateSupplier(catalogService, logg))

			r.Route("/products", func(r chi.Router) {
				r.Post("/", controllers.CreateProduct(catalogService, logg))
				r.Put("/{productID}", controllers.UpdateProduct(catalogService, logg))
				r.Delete("/{productID}", controllers.DeleteProduct(catalogService, logg))
			})

			r.Route("/offers", func(r chi.Router) {
				r.Get("/", controllers.AdminListOffers(offersService, logg))
				r.Post("/", controllers.CreateOffer(offersService, logg))
				r.Put("/{offerID}", controllers.UpdateOffer(offersService, logg))
				r.Post("/{offerID}/status", controllers.TransitionOffer(offersService, logg))
			})

			r.Route("/payments", func(r chi.Router) {
				r.Get("/", controllers.AdminListPayments(paymentsService, logg))
				r.Post("/", controllers.RecordPayment(paymentsService, logg))
				r.Post("/{paymentID}/resolve", controllers.ResolveDispute(paymentsService, logg))
			})

			r.Get("/retailers", controllers.AdminListRetailers(retailersService, logg))
			r.Get("/notifications", controllers.AdminListNotifications(notificationsService, logg))
		})
	})

	return r
}
