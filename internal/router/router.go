package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brioche-cafe/api/internal/cart"
	"github.com/brioche-cafe/api/internal/config"
	"github.com/brioche-cafe/api/internal/database"
	"github.com/brioche-cafe/api/internal/enum"
	"github.com/brioche-cafe/api/internal/handler"
	mw "github.com/brioche-cafe/api/internal/middleware"
	"github.com/brioche-cafe/api/internal/service"
	"github.com/brioche-cafe/api/internal/ws"
)

// New creates a Chi router with all application routes wired up. Customer
// routes are public (carts ride on an anonymous session cookie), the order
// board requires a staff login, and catalog management requires ADMIN.
func New(cfg *config.Config, queries *database.Queries, pool *pgxpool.Pool, hub *ws.Hub) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{
			"http://localhost:5173",          // SvelteKit dev server
			"https://brioche.cafe",           // Production storefront
			"https://staff.brioche.cafe",     // Staff board
			"https://stg.brioche.cafe",       // Staging
		},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok","version":"1.0.0"}`))
	})

	// Auth routes (public)
	authHandler := handler.NewAuthHandler(queries, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// Public catalog
	categoryHandler := handler.NewCategoryHandler(queries, cfg.ImageBaseURL)
	menuHandler := handler.NewMenuHandler(queries, cfg.ImageBaseURL)
	supplementHandler := handler.NewSupplementHandler(queries)
	breakfastHandler := handler.NewBreakfastHandler(queries, cfg.ImageBaseURL)
	bannerHandler := handler.NewBannerHandler(queries, cfg.ImageBaseURL)

	r.Get("/categories", categoryHandler.List)
	r.Get("/categories/{id}/items", menuHandler.ListByCategory)
	r.Get("/categories/{id}/supplements", supplementHandler.ListByCategory)
	r.Get("/breakfasts", breakfastHandler.List)
	r.Get("/breakfasts/{id}", breakfastHandler.Get)
	r.Get("/banners", bannerHandler.ListActive)

	// Cart routes ride on the anonymous session cookie; checkout goes
	// through the order service so prices are resolved server-side.
	newOrderStore := func(db database.DBTX) service.OrderStore {
		return database.New(db)
	}
	orderService := service.NewOrderService(pool, newOrderStore)
	cartHandler := handler.NewCartHandler(cart.NewStore(), queries, orderService, cfg.ImageBaseURL)
	r.Route("/cart", func(r chi.Router) {
		r.Use(mw.Session)
		cartHandler.RegisterRoutes(r)
	})

	// Orders: customers look up their own order without logging in; the
	// board (list + status changes) is staff-only.
	orderHandler := handler.NewOrderHandler(queries, hub, cfg.ImageBaseURL)
	r.Route("/orders", func(r chi.Router) {
		orderHandler.RegisterCustomerRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(mw.Authenticate(cfg.JWTSecret))
			r.Use(mw.RequireRole(enum.UserRoleStaff, enum.UserRoleAdmin))
			orderHandler.RegisterStaffRoutes(r)
		})
	})

	// WebSocket routes. Customer sockets are anonymous and scoped to one
	// order; the staff socket validates its JWT via query param.
	r.Get("/ws/orders/{id}", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeOrderWS(hub, w, r)
	})
	r.Get("/ws/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeStaffWS(hub, cfg.JWTSecret, w, r)
	})

	// Staff routes
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))
		r.Use(mw.RequireRole(enum.UserRoleStaff, enum.UserRoleAdmin))

		stockHandler := handler.NewStockHandler(queries)
		r.Route("/stock", stockHandler.RegisterRoutes)
	})

	// Admin routes
	r.Route("/admin", func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret))
		r.Use(mw.RequireRole(enum.UserRoleAdmin))

		r.Route("/categories", categoryHandler.RegisterRoutes)
		r.Route("/menu-items", menuHandler.RegisterRoutes)
		r.Route("/supplements", supplementHandler.RegisterRoutes)
		r.Route("/breakfasts", breakfastHandler.RegisterRoutes)
		r.Route("/banners", bannerHandler.RegisterRoutes)

		promotionHandler := handler.NewPromotionHandler(queries)
		r.Route("/promotions", promotionHandler.RegisterRoutes)

		userHandler := handler.NewUserHandler(queries)
		r.Route("/users", userHandler.RegisterRoutes)
	})

	return r
}
