// Package router maps URLs to handlers and attaches the auth, role,
// rate-limit and cache middleware each group needs.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/table-reservation/internal/handler"
	"github.com/iliyamo/table-reservation/internal/middleware"
	"github.com/iliyamo/table-reservation/internal/model"
)

// Handlers is everything the route table points at.
type Handlers struct {
	Auth         *handler.AuthHandler
	Reservations *handler.ReservationHandler
	Restaurants  *handler.RestaurantHandler
	Profiles     *handler.ProfileHandler
	Health       echo.HandlerFunc
}

// Options carries the cross-cutting middleware.  RateLimit guards the
// booking and lifecycle routes; Cache fronts the public policy read.
type Options struct {
	JWTSecret string
	RateLimit echo.MiddlewareFunc
	Cache     echo.MiddlewareFunc
}

// Register installs every route on e.
func Register(e *echo.Echo, h Handlers, opt Options) {
	if opt.RateLimit == nil {
		opt.RateLimit = noop
	}
	if opt.Cache == nil {
		opt.Cache = noop
	}
	RegisterRoutes(e, h.Health)
	RegisterAuth(e, h.Auth, h.Profiles, opt.JWTSecret)
	RegisterPublic(e, h.Restaurants, opt.Cache)
	RegisterCustomer(e, h.Reservations, opt)
	RegisterRestaurant(e, h.Reservations, h.Restaurants, opt)
	RegisterAdmin(e, h.Profiles, opt.JWTSecret)
}

// RegisterRoutes registers routes that need no authentication.
func RegisterRoutes(e *echo.Echo, health echo.HandlerFunc) {
	e.GET("/healthz", health)
}

// RegisterAuth registers the token endpoints under /v1/auth and the
// caller's own profile at /v1/me.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, p *handler.ProfileHandler, jwtSecret string) {
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout, middleware.JWTAuth(jwtSecret))

	e.GET("/v1/me", p.Me,
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleCustomer, model.RoleRestaurant, model.RoleAdmin))
}

// RegisterPublic registers unauthenticated reads.
func RegisterPublic(e *echo.Echo, r *handler.RestaurantHandler, cache echo.MiddlewareFunc) {
	e.GET("/v1/restaurants/:id/score-policy", r.GetPolicy, cache)
}

// RegisterAdmin registers routes reserved for admins.
func RegisterAdmin(e *echo.Echo, p *handler.ProfileHandler, jwtSecret string) {
	g := e.Group("/v1/customers",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
	)
	g.GET("/:id/profile", p.Customer)
}

func noop(next echo.HandlerFunc) echo.HandlerFunc { return next }
