package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/table-reservation/internal/handler"
	"github.com/iliyamo/table-reservation/internal/middleware"
	"github.com/iliyamo/table-reservation/internal/model"
)

// RegisterCustomer registers the customer booking endpoints under
// /v1/reservations.  Reading a single reservation is also open to the
// restaurant that holds it and to admins; the handler checks ownership.
func RegisterCustomer(e *echo.Echo, h *handler.ReservationHandler, opt Options) {
	g := e.Group("/v1/reservations", middleware.JWTAuth(opt.JWTSecret))

	customer := middleware.RequireRole(model.RoleCustomer)
	g.POST("", h.Create, customer, opt.RateLimit)
	g.GET("", h.ListMine, customer)
	g.POST("/:id/cancel", h.CancelOwn, customer, opt.RateLimit)

	g.GET("/:id", h.Get, middleware.RequireRole(model.RoleCustomer, model.RoleRestaurant, model.RoleAdmin))
}
