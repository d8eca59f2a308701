package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/table-reservation/internal/handler"
	"github.com/iliyamo/table-reservation/internal/middleware"
	"github.com/iliyamo/table-reservation/internal/model"
)

// RegisterRestaurant registers endpoints for restaurant accounts and
// admins.  Ownership of the addressed restaurant is checked in the
// handlers.
func RegisterRestaurant(e *echo.Echo, res *handler.ReservationHandler, rest *handler.RestaurantHandler, opt Options) {
	auth := []echo.MiddlewareFunc{
		middleware.JWTAuth(opt.JWTSecret),
		middleware.RequireRole(model.RoleRestaurant, model.RoleAdmin),
	}

	lifecycle := e.Group("/v1/restaurant/reservations", append(auth, opt.RateLimit)...)
	lifecycle.POST("/:id/confirm", res.Confirm())
	lifecycle.POST("/:id/reject", res.Reject())
	lifecycle.POST("/:id/cancel", res.CancelByRestaurant())
	lifecycle.POST("/:id/complete", res.Complete())
	lifecycle.POST("/:id/no-show", res.NoShow())

	g := e.Group("/v1/restaurants", auth...)
	g.POST("", rest.Create)
	g.POST("/:id/tables", rest.AddTable)
	g.GET("/:id/tables", rest.ListTables)
	g.GET("/:id/reservations", res.ListForRestaurant)
	g.PUT("/:id/score-policy", rest.SetPolicy)
}
