package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/table-reservation/internal/service"
)

// RestaurantHandler manages venues, their tables and their score policy.
type RestaurantHandler struct {
	Restaurants  *service.RestaurantService
	Reservations *service.ReservationService
	// Purge drops a cached GET response for a path.  May be nil.
	Purge func(ctx context.Context, path string) error
}

func NewRestaurantHandler(rest *service.RestaurantService, res *service.ReservationService, purge func(context.Context, string) error) *RestaurantHandler {
	return &RestaurantHandler{Restaurants: rest, Reservations: res, Purge: purge}
}

type createRestaurantReq struct {
	Name     string `json:"name" validate:"required"`
	Timezone string `json:"timezone"`
}

type addTableReq struct {
	Label    string `json:"label" validate:"required"`
	Capacity int    `json:"capacity" validate:"required,min=1"`
}

type policyReq struct {
	Enabled   *bool `json:"score_enabled" validate:"required"`
	Threshold *int  `json:"score_threshold" validate:"required"`
}

// Create registers a restaurant owned by the caller.
func (h *RestaurantHandler) Create(c echo.Context) error {
	var req createRestaurantReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	r, err := h.Restaurants.CreateRestaurant(ctx, caller(c).ID, req.Name, req.Timezone)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, r)
}

func (h *RestaurantHandler) AddTable(c echo.Context) error {
	var req addTableReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	id := c.Param("id")
	if err := h.Restaurants.Authorize(ctx, id, caller(c)); err != nil {
		return writeError(c, err)
	}
	t, err := h.Restaurants.AddTable(ctx, id, req.Label, req.Capacity)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, t)
}

func (h *RestaurantHandler) ListTables(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	id := c.Param("id")
	if err := h.Restaurants.Authorize(ctx, id, caller(c)); err != nil {
		return writeError(c, err)
	}
	items, err := h.Restaurants.ListTables(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetPolicy is public so customers can see whether they qualify.
func (h *RestaurantHandler) GetPolicy(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	r, err := h.Restaurants.GetRestaurant(ctx, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"restaurant_id": r.ID, "policy": r.Policy})
}

// SetPolicy replaces the score policy.  Bookings already being processed
// keep the policy they read.
func (h *RestaurantHandler) SetPolicy(c echo.Context) error {
	var req policyReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	id := c.Param("id")
	if err := h.Restaurants.Authorize(ctx, id, caller(c)); err != nil {
		return writeError(c, err)
	}
	r, err := h.Reservations.SetRestaurantScorePolicy(ctx, id, *req.Threshold, *req.Enabled)
	if err != nil {
		return writeError(c, err)
	}
	if h.Purge != nil {
		if err := h.Purge(ctx, c.Request().URL.Path); err != nil {
			c.Logger().Warnf("purge cached policy for %s: %v", id, err)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"restaurant_id": r.ID, "policy": r.Policy})
}
