package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/service"
)

// ReservationHandler serves the booking lifecycle for customers and
// restaurant accounts.
type ReservationHandler struct {
	Reservations *service.ReservationService
	Restaurants  *service.RestaurantService
}

func NewReservationHandler(res *service.ReservationService, rest *service.RestaurantService) *ReservationHandler {
	return &ReservationHandler{Reservations: res, Restaurants: rest}
}

type bookingReq struct {
	RestaurantID string `json:"restaurant_id" validate:"required"`
	Date         string `json:"date" validate:"required,datetime=2006-01-02"`
	Time         string `json:"time" validate:"required,datetime=15:04"`
	PartySize    int    `json:"party_size" validate:"required,min=1"`
}

// Create books a table for the calling customer.
func (h *ReservationHandler) Create(c echo.Context) error {
	var req bookingReq
	if err := bind(c, &req); err != nil {
		return err
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	r, err := h.Reservations.RequestReservation(ctx, service.BookingRequest{
		CustomerID:   caller(c).ID,
		RestaurantID: req.RestaurantID,
		Date:         req.Date,
		Time:         req.Time,
		PartySize:    req.PartySize,
	})
	return transitionResult(c, http.StatusCreated, r, err)
}

// ListMine returns the caller's reservations, newest slot first.
func (h *ReservationHandler) ListMine(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	items, err := h.Reservations.ListCustomerReservations(ctx, caller(c).ID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// Get returns one reservation to its customer, the restaurant's owner or
// an admin.  Anyone else gets 404.
func (h *ReservationHandler) Get(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	r, err := h.Reservations.GetReservation(ctx, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	who := caller(c)
	if r.CustomerID != who.ID {
		if err := h.Restaurants.Authorize(ctx, r.RestaurantID, who); err != nil {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "not_found"})
		}
	}
	return c.JSON(http.StatusOK, r)
}

// CancelOwn cancels one of the caller's own reservations.
func (h *ReservationHandler) CancelOwn(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	r, err := h.Reservations.GetReservation(ctx, c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	if r.CustomerID != caller(c).ID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not_found"})
	}
	r, err = h.Reservations.CancelReservation(ctx, r.ID, model.ActorCustomer)
	return transitionResult(c, http.StatusOK, r, err)
}

// transition runs a restaurant-side lifecycle step after checking that
// the caller manages the reservation's restaurant.
func (h *ReservationHandler) transition(step func(ctx context.Context, id string) (model.Reservation, error)) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := reqCtx(c)
		defer cancel()

		r, err := h.Reservations.GetReservation(ctx, c.Param("id"))
		if err != nil {
			return writeError(c, err)
		}
		if err := h.Restaurants.Authorize(ctx, r.RestaurantID, caller(c)); err != nil {
			return writeError(c, err)
		}
		r, err = step(ctx, r.ID)
		return transitionResult(c, http.StatusOK, r, err)
	}
}

func (h *ReservationHandler) Confirm() echo.HandlerFunc {
	return h.transition(h.Reservations.ConfirmReservation)
}

func (h *ReservationHandler) Reject() echo.HandlerFunc {
	return h.transition(h.Reservations.RejectReservation)
}

func (h *ReservationHandler) CancelByRestaurant() echo.HandlerFunc {
	return h.transition(func(ctx context.Context, id string) (model.Reservation, error) {
		return h.Reservations.CancelReservation(ctx, id, model.ActorRestaurant)
	})
}

func (h *ReservationHandler) Complete() echo.HandlerFunc {
	return h.transition(h.Reservations.CompleteReservation)
}

func (h *ReservationHandler) NoShow() echo.HandlerFunc {
	return h.transition(h.Reservations.MarkNoShow)
}

// ListForRestaurant lists a restaurant's reservations, optionally for the
// local date in ?date=YYYY-MM-DD.
func (h *ReservationHandler) ListForRestaurant(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	id := c.Param("id")
	if err := h.Restaurants.Authorize(ctx, id, caller(c)); err != nil {
		return writeError(c, err)
	}
	items, err := h.Reservations.ListRestaurantReservations(ctx, id, c.QueryParam("date"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
