package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/table-reservation/internal/service"
)

// ProfileHandler exposes points and reliability scores.
type ProfileHandler struct {
	Reservations *service.ReservationService
}

func NewProfileHandler(res *service.ReservationService) *ProfileHandler {
	return &ProfileHandler{Reservations: res}
}

// Me returns the caller's own profile.
func (h *ProfileHandler) Me(c echo.Context) error {
	return h.profile(c, caller(c).ID)
}

// Customer returns any profile; the route is admin only.
func (h *ProfileHandler) Customer(c echo.Context) error {
	return h.profile(c, c.Param("id"))
}

func (h *ProfileHandler) profile(c echo.Context, id string) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	p, err := h.Reservations.GetCustomerProfile(ctx, id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, p)
}
