// Package handler holds the HTTP handlers.  Handlers translate JSON
// requests into service calls and service errors into status codes; they
// carry no booking rules of their own.
package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/table-reservation/internal/middleware"
	"github.com/iliyamo/table-reservation/internal/repository"
	"github.com/iliyamo/table-reservation/internal/service"
)

// requestTimeout bounds the store work behind a single request.
const requestTimeout = 5 * time.Second

func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), requestTimeout)
}

func caller(c echo.Context) service.Caller {
	return service.Caller{ID: middleware.CurrentUserID(c), Role: middleware.CurrentRole(c)}
}

// bind decodes the body into dst and runs the struct validator.  The
// returned error is an *echo.HTTPError ready to be returned as is.
func bind(c echo.Context, dst any) error {
	if err := c.Bind(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if err := c.Validate(dst); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, echo.Map{"error": "validation_failed", "details": validationDetails(err)})
	}
	return nil
}

// writeError maps a service or store error onto a response.  Unknown
// errors are logged and reported as 500 without their text.
func writeError(c echo.Context, err error) error {
	var (
		policy *service.PolicyRejectedError
		noRoom *service.NoAvailabilityError
	)
	switch {
	case errors.As(err, &policy):
		return c.JSON(http.StatusForbidden, echo.Map{
			"error":     "policy_rejected",
			"score":     policy.Score,
			"threshold": policy.Threshold,
		})
	case errors.As(err, &noRoom):
		return c.JSON(http.StatusConflict, echo.Map{
			"error":         "no_availability",
			"restaurant_id": noRoom.RestaurantID,
			"date":          noRoom.Date,
			"time":          noRoom.Time,
			"party_size":    noRoom.PartySize,
		})
	case errors.Is(err, service.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, echo.Map{"error": "invalid_transition"})
	case errors.Is(err, service.ErrNotFound), errors.Is(err, repository.ErrNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": "not_found"})
	case errors.Is(err, service.ErrInvalidRequest):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid_request", "message": err.Error()})
	case errors.Is(err, service.ErrForbidden), errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	case errors.Is(err, repository.ErrEmailExists):
		return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
	case errors.Is(err, repository.ErrConflict):
		return c.JSON(http.StatusConflict, echo.Map{"error": "conflict"})
	}
	c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
}

// transitionResult writes the outcome of a lifecycle call.  A transition
// that was stored but whose side effects partly failed is still reported
// as done; the failure is logged for follow-up.
func transitionResult(c echo.Context, code int, v any, err error) error {
	if err != nil && errors.Is(err, service.ErrPartialFailure) {
		c.Logger().Errorf("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
		c.Response().Header().Set("X-Partial-Failure", "true")
		return c.JSON(code, v)
	}
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(code, v)
}
