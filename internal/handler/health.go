package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Pinger is anything whose reachability the health check reports, such
// as *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Health reports "ok", or 503 when a configured dependency does not
// answer.
func Health(deps map[string]Pinger) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := reqCtx(c)
		defer cancel()
		status := echo.Map{"status": "ok"}
		code := http.StatusOK
		for name, p := range deps {
			if err := p.PingContext(ctx); err != nil {
				status[name] = "down"
				status["status"] = "degraded"
				code = http.StatusServiceUnavailable
				continue
			}
			status[name] = "up"
		}
		return c.JSON(code, status)
	}
}
