// internal/server/routes.go
package server

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/tamzrod/register-poller/internal/status"
	"github.com/tamzrod/register-poller/internal/writer"
)

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	e.HideBanner = true
	if s.httpLog {
		e.Use(middleware.Logger())
	}
	e.Use(middleware.Recover())

	e.GET("/healthcheck", s.HealthCheckHandler)
	e.GET("/status", s.StatusHandler)
	e.GET("/readings", s.ReadingsHandler)

	return e
}

func (s *Server) HealthCheckHandler(c echo.Context) error {
	if s.tracker.Snapshot().OK() {
		return c.String(http.StatusOK, "health_check: OK")
	}
	return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
}

type statusResponse struct {
	Device string `json:"device"`
	State  string `json:"state"`
	status.Snapshot
}

func (s *Server) StatusHandler(c echo.Context) error {
	snap := s.tracker.Snapshot()
	return c.JSON(http.StatusOK, statusResponse{
		Device:   s.unitID,
		State:    status.HealthName(snap.Health),
		Snapshot: snap,
	})
}

func (s *Server) ReadingsHandler(c echo.Context) error {
	res, ok := s.latest.Get()
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "no successful poll cycle yet")
	}
	return c.JSON(http.StatusOK, writer.NewReading(res))
}
