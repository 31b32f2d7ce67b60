package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *Server) MountSystem() {
	s.handler.GET("/healthz", s.Healthz)
	if s.metricsHandler != nil {
		s.handler.GET("/metrics", echo.WrapHandler(s.metricsHandler))
	}
}

type HealthzResponse struct {
	Status  string `json:"status"`
	History bool   `json:"history"`
}

func (s *Server) Healthz(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthzResponse{Status: "ok", History: s.HistoryEnabled()})
}
