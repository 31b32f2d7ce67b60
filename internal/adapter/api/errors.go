package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/burenotti/go_health_risk/internal/domain/observation"
	"github.com/burenotti/go_health_risk/internal/domain/record"
	"github.com/burenotti/go_health_risk/internal/domain/risk"
	"github.com/labstack/echo/v4"
)

type JsonErrorModel struct {
	Message string `json:"message"`
}

func JsonError(c echo.Context, status int, content any) error {
	data := &JsonErrorModel{Message: fmt.Sprintf("%v", content)}
	return c.JSON(status, data)
}

// DomainError maps assessment and history errors onto status codes.
// Internal details are logged, not returned.
func (s *Server) DomainError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, risk.ErrInvalidMeasurement),
		errors.Is(err, observation.ErrUnknownCategoryValue):
		return JsonError(c, http.StatusUnprocessableEntity, err)
	case errors.Is(err, record.ErrRecordNotFound):
		return JsonError(c, http.StatusNotFound, "record not found")
	case errors.Is(err, record.ErrRecordExists):
		return JsonError(c, http.StatusConflict, "record already exists")
	default:
		s.logger.Error("request failed", "path", c.Path(), "error", err)
		return JsonError(c, http.StatusInternalServerError, "internal error")
	}
}
