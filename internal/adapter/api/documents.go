package api

import (
	"errors"
	"net/http"

	"github.com/burenotti/go_health_risk/internal/app/document"
	"github.com/labstack/echo/v4"
)

func (s *Server) MountDocuments() {
	if s.documentService == nil {
		return
	}
	s.handler.POST("/documents/text", s.ExtractDocumentText)
}

type ExtractTextResponse struct {
	Text string `json:"text"`
}

func (s *Server) ExtractDocumentText(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		return JsonError(c, http.StatusBadRequest, "multipart form expected")
	}
	headers := form.File["files"]
	if len(headers) == 0 {
		return JsonError(c, http.StatusBadRequest, "files: at least one file is required")
	}

	files := make([]document.File, 0, len(headers))
	for _, h := range headers {
		f, err := h.Open()
		if err != nil {
			return JsonError(c, http.StatusBadRequest, err)
		}
		defer f.Close()
		files = append(files, document.File{Name: h.Filename, Content: f})
	}

	text, err := s.documentService.ExtractText(c.Request().Context(), files)
	if err != nil {
		if errors.Is(err, document.ErrNotConfigured) {
			return JsonError(c, http.StatusServiceUnavailable, err)
		}
		return s.DomainError(c, err)
	}
	return c.JSON(http.StatusOK, ExtractTextResponse{Text: text})
}
