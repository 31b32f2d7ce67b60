package api

import (
	"net/http"

	"github.com/burenotti/go_health_risk/internal/domain/observation"
	"github.com/burenotti/go_health_risk/internal/domain/risk"
	"github.com/labstack/echo/v4"
)

func (s *Server) MountAssessments() {
	if s.assessmentService == nil {
		return
	}
	s.handler.POST("/assessments", s.CreateAssessment)
}

type CreateAssessmentRequest struct {
	observation.Input
	DocumentText string `json:"document_text"`
	Narrative    bool   `json:"narrative"`
}

type AssessmentResponse struct {
	Observation observation.HealthObservation `json:"observation"`
	risk.Assessment
	Narrative      string `json:"narrative,omitempty"`
	NarrativeError string `json:"narrative_error,omitempty"`
}

func (s *Server) CreateAssessment(c echo.Context) error {
	var req CreateAssessmentRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	ctx := c.Request().Context()
	res, err := s.assessmentService.Assess(ctx, req.Input, req.DocumentText, req.Narrative)
	if err != nil {
		return s.DomainError(c, err)
	}

	resp := AssessmentResponse{
		Observation: res.Observation,
		Assessment:  res.Assessment,
		Narrative:   res.Narrative,
	}
	if res.NarrativeErr != nil {
		resp.NarrativeError = res.NarrativeErr.Error()
	}
	return c.JSON(http.StatusOK, resp)
}
