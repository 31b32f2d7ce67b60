package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/burenotti/go_health_risk/internal/adapter/export"
	"github.com/burenotti/go_health_risk/internal/app/assessment"
	"github.com/burenotti/go_health_risk/internal/app/unitofwork"
	"github.com/burenotti/go_health_risk/internal/domain/observation"
	"github.com/burenotti/go_health_risk/internal/domain/record"
	"github.com/burenotti/go_health_risk/internal/domain/risk"
	"github.com/labstack/echo/v4"
	"github.com/samber/lo"
)

const defaultHistoryLimit = 50

func (s *Server) MountHistory() {
	me := s.handler.Group("/me/assessments", LoginRequired(s.authorizer))

	me.POST("", s.CreateRecord)
	me.GET("", s.ListRecords)
	me.GET("/export", s.ExportRecords)
	me.GET("/:record_id", s.GetRecord)
}

func (s *Server) getRecordsUoW() *unitofwork.UnitOfWork[*assessment.AtomicContext] {
	return unitofwork.New[*assessment.AtomicContext](
		s.db,
		assessment.NewAtomicContext,
		s.msgBus,
		s.logger,
	)
}

type Record struct {
	RecordID    string                        `json:"record_id"`
	Observation observation.HealthObservation `json:"observation"`
	risk.Assessment
	CreatedAt time.Time `json:"created_at"`
}

func toRecord(r *record.Record) Record {
	return Record{
		RecordID:    r.RecordID,
		Observation: r.Observation,
		Assessment:  r.Assessment,
		CreatedAt:   r.CreatedAt,
	}
}

func (s *Server) CreateRecord(c echo.Context) error {
	var req observation.Input
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}
	user := currentUser(c)

	r, err := s.assessmentService.Record(c.Request().Context(), s.getRecordsUoW(), user.SubjectID, req)
	if err != nil {
		return s.DomainError(c, err)
	}
	return c.JSON(http.StatusCreated, toRecord(r))
}

type GetRecordRequest struct {
	RecordID string `param:"record_id" validate:"required,uuid"`
}

func (s *Server) GetRecord(c echo.Context) error {
	var req GetRecordRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}
	user := currentUser(c)

	r, err := s.assessmentService.GetRecord(c.Request().Context(), s.getRecordsUoW(), user.SubjectID, req.RecordID)
	if err != nil {
		return s.DomainError(c, err)
	}
	return c.JSON(http.StatusOK, toRecord(r))
}

type ListRecordsRequest struct {
	Limit int `query:"limit" validate:"gte=0,lte=500"`
}

type ListRecordsResponse struct {
	Records []Record `json:"records"`
}

func (s *Server) ListRecords(c echo.Context) error {
	var req ListRecordsRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}
	if req.Limit == 0 {
		req.Limit = defaultHistoryLimit
	}
	user := currentUser(c)

	list, err := s.assessmentService.ListRecords(c.Request().Context(), s.getRecordsUoW(), user.SubjectID, req.Limit)
	if err != nil {
		return s.DomainError(c, err)
	}

	return c.JSON(http.StatusOK, ListRecordsResponse{
		Records: lo.Map(list, func(r *record.Record, _ int) Record {
			return toRecord(r)
		}),
	})
}

func (s *Server) ExportRecords(c echo.Context) error {
	user := currentUser(c)

	list, err := s.assessmentService.ListRecords(c.Request().Context(), s.getRecordsUoW(), user.SubjectID, 0)
	if err != nil {
		return s.DomainError(c, err)
	}

	data, err := export.Records(list)
	if err != nil {
		return s.DomainError(c, err)
	}

	filename := fmt.Sprintf("assessments-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", filename))
	return c.Blob(http.StatusOK, export.ContentType, data)
}
