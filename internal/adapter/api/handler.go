package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/burenotti/go_health_risk/internal/adapter/storage"
	"github.com/burenotti/go_health_risk/internal/app/assessment"
	"github.com/burenotti/go_health_risk/internal/app/auth"
	"github.com/burenotti/go_health_risk/internal/app/chat"
	"github.com/burenotti/go_health_risk/internal/app/document"
	"github.com/burenotti/go_health_risk/internal/app/messagebus"
	"github.com/burenotti/go_health_risk/internal/app/unitofwork"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	slogecho "github.com/samber/slog-echo"
)

type Server struct {
	handler           *echo.Echo
	logger            *slog.Logger
	addr              string
	db                storage.DBContext
	authorizer        *auth.Authorizer
	assessmentService *assessment.Service
	chatService       *chat.Service
	documentService   *document.Service
	msgBus            unitofwork.MessageBus
	metricsHandler    http.Handler
	validator         *validator.Validate
}

func NewServer(opt ...Option) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Server.WriteTimeout = 60 * time.Second
	e.Server.ReadTimeout = 30 * time.Second
	e.Server.IdleTimeout = 60 * time.Second
	e.Server.ReadHeaderTimeout = 5 * time.Second
	e.Server.MaxHeaderBytes = 8192

	v := validator.New(validator.WithRequiredStructEnabled())

	s := &Server{
		handler:   e,
		logger:    slog.Default(),
		validator: v,
	}

	for _, opt := range opt {
		opt(s)
	}
	if s.msgBus == nil {
		s.msgBus = messagebus.New(s.logger)
	}

	e.Use(slogecho.NewWithConfig(s.logger, slogecho.Config{
		DefaultLevel:     slog.LevelInfo,
		ClientErrorLevel: slog.LevelInfo,
		ServerErrorLevel: slog.LevelError,
		WithRequestID:    true,
	}))
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit("20M"))
	s.Mount()
	return s
}

func (s *Server) Mount() {
	s.MountSystem()
	s.MountAssessments()
	s.MountChat()
	s.MountDocuments()
	if s.HistoryEnabled() {
		s.MountHistory()
	} else {
		s.logger.Info("assessment history disabled: no database configured")
	}
}

// HistoryEnabled reports whether the /me/assessments routes are served.
func (s *Server) HistoryEnabled() bool {
	return s.db != nil && s.authorizer != nil
}

func (s *Server) Start() error {
	return s.handler.Start(s.addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.handler.Shutdown(ctx)
}

// ServeHTTP lets the server be driven directly by httptest.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

func (s *Server) bind(ctx echo.Context, i interface{}) error {
	if err := ctx.Bind(i); err != nil {
		return fmt.Errorf("bad request")
	}
	if err := s.validator.Struct(i); err != nil {
		var errs validator.ValidationErrors
		if !errors.As(err, &errs) {
			return fmt.Errorf("bad request")
		}
		return fmt.Errorf("%s: %s", errs[0].Field(), errs[0].Error())

	}
	return nil
}
