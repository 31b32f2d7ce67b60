package api

import (
	"log/slog"
	"net"
	"net/http"
	"strconv"

	"github.com/burenotti/go_health_risk/internal/adapter/storage"
	"github.com/burenotti/go_health_risk/internal/app/assessment"
	"github.com/burenotti/go_health_risk/internal/app/auth"
	"github.com/burenotti/go_health_risk/internal/app/chat"
	"github.com/burenotti/go_health_risk/internal/app/document"
	"github.com/burenotti/go_health_risk/internal/app/unitofwork"
)

type Option func(*Server)

func Addr(host string, port int) Option {
	return func(s *Server) {
		s.addr = net.JoinHostPort(host, strconv.Itoa(port))
	}
}

func Logger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// DBContext enables assessment history. Without it the service is stateless.
func DBContext(db storage.DBContext) Option {
	return func(s *Server) {
		s.db = db
	}
}

func Authorizer(a *auth.Authorizer) Option {
	return func(s *Server) {
		s.authorizer = a
	}
}

func AssessmentService(service *assessment.Service) Option {
	return func(s *Server) {
		s.assessmentService = service
	}
}

func ChatService(service *chat.Service) Option {
	return func(s *Server) {
		s.chatService = service
	}
}

func DocumentService(service *document.Service) Option {
	return func(s *Server) {
		s.documentService = service
	}
}

func MessageBus(bus unitofwork.MessageBus) Option {
	return func(s *Server) {
		s.msgBus = bus
	}
}

func MetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metricsHandler = h
	}
}
