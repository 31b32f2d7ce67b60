package api

import (
	"errors"
	"net/http"

	"github.com/burenotti/go_health_risk/internal/app/chat"
	"github.com/labstack/echo/v4"
)

func (s *Server) MountChat() {
	if s.chatService == nil {
		return
	}
	s.handler.POST("/chat", s.Chat)
}

type ChatRequest struct {
	Question string `json:"question" validate:"required,max=4000"`
	Context  string `json:"context"`
}

type ChatResponse struct {
	Answer string `json:"answer"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) Chat(c echo.Context) error {
	var req ChatRequest
	if err := s.bind(c, &req); err != nil {
		return JsonError(c, http.StatusBadRequest, err)
	}

	reply, err := s.chatService.Ask(c.Request().Context(), req.Question, req.Context)
	if err != nil {
		if errors.Is(err, chat.ErrEmptyQuestion) {
			return JsonError(c, http.StatusBadRequest, err)
		}
		return s.DomainError(c, err)
	}

	resp := ChatResponse{Answer: reply.Answer}
	if reply.Err != nil {
		resp.Error = reply.Err.Error()
	}
	return c.JSON(http.StatusOK, resp)
}
