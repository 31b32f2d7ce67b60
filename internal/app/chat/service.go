package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

var (
	ErrEmptyQuestion   = errors.New("question is empty")
	ErrExternalService = errors.New("external service error")
)

const MarkerNotConfigured = "[Error: chat assistant not configured]"

// Answerer is the conversational Q&A collaborator. It keeps no state
// between calls.
type Answerer interface {
	Answer(ctx context.Context, question, records string) (string, error)
}

type Reply struct {
	Answer string
	Err    error
}

type Service struct {
	logger   *slog.Logger
	answerer Answerer
}

func New(logger *slog.Logger, answerer Answerer) *Service {
	return &Service{logger: logger, answerer: answerer}
}

// Ask forwards the question with the document text as context. Collaborator
// failures come back as a marker in Answer with Err set; only an empty
// question is returned as an error.
func (s *Service) Ask(ctx context.Context, question, records string) (Reply, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return Reply{}, ErrEmptyQuestion
	}

	if s.answerer == nil {
		return Reply{
			Answer: MarkerNotConfigured,
			Err:    fmt.Errorf("%w: chat assistant not configured", ErrExternalService),
		}, nil
	}

	answer, err := s.answerer.Answer(ctx, question, records)
	if err != nil {
		s.logger.Warn("chat answer failed", "error", err)
		return Reply{
			Answer: fmt.Sprintf("[Chat Error] %v", err),
			Err:    errors.Join(fmt.Errorf("chat: %w", err), ErrExternalService),
		}, nil
	}
	return Reply{Answer: answer}, nil
}
