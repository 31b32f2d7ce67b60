package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
)

var (
	ErrNotConfigured = errors.New("document extraction not configured")
)

// Extractor returns the plain text of a single uploaded document.
type Extractor interface {
	Extract(ctx context.Context, name string, content io.Reader) (string, error)
}

type File struct {
	Name    string
	Content io.Reader
}

type Service struct {
	logger    *slog.Logger
	extractor Extractor
}

func New(logger *slog.Logger, extractor Extractor) *Service {
	return &Service{logger: logger, extractor: extractor}
}

// ExtractText concatenates the text of every file with a blank line between
// them. A file that cannot be read contributes an error marker instead of
// failing the whole batch. The text is never interpreted here.
func (s *Service) ExtractText(ctx context.Context, files []File) (string, error) {
	if len(files) == 0 {
		return "", nil
	}
	if s.extractor == nil {
		return "", ErrNotConfigured
	}

	parts := make([]string, 0, len(files))
	for _, f := range files {
		text, err := s.extractor.Extract(ctx, f.Name, f.Content)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			s.logger.Warn("failed to extract document text", "file", f.Name, "error", err)
			parts = append(parts, fmt.Sprintf("\n[Error reading %s: %v]", f.Name, err))
			continue
		}
		parts = append(parts, text)
	}
	return strings.Join(parts, "\n\n"), nil
}
