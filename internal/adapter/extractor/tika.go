package extractor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

var (
	ErrExtractionFailed = errors.New("text extraction failed")
)

// TikaClient extracts plain text through an Apache Tika server: the raw
// document is PUT to /tika and the text comes back as text/plain.
type TikaClient struct {
	client *resty.Client
	logger *slog.Logger
}

func NewTikaClient(baseURL string, timeout time.Duration, logger *slog.Logger) *TikaClient {
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(2 * time.Second).
		SetHeader("Accept", "text/plain")

	return &TikaClient{client: client, logger: logger}
}

func (c *TikaClient) Extract(ctx context.Context, name string, content io.Reader) (string, error) {
	body, err := io.ReadAll(content)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name)).
		SetBody(body).
		Put("/tika")
	if err != nil {
		return "", errors.Join(fmt.Errorf("extract %s: %w", name, err), ErrExtractionFailed)
	}
	if resp.IsError() {
		c.logger.Warn("extractor returned error status", "file", name, "status", resp.StatusCode())
		return "", errors.Join(fmt.Errorf("extract %s: status %d", name, resp.StatusCode()), ErrExtractionFailed)
	}

	return strings.TrimSpace(resp.String()), nil
}
