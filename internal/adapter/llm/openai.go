package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/burenotti/go_health_risk/internal/app/assessment"
	"github.com/sashabaranov/go-openai"
)

var (
	ErrNoChoices = errors.New("completion returned no choices")
)

const (
	recommendationSystemPrompt = "You are a compassionate AI healthcare assistant."
	qaSystemPrompt             = "You are a medical expert assistant. Answer only medical-related questions. " +
		"Use clinical knowledge and any provided records. If no relevant info, say so."
)

type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client talks to any OpenAI-compatible chat completions endpoint. It backs
// both the recommendation narrative and the Q&A assistant.
type Client struct {
	client  *openai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

func New(cfg Config, logger *slog.Logger) *Client {
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	return &Client{
		client:  openai.NewClientWithConfig(oc),
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  logger,
	}
}

func (c *Client) Recommend(ctx context.Context, req assessment.NarrativeRequest) (string, error) {
	prompt, err := RecommendationPrompt(req)
	if err != nil {
		return "", err
	}
	return c.complete(ctx, recommendationSystemPrompt, prompt)
}

func (c *Client) Answer(ctx context.Context, question, records string) (string, error) {
	return c.complete(ctx, qaSystemPrompt, QuestionPrompt(question, records))
}

func (c *Client) complete(ctx context.Context, system, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	c.logger.Debug("requesting chat completion", "model", c.model)
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrNoChoices
	}
	c.logger.Debug("chat completion received", "finish_reason", resp.Choices[0].FinishReason)
	return resp.Choices[0].Message.Content, nil
}

// RecommendationPrompt asks for the three-section narrative: overview,
// action plan and medical record analysis.
func RecommendationPrompt(req assessment.NarrativeRequest) (string, error) {
	profile, err := json.MarshalIndent(req.Profile, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode profile: %w", err)
	}

	records := req.DocumentText
	if strings.TrimSpace(records) == "" {
		records = "(no medical records uploaded)"
	}
	factors := strings.Join(req.Assessment.Factors, ", ")
	if factors == "" {
		factors = "none"
	}

	var b strings.Builder
	b.WriteString("Analyze the user's health profile and return 3 structured sections:\n\n")
	b.WriteString("1. **Health Overview** - Explain the user's health status and risk level.\n")
	b.WriteString("2. **Personalized Action Plan** - Give 5-8 steps sorted from easiest to most critical ")
	b.WriteString("(e.g. hydration, diet, doctor visit).\n")
	b.WriteString("3. **Medical Record Analysis** - If lab or clinical data is found, explain it. ")
	b.WriteString("If not, return: (no lab records uploaded)\n\n")
	fmt.Fprintf(&b, "USER DATA:\n%s\n\n", profile)
	fmt.Fprintf(&b, "BMI: %.1f (%s)\nBLOOD PRESSURE: %s\n", req.Assessment.Metrics.BMI,
		req.Assessment.Metrics.BMICategory, req.Assessment.Metrics.BPCategory)
	fmt.Fprintf(&b, "RISK LEVEL: %s (score %d)\n", strings.ToUpper(string(req.Assessment.Level)), req.Assessment.Score)
	fmt.Fprintf(&b, "IDENTIFIED RISK FACTORS: %s\n\n", factors)
	fmt.Fprintf(&b, "MEDICAL RECORD TEXT:\n%s\n", records)
	return b.String(), nil
}

func QuestionPrompt(question, records string) string {
	if strings.TrimSpace(records) == "" {
		records = "(no records provided)"
	}
	return fmt.Sprintf("USER QUESTION:\n%s\n\nMEDICAL RECORDS:\n%s\n", question, records)
}
