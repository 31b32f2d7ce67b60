package llm

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/burenotti/go_health_risk/internal/app/assessment"
	"github.com/burenotti/go_health_risk/internal/domain/observation"
	"github.com/burenotti/go_health_risk/internal/domain/risk"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler func(req openai.ChatCompletionRequest) (int, any)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req openai.ChatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		status, body := handler(req)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newClient(url string) *Client {
	return New(Config{
		BaseURL: url,
		APIKey:  "test-key",
		Model:   "test-model",
		Timeout: 5 * time.Second,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func completion(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		ID:    "cmpl-1",
		Model: "test-model",
		Choices: []openai.ChatCompletionChoice{{
			Index:        0,
			Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
			FinishReason: openai.FinishReasonStop,
		}},
	}
}

func narrativeRequest() assessment.NarrativeRequest {
	return assessment.NarrativeRequest{
		Profile: observation.Input{Name: "Ann", Age: 52, SmokingStatus: "Current smoker"},
		Assessment: risk.Assessment{
			Score:   5,
			Level:   risk.LevelHigh,
			Factors: []string{"Obesity", "Smoking"},
			Metrics: risk.Metrics{BMI: 31.9, BMICategory: risk.BMIObese, BPCategory: risk.BPStage2},
		},
	}
}

func TestRecommend(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := newTestServer(t, func(req openai.ChatCompletionRequest) (int, any) {
		got = req
		return http.StatusOK, completion("## Health Overview\nAll good.")
	})

	text, err := newClient(srv.URL).Recommend(context.Background(), narrativeRequest())
	require.NoError(t, err)
	assert.Equal(t, "## Health Overview\nAll good.", text)

	assert.Equal(t, "test-model", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Contains(t, got.Messages[1].Content, "RISK LEVEL: HIGH (score 5)")
	assert.Contains(t, got.Messages[1].Content, "IDENTIFIED RISK FACTORS: Obesity, Smoking")
	assert.Contains(t, got.Messages[1].Content, "(no medical records uploaded)")
}

func TestAnswer(t *testing.T) {
	var got openai.ChatCompletionRequest
	srv := newTestServer(t, func(req openai.ChatCompletionRequest) (int, any) {
		got = req
		return http.StatusOK, completion("Drink water.")
	})

	text, err := newClient(srv.URL).Answer(context.Background(), "What should I do?", "")
	require.NoError(t, err)
	assert.Equal(t, "Drink water.", text)
	require.Len(t, got.Messages, 2)
	assert.Contains(t, got.Messages[0].Content, "medical expert assistant")
	assert.Contains(t, got.Messages[1].Content, "What should I do?")
	assert.Contains(t, got.Messages[1].Content, "(no records provided)")
}

func TestCompletionErrors(t *testing.T) {
	t.Run("upstream error", func(t *testing.T) {
		srv := newTestServer(t, func(openai.ChatCompletionRequest) (int, any) {
			return http.StatusServiceUnavailable, map[string]any{
				"error": map[string]any{"message": "overloaded", "type": "server_error"},
			}
		})
		_, err := newClient(srv.URL).Answer(context.Background(), "q", "")
		assert.Error(t, err)
	})

	t.Run("no choices", func(t *testing.T) {
		srv := newTestServer(t, func(openai.ChatCompletionRequest) (int, any) {
			return http.StatusOK, openai.ChatCompletionResponse{ID: "cmpl-2"}
		})
		_, err := newClient(srv.URL).Answer(context.Background(), "q", "")
		assert.ErrorIs(t, err, ErrNoChoices)
	})
}

func TestRecommendationPrompt(t *testing.T) {
	req := narrativeRequest()
	req.DocumentText = "LDL 190 mg/dL"
	req.Assessment.Factors = nil

	prompt, err := RecommendationPrompt(req)
	require.NoError(t, err)
	assert.Contains(t, prompt, "**Health Overview**")
	assert.Contains(t, prompt, "**Personalized Action Plan**")
	assert.Contains(t, prompt, "(no lab records uploaded)")
	assert.Contains(t, prompt, `"name": "Ann"`)
	assert.Contains(t, prompt, "BMI: 31.9 (obese)")
	assert.Contains(t, prompt, "IDENTIFIED RISK FACTORS: none")
	assert.Contains(t, prompt, "MEDICAL RECORD TEXT:\nLDL 190 mg/dL")
	assert.NotContains(t, prompt, "(no medical records uploaded)")
}
