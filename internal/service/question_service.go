package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"mbtispy/internal/config"
	"mbtispy/internal/model"
)

// PlaceholderQuestion is used whenever the text-generation provider is
// unconfigured, slow, or failing. Role assignment never blocks on it.
const PlaceholderQuestion = "Describe how you usually recharge after a stressful week, without naming any personality type."

// QuestionService generates the room's icebreaker question via an external
// chat-completions provider, degrading to a placeholder on any failure.
type QuestionService struct {
	config *config.LLMConfig
	client *http.Client
}

func NewQuestionService() *QuestionService {
	cfg := config.DefaultLLMConfig()
	return &QuestionService{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
	}
}

// NewQuestionServiceWith creates a service with explicit settings.
func NewQuestionServiceWith(cfg *config.LLMConfig) *QuestionService {
	return &QuestionService{
		config: cfg,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutMS) * time.Millisecond,
		},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
	Stream   bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// IcebreakerQuestion returns a discussion question the players answer before
// voting. Always returns a usable question.
func (s *QuestionService) IcebreakerQuestion(ctx context.Context, hiddenTrait string, mode model.GameMode) string {
	if !s.config.IsEnabled() {
		return PlaceholderQuestion
	}

	prompt := s.buildPrompt(hiddenTrait, mode)
	content, err := s.callProvider(ctx, prompt)
	if err != nil {
		log.Printf("Warning: question generation failed, using placeholder: %v", err)
		return PlaceholderQuestion
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return PlaceholderQuestion
	}
	return content
}

func (s *QuestionService) buildPrompt(hiddenTrait string, mode model.GameMode) string {
	var b strings.Builder
	b.WriteString("You host a social deduction party game where one hidden player holds the personality type ")
	b.WriteString(hiddenTrait)
	b.WriteString(". Write a single open-ended icebreaker question, answerable in one or two sentences, ")
	b.WriteString("that makes personality differences visible without mentioning any type code. ")
	if mode == model.ModeAllSpies {
		b.WriteString("All players share the same type this round, so favor a question about degrees rather than categories. ")
	}
	b.WriteString("Reply with the question only.")
	return b.String()
}

func (s *QuestionService) callProvider(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:    s.config.Model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
		Stream:   false,
	})
	if err != nil {
		return "", err
	}

	url := strings.TrimRight(s.config.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to reach provider: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read provider response: %w", err)
	}
	if resp.StatusCode >= 400 {
		return "", fmt.Errorf("provider error %d: %s", resp.StatusCode, string(body))
	}

	var parsed chatResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse provider response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("provider response has no choices")
	}
	return parsed.Choices[0].Message.Content, nil
}
