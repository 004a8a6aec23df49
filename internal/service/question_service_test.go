package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"mbtispy/internal/config"
	"mbtispy/internal/model"
)

func TestIcebreakerQuestionDisabledUsesPlaceholder(t *testing.T) {
	svc := NewQuestionServiceWith(&config.LLMConfig{TimeoutMS: 1000})

	q := svc.IcebreakerQuestion(context.Background(), "ENFP", model.ModeClassic)
	assert.Equal(t, PlaceholderQuestion, q)
}

func TestIcebreakerQuestionFromProvider(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"  What do you do first on a free Saturday?  "}}]}`))
	}))
	defer srv.Close()

	svc := NewQuestionServiceWith(&config.LLMConfig{
		APIKey:    "test-key",
		BaseURL:   srv.URL,
		Model:     "test-model",
		TimeoutMS: 1000,
	})

	q := svc.IcebreakerQuestion(context.Background(), "ENFP", model.ModeClassic)
	assert.Equal(t, "What do you do first on a free Saturday?", q)
}

func TestIcebreakerQuestionProviderErrorFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	svc := NewQuestionServiceWith(&config.LLMConfig{
		APIKey:    "test-key",
		BaseURL:   srv.URL,
		Model:     "test-model",
		TimeoutMS: 1000,
	})

	q := svc.IcebreakerQuestion(context.Background(), "ENFP", model.ModeClassic)
	assert.Equal(t, PlaceholderQuestion, q)
}

func TestIcebreakerQuestionEmptyContentFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[{"message":{"content":"   "}}]}`))
	}))
	defer srv.Close()

	svc := NewQuestionServiceWith(&config.LLMConfig{
		APIKey:    "test-key",
		BaseURL:   srv.URL,
		Model:     "test-model",
		TimeoutMS: 1000,
	})

	q := svc.IcebreakerQuestion(context.Background(), "ENFP", model.ModeClassic)
	assert.Equal(t, PlaceholderQuestion, q)
}
