package generator

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Freeeeeet/tutorchain/internal/apperr"
	"github.com/Freeeeeet/tutorchain/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultBank(t *testing.T) {
	t.Parallel()

	bank := DefaultBank()
	assert.Equal(t, []string{"Geography", "Math", "Science"}, bank.Subjects())

	geo := bank.Questions("Geography")
	require.Len(t, geo, 1)
	assert.Equal(t, "What's the capital of France?", geo[0].Question)
	assert.Equal(t, "Paris", geo[0].Answer)
	assert.Equal(t, model.QuestionSourceStatic, geo[0].Source)

	assert.Equal(t, "4", bank.Questions("Math")[0].Answer)
	assert.Empty(t, bank.Questions("History"))
}

func TestParseBankRejectsIncompleteEntries(t *testing.T) {
	t.Parallel()

	_, err := ParseBank([]byte("- subject: Math\n  q: \"What's 2+2?\"\n"))
	assert.Error(t, err)

	_, err = ParseBank([]byte("{not a list"))
	assert.Error(t, err)
}

func TestGroqGenerate(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var req struct {
			Model       string  `json:"model"`
			Temperature float64 `json:"temperature"`
			Messages    []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			return
		}
		assert.Equal(t, DefaultModel, req.Model)
		assert.InDelta(t, 0.7, req.Temperature, 1e-6)
		if assert.Len(t, req.Messages, 2) {
			assert.Equal(t, "system", req.Messages[0].Role)
			assert.Equal(t, "user", req.Messages[1].Role)
			assert.Equal(t, "Generate a quiz question for Math", req.Messages[1].Content)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"c1","object":"chat.completion","model":"llama-3.1-8b-instant","choices":[{"index":0,"message":{"role":"assistant","content":"Question: 1+1? Answer: 2"},"finish_reason":"stop"}]}`))
	}))
	defer srv.Close()

	g := NewGroqGenerator(GroqConfig{APIKey: "secret", BaseURL: srv.URL + "/", Temperature: 0.7}, srv.Client(), nil)
	out, err := g.Generate(context.Background(), "system prompt", "Generate a quiz question for Math")
	require.NoError(t, err)
	assert.Equal(t, "Question: 1+1? Answer: 2", out)
}

func TestGroqGenerateErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		status int
		body   string
		want   *apperr.Error
	}{
		{name: "upstream error", status: http.StatusTooManyRequests, body: `{"error":{"message":"rate limited","type":"tokens"}}`, want: apperr.ErrUnavailable},
		{name: "upstream error without body", status: http.StatusBadGateway, body: `<html>bad gateway</html>`, want: apperr.ErrUnavailable},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, want: apperr.ErrUnavailable},
		{name: "garbage", status: http.StatusOK, body: `<html>`, want: apperr.ErrEncoding},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			}))
			defer srv.Close()

			g := NewGroqGenerator(GroqConfig{APIKey: "k", BaseURL: srv.URL}, srv.Client(), nil)
			_, err := g.Generate(context.Background(), "s", "u")
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestGroqGenerateWithoutKey(t *testing.T) {
	t.Parallel()

	g := NewGroqGenerator(GroqConfig{}, nil, nil)
	_, err := g.Generate(context.Background(), "s", "u")
	assert.ErrorIs(t, err, apperr.ErrUnavailable)
}

func TestGroqGenerateNetworkError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	g := NewGroqGenerator(GroqConfig{APIKey: "k", BaseURL: url}, nil, nil)
	_, err := g.Generate(context.Background(), "s", "u")
	assert.ErrorIs(t, err, apperr.ErrNetwork)
}
