package generator

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/Freeeeeet/tutorchain/internal/apperr"
	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const (
	DefaultBaseURL = "https://api.groq.com/openai/v1"
	DefaultModel   = "llama-3.1-8b-instant"
)

type GroqConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
}

// GroqGenerator генератор текста через OpenAI-совместимый chat completions API Groq
type GroqGenerator struct {
	cfg    GroqConfig
	client *openai.Client
	logger *zap.Logger
}

func NewGroqGenerator(cfg GroqConfig, httpClient *http.Client, logger *zap.Logger) *GroqGenerator {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	clientCfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	clientCfg.HTTPClient = httpClient

	return &GroqGenerator{
		cfg:    cfg,
		client: openai.NewClientWithConfig(clientCfg),
		logger: logger,
	}
}

// Generate отправляет system+user промпт и возвращает сырой текст ответа
func (g *GroqGenerator) Generate(ctx context.Context, system, user string) (string, error) {
	const op = "generate text"

	if g.cfg.APIKey == "" {
		return "", apperr.New(apperr.KindUnavailable, op, errors.New("GROQ_API_KEY is not set"))
	}

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
		Temperature: float32(g.cfg.Temperature),
	})
	if err != nil {
		return "", apperr.New(classifyCompletionError(err), op, err)
	}
	if len(resp.Choices) == 0 {
		return "", apperr.New(apperr.KindUnavailable, op, errors.New("upstream returned no choices"))
	}

	content := resp.Choices[0].Message.Content
	g.logger.Debug("Generated text",
		zap.String("model", g.cfg.Model),
		zap.Int("length", len(content)),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)

	return content, nil
}

// classifyCompletionError ответы сервера с ошибкой считаются недоступностью,
// нечитаемое тело успешного ответа ошибкой кодирования, остальное сетью
func classifyCompletionError(err error) apperr.Kind {
	var (
		apiErr    *openai.APIError
		reqErr    *openai.RequestError
		syntaxErr *json.SyntaxError
		typeErr   *json.UnmarshalTypeError
	)
	switch {
	case errors.As(err, &apiErr), errors.As(err, &reqErr):
		return apperr.KindUnavailable
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return apperr.KindEncoding
	default:
		return apperr.KindNetwork
	}
}
