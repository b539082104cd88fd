package handlers

import (
	"context"
	"time"

	"github.com/Freeeeeet/tutorchain/internal/controller/state"
	"github.com/Freeeeeet/tutorchain/internal/platform/ratelimiter"
	"github.com/Freeeeeet/tutorchain/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// Sender часть *bot.Bot, через которую отвечают обработчики
type Sender interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
}

// HandlerFunc обработчик команды с подменяемым отправителем
type HandlerFunc func(ctx context.Context, s Sender, update *models.Update)

// Handlers содержит все зависимости для обработки команд
type Handlers struct {
	orchestrator *service.Orchestrator
	matching     *service.MatchingService
	quiz         *service.QuizService
	stateManager *state.Manager
	limiter      *ratelimiter.KeyLimiter
	logger       *zap.Logger
	now          func() time.Time
}

func NewHandlers(
	orchestrator *service.Orchestrator,
	matching *service.MatchingService,
	quiz *service.QuizService,
	stateManager *state.Manager,
	limiter *ratelimiter.KeyLimiter,
	logger *zap.Logger,
) *Handlers {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handlers{
		orchestrator: orchestrator,
		matching:     matching,
		quiz:         quiz,
		stateManager: stateManager,
		limiter:      limiter,
		logger:       logger,
		now:          time.Now,
	}
}

// Wrap адаптирует HandlerFunc к сигнатуре go-telegram/bot
func (h *Handlers) Wrap(fn HandlerFunc) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		fn(ctx, b, update)
	}
}
