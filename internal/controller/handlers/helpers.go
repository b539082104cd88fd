package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/tutorchain/internal/apperr"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// reply отправляет текст в чат и логирует, если не удалось
func (h *Handlers) reply(ctx context.Context, s Sender, chatID int64, text string) {
	_, err := s.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		h.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err),
		)
	}
}

// allow проверяет лимит сообщений для чата; при превышении отвечает сам
func (h *Handlers) allow(ctx context.Context, s Sender, chatID int64) bool {
	if h.limiter.Allow(fmt.Sprintf("chat:%d", chatID), h.now()) {
		return true
	}
	h.reply(ctx, s, chatID, "⏳ Слишком много запросов. Попробуйте через пару секунд.")
	return false
}

// commandArgs текст после команды: "/quiz Math" → "Math"
func commandArgs(update *models.Update) string {
	text := strings.TrimSpace(update.Message.Text)
	if i := strings.IndexAny(text, " \n\t"); i >= 0 {
		return strings.TrimSpace(text[i+1:])
	}
	return ""
}

// describeError текст ошибки для пользователя по её виду
func describeError(err error) string {
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return "❌ Некорректный запрос: " + err.Error()
	case apperr.KindNotFound:
		return "🔍 Ничего не найдено."
	case apperr.KindRejected, apperr.KindContractRevert:
		return "⛔ Леджер отклонил операцию: " + err.Error()
	case apperr.KindNetwork, apperr.KindUnavailable:
		return "📡 Сервис временно недоступен. Попробуйте позже."
	default:
		return "❌ Произошла ошибка. Попробуйте позже."
	}
}
