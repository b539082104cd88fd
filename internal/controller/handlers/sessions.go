package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/tutorchain/internal/model"
	"github.com/go-telegram/bot/models"
)

// Сколько последних сессий показываем в одном сообщении
const maxSessionsInMessage = 20

// HandleSessions показывает сессии из леджера
func (h *Handlers) HandleSessions(ctx context.Context, s Sender, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	if !h.allow(ctx, s, chatID) {
		return
	}

	sessions, err := h.orchestrator.ListSessions(ctx)
	if err != nil {
		h.reply(ctx, s, chatID, describeError(err))
		return
	}

	h.reply(ctx, s, chatID, formatSessions(sessions))
}

func formatSessions(sessions []model.Session) string {
	if len(sessions) == 0 {
		return "📭 Сессий пока нет."
	}

	shown := sessions
	if len(shown) > maxSessionsInMessage {
		shown = shown[len(shown)-maxSessionsInMessage:]
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📅 Сессий в леджере: %d\n", len(sessions)))
	for _, s := range shown {
		status := "⏳"
		if s.Completed {
			status = "✅"
		}
		sb.WriteString(fmt.Sprintf("\n%s #%d %s\nРепетитор: %s\nОплата: %s wei\n",
			status, s.ID, s.Subject, s.Tutor, s.Payment.String()))
	}
	return strings.TrimRight(sb.String(), "\n")
}
