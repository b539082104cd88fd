package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/tutorchain/internal/controller/state"
	"github.com/Freeeeeet/tutorchain/internal/model"
	"github.com/Freeeeeet/tutorchain/internal/service"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

// HandleQuiz задаёт вопрос по предмету: /quiz Math
func (h *Handlers) HandleQuiz(ctx context.Context, s Sender, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	if !h.allow(ctx, s, chatID) {
		return
	}

	subject := commandArgs(update)
	if subject == "" {
		h.reply(ctx, s, chatID, "Выберите предмет: /quiz <предмет>\nДоступно: "+strings.Join(h.quiz.Subjects(), ", "))
		return
	}

	q, err := h.quiz.GenerateQuestion(ctx, subject, "")
	if err != nil {
		h.reply(ctx, s, chatID, "📭 Для этого предмета нет вопросов.")
		return
	}

	h.stateManager.SetDialog(chatID, state.StateAwaitingAnswer, map[string]interface{}{
		state.KeySubject:       q.Subject,
		state.KeyQuestion:      q.Question,
		state.KeyCorrectAnswer: q.Answer,
	})

	h.reply(ctx, s, chatID, fmt.Sprintf("❓ %s\n\nОтветьте следующим сообщением.", q.Question))
}

// HandleTextMessage принимает ответ на заданный вопрос
func (h *Handlers) HandleTextMessage(ctx context.Context, s Sender, update *models.Update) {
	if update.Message == nil || update.Message.Text == "" {
		return
	}

	// Игнорируем команды (они обрабатываются другими handlers)
	if strings.HasPrefix(update.Message.Text, "/") {
		return
	}

	chatID := update.Message.Chat.ID
	data, ok := h.stateManager.Take(chatID, state.StateAwaitingAnswer)
	if !ok {
		h.reply(ctx, s, chatID, "Используйте /help для просмотра доступных команд.")
		return
	}

	subject, _ := data[state.KeySubject].(string)
	question, _ := data[state.KeyQuestion].(string)
	correct, _ := data[state.KeyCorrectAnswer].(string)

	out, err := h.orchestrator.GradeAndReward(ctx, service.GradeRequest{
		Subject:       subject,
		Question:      question,
		Answer:        strings.TrimSpace(update.Message.Text),
		CorrectAnswer: correct,
		// Повторная доставка того же сообщения не отправит транзакции ещё раз
		IdempotencyKey: fmt.Sprintf("tg-%d-%d", chatID, update.Message.ID),
	})
	if out == nil {
		h.reply(ctx, s, chatID, describeError(err))
		return
	}
	if err != nil {
		h.logger.Warn("Quiz workflow did not complete",
			zap.Int64("chat_id", chatID),
			zap.String("workflow_id", out.WorkflowID),
			zap.String("state", string(out.State)),
			zap.Error(err),
		)
	}

	h.reply(ctx, s, chatID, formatGradeOutcome(out, correct))
}

func formatGradeOutcome(out *model.GradeOutcome, correct string) string {
	var sb strings.Builder

	if out.Correct {
		sb.WriteString("✅ " + out.Result + "\n")
	} else {
		sb.WriteString(fmt.Sprintf("❌ %s Правильный ответ: %s\n", out.Result, correct))
	}
	sb.WriteString(fmt.Sprintf("Баллы: %d\n", out.Score))

	switch out.State {
	case model.WorkflowStateDone:
		if out.ScoreTxHash != "" {
			sb.WriteString("📝 Результат записан: " + out.ScoreTxHash + "\n")
		}
		if out.RewardTxHash != "" {
			sb.WriteString("🎁 Награда отправлена: " + out.RewardTxHash + "\n")
		}
		if out.TokenBalance != nil {
			sb.WriteString("💰 Баланс токенов: " + out.TokenBalance.String() + "\n")
		}
	case model.WorkflowStatePartiallyCompleted:
		sb.WriteString("📝 Результат записан: " + out.ScoreTxHash + "\n")
		sb.WriteString("⚠️ Награду отправить не удалось.\n")
	default:
		sb.WriteString("⚠️ Записать результат в леджер не удалось.\n")
	}

	return strings.TrimRight(sb.String(), "\n")
}
