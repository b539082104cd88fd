package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/Freeeeeet/tutorchain/internal/controller/state"
	"github.com/Freeeeeet/tutorchain/internal/model"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

const helpText = "Доступные команды:\n" +
	"/quiz <предмет> - Вопрос квиза, ответ следующим сообщением\n" +
	"/sessions - Сессии в леджере\n" +
	"/register <tutor|learner> <адрес> <предметы через запятую> <время> - Регистрация\n" +
	"/match <предметы через запятую> <время> - Найти репетитора\n" +
	"/cancel - Отменить текущий вопрос\n" +
	"/help - Справка"

// HandleStart обрабатывает команду /start
func (h *Handlers) HandleStart(ctx context.Context, s Sender, update *models.Update) {
	if update.Message == nil {
		return
	}

	name := "друг"
	if update.Message.From != nil && update.Message.From.FirstName != "" {
		name = update.Message.From.FirstName
	}

	h.reply(ctx, s, update.Message.Chat.ID, fmt.Sprintf(
		"👋 Привет, %s!\n\nЗдесь можно найти репетитора, пройти квиз и получить награду в леджере.\n\n%s",
		name, helpText,
	))
}

// HandleHelp обрабатывает команду /help
func (h *Handlers) HandleHelp(ctx context.Context, s Sender, update *models.Update) {
	if update.Message == nil {
		return
	}
	h.reply(ctx, s, update.Message.Chat.ID, "📚 "+helpText)
}

// HandleCancel отменяет ожидание ответа на вопрос
func (h *Handlers) HandleCancel(ctx context.Context, s Sender, update *models.Update) {
	if update.Message == nil {
		return
	}

	chatID := update.Message.Chat.ID
	if h.stateManager.GetState(chatID) == state.StateNone {
		h.reply(ctx, s, chatID, "❌ Нет активных операций для отмены.")
		return
	}

	h.stateManager.ClearState(chatID)
	h.reply(ctx, s, chatID, "✅ Операция отменена.")
}

// HandleRegister регистрирует участника: /register tutor 0x.. Math,Physics Mornings
func (h *Handlers) HandleRegister(ctx context.Context, s Sender, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	if !h.allow(ctx, s, chatID) {
		return
	}

	fields := strings.Fields(commandArgs(update))
	if len(fields) < 4 {
		h.reply(ctx, s, chatID, "Формат: /register <tutor|learner> <адрес> <предметы через запятую> <время>")
		return
	}

	p, err := h.matching.Register(ctx, model.Participant{
		Role:         model.Role(fields[0]),
		Address:      fields[1],
		Subjects:     model.SplitSubjects(fields[2]),
		Availability: strings.Join(fields[3:], " "),
	})
	if err != nil {
		h.reply(ctx, s, chatID, describeError(err))
		return
	}

	h.reply(ctx, s, chatID, fmt.Sprintf("✅ Регистрация прошла успешно: %s (%s)", p.Address, p.Role))
}

// HandleMatch ищет репетитора: /match Math,Physics Mornings
func (h *Handlers) HandleMatch(ctx context.Context, s Sender, update *models.Update) {
	if update.Message == nil {
		return
	}
	chatID := update.Message.Chat.ID
	if !h.allow(ctx, s, chatID) {
		return
	}

	fields := strings.Fields(commandArgs(update))
	if len(fields) < 2 {
		h.reply(ctx, s, chatID, "Формат: /match <предметы через запятую> <время>")
		return
	}

	subjects := model.SplitSubjects(fields[0])
	availability := strings.Join(fields[1:], " ")

	tutor, err := h.matching.Match(ctx, subjects, availability)
	if err != nil {
		h.reply(ctx, s, chatID, describeError(err))
		return
	}

	h.logger.Info("Tutor matched via bot",
		zap.Int64("chat_id", chatID),
		zap.String("tutor", tutor.Address),
	)
	h.reply(ctx, s, chatID, fmt.Sprintf("🎓 Репетитор найден: %s\nПредметы: %s\nВремя: %s",
		tutor.Address, strings.Join(tutor.Subjects, ", "), tutor.Availability))
}
