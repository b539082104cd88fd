package controller

import (
	"context"

	"github.com/Freeeeeet/tutorchain/internal/controller/handlers"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

type BotController struct {
	bot      *bot.Bot
	handlers *handlers.Handlers
	logger   *zap.Logger
}

// NewBotController cmdHandlers должны быть собраны на тех же сервисах, что и HTTP,
// иначе у границ разные блокировки аккаунта и разные реестры участников
func NewBotController(botInstance *bot.Bot, cmdHandlers *handlers.Handlers, logger *zap.Logger) *BotController {
	return &BotController{
		bot:      botInstance,
		handlers: cmdHandlers,
		logger:   logger,
	}
}

// RegisterHandlers регистрирует все обработчики команд
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	h := c.handlers

	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/start", bot.MatchTypeExact, h.Wrap(h.HandleStart))
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/help", bot.MatchTypeExact, h.Wrap(h.HandleHelp))
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/cancel", bot.MatchTypeExact, h.Wrap(h.HandleCancel))
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/quiz", bot.MatchTypePrefix, h.Wrap(h.HandleQuiz))
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/sessions", bot.MatchTypeExact, h.Wrap(h.HandleSessions))
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/register", bot.MatchTypePrefix, h.Wrap(h.HandleRegister))
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/match", bot.MatchTypePrefix, h.Wrap(h.HandleMatch))

	// Обработчик текстовых сообщений (ответы на вопросы квиза)
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "", bot.MatchTypePrefix, h.Wrap(h.HandleTextMessage))

	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	commands := []models.BotCommand{
		{Command: "start", Description: "🚀 Начать работу с ботом"},
		{Command: "quiz", Description: "❓ Вопрос квиза по предмету"},
		{Command: "sessions", Description: "📅 Сессии в леджере"},
		{Command: "match", Description: "🎓 Найти репетитора"},
		{Command: "register", Description: "📝 Зарегистрироваться"},
		{Command: "cancel", Description: "✖️ Отменить вопрос"},
		{Command: "help", Description: "❓ Справка по командам"},
	}

	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: commands,
	})
	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("Bot commands menu set")
	return nil
}

// Start запускает бота; блокируется до отмены ctx
func (c *BotController) Start(ctx context.Context) error {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
	return nil
}
