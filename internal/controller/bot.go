package controller

import (
	"context"
	"errors"
	"strconv"

	"github.com/Freeeeeet/lesson_scheduler/internal/controller/state"
	"github.com/Freeeeeet/lesson_scheduler/internal/model"
	"github.com/Freeeeeet/lesson_scheduler/internal/service"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"
)

type BotController struct {
	bot      *bot.Bot
	commands *Commands
	logger   *zap.Logger
}

func NewBotController(botInstance *bot.Bot, engine *service.BookingService, clock model.Clock, logger *zap.Logger) *BotController {
	return &BotController{
		bot:      botInstance,
		commands: NewCommands(engine, state.NewManager(), clock),
		logger:   logger,
	}
}

// botCommands меню команд бота
var botCommands = []models.BotCommand{
	{Command: "start", Description: "🚀 Начать работу с ботом"},
	{Command: "help", Description: "❓ Справка по командам"},
	{Command: "available", Description: "🟢 Свободные слоты моих учителей"},
	{Command: "myrequests", Description: "📤 Мои заявки"},
	{Command: "lessons", Description: "📚 Предстоящие занятия"},
	{Command: "dashboard", Description: "📊 Сводка"},
	{Command: "slots", Description: "🗓 Мои слоты (учитель)"},
	{Command: "addslot", Description: "➕ Добавить слот (учитель)"},
	{Command: "incoming", Description: "📥 Входящие заявки (учитель)"},
}

// RegisterHandlers регистрирует обработчик команд и меню
func (c *BotController) RegisterHandlers(ctx context.Context) error {
	c.bot.RegisterHandler(bot.HandlerTypeMessageText, "/", bot.MatchTypePrefix, c.HandleCommand)

	return c.setCommands(ctx)
}

// setCommands устанавливает список команд в меню бота
func (c *BotController) setCommands(ctx context.Context) error {
	_, err := c.bot.SetMyCommands(ctx, &bot.SetMyCommandsParams{
		Commands: botCommands,
	})
	if err != nil {
		c.logger.Error("Failed to set bot commands", zap.Error(err))
		return err
	}

	c.logger.Info("Bot commands menu set")
	return nil
}

// HandleCommand выполняет текстовую команду от имени отправителя
func (c *BotController) HandleCommand(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}

	userID := strconv.FormatInt(update.Message.From.ID, 10)
	name, args := ParseCommand(update.Message.Text)

	reply, err := c.commands.Execute(userID, name, args)
	if err != nil {
		if !errors.Is(err, ErrUnknownCommand) && !errors.Is(err, model.ErrValidation) {
			c.logger.Info("Command refused",
				zap.String("user_id", userID),
				zap.String("command", name),
				zap.Error(err))
		}
		reply = ReplyForError(err)
	}

	c.send(ctx, b, update.Message.Chat.ID, reply)
}

// send отправляет сообщение и логирует если не удалось
func (c *BotController) send(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		c.logger.Error("Failed to send message",
			zap.Int64("chat_id", chatID),
			zap.Error(err))
	}
}

// Start запускает бота; блокируется до отмены ctx
func (c *BotController) Start(ctx context.Context) {
	c.logger.Info("Starting bot...")
	c.bot.Start(ctx)
}
