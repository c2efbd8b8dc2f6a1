// Package telegram — приём и отправка сообщений бота.
// Слой тонкий: разбирает апдейты, зовёт usecase-ы и рендерит ответы.
package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/oilshop/order-bot/internal/cfg"
	"github.com/oilshop/order-bot/internal/usecase"
	"github.com/oilshop/order-bot/pkg/e"
	"github.com/oilshop/order-bot/pkg/logger"
)

// sender — отправляющая часть Bot API; в тестах подменяется записывающей заглушкой.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Bot struct {
	api       *tgbotapi.BotAPI
	tg        sender
	catalogUC *usecase.CatalogUseCase
	intakeUC  *usecase.IntakeUseCase
	adminUC   *usecase.AdminUseCase
	logger    logger.Logger
	admins    map[int64]struct{}
}

func NewBot(
	api *tgbotapi.BotAPI,
	catalogUC *usecase.CatalogUseCase,
	intakeUC *usecase.IntakeUseCase,
	adminUC *usecase.AdminUseCase,
	logger logger.Logger,
	botCfg *cfg.BotCfg,
) *Bot {
	admins := make(map[int64]struct{}, len(botCfg.AdminIDs))
	for _, id := range botCfg.AdminIDs {
		admins[id] = struct{}{}
	}

	return &Bot{
		api:       api,
		tg:        api,
		catalogUC: catalogUC,
		intakeUC:  intakeUC,
		adminUC:   adminUC,
		logger:    logger,
		admins:    admins,
	}
}

// Run крутит long-poll цикл до отмены контекста.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)
	b.logger.Infof("bot %s is polling for updates", b.api.Self.UserName)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Infof("bot polling stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			b.dispatch(ctx, update)
		}
	}
}

func (b *Bot) dispatch(ctx context.Context, update tgbotapi.Update) {
	switch {
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, update.CallbackQuery)
	case update.Message == nil:
		// апдейты без сообщения (edited_message и т.п.) не обрабатываются
	case update.Message.IsCommand():
		b.handleCommand(ctx, update.Message)
	case update.Message.Contact != nil:
		b.handleContactShare(ctx, update.Message)
	case update.Message.Text != "":
		b.handleText(ctx, update.Message)
	}
}

func (b *Bot) isAdmin(userID int64) bool {
	_, ok := b.admins[userID]
	return ok
}

func (b *Bot) send(c tgbotapi.Chattable) {
	if _, err := b.tg.Send(c); err != nil {
		b.logger.Warnf("telegram send failed: %v", e.Wrap("Bot.send", err))
	}
}

func (b *Bot) reply(chatID int64, text string) {
	b.send(tgbotapi.NewMessage(chatID, text))
}

func (b *Bot) replyMarkdown(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	b.send(msg)
}

// answerCallback гасит «часики» на кнопке; текст опционален.
func (b *Bot) answerCallback(id, text string) {
	if _, err := b.tg.Request(tgbotapi.NewCallback(id, text)); err != nil {
		b.logger.Warnf("callback answer failed: %v", err)
	}
}
