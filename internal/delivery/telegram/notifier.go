package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/oilshop/order-bot/internal/usecase"
	"github.com/oilshop/order-bot/pkg/e"
)

// Notifier доставляет подтверждения и админские уведомления через Telegram.
// Отдельный от Bot тип: usecase-слою нужна только отправка, не приём.
type Notifier struct {
	api *tgbotapi.BotAPI
}

func NewNotifier(api *tgbotapi.BotAPI) *Notifier {
	return &Notifier{api: api}
}

func (n *Notifier) SendOrderConfirmation(_ context.Context, req *usecase.OrderNotification) error {
	const op = "Notifier.SendOrderConfirmation"

	msg := tgbotapi.NewMessage(req.Order.UserID, renderConfirmation(req))
	msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
	if _, err := n.api.Send(msg); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

func (n *Notifier) NotifyAdmin(_ context.Context, adminID int64, req *usecase.OrderNotification) error {
	const op = "Notifier.NotifyAdmin"

	if _, err := n.api.Send(tgbotapi.NewMessage(adminID, renderAdminNotification(req))); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}
