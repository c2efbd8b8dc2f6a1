package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/oilshop/order-bot/internal/domain"
	"github.com/oilshop/order-bot/internal/usecase"
)

// catalogKeyboard — список товаров, по кнопке на товар.
func catalogKeyboard(products []domain.Product) tgbotapi.InlineKeyboardMarkup {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(products))
	for _, p := range products {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%s (%s)", p.Name, p.Volume),
				fmt.Sprintf("oil:%d", p.ID),
			),
		))
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...)
}

// cardKeyboard — кнопки карточки товара: назад и оформление заявки.
func cardKeyboard(productID int64) tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅ Назад в каталог", "back"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🛒 Оставить заявку", fmt.Sprintf("order:%d", productID)),
		),
	)
}

// contactKeyboard — reply-клавиатура «поделиться контактом» на время оформления.
func contactKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButtonContact("📱 Отправить мой номер"),
		),
	)
	kb.OneTimeKeyboard = true
	kb.ResizeKeyboard = true
	return kb
}

// pageKeyboard — кнопки пагинации списка заявок; показываются только существующие направления.
func pageKeyboard(page *usecase.OrdersPageRes) *tgbotapi.InlineKeyboardMarkup {
	var row []tgbotapi.InlineKeyboardButton
	if page.HasPrev {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("⬅", fmt.Sprintf("page:%d", page.Page-1)))
	}
	if page.HasNext {
		row = append(row, tgbotapi.NewInlineKeyboardButtonData("➡", fmt.Sprintf("page:%d", page.Page+1)))
	}
	if len(row) == 0 {
		return nil
	}

	kb := tgbotapi.NewInlineKeyboardMarkup(row)
	return &kb
}
