package telegram

import (
	"context"
	"errors"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/oilshop/order-bot/internal/usecase"
	"github.com/oilshop/order-bot/pkg/e"
)

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID
	userID := msg.From.ID

	switch msg.Command() {
	case "start":
		b.reply(chatID, startText)
	case "catalog":
		b.sendCatalog(chatID)
	case "find":
		b.handleFind(chatID, msg.CommandArguments())
	case "about":
		b.replyMarkdown(chatID, aboutText)
	case "contacts":
		b.reply(chatID, contactsText)
	case "cancel":
		b.handleCancel(ctx, chatID, userID)

	case "orders":
		b.adminGate(userID, chatID, func() { b.handleOrders(ctx, chatID, msg.CommandArguments()) })
	case "export":
		b.adminGate(userID, chatID, func() { b.handleExport(ctx, chatID, false) })
	case "export_xlsx":
		b.adminGate(userID, chatID, func() { b.handleExport(ctx, chatID, true) })
	case "stats":
		b.adminGate(userID, chatID, func() { b.handleStats(ctx, chatID) })
	case "setprice":
		b.adminGate(userID, chatID, func() { b.handleSetPrice(ctx, chatID, msg.CommandArguments()) })
	case "setstock":
		b.adminGate(userID, chatID, func() { b.handleSetStock(ctx, chatID, msg.CommandArguments()) })
	case "stock":
		b.adminGate(userID, chatID, func() { b.handleStock(ctx, chatID) })
	case "version":
		b.adminGate(userID, chatID, func() { b.handleVersion(chatID) })

	default:
		b.reply(chatID, "Неизвестная команда. /start — список команд.")
	}
}

// adminGate выполняет действие только для админа, остальным — единый отказ с их ID.
func (b *Bot) adminGate(userID, chatID int64, action func()) {
	if !b.isAdmin(userID) {
		b.reply(chatID, renderNoAccess(userID))
		return
	}
	action()
}

func (b *Bot) sendCatalog(chatID int64) {
	msg := tgbotapi.NewMessage(chatID, catalogTitle)
	msg.ReplyMarkup = catalogKeyboard(b.catalogUC.List())
	b.send(msg)
}

func (b *Bot) handleFind(chatID int64, query string) {
	products, err := b.catalogUC.Find(query)
	if err != nil {
		b.reply(chatID, findUsageText)
		return
	}

	b.reply(chatID, renderFindResults(strings.TrimSpace(query), products))
}

func (b *Bot) handleCancel(ctx context.Context, chatID, userID int64) {
	cleared, err := b.intakeUC.Cancel(ctx, userID)
	if err != nil {
		b.logger.Warnf("cancel failed for user %d: %v", userID, err)
		b.reply(chatID, orderFailedText)
		return
	}

	if cleared {
		msg := tgbotapi.NewMessage(chatID, cancelledText)
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(false)
		b.send(msg)
		return
	}

	b.reply(chatID, nothingToCancelText)
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) {
	in, err := parseIntent(cb.Data)
	if err != nil {
		b.logger.Warnf("unknown callback payload %q from user %d", cb.Data, cb.From.ID)
		b.answerCallback(cb.ID, "Неизвестная кнопка")
		return
	}

	// у кнопок старше 48 часов Telegram не прикладывает исходное сообщение
	if cb.Message == nil {
		b.answerCallback(cb.ID, "Кнопка устарела, откройте /catalog заново")
		return
	}

	chatID := cb.Message.Chat.ID

	switch in.Kind {
	case intentShowOil:
		b.answerCallback(cb.ID, "")
		b.showCard(ctx, chatID, cb.Message.MessageID, in.ProductID)

	case intentBack:
		b.answerCallback(cb.ID, "")
		edit := tgbotapi.NewEditMessageTextAndMarkup(
			chatID, cb.Message.MessageID, catalogTitle, catalogKeyboard(b.catalogUC.List()))
		if _, err := b.tg.Send(edit); err != nil {
			// карточка была фото — текст не редактируется, отправляем каталог заново
			b.sendCatalog(chatID)
		}

	case intentStartOrder:
		b.startOrder(ctx, cb, in.ProductID)

	case intentOrdersPage:
		if !b.isAdmin(cb.From.ID) {
			b.answerCallback(cb.ID, "Нет доступа")
			return
		}
		b.answerCallback(cb.ID, "")
		b.editOrdersPage(ctx, chatID, cb.Message.MessageID, in.Page)
	}
}

// showCard показывает карточку товара: фото с подписью и кнопками.
func (b *Bot) showCard(ctx context.Context, chatID int64, messageID int, productID int64) {
	product, err := b.catalogUC.Effective(ctx, productID)
	if err != nil {
		b.reply(chatID, notFoundText)
		return
	}

	// Старое сообщение со списком убирается, как делал исходный бот.
	if _, err := b.tg.Request(tgbotapi.NewDeleteMessage(chatID, messageID)); err != nil {
		b.logger.Debugf("delete catalog message failed: %v", err)
	}

	photo := tgbotapi.NewPhoto(chatID, tgbotapi.FileURL(product.Image))
	photo.Caption = renderCard(product)
	photo.ParseMode = tgbotapi.ModeMarkdown
	photo.ReplyMarkup = cardKeyboard(product.ID)
	b.send(photo)
}

func (b *Bot) startOrder(ctx context.Context, cb *tgbotapi.CallbackQuery, productID int64) {
	chatID := cb.Message.Chat.ID

	product, err := b.intakeUC.StartOrder(ctx, cb.From.ID, productID)
	if err != nil {
		switch {
		case errors.Is(err, e.ErrOutOfStock):
			b.answerCallback(cb.ID, "")
			b.reply(chatID, outOfStockText)
		case errors.Is(err, e.ErrProductNotFound):
			b.answerCallback(cb.ID, "")
			b.reply(chatID, notFoundText)
		default:
			b.logger.Warnf("start order failed for user %d: %v", cb.From.ID, err)
			b.answerCallback(cb.ID, "")
			b.reply(chatID, orderFailedText)
		}
		return
	}

	b.answerCallback(cb.ID, "")

	msg := tgbotapi.NewMessage(chatID, renderOrderPrompt(product))
	msg.ParseMode = tgbotapi.ModeMarkdown
	msg.ReplyMarkup = contactKeyboard()
	b.send(msg)
}

func (b *Bot) handleText(ctx context.Context, msg *tgbotapi.Message) {
	b.submitContact(ctx, msg, &usecase.SubmitContactReq{
		UserID:   msg.From.ID,
		Username: msg.From.UserName,
		Text:     msg.Text,
	})
}

// handleContactShare принимает телефон из структурной «поделиться контактом».
func (b *Bot) handleContactShare(ctx context.Context, msg *tgbotapi.Message) {
	b.submitContact(ctx, msg, &usecase.SubmitContactReq{
		UserID:           msg.From.ID,
		Username:         msg.From.UserName,
		Text:             msg.Contact.PhoneNumber,
		FromContactShare: true,
	})
}

func (b *Bot) submitContact(ctx context.Context, msg *tgbotapi.Message, req *usecase.SubmitContactReq) {
	chatID := msg.Chat.ID

	// Подтверждение пользователю и уведомления админам шлёт usecase через Notifier.
	_, err := b.intakeUC.SubmitContact(ctx, req)
	if err == nil {
		return
	}

	var cooldown *usecase.CooldownError
	switch {
	case errors.Is(err, e.ErrNoActiveOrder):
		b.reply(chatID, idleHintText)
	case errors.As(err, &cooldown):
		b.reply(chatID, renderCooldown(cooldown))
	case errors.Is(err, e.ErrEmptyContact):
		b.reply(chatID, emptyContactText)
	case errors.Is(err, e.ErrInvalidContact):
		b.reply(chatID, invalidContactText)
	case errors.Is(err, e.ErrProductNotFound):
		b.reply(chatID, notFoundText)
	default:
		b.logger.Warnf("submit contact failed for user %d: %v", req.UserID, err)
		b.reply(chatID, orderFailedText)
	}
}

func (b *Bot) handleOrders(ctx context.Context, chatID int64, args string) {
	page := 1
	if trimmed := strings.TrimSpace(args); trimmed != "" {
		if n, err := strconv.Atoi(trimmed); err == nil && n > 0 {
			page = n
		}
	}

	res, err := b.adminUC.Orders(ctx, page)
	if err != nil {
		b.logger.Warnf("orders page failed: %v", err)
		b.reply(chatID, noOrdersText)
		return
	}
	if res.Total == 0 {
		b.reply(chatID, noOrdersText)
		return
	}

	msg := tgbotapi.NewMessage(chatID, renderOrdersPage(res))
	if kb := pageKeyboard(res); kb != nil {
		msg.ReplyMarkup = kb
	}
	b.send(msg)
}

func (b *Bot) editOrdersPage(ctx context.Context, chatID int64, messageID, page int) {
	res, err := b.adminUC.Orders(ctx, page)
	if err != nil {
		b.logger.Warnf("orders page failed: %v", err)
		return
	}

	edit := tgbotapi.NewEditMessageText(chatID, messageID, renderOrdersPage(res))
	edit.ReplyMarkup = pageKeyboard(res)
	b.send(edit)
}

func (b *Bot) handleExport(ctx context.Context, chatID int64, xlsx bool) {
	var (
		res *usecase.ExportRes
		err error
	)
	if xlsx {
		res, err = b.adminUC.ExportXLSX(ctx)
	} else {
		res, err = b.adminUC.ExportCSV(ctx)
	}
	if err != nil {
		b.logger.Warnf("export failed: %v", err)
		b.reply(chatID, noOrdersText)
		return
	}

	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{
		Name:  res.FileName,
		Bytes: res.Data,
	})
	b.send(doc)
}

func (b *Bot) handleStats(ctx context.Context, chatID int64) {
	stats, err := b.adminUC.Stats(ctx)
	if err != nil {
		b.logger.Warnf("stats failed: %v", err)
		b.reply(chatID, noOrdersText)
		return
	}

	b.reply(chatID, renderStats(stats))
}

func (b *Bot) handleSetPrice(ctx context.Context, chatID int64, args string) {
	const usage = "Использование: /setprice <id> <цена|reset>"

	fields := strings.Fields(args)
	if len(fields) != 2 {
		b.reply(chatID, usage)
		return
	}

	productID, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		b.reply(chatID, usage)
		return
	}

	var price *string
	if fields[1] != "reset" {
		price = &fields[1]
	}

	if err := b.adminUC.SetPriceOverride(ctx, productID, price); err != nil {
		switch {
		case errors.Is(err, e.ErrProductNotFound):
			b.reply(chatID, notFoundText)
		case errors.Is(err, e.ErrPricePrecision):
			b.reply(chatID, "❌ Цена: не больше двух знаков после точки.")
		case errors.Is(err, e.ErrInvalidPrice):
			b.reply(chatID, "❌ Цена должна быть неотрицательным числом, например 1400 или 1400.50.")
		default:
			b.logger.Warnf("set price failed: %v", err)
			b.reply(chatID, orderFailedText)
		}
		return
	}

	if price == nil {
		b.reply(chatID, "✅ Цена сброшена до каталожной.")
		return
	}
	b.reply(chatID, "✅ Цена обновлена: "+*price)
}

func (b *Bot) handleSetStock(ctx context.Context, chatID int64, args string) {
	const usage = "Использование: /setstock <id> <количество|unlimited>"

	fields := strings.Fields(args)
	if len(fields) != 2 {
		b.reply(chatID, usage)
		return
	}

	productID, err := strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		b.reply(chatID, usage)
		return
	}

	var stock *int64
	if fields[1] != "unlimited" {
		qty, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			b.reply(chatID, usage)
			return
		}
		stock = &qty
	}

	if err := b.adminUC.SetStockOverride(ctx, productID, stock); err != nil {
		switch {
		case errors.Is(err, e.ErrProductNotFound):
			b.reply(chatID, notFoundText)
		case errors.Is(err, e.ErrInvalidStock):
			b.reply(chatID, "❌ Остаток не может быть отрицательным.")
		default:
			b.logger.Warnf("set stock failed: %v", err)
			b.reply(chatID, orderFailedText)
		}
		return
	}

	if stock == nil {
		b.reply(chatID, "✅ Остаток снят: товар не ограничен.")
		return
	}
	b.reply(chatID, "✅ Остаток обновлён: "+fields[1])
}

func (b *Bot) handleStock(ctx context.Context, chatID int64) {
	rows, err := b.adminUC.StockSummary(ctx)
	if err != nil {
		b.logger.Warnf("stock summary failed: %v", err)
		b.reply(chatID, orderFailedText)
		return
	}

	b.reply(chatID, renderStock(rows))
}

func (b *Bot) handleVersion(chatID int64) {
	version, err := b.adminUC.Version()
	if err != nil {
		b.reply(chatID, "Версия неизвестна.")
		return
	}

	b.reply(chatID, "Версия: "+version)
}
