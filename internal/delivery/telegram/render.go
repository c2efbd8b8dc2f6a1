package telegram

import (
	"fmt"
	"strings"

	"github.com/oilshop/order-bot/internal/domain"
	"github.com/oilshop/order-bot/internal/usecase"
)

const (
	startText = "Привет! 👋\n" +
		"Я бот-магазин масел для электромобилей и гибридов.\n\n" +
		"📌 Команды:\n" +
		"/catalog — открыть каталог\n" +
		"/find <запрос> — поиск по каталогу\n" +
		"/about — о компании\n" +
		"/contacts — контакты\n" +
		"/cancel — отменить оформление\n" +
		"/orders — список заявок (для админов)\n" +
		"/start — показать это сообщение"

	aboutText = "🏪 *О нас*\n\n" +
		"Мы занимаемся продажей оригинальных масел для электромобилей и гибридных автомобилей.\n" +
		"🔧 Только проверенные бренды.\n\n" +
		"📍 Адрес: Екатеринбург, ул. Серафимы Дерябиной, д. 18а\n" +
		"🕘 Время работы: 9:00 — 21:00"

	contactsText = "📞 *Наши контакты:*\n\n" +
		"Телефон: +7 (999) 559-39-17, +7 (953) 046-36-54\n" +
		"Telegram: @shaba_v, @andrey_matveev\n" +
		"Авито: https://m.avito.ru/brands/2c07f021e144d3169204cd556d312cdf/items/all"

	catalogTitle = "Выберите масло:"

	idleHintText = "Используйте /catalog чтобы выбрать масло."

	invalidContactText = "❌ Не похоже на контакт. Пришлите телефон (+7 999 123-45-67), " +
		"ник (@username) или ссылку https://t.me/username."

	emptyContactText = "❌ Контакт пустой. Пришлите телефон, ник или ссылку на Telegram."

	outOfStockText = "😔 Этого масла сейчас нет в наличии. Загляните позже или выберите другое."

	notFoundText = "❌ Ошибка: товар не найден."

	orderFailedText = "⚠️ Не удалось сохранить заявку, попробуйте прислать контакт ещё раз."

	nothingToCancelText = "Нечего отменять: оформление не начато."

	cancelledText = "Оформление отменено. /catalog — выбрать масло заново."

	noOrdersText = "📭 Заявок пока нет."

	findUsageText = "Использование: /find <запрос>\nНапример: /find хонда"
)

// renderCard собирает подпись карточки товара.
func renderCard(p *domain.EffectiveProduct) string {
	var b strings.Builder

	fmt.Fprintf(&b, "🔹 *%s* (%s)\n\n%s\n\n", p.Name, p.Volume, p.Description)

	b.WriteString("Характеристики:\n")
	for _, f := range p.Features {
		fmt.Fprintf(&b, "• %s\n", f)
	}

	fmt.Fprintf(&b, "\nПодходит: %s\n", p.Compatible)
	fmt.Fprintf(&b, "\n💰 Цена: %s %s", p.Price, p.Currency)

	if p.Stock != nil {
		fmt.Fprintf(&b, "\n📦 В наличии: %d шт.", *p.Stock)
	}

	return b.String()
}

// renderOrderPrompt — приглашение прислать контакт после выбора товара.
func renderOrderPrompt(p *domain.EffectiveProduct) string {
	return fmt.Sprintf(
		"🛒 Вы выбрали:\n*%s* (%s)\n\n"+
			"Напишите, пожалуйста, свои контактные данные (телефон или Telegram), "+
			"и я передам заявку администратору.",
		p.Name, p.Volume,
	)
}

// renderConfirmation — подтверждение пользователю об успешной заявке.
func renderConfirmation(n *usecase.OrderNotification) string {
	return fmt.Sprintf(
		"✅ Спасибо! Ваша заявка %s на %s (%s) принята.\n"+
			"Цена: %s %s\nКонтакты: %s",
		domain.FormatOrderID(n.Order.ID),
		n.Order.Oil, n.Order.Volume,
		n.Order.Price, n.Order.Currency,
		n.Order.Contact,
	)
}

// renderAdminNotification — текст уведомления админа о новой заявке.
func renderAdminNotification(n *usecase.OrderNotification) string {
	return fmt.Sprintf(
		"📩 Новая заявка %s\n\n"+
			"🛒 Товар: %s (%s)\n"+
			"💰 Цена: %s %s\n"+
			"👤 От: %s\n"+
			"📞 Контакты: %s",
		domain.FormatOrderID(n.Order.ID),
		n.Order.Oil, n.Order.Volume,
		n.Order.Price, n.Order.Currency,
		n.Order.DisplayName(),
		n.Order.Contact,
	)
}

// renderCooldown — отказ по кулдауну с остатком окна в целых секундах.
func renderCooldown(err *usecase.CooldownError) string {
	return fmt.Sprintf("⏳ Подождите %d сек. перед следующей заявкой.", err.RemainingSeconds())
}

// renderOrdersPage — страница заявок, новые сверху.
func renderOrdersPage(page *usecase.OrdersPageRes) string {
	var b strings.Builder

	b.WriteString("📋 Список заявок:\n\n")
	for _, order := range page.Orders {
		fmt.Fprintf(&b, "%s — %s (%s)\n👤 От: %s\n📞 Контакты: %s\n🕘 %s\n\n",
			domain.FormatOrderID(order.ID),
			order.Oil, order.Volume,
			order.DisplayName(),
			order.Contact,
			order.CreatedAt.Format("02.01.2006 15:04"),
		)
	}

	fmt.Fprintf(&b, "Страница %d/%d, всего заявок: %d", page.Page, page.Pages, page.Total)
	return b.String()
}

// renderStats — агрегатная сводка по леджеру.
func renderStats(stats *usecase.StatsRes) string {
	var b strings.Builder

	b.WriteString("📊 Статистика заявок\n\n")
	fmt.Fprintf(&b, "Всего: %d\n", stats.Total)
	fmt.Fprintf(&b, "За 7 дней: %d\n", stats.LastWeek)
	fmt.Fprintf(&b, "Уникальных покупателей: %d\n", stats.DistinctUsers)

	if len(stats.TopProducts) > 0 {
		b.WriteString("\n🏆 Топ товаров:\n")
		for i, p := range stats.TopProducts {
			fmt.Fprintf(&b, "%d. %s (%s) — %d\n", i+1, p.Oil, p.Volume, p.Count)
		}
	}

	return b.String()
}

// renderStock — сводка остатков каталога.
func renderStock(rows []usecase.StockRow) string {
	var b strings.Builder

	b.WriteString("📦 Остатки:\n\n")
	for _, row := range rows {
		p := row.Product
		if p.Stock == nil {
			fmt.Fprintf(&b, "%d. %s (%s) — не ограничено\n", p.ID, p.Name, p.Volume)
		} else {
			fmt.Fprintf(&b, "%d. %s (%s) — %d шт.\n", p.ID, p.Name, p.Volume, *p.Stock)
		}
	}

	return b.String()
}

// renderFindResults — результаты поиска по каталогу.
func renderFindResults(query string, products []domain.Product) string {
	if len(products) == 0 {
		return fmt.Sprintf("🔍 По запросу «%s» ничего не найдено.", query)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🔍 Найдено по запросу «%s»:\n\n", query)
	for _, p := range products {
		fmt.Fprintf(&b, "• %s (%s) — %s %s\n", p.Name, p.Volume, p.Price, p.Currency)
	}
	b.WriteString("\n/catalog — открыть каталог")

	return b.String()
}

// renderNoAccess — единый отказ в доступе с идентификатором вызывающего.
func renderNoAccess(userID int64) string {
	return fmt.Sprintf("⛔ У вас нет доступа к этому разделу.\nВаш ID: %d", userID)
}
