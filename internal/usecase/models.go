package usecase

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/oilshop/order-bot/internal/domain"
)

// INTAKE USECASE

// SubmitContactReq — контактные данные, полученные от пользователя в ожидании заявки.
type SubmitContactReq struct {
	UserID   int64
	Username string
	Text     string
	// FromContactShare — телефон пришёл структурной «поделиться контактом»,
	// текстовая валидация к нему не применяется.
	FromContactShare bool
}

// SubmitContactRes — успешно оформленная заявка.
type SubmitContactRes struct {
	Order   *domain.Order
	Product *domain.EffectiveProduct
}

// OrderNotification — данные для подтверждения пользователю и уведомлений админам.
type OrderNotification struct {
	Order *domain.Order
}

// CooldownError возвращается, пока не истёк интервал между заявками одного пользователя.
type CooldownError struct {
	Remaining time.Duration
}

func (c *CooldownError) Error() string {
	return fmt.Sprintf("cooldown active, retry in %d seconds", c.RemainingSeconds())
}

// RemainingSeconds — остаток окна в целых секундах, округление вниз.
func (c *CooldownError) RemainingSeconds() int {
	return int(c.Remaining / time.Second)
}

// ADMIN USECASE

// OrdersPageRes — страница заявок, новые сверху.
type OrdersPageRes struct {
	Orders  []domain.Order
	Page    int
	Pages   int
	Total   int64
	HasPrev bool
	HasNext bool
}

// ExportRes — сгенерированный файл выгрузки.
type ExportRes struct {
	FileName string
	MimeType string
	Data     []byte
}

// StatsRes — агрегатный снимок леджера, считается заново на каждый запрос.
type StatsRes struct {
	Total         int64
	LastWeek      int64
	DistinctUsers int64
	TopProducts   []ProductCount
}

// ProductCount — товар и число заявок на него.
type ProductCount struct {
	Oil    string
	Volume string
	Count  int64
}

// StockRow — строка сводки остатков для /stock.
type StockRow struct {
	Product domain.EffectiveProduct
}

// OUTBOX

type OutboxStatus string

const (
	Pending    OutboxStatus = "pending"
	Processing OutboxStatus = "processing"
	Processed  OutboxStatus = "processed"
	Failed     OutboxStatus = "failed"
)

type OutboxEventType string

const OrderCreated OutboxEventType = "order.created"

// OutboxEvent — событие, публикуемое в Kafka через транзакционный outbox.
type OutboxEvent struct {
	ID          int64
	EventID     string
	EventType   OutboxEventType
	OrderID     int64
	Payload     []byte
	Status      OutboxStatus
	CreatedAt   time.Time
	ProcessedAt *time.Time
}

type WriteRawMessageReq struct {
	OrderID int64
	Payload []byte
}

func NewWriteRawMessageReq(orderID int64, payload []byte) *WriteRawMessageReq {
	return &WriteRawMessageReq{
		OrderID: orderID,
		Payload: payload,
	}
}

// ArchiveReportReq — запрос на фоновое сохранение выгрузки в объектное хранилище.
type ArchiveReportReq struct {
	FileName string
	MimeType string
	Data     []byte
}

// orderCreatedPayload — JSON-тело события order.created.
type orderCreatedPayload struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	OrderID   int64     `json:"order_id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username,omitempty"`
	Oil       string    `json:"oil"`
	Volume    string    `json:"volume"`
	Price     string    `json:"price"`
	Currency  string    `json:"currency"`
	Contact   string    `json:"contact"`
	CreatedAt time.Time `json:"created_at"`
}

// NewOrderCreatedEvent собирает outbox-событие по вставленной заявке.
func NewOrderCreatedEvent(eventID string, order *domain.Order) (*OutboxEvent, error) {
	payload, err := json.Marshal(orderCreatedPayload{
		EventID:   eventID,
		EventType: string(OrderCreated),
		OrderID:   order.ID,
		UserID:    order.UserID,
		Username:  order.Username,
		Oil:       order.Oil,
		Volume:    order.Volume,
		Price:     order.Price,
		Currency:  order.Currency,
		Contact:   order.Contact,
		CreatedAt: order.CreatedAt,
	})
	if err != nil {
		return nil, err
	}

	return &OutboxEvent{
		EventID:   eventID,
		EventType: OrderCreated,
		OrderID:   order.ID,
		Payload:   payload,
		Status:    Pending,
		CreatedAt: order.CreatedAt,
	}, nil
}
