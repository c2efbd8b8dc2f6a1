package usecase

import (
	"context"
	"time"

	"github.com/oilshop/order-bot/internal/domain"
)

// OrderRepository — леджер заявок: append-only вставка и постраничное чтение.
type OrderRepository interface {
	// Insert выполняется в транзакции из контекста и возвращает заявку с присвоенным id.
	Insert(ctx context.Context, order *domain.Order) (*domain.Order, error)
	Page(ctx context.Context, page, size int) ([]domain.Order, int64, error)
	IsEmpty(ctx context.Context) (bool, error)
	ExportAll(ctx context.Context) ([]domain.Order, error)
	Stats(ctx context.Context, since time.Time) (*StatsRes, error)
}

// OverrideRepository хранит админские оверрайды цены и остатка.
type OverrideRepository interface {
	// Get возвращает nil, nil, если оверрайда для товара нет.
	Get(ctx context.Context, productID int64) (*domain.Override, error)
	GetAll(ctx context.Context) (map[int64]domain.Override, error)
	SetPrice(ctx context.Context, productID int64, price *string) error
	SetStock(ctx context.Context, productID int64, stock *int64) error
}

// SessionRepository — состояние диалогов, ключ — идентификатор пользователя.
type SessionRepository interface {
	// Get всегда возвращает ненулевую сессию, даже если для пользователя ничего не хранится.
	Get(ctx context.Context, userID int64) (*domain.Session, error)
	SetSelectedProduct(ctx context.Context, userID, productID int64) error
	// ClearSelectedProduct сообщает, было ли что отменять.
	ClearSelectedProduct(ctx context.Context, userID int64) (bool, error)
	SetLastOrderAt(ctx context.Context, userID int64, at time.Time) error
}

type OutboxRepository interface {
	Create(ctx context.Context, event *OutboxEvent) (*OutboxEvent, error)
	GetAndMarkAsProcessing(ctx context.Context, limit int) ([]*OutboxEvent, error)
	MarkAsProcessed(ctx context.Context, id int64) error
	// MarkAsPending возвращает событие в очередь после временного сбоя доставки.
	MarkAsPending(ctx context.Context, id int64) error
	MarkAsFailed(ctx context.Context, id int64) error
	// ReclaimStale возвращает в pending события, зависшие в processing дольше olderThan.
	ReclaimStale(ctx context.Context, olderThan time.Duration) (int64, error)
}
