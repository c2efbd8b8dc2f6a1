package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/oilshop/order-bot/internal/contact"
	"github.com/oilshop/order-bot/internal/domain"
	"github.com/oilshop/order-bot/pkg/e"
	"github.com/oilshop/order-bot/pkg/logger"
)

// IntakeUseCase реализует воркфлоу оформления заявки:
// выбор товара -> приём контакта -> валидация -> кулдаун -> запись в леджер -> уведомления.
type IntakeUseCase struct {
	catalogUC   *CatalogUseCase
	sessionRepo SessionRepository
	orderRepo   OrderRepository
	outboxRepo  OutboxRepository
	dbPool      transaction.Transactional
	messenger   UserMessenger
	logger      logger.Logger
	adminIDs    []int64
	cooldown    time.Duration
	locks       keyedMutex
	now         func() time.Time
}

func NewIntakeUC(
	catalogUC *CatalogUseCase,
	sessionRepo SessionRepository,
	orderRepo OrderRepository,
	outboxRepo OutboxRepository,
	dbPool transaction.Transactional,
	messenger UserMessenger,
	logger logger.Logger,
	adminIDs []int64,
	cooldown time.Duration,
) *IntakeUseCase {
	return &IntakeUseCase{
		catalogUC:   catalogUC,
		sessionRepo: sessionRepo,
		orderRepo:   orderRepo,
		outboxRepo:  outboxRepo,
		dbPool:      dbPool,
		messenger:   messenger,
		logger:      logger,
		adminIDs:    adminIDs,
		cooldown:    cooldown,
		now:         time.Now,
	}
}

// StartOrder переводит пользователя в ожидание контакта по выбранному товару.
// Товар с остатком ровно ноль блокирует переход, состояние диалога не меняется.
func (u *IntakeUseCase) StartOrder(ctx context.Context, userID, productID int64) (*domain.EffectiveProduct, error) {
	const op = "IntakeUseCase.StartOrder"

	product, err := u.catalogUC.Effective(ctx, productID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if !product.InStock() {
		return nil, e.Wrap(op, e.ErrOutOfStock)
	}

	if err := u.sessionRepo.SetSelectedProduct(ctx, userID, productID); err != nil {
		return nil, e.Wrap(op, err)
	}

	return product, nil
}

// SubmitContact завершает оформление заявки: ровно одна вставка в леджер на успешный вызов.
// Отказы (валидация, кулдаун) оставляют пользователя в ожидании контакта.
// Сбой вставки тоже: подтверждение не отправляется, пользователь может прислать контакт повторно.
func (u *IntakeUseCase) SubmitContact(ctx context.Context, req *SubmitContactReq) (*SubmitContactRes, error) {
	const op = "IntakeUseCase.SubmitContact"

	// Проверка-затем-действие для одного пользователя сериализуется ключевым мьютексом.
	unlock := u.locks.Lock(req.UserID)
	defer unlock()

	sess, err := u.sessionRepo.Get(ctx, req.UserID)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	if !sess.AwaitingContact() {
		return nil, e.ErrNoActiveOrder
	}

	if sess.LastOrderAt != nil {
		elapsed := u.now().Sub(*sess.LastOrderAt)
		if elapsed < u.cooldown {
			return nil, &CooldownError{Remaining: u.cooldown - elapsed}
		}
	}

	normalized, err := u.normalizeContact(req)
	if err != nil {
		return nil, err
	}

	// Товар перепроверяется на момент отправки: оверрайд или каталог могли измениться.
	product, err := u.catalogUC.Effective(ctx, *sess.SelectedProductID)
	if err != nil {
		if errors.Is(err, e.ErrProductNotFound) {
			if _, clearErr := u.sessionRepo.ClearSelectedProduct(ctx, req.UserID); clearErr != nil {
				u.logger.Warnf("failed to clear session for user %d: %v", req.UserID, clearErr)
			}
		}
		return nil, e.Wrap(op, err)
	}

	order, err := u.persistOrder(ctx, domain.NewOrder(req.UserID, req.Username, product, normalized))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	notification := &OrderNotification{Order: order}
	if err := u.messenger.SendOrderConfirmation(ctx, notification); err != nil {
		u.logger.Warnf("order %s: confirmation delivery failed: %v", domain.FormatOrderID(order.ID), err)
	}

	// Уведомления админам индивидуальны: сбой одного не прерывает остальных.
	for _, adminID := range u.adminIDs {
		if err := u.messenger.NotifyAdmin(ctx, adminID, notification); err != nil {
			u.logger.Warnf("order %s: admin %d notification failed: %v", domain.FormatOrderID(order.ID), adminID, err)
		}
	}

	if err := u.sessionRepo.SetLastOrderAt(ctx, req.UserID, u.now()); err != nil {
		u.logger.Warnf("failed to record cooldown for user %d: %v", req.UserID, err)
	}

	if _, err := u.sessionRepo.ClearSelectedProduct(ctx, req.UserID); err != nil {
		u.logger.Warnf("failed to clear session for user %d: %v", req.UserID, err)
	}

	return &SubmitContactRes{Order: order, Product: product}, nil
}

// Cancel снимает текущее оформление. Повторная отмена — no-op, второй результат false.
func (u *IntakeUseCase) Cancel(ctx context.Context, userID int64) (bool, error) {
	const op = "IntakeUseCase.Cancel"

	cleared, err := u.sessionRepo.ClearSelectedProduct(ctx, userID)
	if err != nil {
		return false, e.Wrap(op, err)
	}

	return cleared, nil
}

// persistOrder пишет заявку и outbox-событие в одной транзакции.
func (u *IntakeUseCase) persistOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	const op = "IntakeUseCase.persistOrder"

	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, u.dbPool)
	if err != nil {
		return nil, e.Wrap(op, err)
	}
	defer func() {
		if err != nil && tx.IsActive() {
			tx.Rollback(ctx)
		}
	}()
	ctx = context.WithValue(ctx, "tx", tx.Transaction())

	inserted, err := u.orderRepo.Insert(ctx, order)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	event, err := NewOrderCreatedEvent(uuid.NewString(), inserted)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	if _, err = u.outboxRepo.Create(ctx, event); err != nil {
		return nil, e.Wrap(op, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return nil, e.Wrap(op, err)
	}

	return inserted, nil
}

// normalizeContact пропускает структурный телефон без текстовой валидации.
func (u *IntakeUseCase) normalizeContact(req *SubmitContactReq) (string, error) {
	if req.FromContactShare {
		trimmed := strings.TrimSpace(req.Text)
		if trimmed == "" {
			return "", e.ErrEmptyContact
		}
		return trimmed, nil
	}

	return contact.Validate(req.Text)
}
