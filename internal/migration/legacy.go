// Package migration — разовый перенос заявок из файлового снапшота orders.json в леджер.
// Файл остаётся от предыдущей версии бота и после переноса больше не пишется.
package migration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	transaction "github.com/avito-tech/go-transaction-manager/drivers/pgxv5/v2"
	"github.com/jackc/pgx/v5"
	"github.com/oilshop/order-bot/internal/catalog"
	"github.com/oilshop/order-bot/internal/domain"
	"github.com/oilshop/order-bot/internal/usecase"
	"github.com/oilshop/order-bot/pkg/e"
	"github.com/oilshop/order-bot/pkg/logger"
)

// legacyOrder — запись старого формата. Поле id ("#001") игнорируется:
// идентификаторы выдаёт леджер, порядок файла сохраняется.
type legacyOrder struct {
	UserID   int64   `json:"user_id"`
	Username *string `json:"username"`
	Oil      string  `json:"oil"`
	Volume   string  `json:"volume"`
	Contact  string  `json:"contact"`
}

type Migrator struct {
	catalog   *catalog.Catalog
	orderRepo usecase.OrderRepository
	dbPool    transaction.Transactional
	logger    logger.Logger
}

func NewMigrator(
	catalog *catalog.Catalog,
	orderRepo usecase.OrderRepository,
	dbPool transaction.Transactional,
	logger logger.Logger,
) *Migrator {
	return &Migrator{
		catalog:   catalog,
		orderRepo: orderRepo,
		dbPool:    dbPool,
		logger:    logger,
	}
}

// Run переносит снапшот, только если леджер пуст и файл существует.
// Повторный запуск видит непустой леджер и ничего не делает.
// Битые записи пропускаются с предупреждением, успешные не откатываются.
func (m *Migrator) Run(ctx context.Context, path string) error {
	const op = "Migrator.Run"

	empty, err := m.orderRepo.IsEmpty(ctx)
	if err != nil {
		return e.Wrap(op, err)
	}
	if !empty {
		m.logger.Debugf("ledger is not empty, skipping legacy migration")
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			m.logger.Debugf("no legacy snapshot at %s, nothing to migrate", path)
			return nil
		}
		return e.Wrap(op, err)
	}

	// Элементы разбираются по одному: одна битая запись не губит весь перенос.
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return e.Wrap(op, fmt.Errorf("legacy snapshot %s is not a JSON array: %w", path, err))
	}

	migrated := 0
	for i, item := range raw {
		var rec legacyOrder
		if err := json.Unmarshal(item, &rec); err != nil {
			m.logger.Warnf("legacy record %d: malformed, skipped: %v", i, err)
			continue
		}
		if rec.UserID == 0 || rec.Oil == "" || rec.Contact == "" {
			m.logger.Warnf("legacy record %d: missing required fields, skipped", i)
			continue
		}

		if err := m.insertOne(ctx, &rec); err != nil {
			m.logger.Warnf("legacy record %d: insert failed, skipped: %v", i, err)
			continue
		}
		migrated++
	}

	m.logger.Infof("legacy migration finished: %d of %d records migrated from %s",
		migrated, len(raw), path)

	return nil
}

// insertOne пишет одну запись в собственной транзакции.
// Outbox-событие не создаётся: перенос не порождает новых заявок.
func (m *Migrator) insertOne(ctx context.Context, rec *legacyOrder) error {
	order := &domain.Order{
		UserID:   rec.UserID,
		Oil:      rec.Oil,
		Volume:   rec.Volume,
		Contact:  rec.Contact,
		Currency: "₽",
	}
	if rec.Username != nil {
		order.Username = *rec.Username
	}

	// Старый формат не хранил цену: берётся текущая каталожная, если товар ещё в каталоге.
	if price, currency, ok := m.lookupPrice(rec.Oil, rec.Volume); ok {
		order.Price = price
		order.Currency = currency
	}

	ctx, tx, err := transaction.NewTransaction(ctx, pgx.TxOptions{}, m.dbPool)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil && tx.IsActive() {
			tx.Rollback(ctx)
		}
	}()
	ctx = context.WithValue(ctx, "tx", tx.Transaction())

	if _, err = m.orderRepo.Insert(ctx, order); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (m *Migrator) lookupPrice(oil, volume string) (string, string, bool) {
	for _, p := range m.catalog.List() {
		if p.Name == oil && p.Volume == volume {
			return p.Price, p.Currency, true
		}
	}
	return "", "", false
}
