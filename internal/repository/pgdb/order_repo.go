package pgdb

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
	"github.com/oilshop/order-bot/internal/domain"
	"github.com/oilshop/order-bot/internal/repository/pgdb/converter"
	"github.com/oilshop/order-bot/internal/usecase"
	"github.com/oilshop/order-bot/pkg/e"
	"github.com/oilshop/order-bot/pkg/tr"
)

// OrderRepo реализует леджер заявок поверх PostgreSQL.
// Таблица append-only: ни UPDATE, ни DELETE здесь нет.
type OrderRepo struct {
	pool *pgxpool.Pool
	conv converter.OrderConverter
}

func NewOrderRepo(pool *pgxpool.Pool, conv converter.OrderConverter) *OrderRepo {
	return &OrderRepo{
		pool: pool,
		conv: conv,
	}
}

// Insert пишет заявку в рамках транзакции из контекста.
// id и created_at присваивает база, они возвращаются вызывающему.
func (r *OrderRepo) Insert(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	tx, err := tr.TxFromCtx(ctx)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	model := r.conv.ToModel(order)
	query := `
		INSERT INTO orders (user_id, username, oil, volume, price, currency, contact)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at;
	`

	if err := tx.QueryRow(ctx, query,
		model.UserID,
		model.Username,
		model.Oil,
		model.Volume,
		model.Price,
		model.Currency,
		model.Contact,
	).Scan(&model.ID, &model.CreatedAt); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return r.conv.ToEntity(model), nil
}

// Page возвращает страницу заявок (новые сверху) и общее число записей.
func (r *OrderRepo) Page(ctx context.Context, page, size int) ([]domain.Order, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&total); err != nil {
		return nil, 0, e.Wrap(whereami.WhereAmI(), err)
	}

	query := `
		SELECT id, created_at, user_id, username, oil, volume, price, currency, contact
		FROM orders
		ORDER BY id DESC
		OFFSET $1 LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, (page-1)*size, size)
	if err != nil {
		return nil, 0, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	orders, err := r.scanOrders(rows)
	if err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// IsEmpty сообщает, пуст ли леджер. Используется гейтом миграции legacy-снапшота.
func (r *OrderRepo) IsEmpty(ctx context.Context) (bool, error) {
	var exists bool
	if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM orders)`).Scan(&exists); err != nil {
		return false, e.Wrap(whereami.WhereAmI(), err)
	}

	return !exists, nil
}

// ExportAll возвращает весь леджер по возрастанию id — порядок колонок выгрузки.
func (r *OrderRepo) ExportAll(ctx context.Context) ([]domain.Order, error) {
	query := `
		SELECT id, created_at, user_id, username, oil, volume, price, currency, contact
		FROM orders
		ORDER BY id ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	return r.scanOrders(rows)
}

// Stats считает агрегаты одним заходом: всего, за период, уникальные пользователи, топ-5 товаров.
func (r *OrderRepo) Stats(ctx context.Context, since time.Time) (*usecase.StatsRes, error) {
	stats := &usecase.StatsRes{}

	query := `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE created_at >= $1),
			COUNT(DISTINCT user_id)
		FROM orders
	`
	if err := r.pool.QueryRow(ctx, query, since).
		Scan(&stats.Total, &stats.LastWeek, &stats.DistinctUsers); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	topQuery := `
		SELECT oil, volume, COUNT(*) AS cnt
		FROM orders
		GROUP BY oil, volume
		ORDER BY cnt DESC, oil ASC
		LIMIT 5
	`

	rows, err := r.pool.Query(ctx, topQuery)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	for rows.Next() {
		var pc usecase.ProductCount
		if err := rows.Scan(&pc.Oil, &pc.Volume, &pc.Count); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		stats.TopProducts = append(stats.TopProducts, pc)
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return stats, nil
}

func (r *OrderRepo) scanOrders(rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}) ([]domain.Order, error) {
	result := make([]domain.Order, 0)
	for rows.Next() {
		var model converter.OrderModel
		if err := rows.Scan(
			&model.ID, &model.CreatedAt, &model.UserID, &model.Username,
			&model.Oil, &model.Volume, &model.Price, &model.Currency, &model.Contact,
		); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}

		result = append(result, *r.conv.ToEntity(&model))
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}
