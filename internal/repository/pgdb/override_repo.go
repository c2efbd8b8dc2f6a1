package pgdb

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jimlawless/whereami"
	"github.com/oilshop/order-bot/internal/domain"
	"github.com/oilshop/order-bot/internal/repository/pgdb/converter"
	"github.com/oilshop/order-bot/pkg/e"
)

// OverrideRepo хранит оверрайды цены и остатка, одна запись на товар.
type OverrideRepo struct {
	pool *pgxpool.Pool
	conv converter.OverrideConverter
}

func NewOverrideRepo(pool *pgxpool.Pool, conv converter.OverrideConverter) *OverrideRepo {
	return &OverrideRepo{
		pool: pool,
		conv: conv,
	}
}

// Get возвращает nil, nil при отсутствии оверрайда: это обычный случай, не ошибка.
func (r *OverrideRepo) Get(ctx context.Context, productID int64) (*domain.Override, error) {
	query := `
		SELECT product_id, price, stock, updated_at
		FROM oil_overrides
		WHERE product_id = $1
	`

	var model converter.OverrideModel
	err := r.pool.QueryRow(ctx, query, productID).
		Scan(&model.ProductID, &model.Price, &model.Stock, &model.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return r.conv.ToEntity(&model), nil
}

func (r *OverrideRepo) GetAll(ctx context.Context) (map[int64]domain.Override, error) {
	query := `
		SELECT product_id, price, stock, updated_at
		FROM oil_overrides
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	defer rows.Close()

	result := make(map[int64]domain.Override)
	for rows.Next() {
		var model converter.OverrideModel
		if err := rows.Scan(&model.ProductID, &model.Price, &model.Stock, &model.UpdatedAt); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		result[model.ProductID] = *r.conv.ToEntity(&model)
	}

	if err := rows.Err(); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return result, nil
}

// SetPrice идемпотентно выставляет или сбрасывает цену.
// Запись с двумя NULL-полями не удаляется: отсутствие обоих оверрайдов эквивалентно каталогу.
func (r *OverrideRepo) SetPrice(ctx context.Context, productID int64, price *string) error {
	query := `
		INSERT INTO oil_overrides (product_id, price, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (product_id)
		DO UPDATE SET price = EXCLUDED.price, updated_at = NOW()
	`

	if _, err := r.pool.Exec(ctx, query, productID, price); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

// SetStock идемпотентно выставляет или сбрасывает остаток.
func (r *OverrideRepo) SetStock(ctx context.Context, productID int64, stock *int64) error {
	query := `
		INSERT INTO oil_overrides (product_id, stock, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (product_id)
		DO UPDATE SET stock = EXCLUDED.stock, updated_at = NOW()
	`

	if _, err := r.pool.Exec(ctx, query, productID, stock); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}
