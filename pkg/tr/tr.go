package tr

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/oilshop/order-bot/pkg/e"
)

// TxFromCtx достаёт pgx.Tx, положенную в контекст менеджером транзакций.
// Репозитории леджера и outbox пишут только через неё: вставка заявки и её
// событие фиксируются одним коммитом.
func TxFromCtx(ctx context.Context) (pgx.Tx, error) {
	txAny := ctx.Value("tx")
	tx, ok := txAny.(pgx.Tx)
	if !ok {
		return nil, e.ErrTransactionNotFound
	}
	return tx, nil
}
