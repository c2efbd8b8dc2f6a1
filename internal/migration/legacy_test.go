package migration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oilshop/order-bot/internal/catalog"
	"github.com/oilshop/order-bot/internal/domain"
	"github.com/oilshop/order-bot/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTx struct {
	pgx.Tx
}

func (fakeTx) Commit(context.Context) error   { return nil }
func (fakeTx) Rollback(context.Context) error { return nil }

type fakeDB struct{}

func (fakeDB) Begin(context.Context) (pgx.Tx, error) { return fakeTx{}, nil }

func (fakeDB) BeginTx(context.Context, pgx.TxOptions) (pgx.Tx, error) { return fakeTx{}, nil }

type ledgerStub struct {
	orders []domain.Order
}

func (l *ledgerStub) Insert(_ context.Context, order *domain.Order) (*domain.Order, error) {
	inserted := *order
	inserted.ID = int64(len(l.orders) + 1)
	l.orders = append(l.orders, inserted)
	return &inserted, nil
}

func (l *ledgerStub) Page(context.Context, int, int) ([]domain.Order, int64, error) {
	return nil, 0, nil
}

func (l *ledgerStub) IsEmpty(context.Context) (bool, error) { return len(l.orders) == 0, nil }

func (l *ledgerStub) ExportAll(context.Context) ([]domain.Order, error) { return l.orders, nil }

func (l *ledgerStub) Stats(context.Context, time.Time) (*usecase.StatsRes, error) {
	return &usecase.StatsRes{}, nil
}

type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)        {}
func (nopLogger) Infof(string, ...any)         {}
func (nopLogger) Warnf(string, ...any)         {}
func (nopLogger) Errorf(error, string, ...any) {}

func newMigrator(t *testing.T, ledger *ledgerStub) *Migrator {
	t.Helper()

	cat, err := catalog.Load()
	require.NoError(t, err)

	return NewMigrator(cat, ledger, fakeDB{}, nopLogger{})
}

func writeSnapshot(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "orders.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const validSnapshot = `[
  {"user_id": 100, "username": "validuser1", "oil": "Масло редукторное BYD BOT384", "volume": "1 Л", "contact": "@validuser1", "id": "#001"},
  {"user_id": 200, "username": null, "oil": "Неизвестное масло", "volume": "1 Л", "contact": "+79995593917", "id": "#002"}
]`

func TestMigrateCopiesLegacyRecords(t *testing.T) {
	ledger := &ledgerStub{}
	m := newMigrator(t, ledger)

	require.NoError(t, m.Run(context.Background(), writeSnapshot(t, validSnapshot)))
	require.Len(t, ledger.orders, 2)

	first := ledger.orders[0]
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, "validuser1", first.Username)
	// цена подтянута из каталога по совпадению названия и объёма
	assert.Equal(t, "1400", first.Price)
	assert.Equal(t, "₽", first.Currency)

	second := ledger.orders[1]
	assert.Equal(t, "", second.Username)
	// товара нет в каталоге — цена остаётся пустой
	assert.Equal(t, "", second.Price)
	assert.Equal(t, "₽", second.Currency)
}

func TestMigrateIsIdempotent(t *testing.T) {
	ledger := &ledgerStub{}
	m := newMigrator(t, ledger)
	path := writeSnapshot(t, validSnapshot)

	require.NoError(t, m.Run(context.Background(), path))
	require.NoError(t, m.Run(context.Background(), path))

	assert.Len(t, ledger.orders, 2)
}

func TestMigrateSkipsWhenLedgerNotEmpty(t *testing.T) {
	ledger := &ledgerStub{orders: []domain.Order{{ID: 1}}}
	m := newMigrator(t, ledger)

	require.NoError(t, m.Run(context.Background(), writeSnapshot(t, validSnapshot)))
	assert.Len(t, ledger.orders, 1)
}

func TestMigrateNoSnapshotIsNoop(t *testing.T) {
	ledger := &ledgerStub{}
	m := newMigrator(t, ledger)

	path := filepath.Join(t.TempDir(), "orders.json")
	require.NoError(t, m.Run(context.Background(), path))
	assert.Empty(t, ledger.orders)
}

func TestMigrateSkipsMalformedRecords(t *testing.T) {
	ledger := &ledgerStub{}
	m := newMigrator(t, ledger)

	snapshot := `[
	  {"user_id": 100, "oil": "BOT384", "volume": "1 Л", "contact": "@validuser1"},
	  "не объект",
	  {"user_id": 0, "oil": "BOT384", "volume": "1 Л", "contact": "@someuser"},
	  {"user_id": 300, "oil": "", "volume": "1 Л", "contact": "@someuser"},
	  {"user_id": 400, "oil": "BOT384", "volume": "1 Л", "contact": "@validuser2"}
	]`

	require.NoError(t, m.Run(context.Background(), writeSnapshot(t, snapshot)))

	require.Len(t, ledger.orders, 2)
	assert.Equal(t, int64(100), ledger.orders[0].UserID)
	assert.Equal(t, int64(400), ledger.orders[1].UserID)
}

func TestMigrateRejectsNonArraySnapshot(t *testing.T) {
	ledger := &ledgerStub{}
	m := newMigrator(t, ledger)

	err := m.Run(context.Background(), writeSnapshot(t, `{"orders": []}`))
	assert.Error(t, err)
}
