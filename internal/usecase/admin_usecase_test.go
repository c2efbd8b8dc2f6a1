package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/oilshop/order-bot/internal/catalog"
	"github.com/oilshop/order-bot/internal/domain"
	"github.com/oilshop/order-bot/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubArchiver struct {
	requests []*ArchiveReportReq
}

func (s *stubArchiver) Archive(req *ArchiveReportReq) {
	s.requests = append(s.requests, req)
}

type adminFixture struct {
	uc       *AdminUseCase
	orders   *stubOrderRepo
	archiver *stubArchiver
}

func newAdminFixture(t *testing.T, pageSize int) *adminFixture {
	t.Helper()

	cat, err := catalog.Load()
	require.NoError(t, err)

	f := &adminFixture{
		orders:   newStubOrderRepo(),
		archiver: &stubArchiver{},
	}

	overrides := newStubOverrideRepo()
	catalogUC := NewCatalogUC(cat, overrides, nopLogger{})
	f.uc = NewAdminUC(cat, catalogUC, f.orders, overrides, f.archiver, nopLogger{}, pageSize, "VERSION")

	return f
}

func (f *adminFixture) seedOrders(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		_, err := f.orders.Insert(context.Background(), &domain.Order{
			UserID:  int64(100 + i%3),
			Oil:     "BOT384",
			Volume:  "1 Л",
			Price:   "1400",
			Contact: fmt.Sprintf("@user%d", i),
		})
		require.NoError(t, err)
	}
}

func TestOrdersPaginationMiddlePage(t *testing.T) {
	f := newAdminFixture(t, 10)
	f.seedOrders(t, 25)

	res, err := f.uc.Orders(context.Background(), 2)
	require.NoError(t, err)

	assert.Equal(t, int64(25), res.Total)
	assert.Equal(t, 2, res.Page)
	assert.Equal(t, 3, res.Pages)
	assert.True(t, res.HasPrev)
	assert.True(t, res.HasNext)

	// новые сверху: вторая страница — заявки с 15-й по 6-ю
	require.Len(t, res.Orders, 10)
	assert.Equal(t, int64(15), res.Orders[0].ID)
	assert.Equal(t, int64(6), res.Orders[9].ID)
}

func TestOrdersPageClampAndBounds(t *testing.T) {
	f := newAdminFixture(t, 10)
	f.seedOrders(t, 25)
	ctx := context.Background()

	res, err := f.uc.Orders(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Page)
	assert.False(t, res.HasPrev)
	assert.True(t, res.HasNext)

	res, err = f.uc.Orders(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, res.Orders, 5)
	assert.True(t, res.HasPrev)
	assert.False(t, res.HasNext)

	// запрос за последней страницей показывает последнюю
	res, err = f.uc.Orders(ctx, 99)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Page)
	assert.Len(t, res.Orders, 5)
	assert.False(t, res.HasNext)
}

func TestExportCSVArchivesCopy(t *testing.T) {
	f := newAdminFixture(t, 10)
	f.seedOrders(t, 3)

	res, err := f.uc.ExportCSV(context.Background())
	require.NoError(t, err)

	assert.Contains(t, res.FileName, "orders_")
	assert.Contains(t, res.FileName, ".csv")
	assert.Equal(t, "text/csv", res.MimeType)
	assert.NotEmpty(t, res.Data)

	require.Len(t, f.archiver.requests, 1)
	assert.Equal(t, res.FileName, f.archiver.requests[0].FileName)
}

func TestExportXLSXMimeType(t *testing.T) {
	f := newAdminFixture(t, 10)
	f.seedOrders(t, 1)

	res, err := f.uc.ExportXLSX(context.Background())
	require.NoError(t, err)

	assert.Contains(t, res.FileName, ".xlsx")
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", res.MimeType)
}

func TestSetPriceOverrideValidation(t *testing.T) {
	f := newAdminFixture(t, 10)
	ctx := context.Background()

	price := "1500"
	require.NoError(t, f.uc.SetPriceOverride(ctx, 3, &price))

	bad := "дорого"
	assert.ErrorIs(t, f.uc.SetPriceOverride(ctx, 3, &bad), e.ErrInvalidPrice)

	precise := "10.999"
	assert.ErrorIs(t, f.uc.SetPriceOverride(ctx, 3, &precise), e.ErrPricePrecision)

	assert.ErrorIs(t, f.uc.SetPriceOverride(ctx, 999, &price), e.ErrProductNotFound)

	// сброс к каталожной цене
	require.NoError(t, f.uc.SetPriceOverride(ctx, 3, nil))
}

func TestSetPriceOverrideNormalizes(t *testing.T) {
	f := newAdminFixture(t, 10)
	ctx := context.Background()

	price := " 1500.50 "
	require.NoError(t, f.uc.SetPriceOverride(ctx, 3, &price))

	product, err := f.uc.catalogUC.Effective(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, "1500.5", product.Price)
}

func TestSetStockOverrideValidation(t *testing.T) {
	f := newAdminFixture(t, 10)
	ctx := context.Background()

	qty := int64(5)
	require.NoError(t, f.uc.SetStockOverride(ctx, 3, &qty))

	negative := int64(-1)
	assert.ErrorIs(t, f.uc.SetStockOverride(ctx, 3, &negative), e.ErrInvalidStock)

	assert.ErrorIs(t, f.uc.SetStockOverride(ctx, 999, &qty), e.ErrProductNotFound)

	// снятие ограничения
	require.NoError(t, f.uc.SetStockOverride(ctx, 3, nil))
}

func TestStockSummaryCoversWholeCatalog(t *testing.T) {
	f := newAdminFixture(t, 10)
	ctx := context.Background()

	qty := int64(2)
	require.NoError(t, f.uc.SetStockOverride(ctx, 3, &qty))

	rows, err := f.uc.StockSummary(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 7)

	for _, row := range rows {
		if row.Product.ID == 3 {
			require.NotNil(t, row.Product.Stock)
			assert.Equal(t, int64(2), *row.Product.Stock)
		} else {
			assert.Nil(t, row.Product.Stock)
		}
	}
}

func TestStatsUsesSevenDayWindow(t *testing.T) {
	f := newAdminFixture(t, 10)
	now := time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)
	f.uc.now = func() time.Time { return now }

	f.orders.insertedAt = now.AddDate(0, 0, -10)
	f.seedOrders(t, 2)
	f.orders.insertedAt = now.AddDate(0, 0, -1)
	f.seedOrders(t, 3)

	stats, err := f.uc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(5), stats.Total)
	assert.Equal(t, int64(3), stats.LastWeek)
	assert.Equal(t, int64(3), stats.DistinctUsers)
}
