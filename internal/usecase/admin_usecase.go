package usecase

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/oilshop/order-bot/internal/catalog"
	"github.com/oilshop/order-bot/internal/export"
	"github.com/oilshop/order-bot/pkg/e"
	"github.com/oilshop/order-bot/pkg/logger"
)

// AdminUseCase — отчётность и лёгкое управление каталогом для администраторов.
type AdminUseCase struct {
	catalog      *catalog.Catalog
	catalogUC    *CatalogUseCase
	orderRepo    OrderRepository
	overrideRepo OverrideRepository
	archiver     ReportArchiver
	logger       logger.Logger
	pageSize     int
	versionFile  string
	now          func() time.Time
}

func NewAdminUC(
	cat *catalog.Catalog,
	catalogUC *CatalogUseCase,
	orderRepo OrderRepository,
	overrideRepo OverrideRepository,
	archiver ReportArchiver,
	logger logger.Logger,
	pageSize int,
	versionFile string,
) *AdminUseCase {
	return &AdminUseCase{
		catalog:      cat,
		catalogUC:    catalogUC,
		orderRepo:    orderRepo,
		overrideRepo: overrideRepo,
		archiver:     archiver,
		logger:       logger,
		pageSize:     pageSize,
		versionFile:  versionFile,
		now:          time.Now,
	}
}

// Orders возвращает страницу заявок, новые сверху. Номер страницы с единицы.
func (a *AdminUseCase) Orders(ctx context.Context, page int) (*OrdersPageRes, error) {
	const op = "AdminUseCase.Orders"

	if page < 1 {
		page = 1
	}

	orders, total, err := a.orderRepo.Page(ctx, page, a.pageSize)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	pages := int((total + int64(a.pageSize) - 1) / int64(a.pageSize))

	// номер за последней страницей прижимается к ней
	if pages > 0 && page > pages {
		page = pages
		orders, total, err = a.orderRepo.Page(ctx, page, a.pageSize)
		if err != nil {
			return nil, e.Wrap(op, err)
		}
	}

	return &OrdersPageRes{
		Orders:  orders,
		Page:    page,
		Pages:   pages,
		Total:   total,
		HasPrev: page > 1,
		HasNext: page < pages,
	}, nil
}

// ExportCSV собирает полную выгрузку леджера в CSV с BOM.
func (a *AdminUseCase) ExportCSV(ctx context.Context) (*ExportRes, error) {
	const op = "AdminUseCase.ExportCSV"

	orders, err := a.orderRepo.ExportAll(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	data, err := export.WriteCSV(orders)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return a.finishExport("csv", "text/csv", data), nil
}

// ExportXLSX собирает полную выгрузку леджера в книгу Excel.
func (a *AdminUseCase) ExportXLSX(ctx context.Context) (*ExportRes, error) {
	const op = "AdminUseCase.ExportXLSX"

	orders, err := a.orderRepo.ExportAll(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	data, err := export.WriteXLSX(orders)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return a.finishExport("xlsx", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data), nil
}

// finishExport именует файл и отдаёт копию в фоновый архив.
func (a *AdminUseCase) finishExport(ext, mime string, data []byte) *ExportRes {
	res := &ExportRes{
		FileName: fmt.Sprintf("orders_%s_%s.%s", a.now().Format("20060102_150405"), uuid.NewString()[:8], ext),
		MimeType: mime,
		Data:     data,
	}

	if a.archiver != nil {
		a.archiver.Archive(&ArchiveReportReq{
			FileName: res.FileName,
			MimeType: res.MimeType,
			Data:     res.Data,
		})
	}

	return res
}

// Stats — агрегатный снимок без кэширования.
func (a *AdminUseCase) Stats(ctx context.Context) (*StatsRes, error) {
	const op = "AdminUseCase.Stats"

	stats, err := a.orderRepo.Stats(ctx, a.now().AddDate(0, 0, -7))
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return stats, nil
}

// SetPriceOverride выставляет цену товара. price == nil возвращает каталожную цену.
func (a *AdminUseCase) SetPriceOverride(ctx context.Context, productID int64, price *string) error {
	const op = "AdminUseCase.SetPriceOverride"

	if _, ok := a.catalog.Get(productID); !ok {
		return e.ErrProductNotFound
	}

	if price != nil {
		normalized, err := catalog.NormalizePrice(*price)
		if err != nil {
			return err
		}
		price = &normalized
	}

	if err := a.overrideRepo.SetPrice(ctx, productID, price); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

// SetStockOverride выставляет остаток. stock == nil означает «не ограничен».
func (a *AdminUseCase) SetStockOverride(ctx context.Context, productID int64, stock *int64) error {
	const op = "AdminUseCase.SetStockOverride"

	if _, ok := a.catalog.Get(productID); !ok {
		return e.ErrProductNotFound
	}

	if stock != nil && *stock < 0 {
		return e.ErrInvalidStock
	}

	if err := a.overrideRepo.SetStock(ctx, productID, stock); err != nil {
		return e.Wrap(op, err)
	}

	return nil
}

// StockSummary — остатки всего каталога с учётом оверрайдов.
func (a *AdminUseCase) StockSummary(ctx context.Context) ([]StockRow, error) {
	const op = "AdminUseCase.StockSummary"

	products, err := a.catalogUC.EffectiveAll(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	rows := make([]StockRow, 0, len(products))
	for _, p := range products {
		rows = append(rows, StockRow{Product: p})
	}

	return rows, nil
}

// Version читает текстовый маркер версии. Файл пишется деплоем, ботом — никогда.
func (a *AdminUseCase) Version() (string, error) {
	data, err := os.ReadFile(a.versionFile)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(data)), nil
}
