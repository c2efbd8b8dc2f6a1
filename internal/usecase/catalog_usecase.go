package usecase

import (
	"context"
	"strings"

	"github.com/oilshop/order-bot/internal/catalog"
	"github.com/oilshop/order-bot/internal/domain"
	"github.com/oilshop/order-bot/pkg/e"
	"github.com/oilshop/order-bot/pkg/logger"
)

// CatalogUseCase отвечает за чтение каталога с учётом оверрайдов.
type CatalogUseCase struct {
	catalog      *catalog.Catalog
	overrideRepo OverrideRepository
	logger       logger.Logger
}

func NewCatalogUC(cat *catalog.Catalog, overrideRepo OverrideRepository, logger logger.Logger) *CatalogUseCase {
	return &CatalogUseCase{
		catalog:      cat,
		overrideRepo: overrideRepo,
		logger:       logger,
	}
}

// List возвращает статический каталог без оверрайдов — для списка-меню достаточно названий.
func (c *CatalogUseCase) List() []domain.Product {
	return c.catalog.List()
}

// Find ищет товары по подстроке. Пустой запрос — ошибка ввода, пустой результат — нет.
func (c *CatalogUseCase) Find(query string) ([]domain.Product, error) {
	if strings.TrimSpace(query) == "" {
		return nil, e.ErrEmptySearch
	}
	return c.catalog.Find(query), nil
}

// Effective возвращает товар с применённым оверрайдом цены и остатка.
// Ошибка чтения оверрайда деградирует до каталожных значений: карточка важнее надбавки.
func (c *CatalogUseCase) Effective(ctx context.Context, id int64) (*domain.EffectiveProduct, error) {
	const op = "CatalogUseCase.Effective"

	product, ok := c.catalog.Get(id)
	if !ok {
		return nil, e.ErrProductNotFound
	}

	override, err := c.overrideRepo.Get(ctx, id)
	if err != nil {
		c.logger.Warnf("override lookup failed for product %d: %v", id, e.Wrap(op, err))
		override = nil
	}

	return product.Apply(override), nil
}

// EffectiveAll возвращает весь каталог с оверрайдами — для сводки остатков.
func (c *CatalogUseCase) EffectiveAll(ctx context.Context) ([]domain.EffectiveProduct, error) {
	const op = "CatalogUseCase.EffectiveAll"

	overrides, err := c.overrideRepo.GetAll(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	products := c.catalog.List()
	out := make([]domain.EffectiveProduct, 0, len(products))
	for _, p := range products {
		if ov, ok := overrides[p.ID]; ok {
			out = append(out, *p.Apply(&ov))
		} else {
			out = append(out, *p.Apply(nil))
		}
	}

	return out, nil
}
