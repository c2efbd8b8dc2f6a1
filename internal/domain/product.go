package domain

import "time"

// Product описывает позицию статического каталога масел.
// Каталог загружается при старте процесса и никогда не мутируется.
type Product struct {
	ID          int64
	Name        string
	Volume      string
	Price       string // десятичная цена строкой, как в каталоге
	Currency    string
	Description string
	Features    []string
	Compatible  string
	Image       string
}

// Override — админская надбавка к каталогу для одного товара.
// Price == nil означает каталожную цену, Stock == nil — неограниченный остаток.
type Override struct {
	ProductID int64
	Price     *string
	Stock     *int64
	UpdatedAt time.Time
}

// EffectiveProduct — товар каталога с применённым оверрайдом.
type EffectiveProduct struct {
	Product
	Stock *int64 // nil — остаток не ограничен
}

// InStock сообщает, можно ли оформить заявку на товар.
// Блокирует оформление только остаток, выставленный ровно в ноль.
func (p *EffectiveProduct) InStock() bool {
	return p.Stock == nil || *p.Stock != 0
}

// Apply накладывает оверрайд на копию товара, не трогая статический каталог.
func (p Product) Apply(ov *Override) *EffectiveProduct {
	eff := &EffectiveProduct{Product: p}
	if ov == nil {
		return eff
	}
	if ov.Price != nil {
		eff.Price = *ov.Price
	}
	eff.Stock = ov.Stock
	return eff
}
