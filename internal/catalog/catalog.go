// Package catalog хранит статический каталог магазина.
// Данные вшиты в бинарник и валидируются один раз при старте.
package catalog

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/oilshop/order-bot/internal/domain"
	"github.com/oilshop/order-bot/pkg/e"
	"github.com/shopspring/decimal"
)

//go:embed oils.json
var oilsJSON []byte

// Catalog — неизменяемый набор товаров, доступный по идентификатору.
type Catalog struct {
	byID  map[int64]domain.Product
	order []int64
}

type productRecord struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Volume      string   `json:"volume"`
	Price       string   `json:"price"`
	Currency    string   `json:"currency"`
	Description string   `json:"description"`
	Features    []string `json:"features"`
	Compatible  string   `json:"compatible"`
	Image       string   `json:"image"`
}

// Load разбирает вшитый каталог. Дубликат id или некорректная цена — ошибка старта.
func Load() (*Catalog, error) {
	const op = "catalog.Load"

	var records []productRecord
	if err := json.Unmarshal(oilsJSON, &records); err != nil {
		return nil, e.Wrap(op, err)
	}

	c := &Catalog{byID: make(map[int64]domain.Product, len(records))}
	for _, r := range records {
		if _, ok := c.byID[r.ID]; ok {
			return nil, e.Wrap(op, fmt.Errorf("duplicate product id %d", r.ID))
		}
		if err := ValidatePrice(r.Price); err != nil {
			return nil, e.Wrap(op, fmt.Errorf("product %d: %w", r.ID, err))
		}

		c.byID[r.ID] = domain.Product{
			ID:          r.ID,
			Name:        r.Name,
			Volume:      r.Volume,
			Price:       r.Price,
			Currency:    r.Currency,
			Description: r.Description,
			Features:    r.Features,
			Compatible:  r.Compatible,
			Image:       r.Image,
		}
		c.order = append(c.order, r.ID)
	}

	sort.Slice(c.order, func(i, j int) bool { return c.order[i] < c.order[j] })
	return c, nil
}

// Get возвращает товар по id. Второе значение — false, если товара нет.
func (c *Catalog) Get(id int64) (domain.Product, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// List возвращает товары в порядке возрастания id.
func (c *Catalog) List() []domain.Product {
	out := make([]domain.Product, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}

// Find ищет товары по подстроке в названии, описании и совместимости (без учёта регистра).
func (c *Catalog) Find(query string) []domain.Product {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	var out []domain.Product
	for _, id := range c.order {
		p := c.byID[id]
		haystack := strings.ToLower(p.Name + " " + p.Description + " " + p.Compatible)
		if strings.Contains(haystack, q) {
			out = append(out, p)
		}
	}
	return out
}

// ValidatePrice проверяет, что цена — неотрицательное десятичное число
// с не более чем двумя знаками после запятой.
func ValidatePrice(s string) error {
	if strings.TrimSpace(s) == "" {
		return e.ErrInvalidPrice
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return e.ErrInvalidPrice
	}

	if d.LessThan(decimal.Zero) {
		return e.ErrInvalidPrice
	}

	if d.Exponent() < -2 {
		return e.ErrPricePrecision
	}

	return nil
}

// NormalizePrice приводит цену к каноническому строковому виду ("1400.50" -> "1400.5").
func NormalizePrice(s string) (string, error) {
	if err := ValidatePrice(s); err != nil {
		return "", err
	}

	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return "", e.ErrInvalidPrice
	}

	return d.String(), nil
}
