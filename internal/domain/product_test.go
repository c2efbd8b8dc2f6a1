package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func ptrInt64(v int64) *int64 { return &v }

func ptrString(s string) *string { return &s }

func TestApplyWithoutOverride(t *testing.T) {
	p := Product{ID: 3, Name: "BOT384", Price: "1400", Currency: "₽"}

	eff := p.Apply(nil)

	assert.Equal(t, "1400", eff.Price)
	assert.Nil(t, eff.Stock)
	assert.True(t, eff.InStock())
}

func TestApplyOverlaysPriceAndStock(t *testing.T) {
	p := Product{ID: 3, Name: "BOT384", Price: "1400", Currency: "₽"}

	eff := p.Apply(&Override{ProductID: 3, Price: ptrString("1500"), Stock: ptrInt64(2)})

	assert.Equal(t, "1500", eff.Price)
	assert.Equal(t, int64(2), *eff.Stock)
	// исходный товар не изменился
	assert.Equal(t, "1400", p.Price)
}

func TestInStockBlocksOnlyZero(t *testing.T) {
	p := Product{ID: 1}

	assert.True(t, p.Apply(nil).InStock())
	assert.True(t, p.Apply(&Override{Stock: ptrInt64(5)}).InStock())
	assert.False(t, p.Apply(&Override{Stock: ptrInt64(0)}).InStock())
}

func TestFormatOrderID(t *testing.T) {
	assert.Equal(t, "#001", FormatOrderID(1))
	assert.Equal(t, "#010", FormatOrderID(10))
	assert.Equal(t, "#1000", FormatOrderID(1000))
}

func TestDisplayName(t *testing.T) {
	withName := &Order{UserID: 42, Username: "validuser1"}
	assert.Equal(t, "@validuser1", withName.DisplayName())

	anonymous := &Order{UserID: 42}
	assert.Equal(t, "ID:42", anonymous.DisplayName())
}
