package telegram

import (
	"testing"

	"github.com/oilshop/order-bot/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIntentKnownPayloads(t *testing.T) {
	in, err := parseIntent("oil:3")
	require.NoError(t, err)
	assert.Equal(t, intentShowOil, in.Kind)
	assert.Equal(t, int64(3), in.ProductID)

	in, err = parseIntent("back")
	require.NoError(t, err)
	assert.Equal(t, intentBack, in.Kind)

	in, err = parseIntent("order:7")
	require.NoError(t, err)
	assert.Equal(t, intentStartOrder, in.Kind)
	assert.Equal(t, int64(7), in.ProductID)

	in, err = parseIntent("page:2")
	require.NoError(t, err)
	assert.Equal(t, intentOrdersPage, in.Kind)
	assert.Equal(t, 2, in.Page)
}

func TestParseIntentRejectsUnknownPayloads(t *testing.T) {
	cases := []string{
		"",
		"oil",
		"oil:",
		"oil:abc",
		"oil:-1",
		"order:0",
		"page:0",
		"page:-3",
		"drop:1",
		"back:1",
		"oil:3:extra",
	}

	for _, data := range cases {
		_, err := parseIntent(data)
		assert.ErrorIs(t, err, e.ErrUnknownCallback, "payload %q", data)
	}
}
