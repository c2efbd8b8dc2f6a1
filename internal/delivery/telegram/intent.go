package telegram

import (
	"strconv"
	"strings"

	"github.com/oilshop/order-bot/pkg/e"
)

// intentKind — закрытый набор действий, которые несут callback-кнопки.
type intentKind int

const (
	intentShowOil intentKind = iota
	intentBack
	intentStartOrder
	intentOrdersPage
)

// intent — разобранный payload callback-кнопки.
type intent struct {
	Kind      intentKind
	ProductID int64
	Page      int
}

// parseIntent разбирает payload кнопки. Всё, что не входит в известный набор,
// отклоняется: payload приходит от клиента и доверия не заслуживает.
func parseIntent(data string) (*intent, error) {
	if data == "back" {
		return &intent{Kind: intentBack}, nil
	}

	prefix, rest, found := strings.Cut(data, ":")
	if !found {
		return nil, e.ErrUnknownCallback
	}

	switch prefix {
	case "oil":
		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil || id <= 0 {
			return nil, e.ErrUnknownCallback
		}
		return &intent{Kind: intentShowOil, ProductID: id}, nil

	case "order":
		id, err := strconv.ParseInt(rest, 10, 64)
		if err != nil || id <= 0 {
			return nil, e.ErrUnknownCallback
		}
		return &intent{Kind: intentStartOrder, ProductID: id}, nil

	case "page":
		page, err := strconv.Atoi(rest)
		if err != nil || page < 1 {
			return nil, e.ErrUnknownCallback
		}
		return &intent{Kind: intentOrdersPage, Page: page}, nil
	}

	return nil, e.ErrUnknownCallback
}
