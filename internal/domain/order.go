package domain

import (
	"fmt"
	"time"
)

// Order — факт заявки. После вставки в леджер запись не изменяется и не удаляется.
type Order struct {
	ID        int64
	CreatedAt time.Time
	UserID    int64
	Username  string // пустая строка, если у пользователя нет username
	Oil       string
	Volume    string
	Price     string
	Currency  string
	Contact   string
}

func NewOrder(userID int64, username string, product *EffectiveProduct, contact string) *Order {
	return &Order{
		UserID:   userID,
		Username: username,
		Oil:      product.Name,
		Volume:   product.Volume,
		Price:    product.Price,
		Currency: product.Currency,
		Contact:  contact,
	}
}

// FormatOrderID отображает идентификатор заявки фиксированной ширины: #001, #002, #010.
func FormatOrderID(id int64) string {
	return fmt.Sprintf("#%03d", id)
}

// DisplayName возвращает подпись автора заявки для админских уведомлений.
func (o *Order) DisplayName() string {
	if o.Username != "" {
		return "@" + o.Username
	}
	return fmt.Sprintf("ID:%d", o.UserID)
}
