package domain

import "time"

// Session — транзиентное состояние диалога одного пользователя.
// SelectedProductID != nil означает, что пользователь находится в оформлении заявки.
type Session struct {
	SelectedProductID *int64
	LastOrderAt       *time.Time
}

// AwaitingContact сообщает, ждёт ли бот контактные данные от пользователя.
func (s *Session) AwaitingContact() bool {
	return s != nil && s.SelectedProductID != nil
}
