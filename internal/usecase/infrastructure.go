package usecase

import "context"

// UserMessenger отправляет исходящие сообщения через чат-платформу.
type UserMessenger interface {
	SendOrderConfirmation(ctx context.Context, req *OrderNotification) error
	NotifyAdmin(ctx context.Context, adminID int64, req *OrderNotification) error
}

type MessageProducer interface {
	WriteRawMessage(ctx context.Context, req *WriteRawMessageReq) error
}

// ReportArchiver сохраняет сгенерированные выгрузки во внешнее хранилище.
// Реализация работает в фоне и не влияет на выдачу файла администратору.
type ReportArchiver interface {
	Archive(req *ArchiveReportReq)
}
