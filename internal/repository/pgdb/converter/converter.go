package converter

import (
	"github.com/oilshop/order-bot/internal/domain"
	"github.com/oilshop/order-bot/internal/usecase"
)

// OrderConverter преобразует сущности Order между domain и моделью PostgreSQL.
type OrderConverter interface {
	ToModel(entity *domain.Order) *OrderModel
	ToEntity(model *OrderModel) *domain.Order
}

// OverrideConverter преобразует сущности Override между domain и моделью PostgreSQL.
type OverrideConverter interface {
	ToEntity(model *OverrideModel) *domain.Override
}

// OutboxEventConverter преобразует сущности OutboxEvent между usecase и моделью PostgreSQL.
type OutboxEventConverter interface {
	ToModel(entity *usecase.OutboxEvent) *OutboxEventModel
	ToEntity(model *OutboxEventModel) *usecase.OutboxEvent
	ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent
}

type OrderConverterImpl struct{}

func NewOrderConverterImpl() *OrderConverterImpl { return &OrderConverterImpl{} }

func (OrderConverterImpl) ToModel(entity *domain.Order) *OrderModel {
	var username *string
	if entity.Username != "" {
		username = &entity.Username
	}

	return &OrderModel{
		ID:        entity.ID,
		CreatedAt: entity.CreatedAt,
		UserID:    entity.UserID,
		Username:  username,
		Oil:       entity.Oil,
		Volume:    entity.Volume,
		Price:     entity.Price,
		Currency:  entity.Currency,
		Contact:   entity.Contact,
	}
}

func (OrderConverterImpl) ToEntity(model *OrderModel) *domain.Order {
	order := &domain.Order{
		ID:        model.ID,
		CreatedAt: model.CreatedAt,
		UserID:    model.UserID,
		Oil:       model.Oil,
		Volume:    model.Volume,
		Price:     model.Price,
		Currency:  model.Currency,
		Contact:   model.Contact,
	}
	if model.Username != nil {
		order.Username = *model.Username
	}

	return order
}

type OverrideConverterImpl struct{}

func NewOverrideConverterImpl() *OverrideConverterImpl { return &OverrideConverterImpl{} }

func (OverrideConverterImpl) ToEntity(model *OverrideModel) *domain.Override {
	return &domain.Override{
		ProductID: model.ProductID,
		Price:     model.Price,
		Stock:     model.Stock,
		UpdatedAt: model.UpdatedAt,
	}
}

type OutboxEventConverterImpl struct{}

func NewOutboxEventConverterImpl() *OutboxEventConverterImpl { return &OutboxEventConverterImpl{} }

func (OutboxEventConverterImpl) ToModel(entity *usecase.OutboxEvent) *OutboxEventModel {
	return &OutboxEventModel{
		ID:          entity.ID,
		EventID:     entity.EventID,
		EventType:   string(entity.EventType),
		OrderID:     entity.OrderID,
		Payload:     entity.Payload,
		Status:      string(entity.Status),
		CreatedAt:   entity.CreatedAt,
		ProcessedAt: entity.ProcessedAt,
	}
}

func (OutboxEventConverterImpl) ToEntity(model *OutboxEventModel) *usecase.OutboxEvent {
	return &usecase.OutboxEvent{
		ID:          model.ID,
		EventID:     model.EventID,
		EventType:   usecase.OutboxEventType(model.EventType),
		OrderID:     model.OrderID,
		Payload:     model.Payload,
		Status:      usecase.OutboxStatus(model.Status),
		CreatedAt:   model.CreatedAt,
		ProcessedAt: model.ProcessedAt,
	}
}

func (c OutboxEventConverterImpl) ToArrEntity(models []*OutboxEventModel) []*usecase.OutboxEvent {
	result := make([]*usecase.OutboxEvent, 0, len(models))
	for _, model := range models {
		result = append(result, c.ToEntity(model))
	}

	return result
}
