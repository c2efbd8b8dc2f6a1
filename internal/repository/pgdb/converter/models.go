package converter

import "time"

// OrderModel представляет запись таблицы orders в PostgreSQL.
type OrderModel struct {
	ID        int64     `db:"id"`
	CreatedAt time.Time `db:"created_at"`
	UserID    int64     `db:"user_id"`
	Username  *string   `db:"username"`
	Oil       string    `db:"oil"`
	Volume    string    `db:"volume"`
	Price     string    `db:"price"`
	Currency  string    `db:"currency"`
	Contact   string    `db:"contact"`
}

// OverrideModel представляет запись таблицы oil_overrides в PostgreSQL.
type OverrideModel struct {
	ProductID int64     `db:"product_id"`
	Price     *string   `db:"price"`
	Stock     *int64    `db:"stock"`
	UpdatedAt time.Time `db:"updated_at"`
}

// OutboxEventModel представляет запись таблицы outbox_events в PostgreSQL.
type OutboxEventModel struct {
	ID          int64      `db:"id"`
	EventID     string     `db:"event_id"`
	EventType   string     `db:"event_type"`
	OrderID     int64      `db:"order_id"`
	Payload     []byte     `db:"payload"`
	Status      string     `db:"status"`
	CreatedAt   time.Time  `db:"created_at"`
	ProcessedAt *time.Time `db:"processed_at"`
}
