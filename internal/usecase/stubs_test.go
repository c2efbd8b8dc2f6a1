package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oilshop/order-bot/internal/domain"
)

// fakeTx подменяет транзакцию БД: репозитории-заглушки в неё не пишут.
type fakeTx struct {
	pgx.Tx
}

func (fakeTx) Commit(context.Context) error   { return nil }
func (fakeTx) Rollback(context.Context) error { return nil }

type fakeDB struct{}

func (fakeDB) Begin(context.Context) (pgx.Tx, error) { return fakeTx{}, nil }

func (fakeDB) BeginTx(context.Context, pgx.TxOptions) (pgx.Tx, error) { return fakeTx{}, nil }

type stubSessionRepo struct {
	sessions map[int64]*domain.Session
}

func newStubSessionRepo() *stubSessionRepo {
	return &stubSessionRepo{sessions: make(map[int64]*domain.Session)}
}

func (s *stubSessionRepo) Get(_ context.Context, userID int64) (*domain.Session, error) {
	if sess, ok := s.sessions[userID]; ok {
		copied := *sess
		return &copied, nil
	}
	return &domain.Session{}, nil
}

func (s *stubSessionRepo) SetSelectedProduct(_ context.Context, userID, productID int64) error {
	sess := s.entry(userID)
	sess.SelectedProductID = &productID
	return nil
}

func (s *stubSessionRepo) ClearSelectedProduct(_ context.Context, userID int64) (bool, error) {
	sess, ok := s.sessions[userID]
	if !ok || sess.SelectedProductID == nil {
		return false, nil
	}
	sess.SelectedProductID = nil
	return true, nil
}

func (s *stubSessionRepo) SetLastOrderAt(_ context.Context, userID int64, at time.Time) error {
	sess := s.entry(userID)
	sess.LastOrderAt = &at
	return nil
}

func (s *stubSessionRepo) entry(userID int64) *domain.Session {
	sess, ok := s.sessions[userID]
	if !ok {
		sess = &domain.Session{}
		s.sessions[userID] = sess
	}
	return sess
}

type stubOrderRepo struct {
	orders     []domain.Order
	nextID     int64
	insertErr  error
	insertedAt time.Time
}

func newStubOrderRepo() *stubOrderRepo {
	return &stubOrderRepo{nextID: 1, insertedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (s *stubOrderRepo) Insert(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if s.insertErr != nil {
		return nil, s.insertErr
	}

	inserted := *order
	inserted.ID = s.nextID
	inserted.CreatedAt = s.insertedAt
	s.nextID++
	s.orders = append(s.orders, inserted)
	return &inserted, nil
}

func (s *stubOrderRepo) Page(_ context.Context, page, size int) ([]domain.Order, int64, error) {
	total := int64(len(s.orders))
	// новые сверху
	reversed := make([]domain.Order, len(s.orders))
	for i, o := range s.orders {
		reversed[len(s.orders)-1-i] = o
	}

	offset := (page - 1) * size
	if offset >= len(reversed) {
		return nil, total, nil
	}
	end := offset + size
	if end > len(reversed) {
		end = len(reversed)
	}
	return reversed[offset:end], total, nil
}

func (s *stubOrderRepo) IsEmpty(context.Context) (bool, error) {
	return len(s.orders) == 0, nil
}

func (s *stubOrderRepo) ExportAll(context.Context) ([]domain.Order, error) {
	return append([]domain.Order(nil), s.orders...), nil
}

func (s *stubOrderRepo) Stats(_ context.Context, since time.Time) (*StatsRes, error) {
	res := &StatsRes{Total: int64(len(s.orders))}
	users := make(map[int64]struct{})
	for _, o := range s.orders {
		users[o.UserID] = struct{}{}
		if !o.CreatedAt.Before(since) {
			res.LastWeek++
		}
	}
	res.DistinctUsers = int64(len(users))
	return res, nil
}

type stubOverrideRepo struct {
	overrides map[int64]domain.Override
	getErr    error
}

func newStubOverrideRepo() *stubOverrideRepo {
	return &stubOverrideRepo{overrides: make(map[int64]domain.Override)}
}

func (s *stubOverrideRepo) Get(_ context.Context, productID int64) (*domain.Override, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	if ov, ok := s.overrides[productID]; ok {
		copied := ov
		return &copied, nil
	}
	return nil, nil
}

func (s *stubOverrideRepo) GetAll(context.Context) (map[int64]domain.Override, error) {
	out := make(map[int64]domain.Override, len(s.overrides))
	for id, ov := range s.overrides {
		out[id] = ov
	}
	return out, nil
}

func (s *stubOverrideRepo) SetPrice(_ context.Context, productID int64, price *string) error {
	ov := s.overrides[productID]
	ov.ProductID = productID
	ov.Price = price
	s.overrides[productID] = ov
	return nil
}

func (s *stubOverrideRepo) SetStock(_ context.Context, productID int64, stock *int64) error {
	ov := s.overrides[productID]
	ov.ProductID = productID
	ov.Stock = stock
	s.overrides[productID] = ov
	return nil
}

type stubOutboxRepo struct {
	events []*OutboxEvent
}

func (s *stubOutboxRepo) Create(_ context.Context, event *OutboxEvent) (*OutboxEvent, error) {
	s.events = append(s.events, event)
	return event, nil
}

func (s *stubOutboxRepo) GetAndMarkAsProcessing(context.Context, int) ([]*OutboxEvent, error) {
	return nil, nil
}

func (s *stubOutboxRepo) MarkAsProcessed(context.Context, int64) error { return nil }

func (s *stubOutboxRepo) MarkAsPending(context.Context, int64) error { return nil }

func (s *stubOutboxRepo) MarkAsFailed(context.Context, int64) error { return nil }

func (s *stubOutboxRepo) ReclaimStale(context.Context, time.Duration) (int64, error) {
	return 0, nil
}

type stubMessenger struct {
	confirmations []*OrderNotification
	adminNotes    map[int64][]*OrderNotification
	failAdmins    map[int64]bool
	confirmErr    error
}

func newStubMessenger() *stubMessenger {
	return &stubMessenger{
		adminNotes: make(map[int64][]*OrderNotification),
		failAdmins: make(map[int64]bool),
	}
}

func (s *stubMessenger) SendOrderConfirmation(_ context.Context, req *OrderNotification) error {
	if s.confirmErr != nil {
		return s.confirmErr
	}
	s.confirmations = append(s.confirmations, req)
	return nil
}

func (s *stubMessenger) NotifyAdmin(_ context.Context, adminID int64, req *OrderNotification) error {
	if s.failAdmins[adminID] {
		return fmt.Errorf("admin %d unreachable", adminID)
	}
	s.adminNotes[adminID] = append(s.adminNotes[adminID], req)
	return nil
}

// nopLogger глушит логи в тестах.
type nopLogger struct{}

func (nopLogger) Debugf(string, ...any)        {}
func (nopLogger) Infof(string, ...any)         {}
func (nopLogger) Warnf(string, ...any)         {}
func (nopLogger) Errorf(error, string, ...any) {}
