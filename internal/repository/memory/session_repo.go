// Package memory — хранилище состояния диалогов в памяти процесса.
// Рестарт сбрасывает все незавершённые оформления и кулдауны.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/oilshop/order-bot/internal/domain"
)

type sessionEntry struct {
	selectedProductID *int64
	selectedAt        time.Time
	lastOrderAt       *time.Time
}

// SessionRepo — потокобезопасная карта сессий с ленивым истечением по TTL.
type SessionRepo struct {
	mu       sync.Mutex
	sessions map[int64]*sessionEntry
	ttl      time.Duration // 0 — сессии не истекают
	now      func() time.Time
}

func NewSessionRepo(ttl time.Duration) *SessionRepo {
	return &SessionRepo{
		sessions: make(map[int64]*sessionEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

func (s *SessionRepo) Get(_ context.Context, userID int64) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[userID]
	if !ok {
		return &domain.Session{}, nil
	}

	s.expireLocked(entry)

	sess := &domain.Session{LastOrderAt: entry.lastOrderAt}
	if entry.selectedProductID != nil {
		id := *entry.selectedProductID
		sess.SelectedProductID = &id
	}

	return sess, nil
}

func (s *SessionRepo) SetSelectedProduct(_ context.Context, userID, productID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.entryLocked(userID)
	entry.selectedProductID = &productID
	entry.selectedAt = s.now()

	return nil
}

func (s *SessionRepo) ClearSelectedProduct(_ context.Context, userID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.sessions[userID]
	if !ok {
		return false, nil
	}

	s.expireLocked(entry)

	cleared := entry.selectedProductID != nil
	entry.selectedProductID = nil

	return cleared, nil
}

func (s *SessionRepo) SetLastOrderAt(_ context.Context, userID int64, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := s.entryLocked(userID)
	entry.lastOrderAt = &at

	return nil
}

func (s *SessionRepo) entryLocked(userID int64) *sessionEntry {
	entry, ok := s.sessions[userID]
	if !ok {
		entry = &sessionEntry{}
		s.sessions[userID] = entry
	}
	return entry
}

// expireLocked снимает протухшее оформление. Отметка кулдауна TTL не подчиняется.
func (s *SessionRepo) expireLocked(entry *sessionEntry) {
	if s.ttl <= 0 || entry.selectedProductID == nil {
		return
	}

	if s.now().Sub(entry.selectedAt) > s.ttl {
		entry.selectedProductID = nil
	}
}
