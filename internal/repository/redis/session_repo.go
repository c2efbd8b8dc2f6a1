package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jimlawless/whereami"
	"github.com/oilshop/order-bot/internal/cfg"
	"github.com/oilshop/order-bot/internal/domain"
	"github.com/oilshop/order-bot/pkg/clients"
	"github.com/oilshop/order-bot/pkg/e"
	"github.com/oilshop/order-bot/pkg/logger"
	r "github.com/redis/go-redis/v9"
)

// SessionRepo хранит состояние диалогов в Redis: переживает рестарт процесса.
// Выбранный товар и отметка кулдауна лежат под отдельными ключами,
// потому что у них разные TTL.
type SessionRepo struct {
	client *clients.RedisClient
	cfg    *cfg.IntakeCfg
	logger logger.Logger
}

func NewSessionRepo(client *clients.RedisClient, cfg *cfg.IntakeCfg, logger logger.Logger) *SessionRepo {
	return &SessionRepo{
		client: client,
		cfg:    cfg,
		logger: logger,
	}
}

func (s *SessionRepo) Get(ctx context.Context, userID int64) (*domain.Session, error) {
	sess := &domain.Session{}

	selected, err := s.client.Client.Get(ctx, s.sessionKey(userID)).Result()
	switch {
	case err == nil:
		id, parseErr := strconv.ParseInt(selected, 10, 64)
		if parseErr != nil {
			// Битое значение вычищается, сессия трактуется как Idle.
			s.logger.Warnf("broken session value for user %d: %v", userID, parseErr)
			if delErr := s.client.Client.Del(ctx, s.sessionKey(userID)).Err(); delErr != nil {
				s.logger.Warnf("redis DEL failed: %v", e.Wrap(whereami.WhereAmI(), delErr))
			}
		} else {
			sess.SelectedProductID = &id
		}
	case errors.Is(err, r.Nil):
		// нет активного оформления
	default:
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	lastOrder, err := s.client.Client.Get(ctx, s.cooldownKey(userID)).Result()
	switch {
	case err == nil:
		at, parseErr := time.Parse(time.RFC3339Nano, lastOrder)
		if parseErr != nil {
			s.logger.Warnf("broken cooldown value for user %d: %v", userID, parseErr)
		} else {
			sess.LastOrderAt = &at
		}
	case errors.Is(err, r.Nil):
		// кулдаун не активен
	default:
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return sess, nil
}

func (s *SessionRepo) SetSelectedProduct(ctx context.Context, userID, productID int64) error {
	value := strconv.FormatInt(productID, 10)
	if err := s.client.Client.Set(ctx, s.sessionKey(userID), value, s.cfg.SessionTTL).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (s *SessionRepo) ClearSelectedProduct(ctx context.Context, userID int64) (bool, error) {
	deleted, err := s.client.Client.Del(ctx, s.sessionKey(userID)).Result()
	if err != nil {
		return false, e.Wrap(whereami.WhereAmI(), err)
	}

	return deleted > 0, nil
}

// SetLastOrderAt хранит отметку ровно на окно кулдауна: дальше она не нужна.
func (s *SessionRepo) SetLastOrderAt(ctx context.Context, userID int64, at time.Time) error {
	value := at.Format(time.RFC3339Nano)
	if err := s.client.Client.Set(ctx, s.cooldownKey(userID), value, s.cfg.Cooldown).Err(); err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	return nil
}

func (s *SessionRepo) sessionKey(userID int64) string {
	return fmt.Sprintf("intake:session:%d", userID)
}

func (s *SessionRepo) cooldownKey(userID int64) string {
	return fmt.Sprintf("intake:cooldown:%d", userID)
}
