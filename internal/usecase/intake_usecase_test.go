package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/oilshop/order-bot/internal/catalog"
	"github.com/oilshop/order-bot/pkg/e"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type intakeFixture struct {
	uc        *IntakeUseCase
	sessions  *stubSessionRepo
	orders    *stubOrderRepo
	outbox    *stubOutboxRepo
	overrides *stubOverrideRepo
	messenger *stubMessenger
	clock     *time.Time
}

func newIntakeFixture(t *testing.T, adminIDs []int64) *intakeFixture {
	t.Helper()

	cat, err := catalog.Load()
	require.NoError(t, err)

	f := &intakeFixture{
		sessions:  newStubSessionRepo(),
		orders:    newStubOrderRepo(),
		outbox:    &stubOutboxRepo{},
		overrides: newStubOverrideRepo(),
		messenger: newStubMessenger(),
	}

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	f.clock = &now

	catalogUC := NewCatalogUC(cat, f.overrides, nopLogger{})
	f.uc = NewIntakeUC(
		catalogUC,
		f.sessions,
		f.orders,
		f.outbox,
		fakeDB{},
		f.messenger,
		nopLogger{},
		adminIDs,
		60*time.Second,
	)
	f.uc.now = func() time.Time { return *f.clock }

	return f
}

func (f *intakeFixture) advance(d time.Duration) {
	*f.clock = f.clock.Add(d)
}

func TestOrderFlowEndToEnd(t *testing.T) {
	f := newIntakeFixture(t, []int64{900, 901})
	ctx := context.Background()

	product, err := f.uc.StartOrder(ctx, 100, 3)
	require.NoError(t, err)
	assert.Equal(t, "1400", product.Price)
	assert.Equal(t, "₽", product.Currency)

	res, err := f.uc.SubmitContact(ctx, &SubmitContactReq{
		UserID:   100,
		Username: "validuser1",
		Text:     "@validuser1",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), res.Order.ID)
	assert.Equal(t, "1400", res.Order.Price)
	assert.Equal(t, "₽", res.Order.Currency)
	assert.Equal(t, "@validuser1", res.Order.Contact)
	assert.Equal(t, "Масло редукторное BYD BOT384", res.Order.Oil)

	// подтверждение пользователю и уведомления каждому админу
	require.Len(t, f.messenger.confirmations, 1)
	assert.Len(t, f.messenger.adminNotes[900], 1)
	assert.Len(t, f.messenger.adminNotes[901], 1)

	// outbox-событие записано вместе с заявкой
	require.Len(t, f.outbox.events, 1)
	assert.Equal(t, OrderCreated, f.outbox.events[0].EventType)
	assert.Equal(t, int64(1), f.outbox.events[0].OrderID)

	// оформление закрыто
	sess, err := f.sessions.Get(ctx, 100)
	require.NoError(t, err)
	assert.False(t, sess.AwaitingContact())
	require.NotNil(t, sess.LastOrderAt)
}

func TestSecondImmediateOrderHitsCooldown(t *testing.T) {
	f := newIntakeFixture(t, []int64{900})
	ctx := context.Background()

	_, err := f.uc.StartOrder(ctx, 100, 3)
	require.NoError(t, err)
	_, err = f.uc.SubmitContact(ctx, &SubmitContactReq{UserID: 100, Text: "@validuser1"})
	require.NoError(t, err)

	// 15 секунд спустя окно ещё открыто: остаток 45 секунд, округление вниз
	f.advance(15*time.Second + 300*time.Millisecond)

	_, err = f.uc.StartOrder(ctx, 100, 3)
	require.NoError(t, err)
	_, err = f.uc.SubmitContact(ctx, &SubmitContactReq{UserID: 100, Text: "@validuser1"})

	var cooldown *CooldownError
	require.ErrorAs(t, err, &cooldown)
	assert.Equal(t, 44, cooldown.RemainingSeconds())

	// отказ оставляет пользователя в ожидании контакта
	sess, _ := f.sessions.Get(ctx, 100)
	assert.True(t, sess.AwaitingContact())
}

func TestCooldownExpiresAfterWindow(t *testing.T) {
	f := newIntakeFixture(t, nil)
	ctx := context.Background()

	_, err := f.uc.StartOrder(ctx, 100, 3)
	require.NoError(t, err)
	_, err = f.uc.SubmitContact(ctx, &SubmitContactReq{UserID: 100, Text: "@validuser1"})
	require.NoError(t, err)

	f.advance(60 * time.Second)

	_, err = f.uc.StartOrder(ctx, 100, 3)
	require.NoError(t, err)
	res, err := f.uc.SubmitContact(ctx, &SubmitContactReq{UserID: 100, Text: "@validuser1"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Order.ID)
}

func TestSubmitWithoutActiveOrder(t *testing.T) {
	f := newIntakeFixture(t, nil)

	_, err := f.uc.SubmitContact(context.Background(), &SubmitContactReq{UserID: 100, Text: "@validuser1"})
	assert.ErrorIs(t, err, e.ErrNoActiveOrder)
}

func TestInvalidContactKeepsAwaiting(t *testing.T) {
	f := newIntakeFixture(t, nil)
	ctx := context.Background()

	_, err := f.uc.StartOrder(ctx, 100, 3)
	require.NoError(t, err)

	_, err = f.uc.SubmitContact(ctx, &SubmitContactReq{UserID: 100, Text: "просто текст"})
	assert.ErrorIs(t, err, e.ErrInvalidContact)

	_, err = f.uc.SubmitContact(ctx, &SubmitContactReq{UserID: 100, Text: "   "})
	assert.ErrorIs(t, err, e.ErrEmptyContact)

	sess, _ := f.sessions.Get(ctx, 100)
	assert.True(t, sess.AwaitingContact())
	assert.Empty(t, f.orders.orders)
}

func TestContactShareSkipsTextValidation(t *testing.T) {
	f := newIntakeFixture(t, nil)
	ctx := context.Background()

	_, err := f.uc.StartOrder(ctx, 100, 3)
	require.NoError(t, err)

	// структурный номер короче девяти цифр всё равно принимается
	res, err := f.uc.SubmitContact(ctx, &SubmitContactReq{
		UserID:           100,
		Text:             "+7999",
		FromContactShare: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "+7999", res.Order.Contact)
}

func TestOutOfStockBlocksStartOrder(t *testing.T) {
	f := newIntakeFixture(t, nil)
	ctx := context.Background()

	zero := int64(0)
	require.NoError(t, f.overrides.SetStock(ctx, 3, &zero))

	_, err := f.uc.StartOrder(ctx, 100, 3)
	assert.ErrorIs(t, err, e.ErrOutOfStock)

	// состояние диалога не изменилось
	sess, _ := f.sessions.Get(ctx, 100)
	assert.False(t, sess.AwaitingContact())
}

func TestStartOrderUnknownProduct(t *testing.T) {
	f := newIntakeFixture(t, nil)

	_, err := f.uc.StartOrder(context.Background(), 100, 999)
	assert.ErrorIs(t, err, e.ErrProductNotFound)
}

func TestInsertFailureKeepsAwaitingContact(t *testing.T) {
	f := newIntakeFixture(t, []int64{900})
	ctx := context.Background()

	_, err := f.uc.StartOrder(ctx, 100, 3)
	require.NoError(t, err)

	f.orders.insertErr = fmt.Errorf("connection refused")

	_, err = f.uc.SubmitContact(ctx, &SubmitContactReq{UserID: 100, Text: "@validuser1"})
	require.Error(t, err)

	// ни подтверждения, ни уведомлений, ни кулдауна; контакт можно прислать повторно
	assert.Empty(t, f.messenger.confirmations)
	assert.Empty(t, f.messenger.adminNotes[900])

	sess, _ := f.sessions.Get(ctx, 100)
	assert.True(t, sess.AwaitingContact())
	assert.Nil(t, sess.LastOrderAt)

	f.orders.insertErr = nil
	res, err := f.uc.SubmitContact(ctx, &SubmitContactReq{UserID: 100, Text: "@validuser1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Order.ID)
}

func TestAdminNotificationFailureDoesNotFailOrder(t *testing.T) {
	f := newIntakeFixture(t, []int64{900, 901})
	f.messenger.failAdmins[900] = true
	ctx := context.Background()

	_, err := f.uc.StartOrder(ctx, 100, 3)
	require.NoError(t, err)

	_, err = f.uc.SubmitContact(ctx, &SubmitContactReq{UserID: 100, Text: "@validuser1"})
	require.NoError(t, err)

	// сбой одного админа не мешает остальным
	assert.Empty(t, f.messenger.adminNotes[900])
	assert.Len(t, f.messenger.adminNotes[901], 1)
}

func TestOrderIDsAreStrictlyIncreasing(t *testing.T) {
	f := newIntakeFixture(t, nil)
	ctx := context.Background()

	var lastID int64
	for i := 0; i < 5; i++ {
		userID := int64(100 + i) // разные пользователи, кулдаун не мешает
		_, err := f.uc.StartOrder(ctx, userID, 3)
		require.NoError(t, err)

		res, err := f.uc.SubmitContact(ctx, &SubmitContactReq{UserID: userID, Text: "@validuser1"})
		require.NoError(t, err)

		assert.Greater(t, res.Order.ID, lastID)
		lastID = res.Order.ID
	}
}

func TestCancelIsIdempotent(t *testing.T) {
	f := newIntakeFixture(t, nil)
	ctx := context.Background()

	cleared, err := f.uc.Cancel(ctx, 100)
	require.NoError(t, err)
	assert.False(t, cleared)

	_, err = f.uc.StartOrder(ctx, 100, 3)
	require.NoError(t, err)

	cleared, err = f.uc.Cancel(ctx, 100)
	require.NoError(t, err)
	assert.True(t, cleared)

	cleared, err = f.uc.Cancel(ctx, 100)
	require.NoError(t, err)
	assert.False(t, cleared)
}

func TestPriceOverrideAppliedAtSubmitTime(t *testing.T) {
	f := newIntakeFixture(t, nil)
	ctx := context.Background()

	_, err := f.uc.StartOrder(ctx, 100, 3)
	require.NoError(t, err)

	// цена меняется между выбором товара и отправкой контакта
	newPrice := "1550"
	require.NoError(t, f.overrides.SetPrice(ctx, 3, &newPrice))

	res, err := f.uc.SubmitContact(ctx, &SubmitContactReq{UserID: 100, Text: "@validuser1"})
	require.NoError(t, err)
	assert.Equal(t, "1550", res.Order.Price)
}

func TestConfirmationFailureStillCompletesOrder(t *testing.T) {
	f := newIntakeFixture(t, nil)
	f.messenger.confirmErr = errors.New("chat not found")
	ctx := context.Background()

	_, err := f.uc.StartOrder(ctx, 100, 3)
	require.NoError(t, err)

	res, err := f.uc.SubmitContact(ctx, &SubmitContactReq{UserID: 100, Text: "@validuser1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Order.ID)
	require.Len(t, f.orders.orders, 1)
}
