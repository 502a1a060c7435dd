package admin

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/collabinvest/cil-storefront/internal/notifications"
	"github.com/collabinvest/cil-storefront/internal/orders"
	pkgauth "github.com/collabinvest/cil-storefront/pkg/auth"
	"github.com/collabinvest/cil-storefront/pkg/config"
	"github.com/collabinvest/cil-storefront/pkg/db/models"
	"github.com/collabinvest/cil-storefront/pkg/enums"
	pkgerrors "github.com/collabinvest/cil-storefront/pkg/errors"
	"github.com/collabinvest/cil-storefront/pkg/logger"
	"github.com/collabinvest/cil-storefront/pkg/money"
	"github.com/collabinvest/cil-storefront/pkg/pagination"
	"github.com/collabinvest/cil-storefront/pkg/security"
	"github.com/collabinvest/cil-storefront/pkg/session"
)

type listStore struct {
	mu      sync.Mutex
	entries []string
	err     error
}

func (l *listStore) PushCapped(_ context.Context, _ string, value any, limit int64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return l.err
	}
	l.entries = append([]string{value.(string)}, l.entries...)
	if int64(len(l.entries)) > limit {
		l.entries = l.entries[:limit]
	}
	return nil
}

func (l *listStore) Range(_ context.Context, _ string, start, stop int64) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.err != nil {
		return nil, l.err
	}
	if start >= int64(len(l.entries)) {
		return []string{}, nil
	}
	if stop >= int64(len(l.entries)) {
		stop = int64(len(l.entries)) - 1
	}
	return append([]string{}, l.entries[start:stop+1]...), nil
}

func (l *listStore) ActivityLogKey() string { return "cil:activity:admin" }

type fakeOrders struct {
	updates []orders.StatusUpdateInput
	stats   orders.Stats
	err     error
}

func (f *fakeOrders) Get(_ context.Context, n string) (*models.Order, error) {
	return &models.Order{OrderNumber: n}, f.err
}

func (f *fakeOrders) List(context.Context, orders.ListParams) (orders.ListResult, error) {
	return orders.ListResult{Items: []models.Order{}}, f.err
}

func (f *fakeOrders) UpdateStatus(_ context.Context, n string, in orders.StatusUpdateInput) (*models.Order, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.updates = append(f.updates, in)
	return &models.Order{OrderNumber: n, Status: in.Status}, nil
}

func (f *fakeOrders) Stats(context.Context) (orders.Stats, error) { return f.stats, f.err }

type fakeEmails struct {
	counts notifications.DeliveryCounts
	err    error
}

func (f *fakeEmails) ListRecent(context.Context, pagination.Params) (pagination.Page[models.EmailRecord], error) {
	return pagination.Page[models.EmailRecord]{Items: []models.EmailRecord{}}, f.err
}

func (f *fakeEmails) DeliveryCounts(context.Context) (notifications.DeliveryCounts, error) {
	return f.counts, f.err
}

var testJWT = config.JWTConfig{Secret: "test-secret", Issuer: "cil-test", ExpirationMinutes: 60}

type fixture struct {
	svc      *Service
	sessions *session.MemoryStore
	list     *listStore
	orders   *fakeOrders
	emails   *fakeEmails
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	hash, err := security.HashPassword("s3cret!", config.PasswordConfig{
		ArgonMemoryKB: 64, ArgonTime: 1, ArgonParallelism: 1, ArgonSaltLen: 16, ArgonKeyLen: 32,
	})
	require.NoError(t, err)

	f := &fixture{
		sessions: session.NewMemoryStore(time.Hour),
		list:     &listStore{},
		orders:   &fakeOrders{},
		emails:   &fakeEmails{},
	}
	activity, err := NewActivityLog(f.list, 0)
	require.NoError(t, err)

	f.svc, err = NewService(ServiceParams{
		Admin:    config.AdminConfig{Username: "admin", PasswordHash: hash},
		JWT:      testJWT,
		Sessions: f.sessions,
		Orders:   f.orders,
		Emails:   f.emails,
		Activity: activity,
		Logger:   logger.Nop(),
	})
	require.NoError(t, err)
	return f
}

func TestLoginIssuesTokenBoundToSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	res, err := f.svc.Login(ctx, " ADMIN ", "s3cret!")
	require.NoError(t, err)
	assert.Equal(t, "admin", res.Username)

	claims, err := pkgauth.ParseAdminToken(testJWT, res.Token)
	require.NoError(t, err)
	sess, err := f.sessions.Get(ctx, claims.ID)
	require.NoError(t, err)
	require.NotNil(t, sess)
	assert.Equal(t, "admin", sess.Username)

	require.NoError(t, f.svc.Logout(ctx, claims.ID, "admin"))
	sess, err = f.sessions.Get(ctx, claims.ID)
	require.NoError(t, err)
	assert.Nil(t, sess)

	entries, err := f.svc.RecentActivity(ctx, 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, ActionLogout, entries[0].Action)
	assert.Equal(t, ActionLogin, entries[1].Action)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Login(ctx, "admin", "wrong")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))

	_, err = f.svc.Login(ctx, "root", "s3cret!")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))

	_, err = f.svc.Login(ctx, "", "")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	assert.Equal(t, 0, f.sessions.Len())
	entries, err := f.svc.RecentActivity(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, ActionLoginFailed, entries[0].Action)
}

func TestLoginWithoutConfiguredHashAlwaysFails(t *testing.T) {
	f := newFixture(t)
	f.svc.admin.PasswordHash = ""

	_, err := f.svc.Login(context.Background(), "admin", "anything")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized))
}

func TestUpdateOrderStatusRecordsActivity(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	order, err := f.svc.UpdateOrderStatus(ctx, "admin", "CIL-123456-001", orders.StatusUpdateInput{Status: enums.OrderStatusShipped})
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusShipped, order.Status)
	require.Len(t, f.orders.updates, 1)
	assert.Equal(t, "admin", f.orders.updates[0].Actor)

	entries, err := f.svc.RecentActivity(ctx, 5)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, ActivityEntry{
		ID:     entries[0].ID,
		Action: ActionStatusUpdate,
		Actor:  "admin",
		Target: "CIL-123456-001",
		Detail: "shipped",
		At:     entries[0].At,
	}, entries[0])
}

func TestUpdateOrderStatusSurfacesErrors(t *testing.T) {
	f := newFixture(t)
	f.orders.err = pkgerrors.New(pkgerrors.CodeStateConflict, "cannot move delivered order")

	_, err := f.svc.UpdateOrderStatus(context.Background(), "admin", "CIL-1", orders.StatusUpdateInput{Status: enums.OrderStatusPending})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))
	assert.Empty(t, f.list.entries)
}

func TestActivityFailureDoesNotFailLogin(t *testing.T) {
	f := newFixture(t)
	f.list.err = errors.New("redis down")

	_, err := f.svc.Login(context.Background(), "admin", "s3cret!")
	assert.NoError(t, err)

	_, err = f.svc.RecentActivity(context.Background(), 5)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestStats(t *testing.T) {
	f := newFixture(t)
	f.orders.stats = orders.Stats{TotalOrders: 4, PendingOrders: 1, DeliveredOrders: 2, Revenue: money.FromInt(90000)}
	f.emails.counts = notifications.DeliveryCounts{Sent: 3, Failed: 1}

	d, err := f.svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), d.Orders.TotalOrders)
	assert.InDelta(t, 75.0, d.Emails.DeliveryRate, 0.001)
	assert.Equal(t, int64(3), d.Emails.Sent)

	f.emails.err = errors.New("db gone")
	_, err = f.svc.Stats(context.Background())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeInternal))
}

func TestActivityLogIsCapped(t *testing.T) {
	store := &listStore{}
	log, err := NewActivityLog(store, 3)
	require.NoError(t, err)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, log.Record(ctx, ActivityEntry{Action: ActionLogin, Actor: string(rune('a' + i))}))
	}
	store.entries = append(store.entries[:1], append([]string{"garbage"}, store.entries[1:]...)...)

	entries, err := log.Recent(ctx, 100)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "e", entries[0].Actor)
	assert.Equal(t, "d", entries[1].Actor)
}

func TestNewServiceRequiresCollaborators(t *testing.T) {
	_, err := NewService(ServiceParams{})
	assert.Error(t, err)
}
