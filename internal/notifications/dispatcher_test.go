package notifications

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/collabinvest/cil-storefront/pkg/db/models"
	"github.com/collabinvest/cil-storefront/pkg/enums"
	"github.com/collabinvest/cil-storefront/pkg/money"
	"github.com/collabinvest/cil-storefront/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMailer struct {
	mu     sync.Mutex
	sent   []Email
	failTo map[string]error
}

func (m *fakeMailer) Send(_ context.Context, email Email) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, email)
	if err := m.failTo[email.To]; err != nil {
		return "", err
	}
	return "msg-" + email.To, nil
}

type fakeRecordRepo struct {
	mu        sync.Mutex
	records   []models.EmailRecord
	createErr error
}

func (r *fakeRecordRepo) Create(_ context.Context, record *models.EmailRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	r.records = append(r.records, *record)
	return nil
}

func (r *fakeRecordRepo) ListRecent(context.Context, pagination.Params) (pagination.Page[models.EmailRecord], error) {
	return pagination.Page[models.EmailRecord]{}, nil
}

func (r *fakeRecordRepo) DeliveryCounts(context.Context) (DeliveryCounts, error) {
	return DeliveryCounts{}, nil
}

func (r *fakeRecordRepo) DeleteBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func sampleOrder() *models.Order {
	return &models.Order{
		OrderNumber:   "CIL-123456-042",
		CustomerName:  "Ada Obi",
		CustomerPhone: "08031234567",
		CustomerEmail: "ada@example.com",
		Items: []models.OrderItem{
			{Name: "Solar Panel 300W", Quantity: 2, Price: money.FromInt(85000)},
			{Name: "Inverter 5kVA", Quantity: 1, Price: money.FromInt(450000)},
		},
		Total:     money.FromInt(620000),
		Status:    enums.OrderStatusPending,
		CreatedAt: time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC),
	}
}

func newTestDispatcher(t *testing.T, mailer Mailer, repo Repository) *Dispatcher {
	t.Helper()
	d, err := NewDispatcher(DispatcherParams{
		Mailer:   mailer,
		Repo:     repo,
		From:     "orders@collabinvest.ng",
		AdminTo:  "admin@collabinvest.ng",
		ShopName: "Collaborative Investment Ltd",
	})
	require.NoError(t, err)
	return d
}

func TestSendOrderConfirmationSendsBoth(t *testing.T) {
	mailer := &fakeMailer{}
	repo := &fakeRecordRepo{}
	d := newTestDispatcher(t, mailer, repo)

	outcome := d.SendOrderConfirmation(context.Background(), sampleOrder())

	require.NotNil(t, outcome.Customer)
	assert.Equal(t, StatusSent, outcome.CustomerStatus())
	assert.Equal(t, "msg-ada@example.com", outcome.Customer.MessageID)
	assert.Equal(t, StatusSent, outcome.Admin.Status)

	require.Len(t, repo.records, 2)
	assert.Equal(t, enums.EmailTypeOrderConfirmation, repo.records[0].Type)
	assert.Equal(t, enums.EmailTypeOrderAdminAlert, repo.records[1].Type)
	assert.Equal(t, "CIL-123456-042", *repo.records[1].OrderNumber)
}

func TestSendOrderConfirmationSkipsCustomerWithoutEmail(t *testing.T) {
	mailer := &fakeMailer{}
	d := newTestDispatcher(t, mailer, &fakeRecordRepo{})
	order := sampleOrder()
	order.CustomerEmail = "  "

	outcome := d.SendOrderConfirmation(context.Background(), order)

	assert.Nil(t, outcome.Customer)
	assert.Equal(t, StatusSkipped, outcome.CustomerStatus())
	assert.Equal(t, StatusSent, outcome.Admin.Status)
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "admin@collabinvest.ng", mailer.sent[0].To)
}

func TestSendEmailFailureIsRecordedNotReturned(t *testing.T) {
	mailer := &fakeMailer{failTo: map[string]error{"admin@collabinvest.ng": errors.New("smtp down")}}
	repo := &fakeRecordRepo{}
	d := newTestDispatcher(t, mailer, repo)

	outcome := d.SendOrderConfirmation(context.Background(), sampleOrder())

	assert.Equal(t, StatusSent, outcome.CustomerStatus())
	assert.Equal(t, StatusFailed, outcome.Admin.Status)
	assert.EqualError(t, outcome.Admin.Err, "smtp down")

	require.Len(t, repo.records, 2)
	failed := repo.records[1]
	assert.Equal(t, enums.EmailStatusFailed, failed.Status)
	require.NotNil(t, failed.Error)
	assert.Equal(t, "smtp down", *failed.Error)
	assert.Nil(t, failed.MessageID)
}

func TestSendEmailRecordFailureKeepsResult(t *testing.T) {
	d := newTestDispatcher(t, &fakeMailer{}, &fakeRecordRepo{createErr: errors.New("db gone")})

	res := d.SendEmail(context.Background(), "x@example.com", "s", "b", enums.EmailTypeStatusUpdate, "")
	assert.True(t, res.OK())
}

func TestSendStatusUpdate(t *testing.T) {
	mailer := &fakeMailer{}
	d := newTestDispatcher(t, mailer, &fakeRecordRepo{})
	order := sampleOrder()
	update := models.StatusUpdate{Status: enums.OrderStatusShipped, Title: "Order Shipped"}

	res := d.SendStatusUpdate(context.Background(), order, update)
	require.NotNil(t, res)
	assert.Equal(t, StatusSent, res.Status)
	assert.Contains(t, mailer.sent[0].Subject, "Order Shipped")

	order.CustomerEmail = ""
	assert.Nil(t, d.SendStatusUpdate(context.Background(), order, update))
}

func TestNewDispatcherValidates(t *testing.T) {
	_, err := NewDispatcher(DispatcherParams{Repo: &fakeRecordRepo{}, AdminTo: "a@b.c"})
	require.Error(t, err)
	_, err = NewDispatcher(DispatcherParams{Mailer: &fakeMailer{}, AdminTo: "a@b.c"})
	require.Error(t, err)
	_, err = NewDispatcher(DispatcherParams{Mailer: &fakeMailer{}, Repo: &fakeRecordRepo{}})
	require.Error(t, err)
}
