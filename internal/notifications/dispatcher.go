package notifications

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/collabinvest/cil-storefront/pkg/db/models"
	"github.com/collabinvest/cil-storefront/pkg/enums"
	"github.com/collabinvest/cil-storefront/pkg/logger"
	"github.com/collabinvest/cil-storefront/pkg/metrics"
)

type DispatcherParams struct {
	Mailer   Mailer
	Repo     Repository
	Logger   *logger.Logger
	Metrics  *metrics.NotificationMetrics
	From     string
	AdminTo  string
	ShopName string
}

// Dispatcher sends order emails and records every attempt.
type Dispatcher struct {
	mailer   Mailer
	repo     Repository
	logg     *logger.Logger
	metrics  *metrics.NotificationMetrics
	from     string
	adminTo  string
	shopName string
	now      func() time.Time
}

func NewDispatcher(p DispatcherParams) (*Dispatcher, error) {
	if p.Mailer == nil {
		return nil, errors.New("mailer required")
	}
	if p.Repo == nil {
		return nil, errors.New("email record repository required")
	}
	if strings.TrimSpace(p.AdminTo) == "" {
		return nil, errors.New("admin recipient required")
	}
	if p.Logger == nil {
		p.Logger = logger.Nop()
	}
	return &Dispatcher{
		mailer:   p.Mailer,
		repo:     p.Repo,
		logg:     p.Logger,
		metrics:  p.Metrics,
		from:     p.From,
		adminTo:  p.AdminTo,
		shopName: p.ShopName,
		now:      time.Now,
	}, nil
}

// SendOrderConfirmation emails the customer, when an address is on file,
// and always alerts the admin.
func (d *Dispatcher) SendOrderConfirmation(ctx context.Context, order *models.Order) Outcome {
	var outcome Outcome
	if email := strings.TrimSpace(order.CustomerEmail); email != "" {
		subject, body := CustomerConfirmation(order, d.shopName)
		res := d.SendEmail(ctx, email, subject, body, enums.EmailTypeOrderConfirmation, order.OrderNumber)
		outcome.Customer = &res
	}

	subject, body := AdminAlert(order)
	outcome.Admin = d.SendEmail(ctx, d.adminTo, subject, body, enums.EmailTypeOrderAdminAlert, order.OrderNumber)
	return outcome
}

// SendStatusUpdate tells the customer about a status change. It returns
// nil when the order has no email address.
func (d *Dispatcher) SendStatusUpdate(ctx context.Context, order *models.Order, update models.StatusUpdate) *Result {
	email := strings.TrimSpace(order.CustomerEmail)
	if email == "" {
		return nil
	}
	subject, body := StatusUpdateMessage(order, update)
	res := d.SendEmail(ctx, email, subject, body, enums.EmailTypeStatusUpdate, order.OrderNumber)
	return &res
}

// SendEmail attempts one send and records it. Transport failures come back
// as a failed Result; a failure to write the record is only logged.
func (d *Dispatcher) SendEmail(ctx context.Context, to, subject, body string, emailType enums.EmailType, orderNumber string) Result {
	ctx = d.logg.WithFields(ctx, map[string]any{
		"email_type": emailType,
		"to":         to,
	})

	messageID, sendErr := d.mailer.Send(ctx, Email{From: d.from, To: to, Subject: subject, Text: body})

	record := &models.EmailRecord{
		To:      to,
		Subject: subject,
		Message: body,
		Type:    emailType,
		SentAt:  d.now().UTC(),
	}
	if orderNumber != "" {
		record.OrderNumber = &orderNumber
	}

	var res Result
	if sendErr != nil {
		msg := sendErr.Error()
		record.Status = enums.EmailStatusFailed
		record.Error = &msg
		res = Result{Status: StatusFailed, Err: sendErr}
		d.logg.Warn(d.logg.WithField(ctx, "error", msg), "notification.email_failed")
	} else {
		record.Status = enums.EmailStatusSent
		record.MessageID = &messageID
		res = Result{Status: StatusSent, MessageID: messageID}
		d.logg.Info(d.logg.WithField(ctx, "message_id", messageID), "notification.email_sent")
	}
	d.metrics.IncEmail(string(emailType), string(res.Status))

	if err := d.repo.Create(ctx, record); err != nil {
		d.logg.Error(ctx, "notification.record_failed", err)
	}
	return res
}
