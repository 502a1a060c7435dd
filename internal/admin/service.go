package admin

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/collabinvest/cil-storefront/internal/notifications"
	"github.com/collabinvest/cil-storefront/internal/orders"
	pkgauth "github.com/collabinvest/cil-storefront/pkg/auth"
	"github.com/collabinvest/cil-storefront/pkg/config"
	"github.com/collabinvest/cil-storefront/pkg/db/models"
	pkgerrors "github.com/collabinvest/cil-storefront/pkg/errors"
	"github.com/collabinvest/cil-storefront/pkg/logger"
	"github.com/collabinvest/cil-storefront/pkg/pagination"
	"github.com/collabinvest/cil-storefront/pkg/security"
	"github.com/collabinvest/cil-storefront/pkg/session"
)

const invalidCredentialsMessage = "invalid credentials"

type orderService interface {
	Get(ctx context.Context, orderNumber string) (*models.Order, error)
	List(ctx context.Context, params orders.ListParams) (orders.ListResult, error)
	UpdateStatus(ctx context.Context, orderNumber string, in orders.StatusUpdateInput) (*models.Order, error)
	Stats(ctx context.Context) (orders.Stats, error)
}

type emailRecords interface {
	ListRecent(ctx context.Context, params pagination.Params) (pagination.Page[models.EmailRecord], error)
	DeliveryCounts(ctx context.Context) (notifications.DeliveryCounts, error)
}

type activityRecorder interface {
	Record(ctx context.Context, entry ActivityEntry) error
	Recent(ctx context.Context, n int) ([]ActivityEntry, error)
}

type ServiceParams struct {
	Admin    config.AdminConfig
	JWT      config.JWTConfig
	Sessions session.Store
	Orders   orderService
	Emails   emailRecords
	Activity activityRecorder
	Logger   *logger.Logger
	Now      func() time.Time
}

// Service backs the admin panel.
type Service struct {
	admin    config.AdminConfig
	jwt      config.JWTConfig
	sessions session.Store
	orders   orderService
	emails   emailRecords
	activity activityRecorder
	logg     *logger.Logger
	now      func() time.Time
}

func NewService(p ServiceParams) (*Service, error) {
	if p.Sessions == nil {
		return nil, fmt.Errorf("session store required")
	}
	if p.Orders == nil {
		return nil, fmt.Errorf("order service required")
	}
	if p.Emails == nil {
		return nil, fmt.Errorf("email records required")
	}
	if p.Activity == nil {
		return nil, fmt.Errorf("activity log required")
	}
	if p.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if p.Now == nil {
		p.Now = time.Now
	}
	return &Service{
		admin:    p.Admin,
		jwt:      p.JWT,
		sessions: p.Sessions,
		orders:   p.Orders,
		emails:   p.Emails,
		activity: p.Activity,
		logg:     p.Logger,
		now:      p.Now,
	}, nil
}

type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Username  string    `json:"username"`
}

// Login checks the configured credentials, opens a session and returns a
// token whose jti names it.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "username and password are required")
	}

	ok, err := s.checkCredentials(username, password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		s.record(ctx, ActivityEntry{Action: ActionLoginFailed, Actor: username})
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	now := s.now().UTC()
	sess := session.Session{ID: uuid.NewString(), Username: s.admin.Username, CreatedAt: now}
	if err := s.sessions.Set(ctx, sess); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "store session")
	}
	token, err := pkgauth.MintAdminToken(s.jwt, now, pkgauth.AdminTokenPayload{
		Username:  s.admin.Username,
		SessionID: sess.ID,
	})
	if err != nil {
		_ = s.sessions.Delete(ctx, sess.ID)
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}

	ctx = s.logg.WithAdmin(ctx, s.admin.Username)
	s.logg.Info(ctx, "admin.login")
	s.record(ctx, ActivityEntry{Action: ActionLogin, Actor: s.admin.Username})
	return &LoginResult{Token: token, ExpiresAt: now.Add(s.jwt.TTL()), Username: s.admin.Username}, nil
}

func (s *Service) checkCredentials(username, password string) (bool, error) {
	if s.admin.PasswordHash == "" {
		return false, nil
	}
	userOK := security.EqualFold(username, s.admin.Username)
	passOK, err := security.VerifyPassword(password, s.admin.PasswordHash)
	if err != nil {
		return false, err
	}
	return userOK && passOK, nil
}

// Logout ends the session. Unknown sessions are not an error.
func (s *Service) Logout(ctx context.Context, sessionID, username string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete session")
	}
	s.record(ctx, ActivityEntry{Action: ActionLogout, Actor: username})
	return nil
}

func (s *Service) ListOrders(ctx context.Context, params orders.ListParams) (orders.ListResult, error) {
	return s.orders.List(ctx, params)
}

func (s *Service) GetOrder(ctx context.Context, orderNumber string) (*models.Order, error) {
	return s.orders.Get(ctx, orderNumber)
}

// UpdateOrderStatus appends a timeline entry as actor and notes it in the
// activity log.
func (s *Service) UpdateOrderStatus(ctx context.Context, actor, orderNumber string, in orders.StatusUpdateInput) (*models.Order, error) {
	in.Actor = actor
	order, err := s.orders.UpdateStatus(ctx, orderNumber, in)
	if err != nil {
		return nil, err
	}
	s.record(ctx, ActivityEntry{
		Action: ActionStatusUpdate,
		Actor:  actor,
		Target: order.OrderNumber,
		Detail: string(in.Status),
	})
	return order, nil
}

// Dashboard is the admin landing page summary.
type Dashboard struct {
	Orders orders.Stats `json:"orders"`
	Emails EmailStats   `json:"emails"`
}

type EmailStats struct {
	notifications.DeliveryCounts
	DeliveryRate float64 `json:"deliveryRate"`
}

func (s *Service) Stats(ctx context.Context) (*Dashboard, error) {
	orderStats, err := s.orders.Stats(ctx)
	if err != nil {
		return nil, err
	}
	counts, err := s.emails.DeliveryCounts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "email delivery counts")
	}
	return &Dashboard{
		Orders: orderStats,
		Emails: EmailStats{DeliveryCounts: counts, DeliveryRate: counts.Rate()},
	}, nil
}

func (s *Service) RecentEmails(ctx context.Context, params pagination.Params) (pagination.Page[models.EmailRecord], error) {
	page, err := s.emails.ListRecent(ctx, params)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return page, err
		}
		return page, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list emails")
	}
	return page, nil
}

func (s *Service) RecentActivity(ctx context.Context, n int) ([]ActivityEntry, error) {
	entries, err := s.activity.Recent(ctx, n)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read activity")
	}
	return entries, nil
}

// record never fails the caller; a lost audit line is only logged.
func (s *Service) record(ctx context.Context, entry ActivityEntry) {
	if err := s.activity.Record(ctx, entry); err != nil {
		s.logg.Error(ctx, "admin.activity.record_failed", err)
	}
}
