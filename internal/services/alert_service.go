// Package services – AlertService
//
// AlertService manages per-account alerts. Alert creation can be made
// retry-safe with an idempotency key scoped to the owning account; the alert
// row and its idempotency record commit in the same transaction.
package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/diary-emotion-backend/internal/domain"
	"github.com/tbourn/diary-emotion-backend/internal/repo"
	"github.com/tbourn/diary-emotion-backend/internal/utils"
)

const (
	defaultAlertPageSize = 20
	maxAlertPageSize     = 100
	defaultIdemTTL       = 24 * time.Hour
)

// CreateAlertRequest describes a new alert. A nil AccountID creates a
// system-wide alert; a blank Type means info.
type CreateAlertRequest struct {
	AccountID *int64
	Type      string
	Title     string
	Message   string
}

// AlertService owns account alerts.
type AlertService struct {
	DB             *gorm.DB
	IdempotencyTTL time.Duration

	Now func() time.Time
}

func (s *AlertService) tracer() trace.Tracer { return otel.Tracer("services/AlertService") }

func (s *AlertService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Create validates req and stores a new alert.
func (s *AlertService) Create(ctx context.Context, req CreateAlertRequest) (out domain.Messenger) {
	ctx, span := s.tracer().Start(ctx, "Create")
	defer span.End()
	defer func() { finish(span, out) }()
	defer recoverTo(ctx, "AlertService.Create", &out)

	a, bad := s.buildAlert(req)
	if bad != nil {
		return *bad
	}
	if err := repo.CreateAlert(ctx, s.DB, a); err != nil {
		return domain.InternalError("failed to create alert", err)
	}
	return domain.OK("alert created", a.ToModel())
}

// CreateIdempotent behaves like Create, except that a repeated key for the
// same account within the TTL replays the first alert instead of inserting
// again. replayed reports whether the result came from a previous call.
func (s *AlertService) CreateIdempotent(ctx context.Context, key string, req CreateAlertRequest) (out domain.Messenger, replayed bool) {
	key = strings.TrimSpace(key)
	if key == "" || req.AccountID == nil {
		return s.Create(ctx, req), false
	}

	ctx, span := s.tracer().Start(ctx, "CreateIdempotent",
		trace.WithAttributes(attribute.Int64("account.id", *req.AccountID)))
	defer span.End()
	defer func() { finish(span, out) }()
	defer recoverTo(ctx, "AlertService.CreateIdempotent", &out)

	a, bad := s.buildAlert(req)
	if bad != nil {
		return *bad, false
	}
	accountID := *a.AccountID

	if prev, ok := s.replay(ctx, accountID, key); ok {
		span.SetAttributes(attribute.Bool("idempotency.replayed", true))
		return domain.OK("alert created", prev), true
	}

	ttl := s.IdempotencyTTL
	if ttl <= 0 {
		ttl = defaultIdemTTL
	}
	now := s.now()
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// An expired record still holds the unique (account, key) slot.
		if _, err := repo.DeleteExpiredIdempotency(ctx, tx, accountID, key, now); err != nil {
			return err
		}
		if err := repo.CreateAlert(ctx, tx, a); err != nil {
			return err
		}
		_, err := repo.CreateIdempotency(ctx, tx, accountID, key, a.ID, domain.CodeOK, now, ttl)
		return err
	})
	if errors.Is(err, repo.ErrDuplicate) {
		// A concurrent request with the same key committed first.
		if prev, ok := s.replay(ctx, accountID, key); ok {
			return domain.OK("alert created", prev), true
		}
	}
	if err != nil {
		return domain.InternalError("failed to create alert", err), false
	}
	return domain.OK("alert created", a.ToModel()), false
}

func (s *AlertService) replay(ctx context.Context, accountID int64, key string) (*domain.AlertModel, bool) {
	rec, err := repo.GetIdempotency(ctx, s.DB, accountID, key, s.now())
	if err != nil {
		return nil, false
	}
	prev, err := repo.GetAlert(ctx, s.DB, rec.AlertID)
	if err != nil {
		return nil, false
	}
	return prev.ToModel(), true
}

// buildAlert normalizes req into an entity, or returns a 400 envelope.
func (s *AlertService) buildAlert(req CreateAlertRequest) (*domain.Alert, *domain.Messenger) {
	bad := func(err error) *domain.Messenger {
		m := domain.BadRequest(err.Error())
		return &m
	}
	if req.AccountID != nil && *req.AccountID <= 0 {
		return nil, bad(ErrAccountIDRequired)
	}
	typ := strings.ToLower(strings.TrimSpace(req.Type))
	if typ == "" {
		typ = domain.AlertTypeInfo
	}
	if !domain.ValidAlertType(typ) {
		return nil, bad(ErrUnknownAlertType)
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, bad(ErrTitleRequired)
	}
	msg := strings.TrimSpace(req.Message)
	if msg == "" {
		return nil, bad(ErrMessageRequired)
	}

	now := s.now()
	m := &domain.AlertModel{
		AccountID: req.AccountID,
		Type:      typ,
		Title:     title,
		Message:   msg,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return m.ToEntity(), nil
}

// Find returns one alert.
func (s *AlertService) Find(ctx context.Context, id int64) (out domain.Messenger) {
	ctx, span := s.tracer().Start(ctx, "Find", trace.WithAttributes(attribute.Int64("alert.id", id)))
	defer span.End()
	defer func() { finish(span, out) }()
	defer recoverTo(ctx, "AlertService.Find", &out)

	if id <= 0 {
		return domain.BadRequest(ErrAlertIDRequired.Error())
	}
	a, err := repo.GetAlert(ctx, s.DB, id)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return domain.NotFound(ErrAlertNotFound.Error())
	case err != nil:
		return domain.InternalError("failed to load alert", err)
	}
	return domain.OK("alert found", a.ToModel())
}

// ListByAccount returns a page of the account's alerts, newest first, with
// total and unread counts.
func (s *AlertService) ListByAccount(ctx context.Context, accountID int64, page, pageSize int) (out domain.Messenger) {
	ctx, span := s.tracer().Start(ctx, "ListByAccount",
		trace.WithAttributes(
			attribute.Int64("account.id", accountID),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()
	defer func() { finish(span, out) }()
	defer recoverTo(ctx, "AlertService.ListByAccount", &out)

	if accountID <= 0 {
		return domain.BadRequest(ErrAccountIDRequired.Error())
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultAlertPageSize
	}
	if pageSize > maxAlertPageSize {
		pageSize = maxAlertPageSize
	}

	total, err := repo.CountAlerts(ctx, s.DB, accountID)
	if err != nil {
		return domain.InternalError("failed to count alerts", err)
	}
	unread, err := repo.CountUnreadAlerts(ctx, s.DB, accountID)
	if err != nil {
		return domain.InternalError("failed to count unread alerts", err)
	}

	result := &domain.AlertPage{
		Alerts:   []*domain.AlertModel{},
		Page:     page,
		PageSize: pageSize,
		Total:    total,
		Unread:   unread,
	}
	if total == 0 {
		return domain.OK("alerts listed", result)
	}

	rows, err := repo.ListAlertsPage(ctx, s.DB, accountID, (page-1)*pageSize, pageSize)
	if err != nil {
		return domain.InternalError("failed to list alerts", err)
	}
	for i := range rows {
		result.Alerts = append(result.Alerts, rows[i].ToModel())
	}
	return domain.OK("alerts listed", result)
}

// FindLatestBatch maps each account id to its newest alert using one query.
// Accounts without alerts are absent. Failures are logged and yield an empty
// map.
func (s *AlertService) FindLatestBatch(ctx context.Context, accountIDs []int64) (out map[int64]*domain.AlertModel) {
	ctx, span := s.tracer().Start(ctx, "FindLatestBatch", trace.WithAttributes(attribute.Int("account.count", len(accountIDs))))
	defer span.End()

	out = map[int64]*domain.AlertModel{}
	defer func() {
		if r := recover(); r != nil {
			loggerFrom(ctx).Error().Interface("panic", r).Msg("latest alert batch lookup panicked")
			out = map[int64]*domain.AlertModel{}
		}
	}()

	ids := utils.UniqueIDs(accountIDs)
	if len(ids) == 0 {
		return out
	}
	rows, err := repo.ListLatestAlertsByAccountIDs(ctx, s.DB, ids)
	if err != nil {
		loggerFrom(ctx).Error().Err(err).Int("account_count", len(ids)).Msg("latest alert batch lookup failed")
		span.RecordError(err)
		return out
	}
	return utils.FoldFirst(rows,
		func(a *domain.Alert) (int64, bool) {
			if a.AccountID == nil {
				return 0, false
			}
			return *a.AccountID, true
		},
		func(a *domain.Alert) *domain.AlertModel { return a.ToModel() },
	)
}

// MarkRead flags an alert as read. Marking an already-read alert succeeds.
func (s *AlertService) MarkRead(ctx context.Context, id int64) (out domain.Messenger) {
	ctx, span := s.tracer().Start(ctx, "MarkRead", trace.WithAttributes(attribute.Int64("alert.id", id)))
	defer span.End()
	defer func() { finish(span, out) }()
	defer recoverTo(ctx, "AlertService.MarkRead", &out)

	if id <= 0 {
		return domain.BadRequest(ErrAlertIDRequired.Error())
	}
	err := repo.MarkAlertRead(ctx, s.DB, id, s.now())
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return domain.NotFound(ErrAlertNotFound.Error())
	case err != nil:
		return domain.InternalError("failed to mark alert read", err)
	}
	a, err := repo.GetAlert(ctx, s.DB, id)
	if err != nil {
		return domain.InternalError("failed to load alert", err)
	}
	return domain.OK("alert marked as read", a.ToModel())
}

// Delete removes one alert. Deleting a missing alert succeeds.
func (s *AlertService) Delete(ctx context.Context, id int64) (out domain.Messenger) {
	ctx, span := s.tracer().Start(ctx, "Delete", trace.WithAttributes(attribute.Int64("alert.id", id)))
	defer span.End()
	defer func() { finish(span, out) }()
	defer recoverTo(ctx, "AlertService.Delete", &out)

	if id <= 0 {
		return domain.BadRequest(ErrAlertIDRequired.Error())
	}
	if _, err := repo.DeleteAlert(ctx, s.DB, id); err != nil {
		return domain.InternalError("failed to delete alert", err)
	}
	return domain.OK("alert deleted", nil)
}

// DeleteByAccount removes all of an account's alerts and reports how many
// were deleted.
func (s *AlertService) DeleteByAccount(ctx context.Context, accountID int64) (out domain.Messenger) {
	ctx, span := s.tracer().Start(ctx, "DeleteByAccount", trace.WithAttributes(attribute.Int64("account.id", accountID)))
	defer span.End()
	defer func() { finish(span, out) }()
	defer recoverTo(ctx, "AlertService.DeleteByAccount", &out)

	if accountID <= 0 {
		return domain.BadRequest(ErrAccountIDRequired.Error())
	}
	var n int64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		n, err = repo.DeleteAlertsByAccount(ctx, tx, accountID)
		return err
	})
	if err != nil {
		return domain.InternalError("failed to delete alerts", err)
	}
	return domain.OK("alerts deleted", map[string]int64{"deleted": n})
}
