// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Alert
// model. Alerts reference their account by a stored id only.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/diary-emotion-backend/internal/domain"
)

// CreateAlert inserts a. The generated id is written back into a.
func CreateAlert(ctx context.Context, db *gorm.DB, a *domain.Alert) error {
	return db.WithContext(ctx).Create(a).Error
}

// GetAlert fetches an alert by id, or ErrNotFound.
func GetAlert(ctx context.Context, db *gorm.DB, id int64) (*domain.Alert, error) {
	var a domain.Alert
	if err := db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// CountAlerts returns the number of alerts owned by accountID.
func CountAlerts(ctx context.Context, db *gorm.DB, accountID int64) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Alert{}).
		Where("account_id = ?", accountID).
		Count(&total).Error
	return total, err
}

// CountUnreadAlerts returns the number of unread alerts owned by accountID.
func CountUnreadAlerts(ctx context.Context, db *gorm.DB, accountID int64) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Alert{}).
		Where("account_id = ? AND is_read = ?", accountID, false).
		Count(&total).Error
	return total, err
}

// ListAlertsPage returns a page of alerts for accountID, newest first.
func ListAlertsPage(ctx context.Context, db *gorm.DB, accountID int64, offset, limit int) ([]domain.Alert, error) {
	var out []domain.Alert
	err := db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// ListLatestAlertsByAccountIDs fetches, in one query, the newest alert of
// each given account (greatest created_at, then greatest id). Rows come back
// newest first, so a first-wins fold keeps them as they are. An empty input
// issues no query.
func ListLatestAlertsByAccountIDs(ctx context.Context, db *gorm.DB, accountIDs []int64) ([]domain.Alert, error) {
	if len(accountIDs) == 0 {
		return nil, nil
	}
	var out []domain.Alert
	err := db.WithContext(ctx).
		Table("alerts AS a").
		Where("a.account_id IN ?", accountIDs).
		Where(`NOT EXISTS (
			SELECT 1 FROM alerts AS n
			WHERE n.account_id = a.account_id
			  AND (n.created_at > a.created_at OR (n.created_at = a.created_at AND n.id > a.id)))`).
		Order("a.created_at DESC, a.id DESC").
		Find(&out).Error
	return out, err
}

// MarkAlertRead flags the alert as read and refreshes updated_at. It returns
// ErrNotFound when no alert has the given id.
func MarkAlertRead(ctx context.Context, db *gorm.DB, id int64, now time.Time) error {
	res := db.WithContext(ctx).
		Model(&domain.Alert{}).
		Where("id = ?", id).
		Updates(map[string]any{"is_read": true, "updated_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteAlert removes one alert and reports the affected row count.
func DeleteAlert(ctx context.Context, db *gorm.DB, id int64) (int64, error) {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Alert{})
	return res.RowsAffected, res.Error
}

// DeleteAlertsByAccount removes every alert owned by accountID.
func DeleteAlertsByAccount(ctx context.Context, db *gorm.DB, accountID int64) (int64, error) {
	res := db.WithContext(ctx).Where("account_id = ?", accountID).Delete(&domain.Alert{})
	return res.RowsAffected, res.Error
}
