package domain

import "time"

// Idempotency records the alert produced by a previously processed create
// request, keyed by (account_id, key). A retried request carrying the same
// Idempotency-Key replays the recorded alert instead of inserting a new one.
type Idempotency struct {
	ID        string    `gorm:"type:char(36);primaryKey"`
	AccountID int64     `gorm:"not null;uniqueIndex:ux_idempotency_account_key,priority:1"`
	Key       string    `gorm:"type:varchar(200);not null;uniqueIndex:ux_idempotency_account_key,priority:2"`
	AlertID   int64     `gorm:"not null"`
	Status    int       `gorm:"not null"`
	CreatedAt time.Time `gorm:"type:DATETIME;not null;autoCreateTime"`
	ExpiresAt time.Time `gorm:"type:DATETIME;not null;index"`
}

// TableName implements the GORM tabler interface.
func (Idempotency) TableName() string { return "idempotency" }
