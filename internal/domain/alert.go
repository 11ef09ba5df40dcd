package domain

import "time"

// Alert types accepted by the alert service.
const (
	AlertTypeInfo     = "info"
	AlertTypeWarning  = "warning"
	AlertTypeReminder = "reminder"
	AlertTypeSystem   = "system"
)

// ValidAlertType reports whether t is one of the known alert types.
func ValidAlertType(t string) bool {
	switch t {
	case AlertTypeInfo, AlertTypeWarning, AlertTypeReminder, AlertTypeSystem:
		return true
	}
	return false
}

// Alert is a notification addressed to an account.
//
// AccountID is a weak reference to the account service; a nil AccountID marks
// a system-wide alert that is not owned by any account.
type Alert struct {
	ID        int64     `gorm:"primaryKey;autoIncrement"`
	AccountID *int64    `gorm:"index:idx_alerts_account_created,priority:1"`
	Type      string    `gorm:"type:varchar(16);not null;default:'info'"`
	Title     string    `gorm:"type:varchar(255);not null"`
	Message   string    `gorm:"type:text;not null"`
	IsRead    bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"not null;index:idx_alerts_account_created,priority:2"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName returns the database table name for Alert.
func (Alert) TableName() string { return "alerts" }

// AlertModel is the transport-shaped mirror of Alert.
type AlertModel struct {
	ID        int64     `json:"id"                   example:"12"`
	AccountID *int64    `json:"account_id,omitempty" example:"5"`
	Type      string    `json:"type"                 example:"reminder"`
	Title     string    `json:"title"                example:"Write today's diary"`
	Message   string    `json:"message"              example:"You have not written a diary entry today."`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToModel converts the entity to its transport model. A nil entity yields nil.
func (e *Alert) ToModel() *AlertModel {
	if e == nil {
		return nil
	}
	return &AlertModel{
		ID:        e.ID,
		AccountID: e.AccountID,
		Type:      e.Type,
		Title:     e.Title,
		Message:   e.Message,
		IsRead:    e.IsRead,
		CreatedAt: e.CreatedAt,
		UpdatedAt: e.UpdatedAt,
	}
}

// ToEntity converts the model to a persistence entity, defaulting missing
// timestamps. A nil model yields nil.
func (m *AlertModel) ToEntity() *Alert {
	if m == nil {
		return nil
	}
	created, updated := defaultTimestamps(m.CreatedAt, m.UpdatedAt)
	return &Alert{
		ID:        m.ID,
		AccountID: m.AccountID,
		Type:      m.Type,
		Title:     m.Title,
		Message:   m.Message,
		IsRead:    m.IsRead,
		CreatedAt: created,
		UpdatedAt: updated,
	}
}

// AlertPage is a page of alerts for one account together with counters.
type AlertPage struct {
	Alerts   []*AlertModel `json:"alerts"`
	Page     int           `json:"page"`
	PageSize int           `json:"page_size"`
	Total    int64         `json:"total"`
	Unread   int64         `json:"unread"`
}
