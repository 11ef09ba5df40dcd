package domain

import "time"

// DiaryEmotion is the persisted emotion analysis result of a single diary.
//
// DiaryID is a weak reference to the diary owned by another service: it is a
// stored identifier, not a managed relation. The unique index guarantees at
// most one result row per diary.
//
// Fields:
//   - ID: surrogate primary key, generated on insert.
//   - DiaryID: owning diary identifier (unique).
//   - Emotion: numeric emotion class returned by the model.
//   - EmotionLabel: human-readable label (nil when unresolved).
//   - Confidence: highest class probability, 0 when none were returned.
//   - Probabilities: JSON object of label→probability (nil when unavailable).
//   - CreatedAt / UpdatedAt: set on insert / refreshed on every mutation.
type DiaryEmotion struct {
	ID            int64     `gorm:"primaryKey;autoIncrement"`
	DiaryID       int64     `gorm:"not null;uniqueIndex:ux_diary_emotions_diary_id"`
	Emotion       int       `gorm:"not null"`
	EmotionLabel  *string   `gorm:"type:varchar(32)"`
	Confidence    float64   `gorm:"not null;default:0"`
	Probabilities *string   `gorm:"type:text"`
	CreatedAt     time.Time `gorm:"not null"`
	UpdatedAt     time.Time `gorm:"not null"`
}

// TableName returns the database table name for DiaryEmotion.
func (DiaryEmotion) TableName() string { return "diary_emotions" }

// DiaryEmotionModel is the transport-shaped mirror of DiaryEmotion.
type DiaryEmotionModel struct {
	ID            int64     `json:"id"                      example:"7"`
	DiaryID       int64     `json:"diary_id"                example:"42"`
	Emotion       int       `json:"emotion"                 example:"3"`
	EmotionLabel  *string   `json:"emotion_label,omitempty" example:"슬픔"`
	Confidence    float64   `json:"confidence"              example:"0.7"`
	Probabilities *string   `json:"probabilities,omitempty" example:"{\"분노\":0.7,\"슬픔\":0.2}"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// ToModel converts the entity to its transport model. A nil entity yields nil.
func (e *DiaryEmotion) ToModel() *DiaryEmotionModel {
	if e == nil {
		return nil
	}
	return &DiaryEmotionModel{
		ID:            e.ID,
		DiaryID:       e.DiaryID,
		Emotion:       e.Emotion,
		EmotionLabel:  e.EmotionLabel,
		Confidence:    e.Confidence,
		Probabilities: e.Probabilities,
		CreatedAt:     e.CreatedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

// ToEntity converts the model to a persistence entity. Missing timestamps are
// defaulted to the current UTC time. A nil model yields nil.
func (m *DiaryEmotionModel) ToEntity() *DiaryEmotion {
	if m == nil {
		return nil
	}
	created, updated := defaultTimestamps(m.CreatedAt, m.UpdatedAt)
	return &DiaryEmotion{
		ID:            m.ID,
		DiaryID:       m.DiaryID,
		Emotion:       m.Emotion,
		EmotionLabel:  m.EmotionLabel,
		Confidence:    m.Confidence,
		Probabilities: m.Probabilities,
		CreatedAt:     created,
		UpdatedAt:     updated,
	}
}

// defaultTimestamps fills zero audit timestamps with now. It is the only place
// where the create-time defaulting policy lives.
func defaultTimestamps(created, updated time.Time) (time.Time, time.Time) {
	now := time.Now().UTC()
	if created.IsZero() {
		created = now
	}
	if updated.IsZero() {
		updated = now
	}
	return created, updated
}
