// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the
// DiaryEmotion model.
//
// Error semantics:
//   - A missing row is reported as ErrNotFound (gorm.ErrRecordNotFound).
//   - Other DB errors are returned unchanged; the service layer converts them
//     into envelopes.
//
// Functions:
//
//   - GetDiaryEmotion(ctx, db, diaryID) -> *domain.DiaryEmotion, error
//     Point lookup by owning diary id.
//
//   - ListDiaryEmotionsByDiaryIDs(ctx, db, diaryIDs) -> []domain.DiaryEmotion, error
//     One set-membership query, ordered by id ASC. No query for an empty set.
//
//   - UpsertDiaryEmotion(ctx, db, row) -> *domain.DiaryEmotion, error
//     Single conditional write keyed by the unique diary_id.
//
//   - DeleteDiaryEmotion(ctx, db, diaryID) -> int64, error
//     Deletes by owning diary id and reports the number of rows removed.
package repo

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/diary-emotion-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound so callers can use either sentinel.
var ErrNotFound = gorm.ErrRecordNotFound

// diaryEmotionMutable lists the columns rewritten when an upsert hits an
// existing row. created_at is deliberately absent so it stays at insert time.
var diaryEmotionMutable = []string{"emotion", "emotion_label", "confidence", "probabilities", "updated_at"}

// GetDiaryEmotion fetches the analysis result for diaryID.
func GetDiaryEmotion(ctx context.Context, db *gorm.DB, diaryID int64) (*domain.DiaryEmotion, error) {
	var e domain.DiaryEmotion
	err := db.WithContext(ctx).
		Where("diary_id = ?", diaryID).
		Order("id ASC").
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// ListDiaryEmotionsByDiaryIDs fetches every row whose diary_id is in diaryIDs
// with a single query. Rows come back ordered by id so callers folding them
// see a deterministic first row per diary. An empty input issues no query.
func ListDiaryEmotionsByDiaryIDs(ctx context.Context, db *gorm.DB, diaryIDs []int64) ([]domain.DiaryEmotion, error) {
	if len(diaryIDs) == 0 {
		return nil, nil
	}
	var out []domain.DiaryEmotion
	err := db.WithContext(ctx).
		Where("diary_id IN ?", diaryIDs).
		Order("id ASC").
		Find(&out).Error
	return out, err
}

// UpsertDiaryEmotion inserts row, or updates the existing row for the same
// diary_id in the same statement (ON CONFLICT / ON DUPLICATE KEY). The stored
// row is read back and returned so callers see the surviving id and
// created_at.
func UpsertDiaryEmotion(ctx context.Context, db *gorm.DB, row *domain.DiaryEmotion) (*domain.DiaryEmotion, error) {
	ins := *row
	ins.ID = 0
	err := db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "diary_id"}},
			DoUpdates: clause.AssignmentColumns(diaryEmotionMutable),
		}).
		Create(&ins).Error
	if err != nil {
		return nil, err
	}
	return GetDiaryEmotion(ctx, db, row.DiaryID)
}

// DeleteDiaryEmotion removes the analysis result for diaryID. Deleting a
// missing row is not an error; the affected row count is returned.
func DeleteDiaryEmotion(ctx context.Context, db *gorm.DB, diaryID int64) (int64, error) {
	res := db.WithContext(ctx).
		Where("diary_id = ?", diaryID).
		Delete(&domain.DiaryEmotion{})
	return res.RowsAffected, res.Error
}
