package handlers

import (
	"context"

	"github.com/tbourn/diary-emotion-backend/internal/domain"
	"github.com/tbourn/diary-emotion-backend/internal/services"
)

// DiaryEmotionService is the diary emotion surface consumed by the handlers.
// *services.DiaryEmotionService implements it.
type DiaryEmotionService interface {
	Find(ctx context.Context, diaryID int64) domain.Messenger
	FindBatch(ctx context.Context, diaryIDs []int64) map[int64]*domain.DiaryEmotionModel
	AnalyzeAndSave(ctx context.Context, req services.AnalyzeRequest) domain.Messenger
	Delete(ctx context.Context, diaryID int64) domain.Messenger
}

// AlertService is the alert surface consumed by the handlers.
// *services.AlertService implements it.
type AlertService interface {
	Create(ctx context.Context, req services.CreateAlertRequest) domain.Messenger
	CreateIdempotent(ctx context.Context, key string, req services.CreateAlertRequest) (domain.Messenger, bool)
	Find(ctx context.Context, id int64) domain.Messenger
	ListByAccount(ctx context.Context, accountID int64, page, pageSize int) domain.Messenger
	FindLatestBatch(ctx context.Context, accountIDs []int64) map[int64]*domain.AlertModel
	MarkRead(ctx context.Context, id int64) domain.Messenger
	Delete(ctx context.Context, id int64) domain.Messenger
	DeleteByAccount(ctx context.Context, accountID int64) domain.Messenger
}

// Handlers groups the HTTP endpoints.
type Handlers struct {
	emotions DiaryEmotionService
	alerts   AlertService
}

// New binds handlers to their services.
func New(emotions DiaryEmotionService, alerts AlertService) *Handlers {
	return &Handlers{emotions: emotions, alerts: alerts}
}
