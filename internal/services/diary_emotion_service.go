// Package services – DiaryEmotionService
//
// DiaryEmotionService scores diary text with the external inference endpoint
// and keeps at most one result row per diary. The external call always
// happens before, and outside of, the database transaction; a failed call
// leaves any previous result untouched.
//
// Observability: public methods are OpenTelemetry-instrumented with the diary
// id and resulting envelope code. Diary text is never logged.
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/diary-emotion-backend/internal/domain"
	"github.com/tbourn/diary-emotion-backend/internal/inference"
	"github.com/tbourn/diary-emotion-backend/internal/loader"
	"github.com/tbourn/diary-emotion-backend/internal/lock"
	"github.com/tbourn/diary-emotion-backend/internal/repo"
	"github.com/tbourn/diary-emotion-backend/internal/utils"
)

const defaultLockTTL = 30 * time.Second

// Analyzer scores a piece of text. *inference.Client satisfies it.
type Analyzer interface {
	Analyze(ctx context.Context, req inference.Request) (*inference.Response, error)
}

// AnalyzeRequest carries the diary fields to score. A nil DiaryID is invalid.
type AnalyzeRequest struct {
	DiaryID *int64
	Title   string
	Content string
}

// marshalProbabilities is swapped in tests to force encoding failures.
var marshalProbabilities = func(p map[string]float64) ([]byte, error) { return json.Marshal(p) }

// DiaryEmotionService owns analysis results keyed by diary id.
type DiaryEmotionService struct {
	DB       *gorm.DB
	Analyzer Analyzer

	// Optional collaborators
	Locker  lock.Locker
	LockTTL time.Duration
	Loader  *loader.DiaryEmotionLoader

	// Now is the clock; nil means time.Now in UTC.
	Now func() time.Time
}

// NewDiaryEmotionService wires a service with request coalescing for Find
// and a no-op lock.
func NewDiaryEmotionService(db *gorm.DB, a Analyzer) *DiaryEmotionService {
	return &DiaryEmotionService{
		DB:       db,
		Analyzer: a,
		Locker:   lock.NopLocker{},
		LockTTL:  defaultLockTTL,
		Loader:   loader.NewDiaryEmotionLoader(db, loader.DefaultWait),
	}
}

func (s *DiaryEmotionService) tracer() trace.Tracer {
	return otel.Tracer("services/DiaryEmotionService")
}

func (s *DiaryEmotionService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Find returns the stored analysis result for diaryID.
func (s *DiaryEmotionService) Find(ctx context.Context, diaryID int64) (out domain.Messenger) {
	ctx, span := s.tracer().Start(ctx, "Find", trace.WithAttributes(attribute.Int64("diary.id", diaryID)))
	defer span.End()
	defer func() { finish(span, out) }()
	defer recoverTo(ctx, "DiaryEmotionService.Find", &out)

	if diaryID <= 0 {
		return domain.BadRequest(ErrDiaryIDRequired.Error())
	}

	m, err := s.load(ctx, diaryID)
	switch {
	case errors.Is(err, repo.ErrNotFound):
		return domain.NotFound(ErrDiaryEmotionNotFound.Error())
	case err != nil:
		return domain.InternalError("failed to load diary emotion", err)
	}
	return domain.OK("diary emotion found", m)
}

func (s *DiaryEmotionService) load(ctx context.Context, diaryID int64) (*domain.DiaryEmotionModel, error) {
	if s.Loader != nil {
		return s.Loader.Load(ctx, diaryID)
	}
	e, err := repo.GetDiaryEmotion(ctx, s.DB, diaryID)
	if err != nil {
		return nil, err
	}
	return e.ToModel(), nil
}

// FindBatch maps each diary id to its stored result with a single query.
// Ids without a result are absent from the map. Failures are logged and
// yield an empty map.
func (s *DiaryEmotionService) FindBatch(ctx context.Context, diaryIDs []int64) (out map[int64]*domain.DiaryEmotionModel) {
	ctx, span := s.tracer().Start(ctx, "FindBatch", trace.WithAttributes(attribute.Int("diary.count", len(diaryIDs))))
	defer span.End()

	out = map[int64]*domain.DiaryEmotionModel{}
	defer func() {
		if r := recover(); r != nil {
			loggerFrom(ctx).Error().Interface("panic", r).Msg("diary emotion batch lookup panicked")
			out = map[int64]*domain.DiaryEmotionModel{}
		}
	}()

	ids := utils.UniqueIDs(diaryIDs)
	if len(ids) == 0 {
		return out
	}
	rows, err := repo.ListDiaryEmotionsByDiaryIDs(ctx, s.DB, ids)
	if err != nil {
		loggerFrom(ctx).Error().Err(err).Int("diary_count", len(ids)).Msg("diary emotion batch lookup failed")
		span.RecordError(err)
		return out
	}
	return utils.FoldFirst(rows,
		func(e *domain.DiaryEmotion) (int64, bool) { return e.DiaryID, e.DiaryID > 0 },
		func(e *domain.DiaryEmotion) *domain.DiaryEmotionModel { return e.ToModel() },
	)
}

// AnalyzeAndSave scores the diary text and stores the result, replacing any
// previous result for the same diary while keeping its id and created_at.
func (s *DiaryEmotionService) AnalyzeAndSave(ctx context.Context, req AnalyzeRequest) (out domain.Messenger) {
	ctx, span := s.tracer().Start(ctx, "AnalyzeAndSave")
	defer span.End()
	defer func() { finish(span, out) }()
	defer recoverTo(ctx, "DiaryEmotionService.AnalyzeAndSave", &out)

	if req.DiaryID == nil || *req.DiaryID <= 0 {
		return domain.BadRequest(ErrDiaryIDRequired.Error())
	}
	diaryID := *req.DiaryID
	span.SetAttributes(attribute.Int64("diary.id", diaryID))

	text := diaryText(req.Title, req.Content)
	if text == "" {
		return domain.BadRequest(ErrEmptyContent.Error())
	}

	lg := loggerFrom(ctx).With().Int64("diary_id", diaryID).Logger()

	resp, err := s.Analyzer.Analyze(ctx, inference.Request{Text: text})
	if err != nil {
		lg.Warn().Err(err).Msg("emotion inference failed")
		return domain.InternalError(ErrAnalysisFailed.Error(), err)
	}

	row := &domain.DiaryEmotion{
		DiaryID:       diaryID,
		Emotion:       *resp.Emotion,
		EmotionLabel:  resp.ResolvedLabel(),
		Confidence:    resp.MaxProbability(),
		Probabilities: s.encodeProbabilities(&lg, resp.Probabilities),
	}

	saved, err := s.save(ctx, row)
	switch {
	case errors.Is(err, lock.ErrNotObtained):
		return domain.InternalError(ErrAnalysisInProgress.Error(), nil)
	case err != nil:
		lg.Error().Err(err).Msg("saving diary emotion failed")
		return domain.InternalError("failed to save diary emotion", err)
	}

	lg.Info().Int("emotion", saved.Emotion).Float64("confidence", saved.Confidence).Msg("diary emotion saved")
	return domain.OK("diary emotion saved", saved.ToModel())
}

// save holds the per-diary lock around one transaction that upserts row.
func (s *DiaryEmotionService) save(ctx context.Context, row *domain.DiaryEmotion) (*domain.DiaryEmotion, error) {
	locker := s.Locker
	if locker == nil {
		locker = lock.NopLocker{}
	}
	ttl := s.LockTTL
	if ttl <= 0 {
		ttl = defaultLockTTL
	}

	release, err := locker.Obtain(ctx, fmt.Sprintf("diary-emotion:%d", row.DiaryID), ttl)
	if err != nil {
		return nil, err
	}
	defer func() {
		if rerr := release(context.WithoutCancel(ctx)); rerr != nil {
			loggerFrom(ctx).Warn().Err(rerr).Int64("diary_id", row.DiaryID).Msg("releasing diary lock failed")
		}
	}()

	var saved *domain.DiaryEmotion
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := s.now()
		row.CreatedAt, row.UpdatedAt = now, now

		existing, err := repo.GetDiaryEmotion(ctx, tx, row.DiaryID)
		switch {
		case err == nil:
			row.ID = existing.ID
			row.CreatedAt = existing.CreatedAt
			if !now.After(existing.UpdatedAt) {
				row.UpdatedAt = existing.UpdatedAt.Add(time.Millisecond)
			}
		case !errors.Is(err, repo.ErrNotFound):
			return err
		}

		saved, err = repo.UpsertDiaryEmotion(ctx, tx, row)
		return err
	})
	return saved, err
}

// encodeProbabilities serializes p for storage. Empty input and encoding
// failures both yield nil.
func (s *DiaryEmotionService) encodeProbabilities(lg *zerolog.Logger, p map[string]float64) *string {
	if len(p) == 0 {
		return nil
	}
	b, err := marshalProbabilities(p)
	if err != nil {
		lg.Warn().Err(err).Msg("probabilities not stored")
		return nil
	}
	out := string(b)
	return &out
}

// Delete removes the result for diaryID. Deleting a missing result succeeds.
func (s *DiaryEmotionService) Delete(ctx context.Context, diaryID int64) (out domain.Messenger) {
	ctx, span := s.tracer().Start(ctx, "Delete", trace.WithAttributes(attribute.Int64("diary.id", diaryID)))
	defer span.End()
	defer func() { finish(span, out) }()
	defer recoverTo(ctx, "DiaryEmotionService.Delete", &out)

	if diaryID <= 0 {
		return domain.BadRequest(ErrDiaryIDRequired.Error())
	}

	var n int64
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		n, err = repo.DeleteDiaryEmotion(ctx, tx, diaryID)
		return err
	})
	if err != nil {
		return domain.InternalError("failed to delete diary emotion", err)
	}
	span.SetAttributes(attribute.Int64("rows.deleted", n))
	return domain.OK("diary emotion deleted", nil)
}

// diaryText joins the trimmed title and content with a newline, skipping
// blank parts.
func diaryText(title, content string) string {
	parts := make([]string, 0, 2)
	for _, p := range []string{title, content} {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n")
}
