// Package loader coalesces concurrent point lookups into batched queries.
//
// Lookups that arrive within a short wait window are collected and served by
// one set-membership query through the same first-wins fold the batch
// endpoints use. Results are never cached across batches, so a write is
// visible to the next lookup.
package loader

import (
	"context"
	"time"

	"github.com/graph-gophers/dataloader/v7"
	"gorm.io/gorm"

	"github.com/tbourn/diary-emotion-backend/internal/domain"
	"github.com/tbourn/diary-emotion-backend/internal/repo"
	"github.com/tbourn/diary-emotion-backend/internal/utils"
)

// DefaultWait is how long a batch stays open for more keys.
const DefaultWait = 2 * time.Millisecond

// DiaryEmotionLoader batches lookups of analysis results by diary id.
type DiaryEmotionLoader struct {
	db *gorm.DB
	l  *dataloader.Loader[int64, *domain.DiaryEmotionModel]
}

// NewDiaryEmotionLoader builds a loader over db. A non-positive wait falls
// back to DefaultWait.
func NewDiaryEmotionLoader(db *gorm.DB, wait time.Duration) *DiaryEmotionLoader {
	if wait <= 0 {
		wait = DefaultWait
	}
	dl := &DiaryEmotionLoader{db: db}
	dl.l = dataloader.NewBatchedLoader(
		dl.fetch,
		dataloader.WithCache[int64, *domain.DiaryEmotionModel](&dataloader.NoCache[int64, *domain.DiaryEmotionModel]{}),
		dataloader.WithWait[int64, *domain.DiaryEmotionModel](wait),
	)
	return dl
}

// Load returns the analysis result for diaryID, or repo.ErrNotFound. It
// returns ctx.Err() once ctx is done, without affecting other callers in the
// same batch.
func (dl *DiaryEmotionLoader) Load(ctx context.Context, diaryID int64) (*domain.DiaryEmotionModel, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	thunk := dl.l.Load(ctx, diaryID)

	type result struct {
		m   *domain.DiaryEmotionModel
		err error
	}
	done := make(chan result, 1)
	go func() {
		m, err := thunk()
		done <- result{m, err}
	}()

	select {
	case r := <-done:
		return r.m, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// fetch runs under the context of whichever caller opened the batch, so the
// query is detached from that caller's cancellation.
func (dl *DiaryEmotionLoader) fetch(ctx context.Context, ids []int64) []*dataloader.Result[*domain.DiaryEmotionModel] {
	ctx = context.WithoutCancel(ctx)
	rows, err := repo.ListDiaryEmotionsByDiaryIDs(ctx, dl.db, utils.UniqueIDs(ids))
	if err != nil {
		return handleError[*domain.DiaryEmotionModel](len(ids), err)
	}

	byDiary := utils.FoldFirst(rows,
		func(e *domain.DiaryEmotion) (int64, bool) { return e.DiaryID, e.DiaryID > 0 },
		func(e *domain.DiaryEmotion) *domain.DiaryEmotionModel { return e.ToModel() },
	)

	results := make([]*dataloader.Result[*domain.DiaryEmotionModel], 0, len(ids))
	for _, id := range ids {
		if m, ok := byDiary[id]; ok {
			results = append(results, &dataloader.Result[*domain.DiaryEmotionModel]{Data: m})
		} else {
			results = append(results, &dataloader.Result[*domain.DiaryEmotionModel]{Error: repo.ErrNotFound})
		}
	}
	return results
}

// handleError fans a batch-level error out to every key in the batch.
func handleError[T any](n int, err error) []*dataloader.Result[T] {
	out := make([]*dataloader.Result[T], n)
	for i := range out {
		out[i] = &dataloader.Result[T]{Error: err}
	}
	return out
}
