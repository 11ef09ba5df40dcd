package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/diary-emotion-backend/internal/domain"
	"github.com/tbourn/diary-emotion-backend/internal/http/middleware"
	"github.com/tbourn/diary-emotion-backend/internal/services"
)

// ---------- stubs ----------

type stubEmotions struct {
	find     domain.Messenger
	del      domain.Messenger
	analyze  domain.Messenger
	batch    map[int64]*domain.DiaryEmotionModel
	lastID   int64
	lastReq  services.AnalyzeRequest
	batchIDs []int64
}

func (s *stubEmotions) Find(_ context.Context, id int64) domain.Messenger {
	s.lastID = id
	return s.find
}

func (s *stubEmotions) FindBatch(_ context.Context, ids []int64) map[int64]*domain.DiaryEmotionModel {
	s.batchIDs = ids
	return s.batch
}

func (s *stubEmotions) AnalyzeAndSave(_ context.Context, req services.AnalyzeRequest) domain.Messenger {
	s.lastReq = req
	return s.analyze
}

func (s *stubEmotions) Delete(_ context.Context, id int64) domain.Messenger {
	s.lastID = id
	return s.del
}

type stubAlerts struct {
	resp       domain.Messenger
	replayed   bool
	latest     map[int64]*domain.AlertModel
	calls      []string
	lastID     int64
	lastKey    string
	lastReq    services.CreateAlertRequest
	page, size int
}

func (s *stubAlerts) Create(_ context.Context, req services.CreateAlertRequest) domain.Messenger {
	s.calls = append(s.calls, "Create")
	s.lastReq = req
	return s.resp
}

func (s *stubAlerts) CreateIdempotent(_ context.Context, key string, req services.CreateAlertRequest) (domain.Messenger, bool) {
	s.calls = append(s.calls, "CreateIdempotent")
	s.lastKey, s.lastReq = key, req
	return s.resp, s.replayed
}

func (s *stubAlerts) Find(_ context.Context, id int64) domain.Messenger {
	s.calls = append(s.calls, "Find")
	s.lastID = id
	return s.resp
}

func (s *stubAlerts) ListByAccount(_ context.Context, id int64, page, size int) domain.Messenger {
	s.calls = append(s.calls, "ListByAccount")
	s.lastID, s.page, s.size = id, page, size
	return s.resp
}

func (s *stubAlerts) FindLatestBatch(_ context.Context, ids []int64) map[int64]*domain.AlertModel {
	s.calls = append(s.calls, "FindLatestBatch")
	return s.latest
}

func (s *stubAlerts) MarkRead(_ context.Context, id int64) domain.Messenger {
	s.calls = append(s.calls, "MarkRead")
	s.lastID = id
	return s.resp
}

func (s *stubAlerts) Delete(_ context.Context, id int64) domain.Messenger {
	s.calls = append(s.calls, "Delete")
	s.lastID = id
	return s.resp
}

func (s *stubAlerts) DeleteByAccount(_ context.Context, id int64) domain.Messenger {
	s.calls = append(s.calls, "DeleteByAccount")
	s.lastID = id
	return s.resp
}

// ---------- helpers ----------

func newRouter(h *Handlers) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/diaries/:id/emotion", h.GetDiaryEmotion)
	r.POST("/diaries/:id/emotion", h.AnalyzeDiary)
	r.DELETE("/diaries/:id/emotion", h.DeleteDiaryEmotion)
	r.GET("/diary-emotions", h.BatchDiaryEmotions)

	r.POST("/accounts/:id/alerts", middleware.IdempotencyValidator(middleware.IdempotencyOptions{}, nil), h.CreateAlert)
	r.GET("/accounts/:id/alerts", h.ListAccountAlerts)
	r.DELETE("/accounts/:id/alerts", h.DeleteAccountAlerts)
	r.GET("/alerts/latest", h.LatestAlerts)
	r.GET("/alerts/:id", h.GetAlert)
	r.PATCH("/alerts/:id/read", h.MarkAlertRead)
	r.DELETE("/alerts/:id", h.DeleteAlert)
	return r
}

func send(r *gin.Engine, method, path, body string, hdr map[string]string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	for k, v := range hdr {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &m); err != nil {
		t.Fatalf("json: %v (%s)", err, w.Body.String())
	}
	return m
}

// ---------- diary emotions ----------

func TestGetDiaryEmotion(t *testing.T) {
	label := "슬픔"
	emo := &stubEmotions{find: domain.OK("diary emotion found", &domain.DiaryEmotionModel{ID: 1, DiaryID: 42, Emotion: 3, EmotionLabel: &label})}
	r := newRouter(New(emo, &stubAlerts{}))

	w := send(r, http.MethodGet, "/diaries/42/emotion", "", nil)
	if w.Code != http.StatusOK || emo.lastID != 42 {
		t.Fatalf("status=%d id=%d", w.Code, emo.lastID)
	}
	data := decode(t, w)["data"].(map[string]any)
	if data["diary_id"].(float64) != 42 || data["emotion_label"] != label {
		t.Fatalf("unexpected data: %v", data)
	}

	emo.find = domain.NotFound("diary emotion not found")
	if w := send(r, http.MethodGet, "/diaries/7/emotion", "", nil); w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestGetDiaryEmotion_BadPathID(t *testing.T) {
	emo := &stubEmotions{}
	r := newRouter(New(emo, &stubAlerts{}))

	w := send(r, http.MethodGet, "/diaries/abc/emotion", "", nil)
	if w.Code != http.StatusBadRequest || decode(t, w)["code"] != ErrCodeBadRequest {
		t.Fatalf("unexpected: %d %s", w.Code, w.Body.String())
	}
	if emo.lastID != 0 {
		t.Fatalf("service must not be called")
	}
}

func TestAnalyzeDiary(t *testing.T) {
	emo := &stubEmotions{analyze: domain.OK("diary emotion saved", &domain.DiaryEmotionModel{DiaryID: 5})}
	r := newRouter(New(emo, &stubAlerts{}))

	w := send(r, http.MethodPost, "/diaries/5/emotion", `{"title":"제목","content":"본문"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if emo.lastReq.DiaryID == nil || *emo.lastReq.DiaryID != 5 || emo.lastReq.Title != "제목" || emo.lastReq.Content != "본문" {
		t.Fatalf("unexpected request: %+v", emo.lastReq)
	}

	emo.analyze = domain.InternalError("emotion analysis failed", nil)
	if w := send(r, http.MethodPost, "/diaries/5/emotion", `{"content":"x"}`, nil); w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", w.Code)
	}
	if w := send(r, http.MethodPost, "/diaries/5/emotion", `{`, nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad JSON, got %d", w.Code)
	}
}

func TestDeleteDiaryEmotion(t *testing.T) {
	emo := &stubEmotions{del: domain.OK("diary emotion deleted", nil)}
	r := newRouter(New(emo, &stubAlerts{}))

	w := send(r, http.MethodDelete, "/diaries/9/emotion", "", nil)
	if w.Code != http.StatusOK || emo.lastID != 9 {
		t.Fatalf("status=%d id=%d", w.Code, emo.lastID)
	}
	if _, has := decode(t, w)["data"]; has {
		t.Fatalf("delete must not carry data")
	}
}

func TestBatchDiaryEmotions(t *testing.T) {
	emo := &stubEmotions{batch: map[int64]*domain.DiaryEmotionModel{1: {DiaryID: 1, Emotion: 2}}}
	r := newRouter(New(emo, &stubAlerts{}))

	w := send(r, http.MethodGet, "/diary-emotions?diary_ids=1,2,1", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if len(emo.batchIDs) != 2 || emo.batchIDs[0] != 1 || emo.batchIDs[1] != 2 {
		t.Fatalf("ids = %v", emo.batchIDs)
	}
	data := decode(t, w)["data"].(map[string]any)
	if _, ok := data["1"]; !ok || len(data) != 1 {
		t.Fatalf("unexpected data: %v", data)
	}

	if w := send(r, http.MethodGet, "/diary-emotions?diary_ids=1,x", "", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

// ---------- alerts ----------

func TestCreateAlert_WithoutKey(t *testing.T) {
	al := &stubAlerts{resp: domain.OK("alert created", &domain.AlertModel{ID: 3})}
	r := newRouter(New(&stubEmotions{}, al))

	w := send(r, http.MethodPost, "/accounts/7/alerts", `{"type":"reminder","title":"t","message":"m"}`, nil)
	if w.Code != http.StatusOK || len(al.calls) != 1 || al.calls[0] != "Create" {
		t.Fatalf("status=%d calls=%v", w.Code, al.calls)
	}
	if al.lastReq.AccountID == nil || *al.lastReq.AccountID != 7 || al.lastReq.Type != "reminder" {
		t.Fatalf("unexpected req: %+v", al.lastReq)
	}
	if w.Header().Get(HeaderIdempotencyReplayed) != "" {
		t.Fatalf("replay header must be absent")
	}
}

func TestCreateAlert_WithKeyAndReplay(t *testing.T) {
	al := &stubAlerts{resp: domain.OK("alert created", &domain.AlertModel{ID: 3}), replayed: true}
	r := newRouter(New(&stubEmotions{}, al))

	w := send(r, http.MethodPost, "/accounts/7/alerts", `{"title":"t","message":"m"}`,
		map[string]string{middleware.HeaderIdempotencyKey: "k-1"})
	if w.Code != http.StatusOK || al.calls[0] != "CreateIdempotent" || al.lastKey != "k-1" {
		t.Fatalf("status=%d calls=%v key=%q", w.Code, al.calls, al.lastKey)
	}
	if w.Header().Get(HeaderIdempotencyReplayed) != "true" {
		t.Fatalf("expected replay header")
	}

	w = send(r, http.MethodPost, "/accounts/7/alerts", `{"title":"t","message":"m"}`,
		map[string]string{middleware.HeaderIdempotencyKey: "bad key"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed key, got %d", w.Code)
	}
}

func TestListAccountAlerts_PassesPaging(t *testing.T) {
	al := &stubAlerts{resp: domain.OK("alerts found", &domain.AlertPage{Page: 2, PageSize: 5})}
	r := newRouter(New(&stubEmotions{}, al))

	w := send(r, http.MethodGet, "/accounts/4/alerts?page=2&page_size=5", "", nil)
	if w.Code != http.StatusOK || al.lastID != 4 || al.page != 2 || al.size != 5 {
		t.Fatalf("status=%d id=%d page=%d size=%d", w.Code, al.lastID, al.page, al.size)
	}

	_ = send(r, http.MethodGet, "/accounts/4/alerts?page=x", "", nil)
	if al.page != 1 || al.size != 0 {
		t.Fatalf("defaults not applied: page=%d size=%d", al.page, al.size)
	}
}

func TestAlertRoutes_Dispatch(t *testing.T) {
	cases := []struct {
		method, path, want string
	}{
		{http.MethodGet, "/alerts/11", "Find"},
		{http.MethodPatch, "/alerts/11/read", "MarkRead"},
		{http.MethodDelete, "/alerts/11", "Delete"},
		{http.MethodDelete, "/accounts/11/alerts", "DeleteByAccount"},
	}
	for _, tc := range cases {
		al := &stubAlerts{resp: domain.NotFound("alert not found")}
		r := newRouter(New(&stubEmotions{}, al))

		w := send(r, tc.method, tc.path, "", nil)
		if w.Code != http.StatusNotFound || len(al.calls) != 1 || al.calls[0] != tc.want || al.lastID != 11 {
			t.Fatalf("%s %s: status=%d calls=%v id=%d", tc.method, tc.path, w.Code, al.calls, al.lastID)
		}
	}
}

func TestLatestAlerts(t *testing.T) {
	al := &stubAlerts{latest: map[int64]*domain.AlertModel{2: {ID: 9}}}
	r := newRouter(New(&stubEmotions{}, al))

	w := send(r, http.MethodGet, "/alerts/latest?account_ids=2,3", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	data := decode(t, w)["data"].(map[string]any)
	if len(data) != 1 || data["2"].(map[string]any)["id"].(float64) != 9 {
		t.Fatalf("unexpected data: %v", data)
	}

	if w := send(r, http.MethodGet, "/alerts/latest?account_ids=-1", "", nil); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}
