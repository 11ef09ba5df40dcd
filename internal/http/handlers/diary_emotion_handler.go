// Diary emotion HTTP handlers.
//
//   - GET    /diaries/{id}/emotion
//   - POST   /diaries/{id}/emotion
//   - DELETE /diaries/{id}/emotion
//   - GET    /diary-emotions?diary_ids=1,2
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/diary-emotion-backend/internal/domain"
	"github.com/tbourn/diary-emotion-backend/internal/services"
	"github.com/tbourn/diary-emotion-backend/internal/utils"
)

// AnalyzeDiaryRequest is the JSON payload for scoring a diary.
type AnalyzeDiaryRequest struct {
	Title   string `json:"title"   example:"월요일"`
	Content string `json:"content" example:"오늘은 조금 지쳤지만 괜찮았다."`
}

// GetDiaryEmotion godoc
// @ID          getDiaryEmotion
// @Summary     Get the emotion stored for a diary
// @Tags        DiaryEmotions
// @Produce     json
// @Param       id   path  int  true  "Diary ID"  example(42)
// @Success     200  {object}  domain.Messenger{data=domain.DiaryEmotionModel}
// @Failure     400  {object}  domain.Messenger
// @Failure     404  {object}  domain.Messenger
// @Failure     500  {object}  domain.Messenger
// @Router      /diaries/{id}/emotion [get]
func (h *Handlers) GetDiaryEmotion(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	respond(c, h.emotions.Find(c.Request.Context(), id))
}

// AnalyzeDiary godoc
// @ID          analyzeDiary
// @Summary     Score a diary and store the result
// @Description Calls the inference endpoint and upserts the single result row for the diary.
// @Tags        DiaryEmotions
// @Accept      json
// @Produce     json
// @Param       id    path  int                           true  "Diary ID"  example(42)
// @Param       body  body  handlers.AnalyzeDiaryRequest  true  "Diary text"
// @Success     200  {object}  domain.Messenger{data=domain.DiaryEmotionModel}
// @Failure     400  {object}  domain.Messenger
// @Failure     429  {object}  handlers.ErrorResponse
// @Failure     500  {object}  domain.Messenger
// @Router      /diaries/{id}/emotion [post]
func (h *Handlers) AnalyzeDiary(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body AnalyzeDiaryRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	respond(c, h.emotions.AnalyzeAndSave(c.Request.Context(), services.AnalyzeRequest{
		DiaryID: &id,
		Title:   body.Title,
		Content: body.Content,
	}))
}

// DeleteDiaryEmotion godoc
// @ID          deleteDiaryEmotion
// @Summary     Delete the emotion stored for a diary
// @Tags        DiaryEmotions
// @Produce     json
// @Param       id   path  int  true  "Diary ID"
// @Success     200  {object}  domain.Messenger
// @Failure     400  {object}  domain.Messenger
// @Failure     404  {object}  domain.Messenger
// @Router      /diaries/{id}/emotion [delete]
func (h *Handlers) DeleteDiaryEmotion(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	respond(c, h.emotions.Delete(c.Request.Context(), id))
}

// BatchDiaryEmotions godoc
// @ID          batchDiaryEmotions
// @Summary     Look up emotions for many diaries
// @Description Diaries without a result are absent from the map.
// @Tags        DiaryEmotions
// @Produce     json
// @Param       diary_ids  query  string  true  "Comma-separated diary ids"  example(1,2,3)
// @Success     200  {object}  domain.Messenger{data=map[string]domain.DiaryEmotionModel}
// @Failure     400  {object}  handlers.ErrorResponse
// @Router      /diary-emotions [get]
func (h *Handlers) BatchDiaryEmotions(c *gin.Context) {
	ids, err := utils.ParseIDList(c.Query("diary_ids"))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "diary_ids: "+err.Error())
		return
	}
	respond(c, domain.OK("diary emotions found", h.emotions.FindBatch(c.Request.Context(), ids)))
}
