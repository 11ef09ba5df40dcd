// Alert HTTP handlers.
//
//   - POST   /accounts/{id}/alerts   (Idempotency-Key aware)
//   - GET    /accounts/{id}/alerts
//   - DELETE /accounts/{id}/alerts
//   - GET    /alerts/latest?account_ids=1,2
//   - GET    /alerts/{id}
//   - PATCH  /alerts/{id}/read
//   - DELETE /alerts/{id}
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/diary-emotion-backend/internal/domain"
	"github.com/tbourn/diary-emotion-backend/internal/http/middleware"
	"github.com/tbourn/diary-emotion-backend/internal/services"
	"github.com/tbourn/diary-emotion-backend/internal/utils"
)

// HeaderIdempotencyReplayed is set to "true" when a response replays an
// earlier alert creation.
const HeaderIdempotencyReplayed = "Idempotency-Replayed"

// CreateAlertBody is the JSON payload for creating an alert.
type CreateAlertBody struct {
	Type    string `json:"type"    example:"reminder"`
	Title   string `json:"title"   example:"Write today's diary"`
	Message string `json:"message" example:"You have not written a diary entry today."`
}

// CreateAlert godoc
// @ID          createAlert
// @Summary     Create an alert for an account
// @Description A repeated Idempotency-Key for the same account replays the first alert.
// @Tags        Alerts
// @Accept      json
// @Produce     json
// @Param       id               path    int                       true   "Account ID"
// @Param       Idempotency-Key  header  string                    false  "Retry-safe key"  example(create-7f1c)
// @Param       body             body    handlers.CreateAlertBody  true   "Alert"
// @Success     200  {object}  domain.Messenger{data=domain.AlertModel}
// @Header      200  {string}  Idempotency-Replayed  "true when replayed"
// @Failure     400  {object}  domain.Messenger
// @Failure     500  {object}  domain.Messenger
// @Router      /accounts/{id}/alerts [post]
func (h *Handlers) CreateAlert(c *gin.Context) {
	accountID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var body CreateAlertBody
	if err := c.ShouldBindJSON(&body); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}
	req := services.CreateAlertRequest{
		AccountID: &accountID,
		Type:      body.Type,
		Title:     body.Title,
		Message:   body.Message,
	}

	key, hasKey := middleware.GetIdempotencyKey(c)
	if !hasKey {
		respond(c, h.alerts.Create(c.Request.Context(), req))
		return
	}
	m, replayed := h.alerts.CreateIdempotent(c.Request.Context(), key, req)
	if replayed {
		c.Header(HeaderIdempotencyReplayed, "true")
	}
	respond(c, m)
}

// ListAccountAlerts godoc
// @ID          listAccountAlerts
// @Summary     List an account's alerts (newest first)
// @Tags        Alerts
// @Produce     json
// @Param       id         path   int  true   "Account ID"
// @Param       page       query  int  false  "Page number"     minimum(1) default(1)
// @Param       page_size  query  int  false  "Items per page"  minimum(1) maximum(100) default(20)
// @Success     200  {object}  domain.Messenger{data=domain.AlertPage}
// @Failure     400  {object}  domain.Messenger
// @Failure     500  {object}  domain.Messenger
// @Router      /accounts/{id}/alerts [get]
func (h *Handlers) ListAccountAlerts(c *gin.Context) {
	accountID, ok := pathID(c, "id")
	if !ok {
		return
	}
	page := utils.AtoiDefault(c.Query("page"), 1)
	pageSize := utils.AtoiDefault(c.Query("page_size"), 0)
	respond(c, h.alerts.ListByAccount(c.Request.Context(), accountID, page, pageSize))
}

// DeleteAccountAlerts godoc
// @ID          deleteAccountAlerts
// @Summary     Delete every alert of an account
// @Tags        Alerts
// @Produce     json
// @Param       id   path  int  true  "Account ID"
// @Success     200  {object}  domain.Messenger
// @Failure     400  {object}  domain.Messenger
// @Router      /accounts/{id}/alerts [delete]
func (h *Handlers) DeleteAccountAlerts(c *gin.Context) {
	accountID, ok := pathID(c, "id")
	if !ok {
		return
	}
	respond(c, h.alerts.DeleteByAccount(c.Request.Context(), accountID))
}

// LatestAlerts godoc
// @ID          latestAlerts
// @Summary     Newest alert per account
// @Description Accounts without alerts are absent from the map.
// @Tags        Alerts
// @Produce     json
// @Param       account_ids  query  string  true  "Comma-separated account ids"  example(1,2)
// @Success     200  {object}  domain.Messenger{data=map[string]domain.AlertModel}
// @Failure     400  {object}  handlers.ErrorResponse
// @Router      /alerts/latest [get]
func (h *Handlers) LatestAlerts(c *gin.Context) {
	ids, err := utils.ParseIDList(c.Query("account_ids"))
	if err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "account_ids: "+err.Error())
		return
	}
	respond(c, domain.OK("latest alerts found", h.alerts.FindLatestBatch(c.Request.Context(), ids)))
}

// GetAlert godoc
// @ID          getAlert
// @Summary     Get an alert
// @Tags        Alerts
// @Produce     json
// @Param       id   path  int  true  "Alert ID"
// @Success     200  {object}  domain.Messenger{data=domain.AlertModel}
// @Failure     400  {object}  domain.Messenger
// @Failure     404  {object}  domain.Messenger
// @Router      /alerts/{id} [get]
func (h *Handlers) GetAlert(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	respond(c, h.alerts.Find(c.Request.Context(), id))
}

// MarkAlertRead godoc
// @ID          markAlertRead
// @Summary     Mark an alert as read
// @Tags        Alerts
// @Produce     json
// @Param       id   path  int  true  "Alert ID"
// @Success     200  {object}  domain.Messenger
// @Failure     400  {object}  domain.Messenger
// @Failure     404  {object}  domain.Messenger
// @Router      /alerts/{id}/read [patch]
func (h *Handlers) MarkAlertRead(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	respond(c, h.alerts.MarkRead(c.Request.Context(), id))
}

// DeleteAlert godoc
// @ID          deleteAlert
// @Summary     Delete an alert
// @Tags        Alerts
// @Produce     json
// @Param       id   path  int  true  "Alert ID"
// @Success     200  {object}  domain.Messenger
// @Failure     400  {object}  domain.Messenger
// @Failure     404  {object}  domain.Messenger
// @Router      /alerts/{id} [delete]
func (h *Handlers) DeleteAlert(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	respond(c, h.alerts.Delete(c.Request.Context(), id))
}
