package appeals

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tumaini/sponsorship/pkg/common"
	"github.com/tumaini/sponsorship/pkg/middleware"
	"github.com/tumaini/sponsorship/pkg/pagination"
)

// Handler handles HTTP requests for appeals
type Handler struct {
	service *Service
}

// NewHandler creates a new appeal handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// SubmitAppealRequest is the payload for a sponsor appeal
type SubmitAppealRequest struct {
	CaseID     uuid.UUID `json:"case_id" binding:"required"`
	AppealText string    `json:"appeal_text" binding:"required"`
	Attachment *string   `json:"attachment"`
}

// ReviewAppealRequest is the payload for an admin appeal decision
type ReviewAppealRequest struct {
	Decision      AppealDecision `json:"decision" binding:"required"`
	Justification string         `json:"justification" binding:"required"`
}

// SubmitAppeal files a dispute against the sponsor's own case
// POST /api/v1/fraud/appeals
func (h *Handler) SubmitAppeal(c *gin.Context) {
	sponsorID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SubmitAppealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	appeal, err := h.service.SubmitAppeal(c.Request.Context(), sponsorID, req.CaseID, req.AppealText, req.Attachment)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to submit appeal")
		return
	}

	common.SuccessResponseWithStatus(c, http.StatusCreated, appeal, "Appeal submitted")
}

// ListAppeals returns the admin appeal queue
// GET /api/v1/fraud/appeals?status=pending&limit=20&offset=0
func (h *Handler) ListAppeals(c *gin.Context) {
	var status *AppealStatus
	if raw := c.Query("status"); raw != "" {
		s := AppealStatus(raw)
		status = &s
	}

	params := pagination.ParseParams(c)
	appeals, total, err := h.service.ListAppeals(c.Request.Context(), status, params.Limit, params.Offset)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list appeals")
		return
	}

	meta := pagination.BuildMeta(params.Limit, params.Offset, total)
	common.SuccessResponseWithMeta(c, gin.H{"appeals": appeals}, meta)
}

// ReviewAppeal applies an admin decision to a pending appeal
// POST /api/v1/fraud/appeals/:appeal_id/review
func (h *Handler) ReviewAppeal(c *gin.Context) {
	adminID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	appealID, err := uuid.Parse(c.Param("appeal_id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid appeal id")
		return
	}

	var req ReviewAppealRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	appeal, err := h.service.ReviewAppeal(c.Request.Context(), appealID, adminID, req.Decision, req.Justification)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to review appeal")
		return
	}

	common.SuccessResponse(c, appeal)
}
