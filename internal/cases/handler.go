package cases

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tumaini/sponsorship/pkg/common"
	"github.com/tumaini/sponsorship/pkg/middleware"
	"github.com/tumaini/sponsorship/pkg/pagination"
)

// Handler handles HTTP requests for fraud cases
type Handler struct {
	service *Service
}

// NewHandler creates a new fraud case handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// TakeActionRequest is the payload for an admin case decision
type TakeActionRequest struct {
	Action        CaseAction `json:"action" binding:"required"`
	Justification string     `json:"justification" binding:"required"`
}

// ListCases returns the admin case queue
// GET /api/v1/fraud/cases?status=under_review&limit=20&offset=0
func (h *Handler) ListCases(c *gin.Context) {
	var status *CaseStatus
	if raw := c.Query("status"); raw != "" {
		s := CaseStatus(raw)
		status = &s
	}

	params := pagination.ParseParams(c)
	result, total, err := h.service.ListCases(c.Request.Context(), status, params.Limit, params.Offset)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list cases")
		return
	}

	meta := pagination.BuildMeta(params.Limit, params.Offset, total)
	common.SuccessResponseWithMeta(c, gin.H{"cases": result}, meta)
}

// GetCase returns a case with its audit notes
// GET /api/v1/fraud/cases/:case_id
func (h *Handler) GetCase(c *gin.Context) {
	caseID, err := uuid.Parse(c.Param("case_id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid case id")
		return
	}

	fc, notes, err := h.service.GetCase(c.Request.Context(), caseID)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to get case")
		return
	}

	common.SuccessResponse(c, gin.H{
		"case":  fc,
		"notes": notes,
	})
}

// TakeAction applies an admin decision to a sponsor's case
// POST /api/v1/fraud/sponsors/:sponsor_id/action
func (h *Handler) TakeAction(c *gin.Context) {
	adminID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	sponsorID, err := uuid.Parse(c.Param("sponsor_id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid sponsor id")
		return
	}

	var req TakeActionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	fc, err := h.service.AdminTakeAction(c.Request.Context(), sponsorID, adminID, req.Action, req.Justification)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to apply case action")
		return
	}

	common.SuccessResponse(c, fc)
}
