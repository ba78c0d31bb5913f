package risk

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tumaini/sponsorship/pkg/common"
	"github.com/tumaini/sponsorship/pkg/middleware"
	"github.com/tumaini/sponsorship/pkg/pagination"
)

// Handler handles HTTP requests for risk scores and staff reports
type Handler struct {
	service *Service
}

// NewHandler creates a new risk handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CreateStaffReportRequest is the payload for a staff fraud report
type CreateStaffReportRequest struct {
	SponsorID   uuid.UUID          `json:"sponsor_id" binding:"required"`
	Description string             `json:"description" binding:"required"`
	Details     StaffReportDetails `json:"details" binding:"required"`
}

// CreateStaffReport files a staff fraud report against a sponsor
// POST /api/v1/fraud/reports
func (h *Handler) CreateStaffReport(c *gin.Context) {
	staffID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req CreateStaffReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	signal, score, err := h.service.CreateStaffReport(c.Request.Context(), req.SponsorID, staffID, req.Description, req.Details)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to create staff report")
		return
	}

	common.SuccessResponseWithStatus(c, http.StatusCreated, gin.H{
		"signal": signal,
		"score":  score,
	}, "Staff report recorded")
}

// GetSponsorRisk returns a sponsor's current risk score and level
// GET /api/v1/fraud/sponsors/:sponsor_id/risk
func (h *Handler) GetSponsorRisk(c *gin.Context) {
	sponsorID, err := uuid.Parse(c.Param("sponsor_id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid sponsor id")
		return
	}

	score, err := h.service.GetScore(c.Request.Context(), sponsorID)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to get risk score")
		return
	}

	common.SuccessResponse(c, score)
}

// ListSponsorSignals returns a sponsor's fraud signal history
// GET /api/v1/fraud/sponsors/:sponsor_id/signals?limit=20&offset=0
func (h *Handler) ListSponsorSignals(c *gin.Context) {
	sponsorID, err := uuid.Parse(c.Param("sponsor_id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid sponsor id")
		return
	}

	params := pagination.ParseParams(c)
	signals, total, err := h.service.ListSignals(c.Request.Context(), sponsorID, params.Limit, params.Offset)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list signals")
		return
	}

	meta := pagination.BuildMeta(params.Limit, params.Offset, total)
	common.SuccessResponseWithMeta(c, gin.H{"signals": signals}, meta)
}

// RecalculateSponsorRisk repairs a sponsor's score from the signal log
// POST /api/v1/fraud/sponsors/:sponsor_id/recalculate
func (h *Handler) RecalculateSponsorRisk(c *gin.Context) {
	sponsorID, err := uuid.Parse(c.Param("sponsor_id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid sponsor id")
		return
	}

	score, err := h.service.Recalculate(c.Request.Context(), sponsorID)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to recalculate risk score")
		return
	}

	common.SuccessResponse(c, score)
}
