package notifications

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tumaini/sponsorship/pkg/common"
)

// Handler handles HTTP requests for the notification dedup guard
type Handler struct {
	service *Service
}

// NewHandler creates a new notification handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// ClaimRequest identifies one notification delivery attempt
type ClaimRequest struct {
	SponsorID        uuid.UUID        `json:"sponsor_id" binding:"required"`
	ChildID          uuid.UUID        `json:"child_id" binding:"required"`
	NotificationType NotificationType `json:"notification_type" binding:"required"`
	EventKey         string           `json:"event_key" binding:"required"`
}

// Claim lets the notification fan-out claim a send before delivering.
// A false response means the notification was already sent.
// POST /api/v1/internal/notifications/claim
func (h *Handler) Claim(c *gin.Context) {
	var req ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	shouldSend, err := h.service.ShouldSend(c.Request.Context(), req.SponsorID, req.ChildID, req.NotificationType, req.EventKey)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to claim notification")
		return
	}

	common.SuccessResponse(c, gin.H{"should_send": shouldSend})
}
