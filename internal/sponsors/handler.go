package sponsors

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tumaini/sponsorship/pkg/common"
	"github.com/tumaini/sponsorship/pkg/middleware"
)

// Handler handles HTTP requests for sponsors
type Handler struct {
	service *Service
}

// NewHandler creates a new sponsor handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GetMyFlagStatus returns the current sponsor's enforcement flag state
// GET /api/v1/sponsors/me/flag-status
func (h *Handler) GetMyFlagStatus(c *gin.Context) {
	sponsorID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	h.respondFlagStatus(c, sponsorID)
}

// GetFlagStatus returns any sponsor's flag state for staff and admins
// GET /api/v1/sponsors/:sponsor_id/flag-status
func (h *Handler) GetFlagStatus(c *gin.Context) {
	sponsorID, err := uuid.Parse(c.Param("sponsor_id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid sponsor id")
		return
	}

	h.respondFlagStatus(c, sponsorID)
}

func (h *Handler) respondFlagStatus(c *gin.Context, sponsorID uuid.UUID) {
	status, err := h.service.GetFlagStatus(c.Request.Context(), sponsorID)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to get flag status")
		return
	}

	common.SuccessResponse(c, status)
}
