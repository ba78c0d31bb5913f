package gate

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tumaini/sponsorship/pkg/common"
	"github.com/tumaini/sponsorship/pkg/middleware"
)

// Handler handles HTTP requests for donation gate checks
type Handler struct {
	service *Service
}

// NewHandler creates a new gate handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// CheckGate returns the donation gate decision for the current sponsor.
// The sponsor-facing UI calls this before rendering a donation form.
// GET /api/v1/donations/gate
func (h *Handler) CheckGate(c *gin.Context) {
	sponsorID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	decision, err := h.service.Evaluate(c.Request.Context(), sponsorID)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to evaluate donation gate")
		return
	}

	common.SuccessResponse(c, decision)
}
