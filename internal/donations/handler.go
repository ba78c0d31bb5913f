package donations

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/tumaini/sponsorship/pkg/common"
	"github.com/tumaini/sponsorship/pkg/middleware"
	"github.com/tumaini/sponsorship/pkg/pagination"
)

// Handler handles HTTP requests for donations
type Handler struct {
	service *Service
}

// NewHandler creates a new donation handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// SubmitDonationRequest is the payload for a new donation
type SubmitDonationRequest struct {
	ChildID    uuid.UUID       `json:"child_id" binding:"required"`
	Amount     decimal.Decimal `json:"amount" binding:"required"`
	PaymentRef string          `json:"payment_ref" binding:"required"`
}

// CompleteDonationRequest is the payment gateway callback payload
type CompleteDonationRequest struct {
	Status DonationStatus `json:"status" binding:"required"`
}

// SubmitDonation creates a pending donation after the gate check
// POST /api/v1/donations
func (h *Handler) SubmitDonation(c *gin.Context) {
	sponsorID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req SubmitDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	donation, decision, err := h.service.SubmitDonation(c.Request.Context(), sponsorID, req.ChildID, req.Amount, req.PaymentRef)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to submit donation")
		return
	}
	if donation == nil {
		c.JSON(http.StatusForbidden, common.APIResponse{
			Success: false,
			Data:    decision,
			Error:   &common.APIError{Code: common.CodeAuthorization, Message: decision.Message},
		})
		return
	}

	common.SuccessResponseWithStatus(c, http.StatusCreated, gin.H{
		"donation": donation,
		"gate":     decision,
	}, "Donation submitted")
}

// CompleteDonation records the gateway's final status
// POST /api/v1/donations/:donation_id/complete
func (h *Handler) CompleteDonation(c *gin.Context) {
	donationID, err := uuid.Parse(c.Param("donation_id"))
	if err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid donation id")
		return
	}

	var req CompleteDonationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.ErrorResponse(c, http.StatusBadRequest, "invalid request body")
		return
	}

	donation, err := h.service.CompleteDonation(c.Request.Context(), donationID, req.Status)
	if err != nil {
		if appErr, ok := err.(*common.AppError); ok {
			common.AppErrorResponse(c, appErr)
			return
		}
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to complete donation")
		return
	}

	common.SuccessResponse(c, donation)
}

// ListMyDonations returns the current sponsor's donation history
// GET /api/v1/donations?limit=20&offset=0
func (h *Handler) ListMyDonations(c *gin.Context) {
	sponsorID, err := middleware.GetUserID(c)
	if err != nil {
		common.ErrorResponse(c, http.StatusUnauthorized, "unauthorized")
		return
	}

	params := pagination.ParseParams(c)
	result, total, err := h.service.ListDonations(c.Request.Context(), sponsorID, params.Limit, params.Offset)
	if err != nil {
		common.ErrorResponse(c, http.StatusInternalServerError, "failed to list donations")
		return
	}

	meta := pagination.BuildMeta(params.Limit, params.Offset, total)
	common.SuccessResponseWithMeta(c, gin.H{"donations": result}, meta)
}
