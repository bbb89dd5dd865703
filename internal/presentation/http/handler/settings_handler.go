package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/sangkips/bakehouse-api/internal/application/service"
	"github.com/sangkips/bakehouse-api/internal/presentation/http/dto/request"
	"github.com/sangkips/bakehouse-api/internal/presentation/http/dto/response"
)

// SettingsHandler handles merchant tax settings HTTP requests
type SettingsHandler struct {
	taxService *service.TaxService
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(taxService *service.TaxService) *SettingsHandler {
	return &SettingsHandler{taxService: taxService}
}

// GetTaxProfile returns the merchant's effective GST configuration.
// Falls back to the configured defaults when none has been saved yet.
func (h *SettingsHandler) GetTaxProfile(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	profile := h.taxService.Resolve(c.Request.Context())
	response.OK(c, "Tax profile retrieved successfully", profile)
}

// UpdateTaxProfile upserts the merchant's GST configuration
func (h *SettingsHandler) UpdateTaxProfile(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	var req request.UpdateTaxProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	ctx := c.Request.Context()

	// Merge over the current profile so omitted fields keep their values
	profile := h.taxService.Resolve(ctx)
	if req.GSTIN != "" {
		profile.GSTIN = req.GSTIN
	}
	if req.EnableGST != nil {
		profile.EnableGST = *req.EnableGST
	}
	if req.PriceIncludesGST != nil {
		profile.PriceIncludesGST = *req.PriceIncludesGST
	}
	if req.CGSTRate > 0 {
		profile.CGSTRate = req.CGSTRate
	}
	if req.SGSTRate > 0 {
		profile.SGSTRate = req.SGSTRate
	}
	if req.IGSTRate > 0 {
		profile.IGSTRate = req.IGSTRate
	}
	if req.DefaultHSNCode != "" {
		profile.DefaultHSNCode = req.DefaultHSNCode
	}

	updated, err := h.taxService.UpdateProfile(ctx, profile)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.OK(c, "Tax profile updated successfully", updated)
}
