package request

// UpdateTaxProfileRequest represents a tax profile update request
type UpdateTaxProfileRequest struct {
	GSTIN            string  `json:"gstin" binding:"omitempty,max=20"`
	EnableGST        *bool   `json:"enable_gst"`
	PriceIncludesGST *bool   `json:"price_includes_gst"`
	CGSTRate         float64 `json:"cgst_rate" binding:"min=0,max=50"`
	SGSTRate         float64 `json:"sgst_rate" binding:"min=0,max=50"`
	IGSTRate         float64 `json:"igst_rate" binding:"min=0,max=50"`
	DefaultHSNCode   string  `json:"default_hsn_code" binding:"omitempty,max=20"`
}
