package request

// CreateCustomerRequest represents a customer creation request
type CreateCustomerRequest struct {
	Name    string  `json:"name" binding:"required,min=2,max=255"`
	Phone   *string `json:"phone" binding:"omitempty,max=50"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Address *string `json:"address"`
	Type    string  `json:"type" binding:"omitempty,oneof=individual business"`
	GSTIN   *string `json:"gstin" binding:"omitempty,min=2,max=20"`
}

// UpdateCustomerRequest represents a customer update request
type UpdateCustomerRequest struct {
	Name    *string `json:"name" binding:"omitempty,min=2,max=255"`
	Phone   *string `json:"phone" binding:"omitempty,max=50"`
	Email   *string `json:"email" binding:"omitempty,email"`
	Address *string `json:"address"`
	Type    *string `json:"type" binding:"omitempty,oneof=individual business"`
	GSTIN   *string `json:"gstin" binding:"omitempty,min=2,max=20"`
}
