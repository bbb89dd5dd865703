package request

// CreateCategoryRequest represents a category creation request
type CreateCategoryRequest struct {
	Name string `json:"name" binding:"required,min=2,max=255"`
}

// UpdateCategoryRequest represents a category update request
type UpdateCategoryRequest struct {
	Name string `json:"name" binding:"required,min=2,max=255"`
}
