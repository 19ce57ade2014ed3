package models

// Request/Response models

// CreateLinkRequest asks for a new PENDING link to a supplier
type CreateLinkRequest struct {
	SupplierOrgID string `json:"supplier_org_id" binding:"required"`
}

// OrderItemInput is one requested line of a new order
type OrderItemInput struct {
	ProductID string `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,min=1"`
}

// CreateOrderRequest places a multi-item order against a supplier
type CreateOrderRequest struct {
	SupplierOrgID string           `json:"supplier_org_id" binding:"required"`
	Items         []OrderItemInput `json:"items" binding:"required,min=1,dive"`
}

// UpdateOrderStatusRequest requests a status transition on an order
type UpdateOrderStatusRequest struct {
	Status OrderStatus `json:"status" binding:"required"`
}

// CreateComplaintRequest raises a complaint against an order
type CreateComplaintRequest struct {
	Description string `json:"description" binding:"required"`
}

// ComplaintPatch updates status and/or assignee of a complaint.
// Nil fields are left untouched.
type ComplaintPatch struct {
	Status              *ComplaintStatus `json:"status,omitempty"`
	AssignedToAccountID *string          `json:"assigned_to_account_id,omitempty"`
}

// PostMessageRequest appends a message to a link's thread
type PostMessageRequest struct {
	Content       string  `json:"content" binding:"required"`
	AttachmentURL *string `json:"attachment_url,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// SuccessResponse represents a success response
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
