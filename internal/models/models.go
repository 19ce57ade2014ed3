package models

import (
	"time"
)

// Role is the role an account holds inside its organization.
// OWNER, MANAGER and SALES belong to supplier orgs; CONSUMER belongs
// to consumer orgs. Roles are immutable in this service.
type Role string

const (
	RoleOwner    Role = "OWNER"
	RoleManager  Role = "MANAGER"
	RoleSales    Role = "SALES"
	RoleConsumer Role = "CONSUMER"
)

// IsValid checks if the role is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleOwner, RoleManager, RoleSales, RoleConsumer:
		return true
	default:
		return false
	}
}

// IsSupplierStaff returns true for supplier-side roles
func (r Role) IsSupplierStaff() bool {
	return r == RoleOwner || r == RoleManager || r == RoleSales
}

// OrgType distinguishes the two sides of the marketplace
type OrgType string

const (
	OrgTypeSupplier OrgType = "supplier"
	OrgTypeConsumer OrgType = "consumer"
)

// Principal is the authenticated actor attached to every command,
// extracted from the JWT by the auth middleware. It is passed
// explicitly into every service call; there is no ambient session.
type Principal struct {
	AccountID string  `json:"account_id"`
	OrgID     string  `json:"org_id"`
	OrgType   OrgType `json:"org_type"`
	Role      Role    `json:"role"`
}

// Org is a supplier or consumer organization. Orgs are seeded by the
// Identity collaborator; this service only reads them.
type Org struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Type      OrgType   `json:"type" db:"org_type"`
	IsActive  bool      `json:"is_active" db:"is_active"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Account is an Identity-owned record read for authorization filtering
// and complaint assignment checks.
type Account struct {
	ID       string `json:"id" db:"id"`
	OrgID    string `json:"org_id" db:"org_id"`
	Role     Role   `json:"role" db:"role"`
	Email    string `json:"email,omitempty" db:"email"`
	FullName string `json:"full_name,omitempty" db:"full_name"`
	Phone    string `json:"phone,omitempty" db:"phone"`
}

// LinkStatus represents the status of a supplier/consumer link
type LinkStatus string

const (
	LinkStatusPending  LinkStatus = "PENDING"
	LinkStatusApproved LinkStatus = "APPROVED"
	LinkStatusDeclined LinkStatus = "DECLINED"
	LinkStatusRemoved  LinkStatus = "REMOVED"
)

// IsActive reports whether the link blocks a fresh request for the
// same org pair. DECLINED and REMOVED are terminal but re-requestable.
func (s LinkStatus) IsActive() bool {
	return s == LinkStatusPending || s == LinkStatusApproved
}

// Link is the approval-gated relationship between one consumer org and
// one supplier org. It gates ordering and messaging.
type Link struct {
	ID            string     `json:"id" db:"id"`
	SupplierOrgID string     `json:"supplier_org_id" db:"supplier_org_id"`
	ConsumerOrgID string     `json:"consumer_org_id" db:"consumer_org_id"`
	Status        LinkStatus `json:"status" db:"status"`
	Version       int        `json:"version" db:"version"`
	CreatedAt     time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at" db:"updated_at"`
}

// Product is owned by the Catalog collaborator and read at order
// creation time only.
type Product struct {
	ID               string  `json:"id" db:"id"`
	SupplierOrgID    string  `json:"supplier_org_id" db:"supplier_org_id"`
	Name             string  `json:"name" db:"name"`
	Unit             string  `json:"unit" db:"unit"`
	Price            float64 `json:"price" db:"price"`
	StockQuantity    int     `json:"stock_quantity" db:"stock_quantity"`
	MinOrderQuantity int     `json:"min_order_quantity" db:"min_order_quantity"`
	IsActive         bool    `json:"is_active" db:"is_active"`
}

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusAccepted  OrderStatus = "ACCEPTED"
	OrderStatusRejected  OrderStatus = "REJECTED"
	OrderStatusCompleted OrderStatus = "COMPLETED"
)

// IsValid checks if the order status is a known status
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusAccepted, OrderStatusRejected, OrderStatusCompleted:
		return true
	default:
		return false
	}
}

// Order is a multi-item purchase from a consumer org against a
// supplier's catalog. TotalAmount is derived at creation from the
// snapshot prices and never mutated afterward.
type Order struct {
	ID                 string      `json:"id" db:"id"`
	SupplierOrgID      string      `json:"supplier_org_id" db:"supplier_org_id"`
	ConsumerOrgID      string      `json:"consumer_org_id" db:"consumer_org_id"`
	CreatedByAccountID string      `json:"created_by_account_id" db:"created_by_account_id"`
	Status             OrderStatus `json:"status" db:"status"`
	TotalAmount        float64     `json:"total_amount" db:"total_amount"`
	Version            int         `json:"version" db:"version"`
	Items              []OrderItem `json:"items"`
	CreatedAt          time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time   `json:"updated_at" db:"updated_at"`
}

// OrderItem carries the unit price snapshot taken at order creation.
// UnitPrice is a copied value, never a live catalog reference.
type OrderItem struct {
	ID        string  `json:"id" db:"id"`
	OrderID   string  `json:"order_id" db:"order_id"`
	ProductID string  `json:"product_id" db:"product_id"`
	Quantity  int     `json:"quantity" db:"quantity"`
	UnitPrice float64 `json:"unit_price" db:"unit_price"`
	Subtotal  float64 `json:"subtotal" db:"subtotal"`
}

// ComplaintStatus represents the status of a complaint
type ComplaintStatus string

const (
	ComplaintStatusOpen     ComplaintStatus = "OPEN"
	ComplaintStatusResolved ComplaintStatus = "RESOLVED"
)

// Complaint is a dispute tied to exactly one order. At most one OPEN
// complaint may exist per order; RESOLVED is terminal.
type Complaint struct {
	ID                  string          `json:"id" db:"id"`
	OrderID             string          `json:"order_id" db:"order_id"`
	RaisedByAccountID   string          `json:"raised_by_account_id" db:"raised_by_account_id"`
	AssignedToAccountID *string         `json:"assigned_to_account_id,omitempty" db:"assigned_to_account_id"`
	Status              ComplaintStatus `json:"status" db:"status"`
	Description         string          `json:"description" db:"description"`
	Version             int             `json:"version" db:"version"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at" db:"updated_at"`
	ResolvedAt          *time.Time      `json:"resolved_at,omitempty" db:"resolved_at"`
}

// Message is one entry in a link's append-only conversation log.
// Immutable once created; ordered by (created_at, id).
type Message struct {
	ID              string    `json:"id" db:"id"`
	LinkID          string    `json:"link_id" db:"link_id"`
	SenderAccountID string    `json:"sender_account_id" db:"sender_account_id"`
	Content         string    `json:"content" db:"content"`
	AttachmentURL   *string   `json:"attachment_url,omitempty" db:"attachment_url"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
}

// Pagination is the limit/offset window for thread replay
type Pagination struct {
	Limit  int `form:"limit" binding:"omitempty,min=1,max=200"`
	Offset int `form:"offset" binding:"omitempty,min=0"`
}
