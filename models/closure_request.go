package models

import "time"

// Closure request statuses.
const (
	ClosureStatusPending  = "pending"
	ClosureStatusApproved = "approved"
	ClosureStatusRejected = "rejected"
)

// ClosureRequest represents the closure_requests table. A request belongs to
// exactly one notice or task; at most one pending request may exist per
// parent at a time.
type ClosureRequest struct {
	RequestID   int        `gorm:"primaryKey;column:request_id" json:"request_id"`
	ParentType  string     `gorm:"column:parent_type" json:"parent_type"`
	ParentID    int        `gorm:"column:parent_id" json:"parent_id"`
	RequestedBy int        `gorm:"column:requested_by" json:"requested_by"`
	Reason      string     `gorm:"column:reason" json:"reason"`
	Status      string     `gorm:"column:status" json:"status"`
	ResolvedBy  *int       `gorm:"column:resolved_by" json:"resolved_by,omitempty"`
	ResolvedAt  *time.Time `gorm:"column:resolved_at" json:"resolved_at,omitempty"`
	Remarks     *string    `gorm:"column:remarks" json:"remarks,omitempty"`
	CreateAt    time.Time  `gorm:"column:create_at" json:"create_at"`

	Requester *User `gorm:"foreignKey:RequestedBy" json:"requester,omitempty"`
	Resolver  *User `gorm:"foreignKey:ResolvedBy" json:"resolver,omitempty"`
}

// TableName specifies the table for ClosureRequest.
func (ClosureRequest) TableName() string {
	return "closure_requests"
}
