package models

import "time"

// Reviewable item kinds stored in review_items.item_type.
const (
	ItemTypeInvoice = "invoice"
	ItemTypeVoucher = "voucher"
	ItemTypeNotice  = "notice"
	ItemTypeTask    = "task"
)

// ReviewItem represents the review_items table. One row per reviewable
// record (invoice, voucher, notice, task); kind-specific columns live in the
// FinancialDetail / WorkDetail tables keyed by item_id.
type ReviewItem struct {
	ItemID         int        `gorm:"primaryKey;column:item_id" json:"item_id"`
	ItemType       string     `gorm:"column:item_type" json:"item_type"`
	ItemNumber     string     `gorm:"column:item_number" json:"item_number"`
	Status         string     `gorm:"column:status" json:"status"`
	StatusRemarks  *string    `gorm:"column:status_remarks" json:"status_remarks,omitempty"`
	EntityID       int        `gorm:"column:entity_id" json:"entity_id"`
	OrganisationID *int       `gorm:"column:organisation_id" json:"organisation_id,omitempty"`
	CreatedBy      int        `gorm:"column:created_by" json:"created_by"`
	AssignedTo     *int       `gorm:"column:assigned_to" json:"assigned_to,omitempty"`
	BeneficiaryID  *int       `gorm:"column:beneficiary_id" json:"beneficiary_id,omitempty"`
	SubmittedAt    *time.Time `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	CreateAt       time.Time  `gorm:"column:create_at" json:"create_at"`
	UpdateAt       *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt       *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Creator         *User            `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	Assignee        *User            `gorm:"foreignKey:AssignedTo" json:"assignee,omitempty"`
	FinancialDetail *FinancialDetail `gorm:"foreignKey:ItemID" json:"financial_detail,omitempty"`
	WorkDetail      *WorkDetail      `gorm:"foreignKey:ItemID" json:"work_detail,omitempty"`
}

// FinancialDetail carries invoice/voucher specific columns.
type FinancialDetail struct {
	DetailID       int        `gorm:"primaryKey;column:detail_id" json:"detail_id"`
	ItemID         int        `gorm:"column:item_id" json:"item_id"`
	VendorName     string     `gorm:"column:vendor_name" json:"vendor_name"`
	DocumentNumber string     `gorm:"column:document_number" json:"document_number"`
	DocumentDate   *time.Time `gorm:"column:document_date" json:"document_date,omitempty"`
	Amount         float64    `gorm:"column:amount" json:"amount"`
	Currency       string     `gorm:"column:currency" json:"currency"`
	AttachmentURL  *string    `gorm:"column:attachment_url;size:500" json:"attachment_url,omitempty"`
}

// WorkDetail carries notice/task specific columns.
type WorkDetail struct {
	DetailID    int        `gorm:"primaryKey;column:detail_id" json:"detail_id"`
	ItemID      int        `gorm:"column:item_id" json:"item_id"`
	Title       string     `gorm:"column:title" json:"title"`
	Description *string    `gorm:"column:description" json:"description,omitempty"`
	DueDate     *time.Time `gorm:"column:due_date" json:"due_date,omitempty"`
	Priority    *string    `gorm:"column:priority" json:"priority,omitempty"`
}

// TableName overrides
func (ReviewItem) TableName() string {
	return "review_items"
}

func (FinancialDetail) TableName() string {
	return "financial_details"
}

func (WorkDetail) TableName() string {
	return "work_details"
}

// IsDeleted reports whether the item has been soft deleted.
func (r *ReviewItem) IsDeleted() bool {
	return r.DeleteAt != nil
}

// IsFinancial reports whether the item carries a FinancialDetail.
func (r *ReviewItem) IsFinancial() bool {
	return r.ItemType == ItemTypeInvoice || r.ItemType == ItemTypeVoucher
}

// ValidItemType reports whether kind names a reviewable item type.
func ValidItemType(kind string) bool {
	switch kind {
	case ItemTypeInvoice, ItemTypeVoucher, ItemTypeNotice, ItemTypeTask:
		return true
	}
	return false
}

// ItemRef is the lightweight shape used in review queue payloads.
type ItemRef struct {
	ItemID     int    `json:"item_id"`
	ItemType   string `json:"item_type"`
	ItemNumber string `json:"item_number"`
	Status     string `json:"status"`
}

// Ref projects the queue-facing fields of an item.
func (r *ReviewItem) Ref() ItemRef {
	return ItemRef{
		ItemID:     r.ItemID,
		ItemType:   r.ItemType,
		ItemNumber: r.ItemNumber,
		Status:     r.Status,
	}
}
