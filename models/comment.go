package models

import "time"

// Comment represents the comments table. A comment belongs to one parent
// reviewable item (notice or task discussion thread).
type Comment struct {
	CommentID     int        `gorm:"primaryKey;column:comment_id" json:"comment_id"`
	ParentType    string     `gorm:"column:parent_type" json:"parent_type"`
	ParentID      int        `gorm:"column:parent_id" json:"parent_id"`
	UserID        int        `gorm:"column:user_id" json:"user_id"`
	Message       string     `gorm:"column:message" json:"message"`
	AttachmentURL *string    `gorm:"column:attachment_url;size:500" json:"attachment_url,omitempty"`
	CreateAt      time.Time  `gorm:"column:create_at" json:"created_at"`
	UpdateAt      *time.Time `gorm:"column:update_at" json:"-"`
	DeleteAt      *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Author       *User                `gorm:"foreignKey:UserID" json:"author,omitempty"`
	ReadReceipts []CommentReadReceipt `gorm:"foreignKey:CommentID" json:"read_receipts"`
}

// CommentReadReceipt represents the comment_read_receipts table.
// At most one row may exist per (comment_id, user_id).
type CommentReadReceipt struct {
	ReceiptID int       `gorm:"primaryKey;column:receipt_id" json:"-"`
	CommentID int       `gorm:"column:comment_id;uniqueIndex:uq_receipt_comment_user" json:"comment_id"`
	UserID    int       `gorm:"column:user_id;uniqueIndex:uq_receipt_comment_user" json:"user_id"`
	ReadAt    time.Time `gorm:"column:read_at" json:"read_at"`

	Reader *User `gorm:"foreignKey:UserID;references:UserID" json:"reader,omitempty"`
}

// TableName overrides
func (Comment) TableName() string {
	return "comments"
}

func (CommentReadReceipt) TableName() string {
	return "comment_read_receipts"
}

// ReadBy reports whether userID already has a receipt embedded on the comment.
func (c *Comment) ReadBy(userID int) bool {
	for _, receipt := range c.ReadReceipts {
		if receipt.UserID == userID {
			return true
		}
	}
	return false
}
