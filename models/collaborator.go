package models

import "time"

// Collaborator represents the collaborators table. Each (parent, user) pair
// is unique; the parent item exclusively owns its collaborator set.
type Collaborator struct {
	CollaboratorID int       `gorm:"primaryKey;column:collaborator_id" json:"-"`
	ParentType     string    `gorm:"column:parent_type;uniqueIndex:uq_collab_parent_user" json:"parent_type"`
	ParentID       int       `gorm:"column:parent_id;uniqueIndex:uq_collab_parent_user" json:"parent_id"`
	UserID         int       `gorm:"column:user_id;uniqueIndex:uq_collab_parent_user" json:"user_id"`
	AddedBy        int       `gorm:"column:added_by" json:"added_by"`
	CreateAt       time.Time `gorm:"column:create_at" json:"create_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

// TableName specifies the table for Collaborator.
func (Collaborator) TableName() string {
	return "collaborators"
}
