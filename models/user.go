package models

import (
	"time"
)

// Portal roles stored in roles.role. Reviewable-item gates in the status
// machine are keyed by these names.
const (
	RoleCAAccountant      = "CA_ACCOUNTANT"
	RoleCATeam            = "CA_TEAM"
	RoleClientMasterAdmin = "CLIENT_MASTER_ADMIN"
	RoleClientUser        = "CLIENT_USER"
)

type User struct {
	UserID         int        `gorm:"primaryKey;column:user_id" json:"user_id"`
	UserFname      string     `gorm:"column:user_fname" json:"user_fname"`
	UserLname      string     `gorm:"column:user_lname" json:"user_lname"`
	Email          string     `gorm:"column:email;unique" json:"email"`
	Password       string     `gorm:"column:password" json:"-"`
	RoleID         int        `gorm:"column:role_id" json:"role_id"`
	EntityID       int        `gorm:"column:entity_id" json:"entity_id"`
	OrganisationID *int       `gorm:"column:organisation_id" json:"organisation_id,omitempty"`
	PhotoURL       *string    `gorm:"column:photo_url;size:500" json:"photo_url,omitempty"`
	CreateAt       *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt       *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt       *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Role Role `gorm:"foreignKey:RoleID" json:"role,omitempty"`
}

type Role struct {
	RoleID   int        `gorm:"primaryKey;column:role_id" json:"role_id"`
	Role     string     `gorm:"column:role" json:"role"`
	CreateAt *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`
}

// TableName overrides
func (User) TableName() string {
	return "users"
}

func (Role) TableName() string {
	return "roles"
}

// FullName returns the display name used in comment and receipt payloads.
func (u *User) FullName() string {
	if u.UserLname == "" {
		return u.UserFname
	}
	return u.UserFname + " " + u.UserLname
}
