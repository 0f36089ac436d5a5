package models

import "time"

// CompanyProfile represents the company_profiles table. Profiles are created
// lazily on first save, so a missing row is a normal condition for the
// resolver rather than an error.
type CompanyProfile struct {
	ID            int       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	EntityID      int       `gorm:"column:entity_id;uniqueIndex:uq_company_profile_entity" json:"entity_id"`
	CompanyName   string    `gorm:"column:company_name" json:"company_name"`
	GSTNumber     string    `gorm:"column:gst_number" json:"gst_number"`
	PANNumber     string    `gorm:"column:pan_number" json:"pan_number"`
	Address       string    `gorm:"column:address" json:"address"`
	ContactEmail  string    `gorm:"column:contact_email" json:"contact_email"`
	ContactPhone  string    `gorm:"column:contact_phone" json:"contact_phone"`
	LogoURL       string    `gorm:"column:logo_url;size:500" json:"logo_url"`
	FinancialYear string    `gorm:"column:financial_year" json:"financial_year"`
	CreatedAt     time.Time `gorm:"column:create_at;autoCreateTime" json:"create_at"`
	UpdatedAt     time.Time `gorm:"column:update_at;autoUpdateTime" json:"update_at"`
}

func (CompanyProfile) TableName() string { return "company_profiles" }
