package services

import (
	"errors"
	"fmt"
	"log"

	"gorm.io/gorm"

	"accounting-portal-api/models"
)

// ErrEntityNotFound is returned when a required record is missing.
var ErrEntityNotFound = errors.New("entity not found")

// creatableOnFirstLoad names the kinds whose first load may legitimately
// find nothing: the portal treats a missing row as "not yet created" and
// serves an empty record instead of a 404. Reviewable kinds are strict.
var creatableOnFirstLoad = map[string]bool{
	"company_profile": true,
}

// CreatableOnFirstLoad reports whether kind gets the lenient 404 path.
func CreatableOnFirstLoad(kind string) bool {
	return creatableOnFirstLoad[kind]
}

// ResolveItem fetches the authoritative review item and normalizes legacy
// shapes into the canonical model. The scope (entityID) is always checked:
// an item belonging to another client entity is treated as not found.
func ResolveItem(db *gorm.DB, kind string, itemID, entityID int) (*models.ReviewItem, error) {
	if !models.ValidItemType(kind) {
		return nil, fmt.Errorf("unknown item type %q", kind)
	}

	var item models.ReviewItem
	err := db.Preload("Creator").Preload("Assignee").
		Preload("FinancialDetail").Preload("WorkDetail").
		Where("item_id = ? AND item_type = ? AND entity_id = ? AND delete_at IS NULL", itemID, kind, entityID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if !CreatableOnFirstLoad(kind) {
				return nil, ErrEntityNotFound
			}
			return &models.ReviewItem{ItemType: kind, ItemID: itemID, EntityID: entityID}, nil
		}
		return nil, err
	}

	NormalizeItem(&item)
	return &item, nil
}

// NormalizeItem folds legacy list-item shapes into the canonical record:
// status aliases from older endpoints are canonicalized, and a missing item
// number falls back to the synthesized legacy format.
func NormalizeItem(item *models.ReviewItem) {
	canonical := CanonicalStatus(item.Status)
	if canonical != item.Status {
		item.Status = canonical
	}
	if !StatusKnown(item.ItemType, item.Status) {
		// Leave the row readable but flag it; the status machine will refuse
		// to transition an unknown status.
		log.Printf("Warning: item %d has unrecognized status %q", item.ItemID, item.Status)
	}

	if item.ItemNumber == "" {
		item.ItemNumber = fmt.Sprintf("%s-%d", item.ItemType, item.ItemID)
	}

	// Remarks are only meaningful on rejection variants.
	if item.StatusRemarks != nil && !IsRejectionStatus(item.Status) {
		item.StatusRemarks = nil
	}
}

// ResolveSiblings returns the scope's full list for one kind, normalized,
// oldest submission first. Review queue construction filters this list.
func ResolveSiblings(db *gorm.DB, kind string, entityID int) ([]models.ReviewItem, error) {
	if !models.ValidItemType(kind) {
		return nil, fmt.Errorf("unknown item type %q", kind)
	}

	var items []models.ReviewItem
	err := db.Where("item_type = ? AND entity_id = ? AND delete_at IS NULL", kind, entityID).
		Order("submitted_at ASC, item_id ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}

	for i := range items {
		NormalizeItem(&items[i])
	}
	return items, nil
}

// ResolveCompanyProfile loads the entity's profile. A missing row is the
// normal "not yet created" state, reported via created=false with a zero
// value profile rather than an error.
func ResolveCompanyProfile(db *gorm.DB, entityID int) (*models.CompanyProfile, bool, error) {
	var profile models.CompanyProfile
	err := db.Where("entity_id = ?", entityID).First(&profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if !CreatableOnFirstLoad("company_profile") {
				return nil, false, ErrEntityNotFound
			}
			return &models.CompanyProfile{EntityID: entityID}, false, nil
		}
		return nil, false, err
	}
	return &profile, true, nil
}

// profileColumns are the client-editable fields persisted on save. They are
// selected explicitly so a field cleared to its zero value still overwrites
// the stored one.
var profileColumns = []string{
	"company_name", "gst_number", "pan_number", "address",
	"contact_email", "contact_phone", "logo_url", "financial_year",
}

// SaveCompanyProfile upserts the entity's profile, completing the lenient
// first-load path. profile.ID is filled in when an existing row is updated.
func SaveCompanyProfile(db *gorm.DB, profile *models.CompanyProfile) error {
	existing, exists, err := ResolveCompanyProfile(db, profile.EntityID)
	if err != nil {
		return err
	}
	if !exists {
		return db.Create(profile).Error
	}

	profile.ID = existing.ID
	return db.Model(&models.CompanyProfile{}).
		Where("id = ?", existing.ID).
		Select(profileColumns).
		Updates(profile).Error
}
