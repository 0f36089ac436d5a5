package services

import (
	"gorm.io/gorm"

	"accounting-portal-api/models"
)

// FilterPending keeps the items awaiting action from the given role, in list
// order. Deleted items never appear; a role with no pending status reviews
// nothing.
func FilterPending(items []models.ReviewItem, role string) []models.ItemRef {
	pendingStatus := PendingStatusForRole(role)
	if pendingStatus == "" {
		return nil
	}

	refs := make([]models.ItemRef, 0, len(items))
	for i := range items {
		if items[i].IsDeleted() {
			continue
		}
		if items[i].Status != pendingStatus {
			continue
		}
		refs = append(refs, items[i].Ref())
	}
	return refs
}

// PositionOf returns the index of itemID in the filtered list, or -1 when
// the item is not part of the current queue.
func PositionOf(items []models.ItemRef, itemID int) int {
	for i := range items {
		if items[i].ItemID == itemID {
			return i
		}
	}
	return -1
}

// Advance computes the next queue target from the pre-action filtered list.
// The acted-on item sits at index in that list; the next target is the item
// after it. Index -1 means the acted item was already filtered out, in which
// case the queue is taken from the top rather than guessing a position.
// A nil return means the queue is exhausted for this item kind.
func Advance(items []models.ItemRef, index int) *models.ItemRef {
	if index < 0 {
		if len(items) == 0 {
			return nil
		}
		next := items[0]
		return &next
	}
	if index+1 >= len(items) {
		return nil
	}
	next := items[index+1]
	return &next
}

// NextTarget is the navigation outcome after a review action.
type NextTarget struct {
	Done bool            `json:"done"`
	Item *models.ItemRef `json:"item,omitempty"`
}

// fallbackKind declares the cross-kind review order: when the invoice queue
// is exhausted the reviewer moves on to vouchers; when vouchers run out the
// session is done. This ordering is a UX contract, not an optimization.
var fallbackKind = map[string]string{
	models.ItemTypeInvoice: models.ItemTypeVoucher,
}

// NextAfter resolves the navigation target after acting on an item. preQueue
// and preIndex must come from the list state that existed before the
// transition was applied; computing them afterwards produces off-by-one
// navigation. When the kind's queue is exhausted the fallback kind's queue is
// consulted before declaring the session done.
func NextAfter(db *gorm.DB, kind string, preQueue []models.ItemRef, preIndex int, entityID int, actorRole string) (NextTarget, error) {
	if next := Advance(preQueue, preIndex); next != nil {
		return NextTarget{Item: next}, nil
	}

	for nextKind := fallbackKind[kind]; nextKind != ""; nextKind = fallbackKind[nextKind] {
		siblings, err := ResolveSiblings(db, nextKind, entityID)
		if err != nil {
			return NextTarget{}, err
		}
		queue := FilterPending(siblings, actorRole)
		if len(queue) > 0 {
			first := queue[0]
			return NextTarget{Item: &first}, nil
		}
	}

	return NextTarget{Done: true}, nil
}
