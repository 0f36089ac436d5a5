package services

import (
	"database/sql/driver"
	"regexp"
	"testing"
	"time"

	"accounting-portal-api/models"
)

func pendingInvoices(ids ...int) []models.ReviewItem {
	items := make([]models.ReviewItem, 0, len(ids))
	for _, id := range ids {
		items = append(items, models.ReviewItem{
			ItemID:   id,
			ItemType: models.ItemTypeInvoice,
			Status:   StatusPendingCAApproval,
		})
	}
	return items
}

func TestFilterPendingKeepsOnlyActionableItems(t *testing.T) {
	items := pendingInvoices(1, 2, 3)
	items[1].Status = StatusVerified
	deleted := pendingInvoices(4)[0]
	now := time.Now()
	deleted.DeleteAt = &now
	items = append(items, deleted)

	queue := FilterPending(items, models.RoleCAAccountant)
	if len(queue) != 2 {
		t.Fatalf("expected 2 queue entries, got %d", len(queue))
	}
	if queue[0].ItemID != 1 || queue[1].ItemID != 3 {
		t.Fatalf("unexpected queue order: %+v", queue)
	}

	// A role with no pending status reviews nothing.
	if got := FilterPending(items, models.RoleClientUser); got != nil {
		t.Fatalf("expected nil queue for client user, got %+v", got)
	}
}

func TestAdvanceWalksThePreActionQueue(t *testing.T) {
	queue := []models.ItemRef{
		{ItemID: 1}, {ItemID: 2}, {ItemID: 3},
	}

	next := Advance(queue, 0)
	if next == nil || next.ItemID != 2 {
		t.Fatalf("expected item 2, got %+v", next)
	}

	if next := Advance(queue, 2); next != nil {
		t.Fatalf("expected exhausted queue at last index, got %+v", next)
	}

	// The acted item already left the queue; start from the top.
	next = Advance(queue, -1)
	if next == nil || next.ItemID != 1 {
		t.Fatalf("expected first item for index -1, got %+v", next)
	}

	if next := Advance(nil, -1); next != nil {
		t.Fatalf("expected nil on empty queue, got %+v", next)
	}
}

func TestPositionOf(t *testing.T) {
	queue := []models.ItemRef{{ItemID: 1}, {ItemID: 5}}
	if got := PositionOf(queue, 5); got != 1 {
		t.Fatalf("expected position 1, got %d", got)
	}
	if got := PositionOf(queue, 9); got != -1 {
		t.Fatalf("expected -1 for missing item, got %d", got)
	}
}

func TestNextAfterPrefersSameKindQueue(t *testing.T) {
	queue := []models.ItemRef{{ItemID: 1}, {ItemID: 2}}

	// No DB access is needed while the current queue still has items.
	db, state, cleanup := newScriptedGormDB(t, nil)
	defer cleanup()

	target, err := NextAfter(db, models.ItemTypeInvoice, queue, 0, 1, models.RoleCAAccountant)
	if err != nil {
		t.Fatalf("NextAfter returned error: %v", err)
	}
	if target.Done || target.Item == nil || target.Item.ItemID != 2 {
		t.Fatalf("unexpected target: %+v", target)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestNextAfterFallsBackToVoucherQueue(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM `review_items` WHERE item_type = \\? AND entity_id = \\? AND delete_at IS NULL"),
			args:    []driver.Value{"voucher", int64(1)},
			columns: []string{"item_id", "item_type", "item_number", "status", "entity_id"},
			rows: [][]driver.Value{
				{int64(30), "voucher", "voucher-30", "verified", int64(1)},
				{int64(31), "voucher", "voucher-31", "pending_ca_approval", int64(1)},
			},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	queue := []models.ItemRef{{ItemID: 9}}
	target, err := NextAfter(db, models.ItemTypeInvoice, queue, 0, 1, models.RoleCAAccountant)
	if err != nil {
		t.Fatalf("NextAfter returned error: %v", err)
	}
	if target.Done {
		t.Fatalf("expected a voucher target, got done")
	}
	if target.Item == nil || target.Item.ItemID != 31 || target.Item.ItemType != models.ItemTypeVoucher {
		t.Fatalf("unexpected fallback target: %+v", target.Item)
	}

	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}

func TestNextAfterDoneWhenAllQueuesExhausted(t *testing.T) {
	steps := []*queryStep{
		{
			kind:    kindQuery,
			pattern: regexp.MustCompile("SELECT \\* FROM `review_items` WHERE item_type = \\? AND entity_id = \\? AND delete_at IS NULL"),
			args:    []driver.Value{"voucher", int64(1)},
			columns: []string{"item_id", "item_type", "status", "entity_id"},
			rows:    [][]driver.Value{},
		},
	}

	db, state, cleanup := newScriptedGormDB(t, steps)
	defer cleanup()

	target, err := NextAfter(db, models.ItemTypeInvoice, []models.ItemRef{{ItemID: 9}}, 0, 1, models.RoleCAAccountant)
	if err != nil {
		t.Fatalf("NextAfter returned error: %v", err)
	}
	if !target.Done || target.Item != nil {
		t.Fatalf("expected done, got %+v", target)
	}

	// Vouchers never fall back to a further kind.
	if err := state.verifyComplete(); err != nil {
		t.Fatalf("%v", err)
	}
}
