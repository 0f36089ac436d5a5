package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"accounting-portal-api/models"
)

// Review actions accepted by the status machine.
const (
	ActionApprove      = "approve"
	ActionReject       = "reject"
	ActionTag          = "tag"
	ActionRequestClose = "request_close"
	ActionApproveClose = "approve_close"
	ActionRejectClose  = "reject_close"
)

var (
	// ErrNotPermitted is returned when no transition exists for the
	// (status, role, action) combination, or an identity gate fails.
	ErrNotPermitted = errors.New("action not permitted for this status and role")
	// ErrRemarksRequired is returned before any write when a rejection is
	// attempted without remarks.
	ErrRemarksRequired = errors.New("remarks are required for this action")
	// ErrClosurePending is returned when a closure request is created while
	// one is already pending for the same parent.
	ErrClosurePending = errors.New("a closure request is already pending")
	// ErrNoClosurePending is returned when a closure resolution finds no
	// pending request to act on.
	ErrNoClosurePending = errors.New("no pending closure request")
)

// Actor identifies who is attempting a transition.
type Actor struct {
	UserID int
	Role   string
}

type TransitionRule struct {
	ToStatus        string
	RequiresRemarks bool
	Roles           []string
	// Gate enforces identity constraints beyond the role, such as "only the
	// assignee may request closure". Nil means role check only.
	Gate func(actor Actor, item *models.ReviewItem) bool
}

func caRoles() []string {
	return []string{models.RoleCAAccountant, models.RoleCATeam}
}

func isAssignee(actor Actor, item *models.ReviewItem) bool {
	return item.AssignedTo != nil && *item.AssignedTo == actor.UserID
}

func isCreatorOrCA(actor Actor, item *models.ReviewItem) bool {
	if actor.UserID == item.CreatedBy {
		return true
	}
	return actor.Role == models.RoleCAAccountant
}

// transitionTable keys: item type -> current status -> action.
// Every entry maps to exactly one outcome, so the rule set is testable as a
// whole instead of living in scattered per-page conditionals.
var transitionTable = map[string]map[string]map[string]TransitionRule{
	models.ItemTypeInvoice: {
		StatusPendingCAApproval: {
			ActionApprove: {ToStatus: StatusVerified, Roles: caRoles()},
			ActionTag:     {ToStatus: StatusVerified, Roles: caRoles()},
			ActionReject:  {ToStatus: StatusRejectedByCA, RequiresRemarks: true, Roles: caRoles()},
		},
	},
	models.ItemTypeVoucher: {
		StatusPendingMasterAdminApproval: {
			ActionApprove: {ToStatus: StatusPendingCAApproval, Roles: []string{models.RoleClientMasterAdmin}},
			ActionReject:  {ToStatus: StatusRejectedByMasterAdmin, RequiresRemarks: true, Roles: []string{models.RoleClientMasterAdmin}},
		},
		StatusPendingCAApproval: {
			ActionApprove: {ToStatus: StatusVerified, Roles: caRoles()},
			ActionTag:     {ToStatus: StatusVerified, Roles: caRoles()},
			ActionReject:  {ToStatus: StatusRejectedByCA, RequiresRemarks: true, Roles: caRoles()},
		},
	},
	models.ItemTypeNotice: closureLifecycle(),
	models.ItemTypeTask:   closureLifecycle(),
}

func closureLifecycle() map[string]map[string]TransitionRule {
	anyRole := []string{
		models.RoleCAAccountant,
		models.RoleCATeam,
		models.RoleClientMasterAdmin,
		models.RoleClientUser,
	}
	return map[string]map[string]TransitionRule{
		StatusOpen: {
			ActionRequestClose: {ToStatus: StatusClosureRequested, Roles: anyRole, Gate: isAssignee},
		},
		StatusClosureRequested: {
			ActionApproveClose: {ToStatus: StatusClosed, Roles: anyRole, Gate: isCreatorOrCA},
			ActionRejectClose:  {ToStatus: StatusOpen, RequiresRemarks: true, Roles: anyRole, Gate: isCreatorOrCA},
		},
	}
}

// ResolveTransition looks up the outcome for (item, action, actor) without
// touching the database. It returns ErrNotPermitted for unknown combinations
// and failed gates, and ErrRemarksRequired for blank remarks on transitions
// that demand them.
func ResolveTransition(item *models.ReviewItem, action string, actor Actor, remarks string) (TransitionRule, error) {
	byStatus, ok := transitionTable[item.ItemType]
	if !ok {
		return TransitionRule{}, ErrNotPermitted
	}
	// A repeat closure request while one is pending is a conflict the client
	// can recover from, not a permission failure.
	if action == ActionRequestClose && item.Status == StatusClosureRequested {
		return TransitionRule{}, ErrClosurePending
	}
	byAction, ok := byStatus[item.Status]
	if !ok {
		return TransitionRule{}, ErrNotPermitted
	}
	rule, ok := byAction[action]
	if !ok {
		return TransitionRule{}, ErrNotPermitted
	}

	roleAllowed := false
	for _, role := range rule.Roles {
		if role == actor.Role {
			roleAllowed = true
			break
		}
	}
	if !roleAllowed {
		return TransitionRule{}, ErrNotPermitted
	}
	if rule.Gate != nil && !rule.Gate(actor, item) {
		return TransitionRule{}, ErrNotPermitted
	}

	if rule.RequiresRemarks && strings.TrimSpace(remarks) == "" {
		return TransitionRule{}, ErrRemarksRequired
	}

	return rule, nil
}

// TransitionMeta captures request context recorded on the audit row.
type TransitionMeta struct {
	IPAddress string
	UserAgent string
	Reason    string
}

// Transition validates and executes a review action against the item. On
// success the item row, a status-history row and an audit row are written in
// one transaction and the server's canonical copy is re-read and returned.
// The in-memory item is never mutated on failure.
func Transition(db *gorm.DB, item *models.ReviewItem, action string, actor Actor, remarks string, meta TransitionMeta) (*models.ReviewItem, error) {
	rule, err := ResolveTransition(item, action, actor, remarks)
	if err != nil {
		return nil, err
	}

	trimmedRemarks := strings.TrimSpace(remarks)
	now := time.Now()

	tx := db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
		}
	}()

	// Re-check the current status under the transaction so a concurrent
	// transition on the same item cannot be applied twice.
	var current models.ReviewItem
	if err := tx.Where("item_id = ? AND delete_at IS NULL", item.ItemID).First(&current).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEntityNotFound
		}
		return nil, err
	}
	if current.Status != item.Status {
		tx.Rollback()
		return nil, ErrNotPermitted
	}

	updates := map[string]interface{}{
		"status":    rule.ToStatus,
		"update_at": now,
	}
	if rule.RequiresRemarks {
		updates["status_remarks"] = trimmedRemarks
	} else if IsRejectionStatus(current.Status) && !IsRejectionStatus(rule.ToStatus) {
		// Remarks only carry meaning on rejection variants.
		updates["status_remarks"] = nil
	}

	if err := tx.Model(&models.ReviewItem{}).
		Where("item_id = ?", current.ItemID).
		Updates(updates).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := applyClosureSideEffects(tx, &current, action, actor, trimmedRemarks, now); err != nil {
		tx.Rollback()
		return nil, err
	}

	oldStatus := current.Status
	history := models.ItemStatusHistory{
		ItemID:    current.ItemID,
		OldStatus: &oldStatus,
		NewStatus: rule.ToStatus,
		ChangedBy: actor.UserID,
		CreatedAt: now,
	}
	if trimmedRemarks != "" {
		history.Reason = &trimmedRemarks
	}
	historyNote := fmt.Sprintf("role=%s;action=%s", actor.Role, action)
	history.Notes = &historyNote

	if err := tx.Create(&history).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	auditValues := map[string]interface{}{
		"action":  action,
		"remarks": trimmedRemarks,
		"status":  rule.ToStatus,
	}
	serialized, _ := json.Marshal(auditValues)
	entityID := current.ItemID
	serializedStr := string(serialized)
	audit := models.AuditLog{
		UserID:     actor.UserID,
		Action:     "review",
		EntityType: current.ItemType,
		EntityID:   &entityID,
		NewValues:  &serializedStr,
		IPAddress:  meta.IPAddress,
		CreatedAt:  now,
	}
	if current.ItemNumber != "" {
		number := current.ItemNumber
		audit.EntityNumber = &number
	}
	if description := strings.TrimSpace(meta.Reason); description != "" {
		audit.Description = &description
	}
	if ua := strings.TrimSpace(meta.UserAgent); ua != "" {
		audit.UserAgent = &ua
	}

	if err := tx.Create(&audit).Error; err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, err
	}

	// Return the server's canonical copy; writes may enrich fields the
	// caller's copy does not have.
	var updated models.ReviewItem
	if err := db.Preload("Creator").Preload("Assignee").
		Preload("FinancialDetail").Preload("WorkDetail").
		Where("item_id = ?", current.ItemID).
		First(&updated).Error; err != nil {
		return nil, err
	}
	return &updated, nil
}

// applyClosureSideEffects keeps the closure_requests table in lockstep with
// the notice/task closure transitions. At most one pending request may exist
// per parent, enforced here under the same transaction.
func applyClosureSideEffects(tx *gorm.DB, item *models.ReviewItem, action string, actor Actor, remarks string, now time.Time) error {
	switch action {
	case ActionRequestClose:
		var pending int64
		if err := tx.Model(&models.ClosureRequest{}).
			Where("parent_type = ? AND parent_id = ? AND status = ?", item.ItemType, item.ItemID, models.ClosureStatusPending).
			Count(&pending).Error; err != nil {
			return err
		}
		if pending > 0 {
			return ErrClosurePending
		}
		request := models.ClosureRequest{
			ParentType:  item.ItemType,
			ParentID:    item.ItemID,
			RequestedBy: actor.UserID,
			Reason:      remarks,
			Status:      models.ClosureStatusPending,
			CreateAt:    now,
		}
		return tx.Create(&request).Error

	case ActionApproveClose, ActionRejectClose:
		var request models.ClosureRequest
		err := tx.Where("parent_type = ? AND parent_id = ? AND status = ?", item.ItemType, item.ItemID, models.ClosureStatusPending).
			First(&request).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNoClosurePending
			}
			return err
		}
		resolution := models.ClosureStatusApproved
		if action == ActionRejectClose {
			resolution = models.ClosureStatusRejected
		}
		updates := map[string]interface{}{
			"status":      resolution,
			"resolved_by": actor.UserID,
			"resolved_at": now,
		}
		if remarks != "" {
			updates["remarks"] = remarks
		}
		return tx.Model(&models.ClosureRequest{}).
			Where("request_id = ?", request.RequestID).
			Updates(updates).Error
	}
	return nil
}
