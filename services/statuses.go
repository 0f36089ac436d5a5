package services

import (
	"strings"

	"accounting-portal-api/models"
)

// Canonical review item statuses. Invoice and voucher share the CA review
// statuses; vouchers additionally pass through master admin review first.
// Notices and tasks use the open/closure lifecycle.
const (
	StatusPendingMasterAdminApproval = "pending_master_admin_approval"
	StatusPendingCAApproval          = "pending_ca_approval"
	StatusVerified                   = "verified"
	StatusRejectedByCA               = "rejected_by_ca"
	StatusRejectedByMasterAdmin      = "rejected_by_master_admin"
	StatusOpen                       = "open"
	StatusClosureRequested           = "closure_requested"
	StatusClosed                     = "closed"
	StatusDeleted                    = "deleted"
)

// statusSynonyms maps every alias the legacy portal emitted to its canonical
// status. Older list endpoints shipped bare labels like "pending" or
// "approved"; the resolver folds them into the canonical vocabulary.
var statusSynonyms = map[string][]string{
	StatusPendingMasterAdminApproval: {
		"pending_master_admin_approval",
		"master_admin_pending",
		"pending_master_admin",
	},
	StatusPendingCAApproval: {
		"pending_ca_approval",
		"ca_pending",
		"pending_ca",
		"pending",
	},
	StatusVerified: {
		"verified",
		"approved",
		"verify",
	},
	StatusRejectedByCA: {
		"rejected_by_ca",
		"ca_rejected",
		"rejected",
	},
	StatusRejectedByMasterAdmin: {
		"rejected_by_master_admin",
		"master_admin_rejected",
	},
	StatusOpen: {
		"open",
		"active",
		"in_progress",
	},
	StatusClosureRequested: {
		"closure_requested",
		"close_requested",
		"closure_pending",
	},
	StatusClosed: {
		"closed",
		"completed",
		"complete",
	},
	StatusDeleted: {
		"deleted",
		"removed",
	},
}

var statusAliasToCanonical = buildStatusAliasMap()

func buildStatusAliasMap() map[string]string {
	aliasMap := make(map[string]string)
	for canonical, synonyms := range statusSynonyms {
		aliasMap[normalizeStatus(canonical)] = canonical
		for _, alias := range synonyms {
			if normalized := normalizeStatus(alias); normalized != "" {
				aliasMap[normalized] = canonical
			}
		}
	}
	return aliasMap
}

func normalizeStatus(status string) string {
	return strings.ToLower(strings.TrimSpace(status))
}

// CanonicalStatus folds a raw status value (possibly a legacy alias) into the
// canonical vocabulary. Unknown values are returned normalized so the caller
// can reject them.
func CanonicalStatus(raw string) string {
	normalized := normalizeStatus(raw)
	if canonical, ok := statusAliasToCanonical[normalized]; ok {
		return canonical
	}
	return normalized
}

// statusesByKind declares the legal statuses per item type.
var statusesByKind = map[string][]string{
	models.ItemTypeInvoice: {
		StatusPendingCAApproval,
		StatusVerified,
		StatusRejectedByCA,
		StatusDeleted,
	},
	models.ItemTypeVoucher: {
		StatusPendingMasterAdminApproval,
		StatusPendingCAApproval,
		StatusVerified,
		StatusRejectedByCA,
		StatusRejectedByMasterAdmin,
		StatusDeleted,
	},
	models.ItemTypeNotice: {
		StatusOpen,
		StatusClosureRequested,
		StatusClosed,
		StatusDeleted,
	},
	models.ItemTypeTask: {
		StatusOpen,
		StatusClosureRequested,
		StatusClosed,
		StatusDeleted,
	},
}

// StatusKnown reports whether status is legal for the given item type.
func StatusKnown(kind, status string) bool {
	for _, s := range statusesByKind[kind] {
		if s == status {
			return true
		}
	}
	return false
}

// IsTerminalStatus reports whether no outgoing transition exists from status.
func IsTerminalStatus(status string) bool {
	switch status {
	case StatusVerified, StatusClosed, StatusDeleted:
		return true
	}
	return false
}

// IsRejectionStatus reports whether status is a rejection variant; only then
// is status_remarks meaningful on the item.
func IsRejectionStatus(status string) bool {
	return status == StatusRejectedByCA || status == StatusRejectedByMasterAdmin
}

// PendingStatusForRole returns the status value meaning "awaiting action from
// this role" for financial items, or "" when the role reviews nothing.
func PendingStatusForRole(role string) string {
	switch role {
	case models.RoleCAAccountant, models.RoleCATeam:
		return StatusPendingCAApproval
	case models.RoleClientMasterAdmin:
		return StatusPendingMasterAdminApproval
	}
	return ""
}
