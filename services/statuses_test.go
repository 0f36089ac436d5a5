package services

import (
	"testing"

	"accounting-portal-api/models"
)

func TestCanonicalStatusFoldsLegacyAliases(t *testing.T) {
	cases := map[string]string{
		"pending":                 StatusPendingCAApproval,
		"CA_Pending":              StatusPendingCAApproval,
		"approved":                StatusVerified,
		" Verified ":              StatusVerified,
		"rejected":                StatusRejectedByCA,
		"master_admin_rejected":   StatusRejectedByMasterAdmin,
		"in_progress":             StatusOpen,
		"close_requested":         StatusClosureRequested,
		"completed":               StatusClosed,
		"removed":                 StatusDeleted,
		"pending_master_admin":    StatusPendingMasterAdminApproval,
		"pending_ca_approval":     StatusPendingCAApproval,
		"something_unrecognized":  "something_unrecognized",
		" Something_Unrecognized": "something_unrecognized",
	}

	for raw, want := range cases {
		if got := CanonicalStatus(raw); got != want {
			t.Fatalf("CanonicalStatus(%q) = %q, want %q", raw, got, want)
		}
	}
}

func TestStatusKnownPerKind(t *testing.T) {
	if !StatusKnown(models.ItemTypeInvoice, StatusPendingCAApproval) {
		t.Fatalf("invoice should know pending_ca_approval")
	}
	if StatusKnown(models.ItemTypeInvoice, StatusPendingMasterAdminApproval) {
		t.Fatalf("invoices never pass master admin review")
	}
	if !StatusKnown(models.ItemTypeVoucher, StatusPendingMasterAdminApproval) {
		t.Fatalf("voucher should know pending_master_admin_approval")
	}
	if StatusKnown(models.ItemTypeTask, StatusVerified) {
		t.Fatalf("tasks have no verified status")
	}
}

func TestTerminalAndRejectionStatuses(t *testing.T) {
	for _, s := range []string{StatusVerified, StatusClosed, StatusDeleted} {
		if !IsTerminalStatus(s) {
			t.Fatalf("%q should be terminal", s)
		}
	}
	for _, s := range []string{StatusOpen, StatusPendingCAApproval, StatusRejectedByCA, StatusClosureRequested} {
		if IsTerminalStatus(s) {
			t.Fatalf("%q should not be terminal", s)
		}
	}

	if !IsRejectionStatus(StatusRejectedByCA) || !IsRejectionStatus(StatusRejectedByMasterAdmin) {
		t.Fatalf("rejection variants not recognized")
	}
	if IsRejectionStatus(StatusVerified) {
		t.Fatalf("verified is not a rejection")
	}
}

func TestPendingStatusForRole(t *testing.T) {
	if got := PendingStatusForRole(models.RoleCAAccountant); got != StatusPendingCAApproval {
		t.Fatalf("unexpected CA pending status: %q", got)
	}
	if got := PendingStatusForRole(models.RoleCATeam); got != StatusPendingCAApproval {
		t.Fatalf("unexpected CA team pending status: %q", got)
	}
	if got := PendingStatusForRole(models.RoleClientMasterAdmin); got != StatusPendingMasterAdminApproval {
		t.Fatalf("unexpected master admin pending status: %q", got)
	}
	if got := PendingStatusForRole(models.RoleClientUser); got != "" {
		t.Fatalf("client users review nothing, got %q", got)
	}
}
