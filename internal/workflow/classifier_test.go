package workflow

import (
	"testing"
	"time"

	"github.com/spec-kit/ars-claims-service/internal/domain"
)

var testNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

func itemWith(status string, assignee *string, archived bool) domain.WorkItem {
	return domain.WorkItem{
		ID:             "b-1",
		Kind:           domain.WorkItemKindBordereau,
		Status:         status,
		Archived:       archived,
		AssignedUserID: assignee,
		ReceivedAt:     testNow.Add(-48 * time.Hour),
		DueAt:          testNow.Add(28 * 24 * time.Hour),
	}
}

func strPtr(s string) *string { return &s }

func TestClassifyArchivedExcludedForAllRoles(t *testing.T) {
	for role, profile := range DefaultProfiles() {
		for _, status := range []string{"EN_ATTENTE", "SCANNE", "EN_COURS", "TRAITE"} {
			item := itemWith(status, strPtr("u1"), true)
			got := Classify(item, profile, testNow, DefaultOptions())
			if got.Bucket != BucketExcluded {
				t.Errorf("role %s status %s: archived item classified %s", role, status, got.Bucket)
			}
			if got.Late || got.Critical {
				t.Errorf("role %s: archived item flagged late/critical", role)
			}
		}
	}
}

func TestClassifyExactlyOneBucket(t *testing.T) {
	statuses := []string{
		"EN_ATTENTE", "A_SCANNER", "SCAN_EN_COURS", "SCANNE", "A_AFFECTER",
		"ASSIGNE", "EN_COURS", "TRAITE", "CLOTURE", "VIREMENT_EXECUTE",
		"REJETE", "UNKNOWN_STATUS",
	}
	assignees := []*string{nil, strPtr("u1")}
	buckets := map[Bucket]struct{}{
		BucketExcluded:   {},
		BucketUnassigned: {},
		BucketInProgress: {},
		BucketCompleted:  {},
	}

	for role, profile := range DefaultProfiles() {
		for _, status := range statuses {
			for _, assignee := range assignees {
				for _, archived := range []bool{false, true} {
					got := Classify(itemWith(status, assignee, archived), profile, testNow, DefaultOptions())
					if _, ok := buckets[got.Bucket]; !ok {
						t.Fatalf("role %s status %s: unknown bucket %q", role, status, got.Bucket)
					}
				}
			}
		}
	}
}

func TestClassifyTerminalStatusCompleted(t *testing.T) {
	profile := DefaultProfiles()[domain.StaffRoleGestionnaire]
	item := itemWith("TRAITE", strPtr("u1"), false)
	got := Classify(item, profile, testNow, DefaultOptions())
	if got.Bucket != BucketCompleted {
		t.Fatalf("expected completed, got %s", got.Bucket)
	}
	if got.Late {
		t.Fatal("completed items must not be late")
	}
}

func TestClassifyUnassignedWins(t *testing.T) {
	profile := DefaultProfiles()[domain.StaffRoleBureauOrdre]
	item := itemWith("EN_ATTENTE", nil, false)
	got := Classify(item, profile, testNow, DefaultOptions())
	if got.Bucket != BucketUnassigned {
		t.Fatalf("expected unassigned, got %s", got.Bucket)
	}
}

func TestClassifyUnrecognizedStatusHidden(t *testing.T) {
	// A scan-stage item must never leak into the bureau d'ordre view even
	// when it carries an assignee.
	profile := DefaultProfiles()[domain.StaffRoleBureauOrdre]
	item := itemWith("SCAN_EN_COURS", strPtr("u1"), false)
	got := Classify(item, profile, testNow, DefaultOptions())
	if got.Bucket != BucketExcluded {
		t.Fatalf("expected excluded, got %s", got.Bucket)
	}

	// Same item, unassigned: still hidden, not unassigned.
	item.AssignedUserID = nil
	got = Classify(item, profile, testNow, DefaultOptions())
	if got.Bucket != BucketExcluded {
		t.Fatalf("expected excluded for unassigned unrecognized status, got %s", got.Bucket)
	}
}

func TestClassifyLateAndCritical(t *testing.T) {
	profile := DefaultProfiles()[domain.StaffRoleGestionnaire]
	received := testNow.Add(-40 * 24 * time.Hour)

	item := domain.WorkItem{
		Status:         "EN_COURS",
		AssignedUserID: strPtr("u1"),
		ReceivedAt:     received,
		DueAt:          received.Add(30 * 24 * time.Hour),
	}
	got := Classify(item, profile, testNow, DefaultOptions())
	if got.Bucket != BucketInProgress || !got.Late {
		t.Fatalf("expected late in_progress, got %+v", got)
	}
	if got.Critical {
		t.Fatal("40 days on a 30-day SLA is late but below the 2x window")
	}

	// Past double the SLA window: escalates to critical.
	item.ReceivedAt = testNow.Add(-61 * 24 * time.Hour)
	item.DueAt = item.ReceivedAt.Add(30 * 24 * time.Hour)
	got = Classify(item, profile, testNow, DefaultOptions())
	if !got.Late || !got.Critical {
		t.Fatalf("expected critical, got %+v", got)
	}

	// Terminal status is never late regardless of age.
	item.Status = "CLOTURE"
	got = Classify(item, profile, testNow, DefaultOptions())
	if got.Late || got.Critical {
		t.Fatalf("terminal item flagged late: %+v", got)
	}
}

func TestClassifyDocumentStatuses(t *testing.T) {
	profile := DefaultProfiles()[domain.StaffRoleScan]
	doc := domain.WorkItem{
		Kind:           domain.WorkItemKindDocument,
		Status:         "EN_COURS_SCAN",
		AssignedUserID: strPtr("scan-1"),
		ReceivedAt:     testNow.Add(-time.Hour),
		DueAt:          testNow.Add(24 * time.Hour),
	}
	if got := Classify(doc, profile, testNow, DefaultOptions()); got.Bucket != BucketInProgress {
		t.Fatalf("expected in_progress, got %s", got.Bucket)
	}
	doc.Status = "SCANNE"
	if got := Classify(doc, profile, testNow, DefaultOptions()); got.Bucket != BucketCompleted {
		t.Fatalf("expected completed, got %s", got.Bucket)
	}
}
