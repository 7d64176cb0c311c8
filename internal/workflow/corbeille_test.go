package workflow

import (
	"reflect"
	"testing"
	"time"

	"github.com/spec-kit/ars-claims-service/internal/domain"
)

func snapshotItems(now time.Time) []domain.WorkItem {
	received := func(daysAgo int) time.Time { return now.Add(-time.Duration(daysAgo) * 24 * time.Hour) }
	due := func(recv time.Time) time.Time { return recv.Add(30 * 24 * time.Hour) }

	mk := func(id, status string, assignee *string, daysAgo int) domain.WorkItem {
		r := received(daysAgo)
		return domain.WorkItem{
			ID: id, Kind: domain.WorkItemKindBordereau, Status: status,
			AssignedUserID: assignee, ReceivedAt: r, DueAt: due(r),
		}
	}

	return []domain.WorkItem{
		mk("b1", "SCANNE", nil, 3),
		mk("b2", "A_AFFECTER", nil, 1),
		mk("b3", "EN_COURS", strPtr("u1"), 10),
		mk("b4", "ASSIGNE", strPtr("u2"), 40), // late
		mk("b5", "EN_COURS", strPtr("u1"), 65), // late + critical
		mk("b6", "TRAITE", strPtr("u1"), 50),
		mk("b7", "CLOTURE", strPtr("u2"), 80),
		{ID: "b8", Status: "EN_COURS", AssignedUserID: strPtr("u3"), Archived: true, ReceivedAt: received(5), DueAt: due(received(5))},
	}
}

func TestBuildBucketsAndStats(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	profile := DefaultProfiles()[domain.StaffRoleChefEquipe]
	got := Build(snapshotItems(now), profile, now, DefaultOptions())

	want := Stats{
		UnassignedCount: 2,
		InProgressCount: 3,
		CompletedCount:  2,
		LateCount:       2,
		CriticalCount:   1,
	}
	if got.Stats != want {
		t.Fatalf("stats mismatch: got %+v want %+v", got.Stats, want)
	}
}

func TestBuildOrdersNewestFirst(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	profile := DefaultProfiles()[domain.StaffRoleChefEquipe]
	got := Build(snapshotItems(now), profile, now, DefaultOptions())

	var ids []string
	for _, entry := range got.InProgress {
		ids = append(ids, entry.Item.ID)
	}
	if !reflect.DeepEqual(ids, []string{"b3", "b4", "b5"}) {
		t.Fatalf("in-progress order: got %v", ids)
	}
	var completed []string
	for _, entry := range got.Completed {
		completed = append(completed, entry.Item.ID)
	}
	if !reflect.DeepEqual(completed, []string{"b6", "b7"}) {
		t.Fatalf("completed order: got %v", completed)
	}
}

func TestBuildDeterministic(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	profile := DefaultProfiles()[domain.StaffRoleGestionnaire]
	first := Build(snapshotItems(now), profile, now, DefaultOptions())
	second := Build(snapshotItems(now), profile, now, DefaultOptions())
	if !reflect.DeepEqual(first, second) {
		t.Fatal("same snapshot and now must produce identical corbeilles")
	}
}

func TestBuildStableForEqualReceptionDates(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	recv := now.Add(-24 * time.Hour)
	items := []domain.WorkItem{
		{ID: "x1", Status: "EN_COURS", AssignedUserID: strPtr("u1"), ReceivedAt: recv, DueAt: recv.Add(720 * time.Hour)},
		{ID: "x2", Status: "EN_COURS", AssignedUserID: strPtr("u1"), ReceivedAt: recv, DueAt: recv.Add(720 * time.Hour)},
		{ID: "x3", Status: "EN_COURS", AssignedUserID: strPtr("u1"), ReceivedAt: recv, DueAt: recv.Add(720 * time.Hour)},
	}
	got := Build(items, DefaultProfiles()[domain.StaffRoleGestionnaire], now, DefaultOptions())
	var ids []string
	for _, entry := range got.InProgress {
		ids = append(ids, entry.Item.ID)
	}
	if !reflect.DeepEqual(ids, []string{"x1", "x2", "x3"}) {
		t.Fatalf("equal keys must keep snapshot order, got %v", ids)
	}
}
