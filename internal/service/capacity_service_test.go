package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/spec-kit/ars-claims-service/internal/domain"
)

func newCapacityFixture(openCounts map[string]int, users ...domain.User) (*CapacityService, *fakeAlertRepo) {
	alerts := &fakeAlertRepo{}
	svc := NewCapacityService(CapacityDependencies{
		UserRepo:      &fakeUserRepo{users: users},
		BordereauRepo: &fakeBordereauRepo{openCounts: openCounts},
		DocumentRepo:  &fakeDocumentRepo{},
		AlertRepo:     alerts,
	})
	svc.now = func() time.Time { return testNow }
	return svc, alerts
}

func gestionnaire(id string, capacity *int) domain.User {
	return domain.User{
		ID:       id,
		FullName: "Agent " + id,
		Email:    id + "@ars.example",
		Role:     domain.StaffRoleGestionnaire,
		Capacity: capacity,
		Active:   true,
	}
}

func TestEvaluateCapacityCreatesAlertWhenOverCapacity(t *testing.T) {
	svc, alerts := newCapacityFixture(map[string]int{"u1": 21}, gestionnaire("u1", nil))

	result, err := svc.EvaluateCapacity(context.Background())
	if err != nil {
		t.Fatalf("EvaluateCapacity: %v", err)
	}
	if result.Created != 1 || result.Updated != 0 || result.Resolved != 0 {
		t.Fatalf("got %+v, want created=1", result)
	}
	if alerts.unresolvedCount() != 1 {
		t.Fatalf("unresolved alerts = %d, want 1", alerts.unresolvedCount())
	}
	msg := alerts.alerts[0].Message
	if !strings.Contains(msg, "21") || !strings.Contains(msg, "20") {
		t.Errorf("message %q should mention open count and capacity", msg)
	}
}

func TestEvaluateCapacityAtExactCapacityIsFine(t *testing.T) {
	svc, alerts := newCapacityFixture(map[string]int{"u1": 20}, gestionnaire("u1", nil))

	result, err := svc.EvaluateCapacity(context.Background())
	if err != nil {
		t.Fatalf("EvaluateCapacity: %v", err)
	}
	if result.Created != 0 || alerts.unresolvedCount() != 0 {
		t.Fatalf("user at exact capacity must not be flagged: %+v", result)
	}
}

func TestEvaluateCapacitySecondRunIsNoop(t *testing.T) {
	svc, alerts := newCapacityFixture(map[string]int{"u1": 25}, gestionnaire("u1", nil))

	if _, err := svc.EvaluateCapacity(context.Background()); err != nil {
		t.Fatalf("first sweep: %v", err)
	}
	result, err := svc.EvaluateCapacity(context.Background())
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if result.Created != 0 || result.Updated != 0 || result.Resolved != 0 {
		t.Fatalf("unchanged snapshot must be a no-op, got %+v", result)
	}
	if alerts.unresolvedCount() != 1 {
		t.Fatalf("unresolved alerts = %d, want exactly 1", alerts.unresolvedCount())
	}
}

func TestEvaluateCapacityUpdatesMessageWhenLoadChanges(t *testing.T) {
	svc, alerts := newCapacityFixture(map[string]int{"u1": 21}, gestionnaire("u1", nil))

	if _, err := svc.EvaluateCapacity(context.Background()); err != nil {
		t.Fatalf("first sweep: %v", err)
	}

	svc.bordereaux = &fakeBordereauRepo{openCounts: map[string]int{"u1": 24}}
	result, err := svc.EvaluateCapacity(context.Background())
	if err != nil {
		t.Fatalf("second sweep: %v", err)
	}
	if result.Created != 0 || result.Updated != 1 {
		t.Fatalf("changed load must update in place, got %+v", result)
	}
	if alerts.unresolvedCount() != 1 {
		t.Fatalf("update must not create a second alert")
	}
	if !strings.Contains(alerts.alerts[0].Message, "24") {
		t.Errorf("message %q should reflect the new load", alerts.alerts[0].Message)
	}
}

func TestEvaluateCapacityResolvesOnRecovery(t *testing.T) {
	svc, alerts := newCapacityFixture(map[string]int{"u1": 30}, gestionnaire("u1", nil))

	if _, err := svc.EvaluateCapacity(context.Background()); err != nil {
		t.Fatalf("first sweep: %v", err)
	}

	svc.bordereaux = &fakeBordereauRepo{openCounts: map[string]int{"u1": 12}}
	result, err := svc.EvaluateCapacity(context.Background())
	if err != nil {
		t.Fatalf("recovery sweep: %v", err)
	}
	if result.Resolved != 1 {
		t.Fatalf("recovered user must resolve alert, got %+v", result)
	}
	if alerts.unresolvedCount() != 0 {
		t.Fatalf("alert still unresolved after recovery")
	}
	if alerts.alerts[0].ResolvedAt == nil {
		t.Errorf("resolved alert must carry a resolution time")
	}

	// user is fine and no alert exists; nothing left to do
	result, err = svc.EvaluateCapacity(context.Background())
	if err != nil {
		t.Fatalf("steady-state sweep: %v", err)
	}
	if result.Created != 0 || result.Updated != 0 || result.Resolved != 0 {
		t.Fatalf("steady state must be a no-op, got %+v", result)
	}
}

func TestEvaluateCapacitySwallowsRacingDuplicate(t *testing.T) {
	svc, alerts := newCapacityFixture(map[string]int{"u1": 21}, gestionnaire("u1", nil))
	alerts.failCreates = 1

	result, err := svc.EvaluateCapacity(context.Background())
	if err != nil {
		t.Fatalf("sweep must swallow unique violations: %v", err)
	}
	if result.Created != 0 {
		t.Fatalf("lost insert race must not count as created, got %+v", result)
	}
}

func TestEvaluateCapacityUsesConfiguredCapacity(t *testing.T) {
	svc, alerts := newCapacityFixture(map[string]int{"u1": 8}, gestionnaire("u1", intPtr(5)))

	result, err := svc.EvaluateCapacity(context.Background())
	if err != nil {
		t.Fatalf("EvaluateCapacity: %v", err)
	}
	if result.Created != 1 {
		t.Fatalf("user over personal capacity must be flagged, got %+v", result)
	}
	msg := alerts.alerts[0].Message
	if !strings.Contains(msg, "8/5") {
		t.Errorf("message %q should use the per-user capacity", msg)
	}
}

func TestEvaluateCapacitySumsDocumentsIntoLoad(t *testing.T) {
	alerts := &fakeAlertRepo{}
	svc := NewCapacityService(CapacityDependencies{
		UserRepo:      &fakeUserRepo{users: []domain.User{gestionnaire("u1", nil)}},
		BordereauRepo: &fakeBordereauRepo{openCounts: map[string]int{"u1": 15}},
		DocumentRepo:  &fakeDocumentRepo{openCounts: map[string]int{"u1": 10}},
		AlertRepo:     alerts,
	})
	svc.now = func() time.Time { return testNow }

	result, err := svc.EvaluateCapacity(context.Background())
	if err != nil {
		t.Fatalf("EvaluateCapacity: %v", err)
	}
	if result.Created != 1 {
		t.Fatalf("combined load 25/20 must be flagged, got %+v", result)
	}
	if !strings.Contains(alerts.alerts[0].Message, "25/20") {
		t.Errorf("message %q should sum bordereaux and documents", alerts.alerts[0].Message)
	}
}

func TestEvaluateCapacityIgnoresUnlimitedRoles(t *testing.T) {
	senior := domain.User{
		ID:     "u9",
		Email:  "senior@ars.example",
		Role:   domain.StaffRoleGestionnaireSenior,
		Active: true,
	}
	svc, alerts := newCapacityFixture(map[string]int{"u9": 99}, senior)

	result, err := svc.EvaluateCapacity(context.Background())
	if err != nil {
		t.Fatalf("EvaluateCapacity: %v", err)
	}
	if result.Created != 0 || alerts.unresolvedCount() != 0 {
		t.Fatalf("roles without capacity limits must never be flagged, got %+v", result)
	}
}
