package service

import (
	"context"
	"testing"
	"time"

	"github.com/spec-kit/ars-claims-service/internal/domain"
)

func newAnalyticsFixture(users *fakeUserRepo, bordereaux *fakeBordereauRepo, reclamations *fakeReclamationRepo, alerts *fakeAlertRepo) *AnalyticsService {
	if reclamations == nil {
		reclamations = &fakeReclamationRepo{}
	}
	if alerts == nil {
		alerts = &fakeAlertRepo{}
	}
	corbeilles := newCorbeilleFixture(users, bordereaux, nil, nil, nil)
	svc := NewAnalyticsService(AnalyticsDependencies{
		UserRepo:        users,
		ReclamationRepo: reclamations,
		AlertRepo:       alerts,
		Corbeilles:      corbeilles,
	})
	svc.now = func() time.Time { return testNow }
	return svc
}

func TestDashboardChefEquipeAggregatesPipelineAndTeam(t *testing.T) {
	chef := domain.User{ID: "chef1", FullName: "Chef Un", Role: domain.StaffRoleChefEquipe, Active: true}
	users := &fakeUserRepo{users: []domain.User{
		chef,
		{ID: "u1", FullName: "Agent Un", Role: domain.StaffRoleGestionnaire, TeamLeaderID: strPtr("chef1"), Capacity: intPtr(2), Active: true},
		{ID: "u2", FullName: "Agent Deux", Role: domain.StaffRoleGestionnaire, TeamLeaderID: strPtr("chef1"), Active: true},
		{ID: "u3", FullName: "Hors équipe", Role: domain.StaffRoleGestionnaire, Active: true},
	}}

	overdue := inProgressBordereau("b1", "c1", strPtr("u1"))
	overdue.DueAt = testNow.AddDate(0, 0, -1)
	processed := inProgressBordereau("b5", "c1", strPtr("u1"))
	processed.Status = domain.BordereauStatusTraite
	bordereaux := &fakeBordereauRepo{bordereaux: []domain.Bordereau{
		overdue,
		inProgressBordereau("b2", "c1", strPtr("u1")),
		inProgressBordereau("b3", "c1", strPtr("u1")),
		inProgressBordereau("b4", "c1", strPtr("u2")),
		processed,
		// another team, must stay out of the chef's numbers
		inProgressBordereau("b6", "c1", strPtr("u3")),
	}}
	reclamations := &fakeReclamationRepo{reclamations: []domain.Reclamation{
		{ID: "r1", ClientID: "c1", Status: domain.ReclamationStatusOuverte, Severity: domain.ReclamationSeverityMoyenne, Subject: "retard"},
		{ID: "r2", ClientID: "c1", Status: domain.ReclamationStatusResolue, Severity: domain.ReclamationSeverityMoyenne, Subject: "réglé"},
	}}
	resolvedAt := testNow
	alerts := &fakeAlertRepo{alerts: []domain.AlertRecord{
		{ID: "a1", AlertType: domain.AlertTypeSurcharge, AlertLevel: domain.AlertLevelWarning, SubjectUserID: "u1"},
		{ID: "a2", AlertType: domain.AlertTypeSLABreach, AlertLevel: domain.AlertLevelWarning, SubjectUserID: "u2", Resolved: true, ResolvedAt: &resolvedAt},
	}}

	svc := newAnalyticsFixture(users, bordereaux, reclamations, alerts)
	dashboard, err := svc.BuildDashboard(context.Background(), &chef)
	if err != nil {
		t.Fatalf("BuildDashboard: %v", err)
	}

	kpis := dashboard.KPIs
	if kpis.TotalBordereaux != 5 {
		t.Errorf("TotalBordereaux = %d, want 5", kpis.TotalBordereaux)
	}
	if kpis.Processed != 1 || kpis.InProgress != 4 {
		t.Errorf("Processed/InProgress = %d/%d, want 1/4", kpis.Processed, kpis.InProgress)
	}
	if kpis.SLABreaches != 1 {
		t.Errorf("SLABreaches = %d, want 1", kpis.SLABreaches)
	}
	if kpis.SLACompliance != 80 {
		t.Errorf("SLACompliance = %v, want 80", kpis.SLACompliance)
	}
	if kpis.ProcessingRate != 20 {
		t.Errorf("ProcessingRate = %v, want 20", kpis.ProcessingRate)
	}
	if kpis.PendingReclamations != 1 {
		t.Errorf("PendingReclamations = %d, want 1", kpis.PendingReclamations)
	}

	if len(dashboard.Team) != 2 {
		t.Fatalf("team size = %d, want the chef's two reports", len(dashboard.Team))
	}
	byUser := map[string]TeamMemberLoad{}
	for _, load := range dashboard.Team {
		byUser[load.UserID] = load
	}
	if load := byUser["u1"]; !load.Overloaded || load.Stats.InProgressCount != 3 || load.Capacity != 2 {
		t.Errorf("u1 load = %+v, want 3 in progress over capacity 2", load)
	}
	if load := byUser["u2"]; load.Overloaded || load.Stats.InProgressCount != 1 {
		t.Errorf("u2 load = %+v, want 1 in progress under capacity", load)
	}

	if dashboard.UnresolvedAlerts[domain.AlertTypeSurcharge] != 1 {
		t.Errorf("unresolved surcharge count = %d, want 1", dashboard.UnresolvedAlerts[domain.AlertTypeSurcharge])
	}
	if _, ok := dashboard.UnresolvedAlerts[domain.AlertTypeSLABreach]; ok {
		t.Errorf("resolved alert leaked into the unresolved counts")
	}
}

func TestDashboardUnknownRoleIsEmpty(t *testing.T) {
	stranger := domain.User{ID: "x1", Role: domain.StaffRole("AUDITEUR"), Active: true}
	bordereaux := &fakeBordereauRepo{bordereaux: []domain.Bordereau{
		inProgressBordereau("b1", "c1", strPtr("x1")),
	}}

	svc := newAnalyticsFixture(&fakeUserRepo{}, bordereaux, nil, nil)
	dashboard, err := svc.BuildDashboard(context.Background(), &stranger)
	if err != nil {
		t.Fatalf("unknown role must not error: %v", err)
	}
	if dashboard.KPIs != (DashboardKPIs{}) {
		t.Errorf("unexpected KPIs for unknown role: %+v", dashboard.KPIs)
	}
	if len(dashboard.Team) != 0 {
		t.Errorf("unknown role must have no team loads")
	}
}
