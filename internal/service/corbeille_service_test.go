package service

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/spec-kit/ars-claims-service/internal/domain"
	"github.com/spec-kit/ars-claims-service/internal/workflow"
)

func newCorbeilleFixture(users *fakeUserRepo, bordereaux *fakeBordereauRepo, documents *fakeDocumentRepo, clients *fakeClientRepo, contracts *fakeContractRepo) *CorbeilleService {
	if documents == nil {
		documents = &fakeDocumentRepo{}
	}
	if clients == nil {
		clients = &fakeClientRepo{}
	}
	if contracts == nil {
		contracts = &fakeContractRepo{}
	}
	svc := NewCorbeilleService(CorbeilleDependencies{
		BordereauRepo: bordereaux,
		DocumentRepo:  documents,
		UserRepo:      users,
		ClientRepo:    clients,
		ContractRepo:  contracts,
	})
	svc.now = func() time.Time { return testNow }
	return svc
}

func inProgressBordereau(id, clientID string, assignee *string) domain.Bordereau {
	return domain.Bordereau{
		ID:               id,
		Reference:        "BDX-" + id,
		ClientID:         clientID,
		AssignedToUserID: assignee,
		Status:           domain.BordereauStatusEnCours,
		DateReception:    testNow.AddDate(0, 0, -5),
		DueAt:            testNow.AddDate(0, 0, 25),
	}
}

func TestCorbeilleChefEquipeAggregatesTeamWork(t *testing.T) {
	chef := domain.User{ID: "chef1", Role: domain.StaffRoleChefEquipe, Active: true}
	users := &fakeUserRepo{users: []domain.User{
		chef,
		{ID: "u1", Role: domain.StaffRoleGestionnaire, TeamLeaderID: strPtr("chef1"), Active: true},
		{ID: "u2", Role: domain.StaffRoleGestionnaire, TeamLeaderID: strPtr("chef1"), Active: true},
		{ID: "u3", Role: domain.StaffRoleGestionnaire, Active: true},
	}}
	bordereaux := &fakeBordereauRepo{bordereaux: []domain.Bordereau{
		inProgressBordereau("b1", "c1", strPtr("u1")),
		inProgressBordereau("b2", "c1", strPtr("u1")),
		inProgressBordereau("b3", "c1", strPtr("u1")),
		inProgressBordereau("b4", "c1", strPtr("u2")),
		inProgressBordereau("b5", "c1", strPtr("u2")),
		inProgressBordereau("b6", "c1", strPtr("chef1")),
		// outside the team, must not leak in
		inProgressBordereau("b7", "c1", strPtr("u3")),
	}}

	svc := newCorbeilleFixture(users, bordereaux, nil, nil, nil)
	corbeille, err := svc.GetCorbeille(context.Background(), &chef)
	if err != nil {
		t.Fatalf("GetCorbeille: %v", err)
	}
	if corbeille.Stats.InProgressCount != 6 {
		t.Errorf("InProgressCount = %d, want 6", corbeille.Stats.InProgressCount)
	}
	for _, entry := range corbeille.InProgress {
		if entry.Item.ID == "b7" {
			t.Errorf("bordereau of another team leaked into chef corbeille")
		}
	}
}

func TestCorbeilleGestionnaireSeesOnlyOwnWork(t *testing.T) {
	agent := domain.User{ID: "u1", Role: domain.StaffRoleGestionnaire, Active: true}
	users := &fakeUserRepo{users: []domain.User{agent}}
	bordereaux := &fakeBordereauRepo{bordereaux: []domain.Bordereau{
		inProgressBordereau("b1", "c1", strPtr("u1")),
		inProgressBordereau("b2", "c1", strPtr("u2")),
		inProgressBordereau("b3", "c1", nil),
	}}

	svc := newCorbeilleFixture(users, bordereaux, nil, nil, nil)
	corbeille, err := svc.GetCorbeille(context.Background(), &agent)
	if err != nil {
		t.Fatalf("GetCorbeille: %v", err)
	}
	if corbeille.Stats.InProgressCount != 1 {
		t.Errorf("InProgressCount = %d, want 1", corbeille.Stats.InProgressCount)
	}
	if corbeille.Stats.UnassignedCount != 0 {
		t.Errorf("gestionnaire corbeille must not include the pool, got %d", corbeille.Stats.UnassignedCount)
	}
}

func TestCorbeilleSeniorScopedToPortfolio(t *testing.T) {
	senior := domain.User{ID: "gs1", Role: domain.StaffRoleGestionnaireSenior, Active: true}
	users := &fakeUserRepo{users: []domain.User{senior}}
	clients := &fakeClientRepo{clients: []domain.Client{
		{ID: "c1", Name: "Alpha", AccountManagerID: strPtr("gs1"), Active: true},
		{ID: "c2", Name: "Beta", AccountManagerID: strPtr("gs2"), Active: true},
	}}
	bordereaux := &fakeBordereauRepo{bordereaux: []domain.Bordereau{
		inProgressBordereau("b1", "c1", strPtr("u1")),
		inProgressBordereau("b2", "c1", nil),
		inProgressBordereau("b3", "c2", strPtr("u1")),
	}}

	svc := newCorbeilleFixture(users, bordereaux, nil, clients, nil)
	corbeille, err := svc.GetCorbeille(context.Background(), &senior)
	if err != nil {
		t.Fatalf("GetCorbeille: %v", err)
	}
	total := corbeille.Stats.InProgressCount + corbeille.Stats.UnassignedCount + corbeille.Stats.CompletedCount
	if total != 2 {
		t.Errorf("portfolio corbeille holds %d items, want 2", total)
	}
}

func TestCorbeilleUnknownRoleIsEmpty(t *testing.T) {
	stranger := domain.User{ID: "x1", Role: domain.StaffRole("AUDITEUR"), Active: true}
	bordereaux := &fakeBordereauRepo{bordereaux: []domain.Bordereau{
		inProgressBordereau("b1", "c1", strPtr("x1")),
	}}

	svc := newCorbeilleFixture(&fakeUserRepo{}, bordereaux, nil, nil, nil)
	corbeille, err := svc.GetCorbeille(context.Background(), &stranger)
	if err != nil {
		t.Fatalf("unknown role must not error: %v", err)
	}
	if corbeille.Stats != (workflow.Stats{}) {
		t.Errorf("unexpected stats for unknown role: %+v", corbeille.Stats)
	}
	if len(corbeille.Unassigned)+len(corbeille.InProgress)+len(corbeille.Completed) != 0 {
		t.Errorf("unknown role corbeille must be empty")
	}
}

func TestCorbeilleScanIncludesDocuments(t *testing.T) {
	operator := domain.User{ID: "s1", Role: domain.StaffRoleScan, Active: true}
	users := &fakeUserRepo{users: []domain.User{operator}}
	bordereaux := &fakeBordereauRepo{bordereaux: []domain.Bordereau{
		{
			ID:            "b1",
			ClientID:      "c1",
			Status:        domain.BordereauStatusAScanner,
			DateReception: testNow.AddDate(0, 0, -2),
			DueAt:         testNow.AddDate(0, 0, 28),
		},
	}}
	documents := &fakeDocumentRepo{documents: []domain.Document{
		{
			ID:               "d1",
			BordereauID:      "b1",
			Name:             "facture.pdf",
			Status:           domain.DocumentStatusEnCoursScan,
			AssignedToUserID: strPtr("s1"),
			ReceivedAt:       testNow.AddDate(0, 0, -2),
			DueAt:            testNow.AddDate(0, 0, 28),
		},
	}}

	svc := newCorbeilleFixture(users, bordereaux, documents, nil, nil)
	corbeille, err := svc.GetCorbeille(context.Background(), &operator)
	if err != nil {
		t.Fatalf("GetCorbeille: %v", err)
	}
	if corbeille.Stats.UnassignedCount != 1 {
		t.Errorf("bordereau pool missing from scan corbeille: %+v", corbeille.Stats)
	}
	if corbeille.Stats.InProgressCount != 1 {
		t.Errorf("assigned document missing from scan corbeille: %+v", corbeille.Stats)
	}
}

func TestCorbeilleDuplicateScopesCountOnce(t *testing.T) {
	chef := domain.User{ID: "chef1", Role: domain.StaffRoleChefEquipe, Active: true}
	users := &fakeUserRepo{users: []domain.User{chef}}
	// assigned to the chef AND routed to their team: two scope filters hit it
	b := inProgressBordereau("b1", "c1", strPtr("chef1"))
	b.TeamID = strPtr("chef1")
	bordereaux := &fakeBordereauRepo{bordereaux: []domain.Bordereau{b}}

	svc := newCorbeilleFixture(users, bordereaux, nil, nil, nil)
	corbeille, err := svc.GetCorbeille(context.Background(), &chef)
	if err != nil {
		t.Fatalf("GetCorbeille: %v", err)
	}
	if corbeille.Stats.InProgressCount != 1 {
		t.Errorf("overlapping scopes must deduplicate, got %d", corbeille.Stats.InProgressCount)
	}
}

func TestCorbeilleSuperAdminDrainsEveryPage(t *testing.T) {
	admin := domain.User{ID: "sa1", Role: domain.StaffRoleSuperAdmin, Active: true}
	users := &fakeUserRepo{users: []domain.User{admin}}

	total := scopePageSize + 1
	bordereaux := &fakeBordereauRepo{}
	for i := 0; i < total; i++ {
		bordereaux.bordereaux = append(bordereaux.bordereaux,
			inProgressBordereau("b"+strconv.Itoa(i), "c1", strPtr("u1")))
	}

	svc := newCorbeilleFixture(users, bordereaux, nil, nil, nil)
	corbeille, err := svc.GetCorbeille(context.Background(), &admin)
	if err != nil {
		t.Fatalf("GetCorbeille: %v", err)
	}
	if corbeille.Stats.InProgressCount != total {
		t.Errorf("InProgressCount = %d, want %d; scope must not stop at one page",
			corbeille.Stats.InProgressCount, total)
	}
}

func TestCorbeilleStatsWithoutCacheFallsThrough(t *testing.T) {
	agent := domain.User{ID: "u1", Role: domain.StaffRoleGestionnaire, Active: true}
	users := &fakeUserRepo{users: []domain.User{agent}}
	bordereaux := &fakeBordereauRepo{bordereaux: []domain.Bordereau{
		inProgressBordereau("b1", "c1", strPtr("u1")),
	}}

	svc := newCorbeilleFixture(users, bordereaux, nil, nil, nil)
	stats, err := svc.GetStats(context.Background(), &agent)
	if err != nil {
		t.Fatalf("GetStats: %v", err)
	}
	if stats.InProgressCount != 1 {
		t.Errorf("InProgressCount = %d, want 1", stats.InProgressCount)
	}
}
