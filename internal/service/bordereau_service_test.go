package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/spec-kit/ars-claims-service/internal/domain"
	apperrors "github.com/spec-kit/ars-claims-service/pkg/util"
)

func newBordereauFixture(clients *fakeClientRepo, contracts *fakeContractRepo) (*BordereauService, *fakeBordereauRepo, *fakeHistoryRepo) {
	if clients == nil {
		clients = &fakeClientRepo{clients: []domain.Client{{ID: "c1", Name: "Alpha", Active: true}}}
	}
	if contracts == nil {
		contracts = &fakeContractRepo{}
	}
	bordereaux := &fakeBordereauRepo{}
	history := &fakeHistoryRepo{}
	svc := NewBordereauService(BordereauDependencies{
		BordereauRepo:  bordereaux,
		DocumentRepo:   &fakeDocumentRepo{},
		ClientRepo:     clients,
		ContractRepo:   contracts,
		HistoryRepo:    history,
		DefaultSLADays: 30,
	})
	svc.now = func() time.Time { return testNow }
	return svc, bordereaux, history
}

func TestIntakeUsesContractSLA(t *testing.T) {
	clients := &fakeClientRepo{clients: []domain.Client{
		{ID: "c1", Name: "Alpha", ReglementDelayDays: intPtr(60), Active: true},
	}}
	contracts := &fakeContractRepo{contracts: []domain.Contract{
		{ID: "ct1", ClientID: "c1", DelaiReglementDays: intPtr(45), Active: true},
	}}
	svc, _, _ := newBordereauFixture(clients, contracts)

	b, err := svc.Intake(context.Background(), nil, BordereauIntakeInput{
		ClientID:      "c1",
		DateReception: testNow,
	})
	if err != nil {
		t.Fatalf("Intake: %v", err)
	}
	if want := testNow.AddDate(0, 0, 45); !b.DueAt.Equal(want) {
		t.Errorf("DueAt = %v, want contract delay applied (%v)", b.DueAt, want)
	}
	if b.ContractID == nil || *b.ContractID != "ct1" {
		t.Errorf("active contract not linked")
	}
}

func TestIntakeFallsBackToClientThenDefaultSLA(t *testing.T) {
	clients := &fakeClientRepo{clients: []domain.Client{
		{ID: "c1", Name: "Alpha", ReglementDelayDays: intPtr(60), Active: true},
		{ID: "c2", Name: "Beta", Active: true},
	}}
	svc, _, _ := newBordereauFixture(clients, nil)

	b, err := svc.Intake(context.Background(), nil, BordereauIntakeInput{ClientID: "c1", DateReception: testNow})
	if err != nil {
		t.Fatalf("Intake c1: %v", err)
	}
	if want := testNow.AddDate(0, 0, 60); !b.DueAt.Equal(want) {
		t.Errorf("DueAt = %v, want client delay applied (%v)", b.DueAt, want)
	}

	b2, err := svc.Intake(context.Background(), nil, BordereauIntakeInput{ClientID: "c2", DateReception: testNow})
	if err != nil {
		t.Fatalf("Intake c2: %v", err)
	}
	if want := testNow.AddDate(0, 0, 30); !b2.DueAt.Equal(want) {
		t.Errorf("DueAt = %v, want default delay applied (%v)", b2.DueAt, want)
	}
}

func TestIntakeRejectsDuplicateReference(t *testing.T) {
	svc, _, _ := newBordereauFixture(nil, nil)

	if _, err := svc.Intake(context.Background(), nil, BordereauIntakeInput{Reference: "BDX-X1", ClientID: "c1"}); err != nil {
		t.Fatalf("first intake: %v", err)
	}
	_, err := svc.Intake(context.Background(), nil, BordereauIntakeInput{Reference: "BDX-X1", ClientID: "c1"})
	if err == nil {
		t.Fatalf("duplicate reference accepted")
	}
	if de := apperrors.ToDomainError(err); de.Code != "CONFLICT" {
		t.Errorf("error code = %s, want CONFLICT", de.Code)
	}
}

func TestUpdateStatusRejectsInvalidTransition(t *testing.T) {
	svc, bordereaux, _ := newBordereauFixture(nil, nil)
	b, err := svc.Intake(context.Background(), nil, BordereauIntakeInput{ClientID: "c1"})
	if err != nil {
		t.Fatalf("Intake: %v", err)
	}

	if _, err := svc.UpdateStatus(context.Background(), nil, b.ID, domain.BordereauStatusTraite, ""); err == nil {
		t.Fatalf("EN_ATTENTE -> TRAITE accepted")
	}
	stored, _ := bordereaux.GetByID(context.Background(), b.ID)
	if stored.Status != domain.BordereauStatusEnAttente {
		t.Errorf("failed transition must not change status, got %s", stored.Status)
	}
}

func TestUpdateStatusWalksLifecycle(t *testing.T) {
	svc, _, history := newBordereauFixture(nil, nil)
	b, err := svc.Intake(context.Background(), nil, BordereauIntakeInput{ClientID: "c1"})
	if err != nil {
		t.Fatalf("Intake: %v", err)
	}

	steps := []domain.BordereauStatus{
		domain.BordereauStatusAScanner,
		domain.BordereauStatusScanEnCours,
		domain.BordereauStatusScanne,
		domain.BordereauStatusAAffecter,
	}
	for _, next := range steps {
		if _, err := svc.UpdateStatus(context.Background(), nil, b.ID, next, ""); err != nil {
			t.Fatalf("transition to %s: %v", next, err)
		}
	}

	stored, _, err := svc.Get(context.Background(), b.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.DateDebutScan == nil || stored.DateFinScan == nil {
		t.Errorf("scan milestones not stamped: debut=%v fin=%v", stored.DateDebutScan, stored.DateFinScan)
	}

	entries, _ := history.ListByBordereau(context.Background(), b.ID, 100, 0)
	// one intake entry plus one per transition
	if len(entries) != len(steps)+1 {
		t.Errorf("history entries = %d, want %d", len(entries), len(steps)+1)
	}
}

func TestUpdateStatusFailsWhenHistoryWriteFails(t *testing.T) {
	svc, _, history := newBordereauFixture(nil, nil)
	b, err := svc.Intake(context.Background(), nil, BordereauIntakeInput{ClientID: "c1"})
	if err != nil {
		t.Fatalf("Intake: %v", err)
	}

	history.createErr = errors.New("insert failed")
	if _, err := svc.UpdateStatus(context.Background(), nil, b.ID, domain.BordereauStatusAScanner, ""); err == nil {
		t.Fatalf("status change without an audit row reported success")
	}
	if _, err := svc.Assign(context.Background(), nil, b.ID, strPtr("u1")); err == nil {
		t.Fatalf("assignment without an audit row reported success")
	}
	if _, err := svc.Archive(context.Background(), nil, b.ID); err == nil {
		t.Fatalf("archive without an audit row reported success")
	}
}

func TestAssignMovesBetweenPoolAndAgent(t *testing.T) {
	svc, _, _ := newBordereauFixture(nil, nil)
	b, err := svc.Intake(context.Background(), nil, BordereauIntakeInput{ClientID: "c1"})
	if err != nil {
		t.Fatalf("Intake: %v", err)
	}
	for _, next := range []domain.BordereauStatus{
		domain.BordereauStatusAScanner,
		domain.BordereauStatusScanEnCours,
		domain.BordereauStatusScanne,
		domain.BordereauStatusAAffecter,
	} {
		if _, err := svc.UpdateStatus(context.Background(), nil, b.ID, next, ""); err != nil {
			t.Fatalf("transition to %s: %v", next, err)
		}
	}

	assigned, err := svc.Assign(context.Background(), nil, b.ID, strPtr("u1"))
	if err != nil {
		t.Fatalf("Assign: %v", err)
	}
	if assigned.Status != domain.BordereauStatusAssigne {
		t.Errorf("status = %s, want ASSIGNE", assigned.Status)
	}

	// last writer wins; reassignment does not error
	reassigned, err := svc.Assign(context.Background(), nil, b.ID, strPtr("u2"))
	if err != nil {
		t.Fatalf("reassign: %v", err)
	}
	if reassigned.AssignedToUserID == nil || *reassigned.AssignedToUserID != "u2" {
		t.Errorf("reassignment must overwrite silently")
	}

	unassigned, err := svc.Assign(context.Background(), nil, b.ID, nil)
	if err != nil {
		t.Fatalf("unassign: %v", err)
	}
	if unassigned.Status != domain.BordereauStatusAAffecter {
		t.Errorf("status = %s, want A_AFFECTER after returning to pool", unassigned.Status)
	}
}

func TestArchiveIsIdempotentAndBlocksUpdates(t *testing.T) {
	svc, _, _ := newBordereauFixture(nil, nil)
	b, err := svc.Intake(context.Background(), nil, BordereauIntakeInput{ClientID: "c1"})
	if err != nil {
		t.Fatalf("Intake: %v", err)
	}

	if _, err := svc.Archive(context.Background(), nil, b.ID); err != nil {
		t.Fatalf("Archive: %v", err)
	}
	if _, err := svc.Archive(context.Background(), nil, b.ID); err != nil {
		t.Fatalf("second Archive must be a no-op: %v", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), nil, b.ID, domain.BordereauStatusAScanner, ""); err == nil {
		t.Fatalf("archived bordereau accepted a status change")
	}
}
