package service

import (
	"context"
	"testing"
	"time"

	"github.com/spec-kit/ars-claims-service/internal/domain"
)

func newDocumentFixture(bordereaux *fakeBordereauRepo) (*DocumentService, *fakeDocumentRepo) {
	documents := &fakeDocumentRepo{}
	svc := NewDocumentService(DocumentDependencies{
		DocumentRepo:  documents,
		BordereauRepo: bordereaux,
	})
	svc.now = func() time.Time { return testNow }
	return svc, documents
}

func TestCompleteScanPromotesBordereauOnLastDocument(t *testing.T) {
	bordereaux := &fakeBordereauRepo{bordereaux: []domain.Bordereau{{
		ID:            "b1",
		ClientID:      "c1",
		Status:        domain.BordereauStatusAScanner,
		DateReception: testNow.AddDate(0, 0, -1),
		DueAt:         testNow.AddDate(0, 0, 29),
	}}}
	svc, _ := newDocumentFixture(bordereaux)
	operator := &domain.User{ID: "s1", Role: domain.StaffRoleScan, Active: true}

	d1, err := svc.Register(context.Background(), "b1", DocumentInput{Name: "facture.pdf", Type: "FACTURE"})
	if err != nil {
		t.Fatalf("Register d1: %v", err)
	}
	d2, err := svc.Register(context.Background(), "b1", DocumentInput{Name: "ordonnance.pdf", Type: "ORDONNANCE"})
	if err != nil {
		t.Fatalf("Register d2: %v", err)
	}

	if _, err := svc.StartScan(context.Background(), operator, d1.ID); err != nil {
		t.Fatalf("StartScan d1: %v", err)
	}
	b, _ := bordereaux.GetByID(context.Background(), "b1")
	if b.Status != domain.BordereauStatusScanEnCours {
		t.Errorf("first scan start must move bordereau to SCAN_EN_COURS, got %s", b.Status)
	}

	if _, err := svc.CompleteScan(context.Background(), operator, d1.ID); err != nil {
		t.Fatalf("CompleteScan d1: %v", err)
	}
	b, _ = bordereaux.GetByID(context.Background(), "b1")
	if b.Status != domain.BordereauStatusScanEnCours {
		t.Errorf("bordereau finished early with a document still open, got %s", b.Status)
	}

	if _, err := svc.StartScan(context.Background(), operator, d2.ID); err != nil {
		t.Fatalf("StartScan d2: %v", err)
	}
	if _, err := svc.CompleteScan(context.Background(), operator, d2.ID); err != nil {
		t.Fatalf("CompleteScan d2: %v", err)
	}
	b, _ = bordereaux.GetByID(context.Background(), "b1")
	if b.Status != domain.BordereauStatusScanne {
		t.Errorf("last completed scan must move bordereau to SCANNE, got %s", b.Status)
	}
	if b.DateFinScan == nil {
		t.Errorf("scan completion date not stamped")
	}
}

func TestStartScanRequiresAwaitingDocument(t *testing.T) {
	bordereaux := &fakeBordereauRepo{bordereaux: []domain.Bordereau{{
		ID:            "b1",
		ClientID:      "c1",
		Status:        domain.BordereauStatusAScanner,
		DateReception: testNow,
		DueAt:         testNow.AddDate(0, 0, 30),
	}}}
	svc, _ := newDocumentFixture(bordereaux)
	operator := &domain.User{ID: "s1", Role: domain.StaffRoleScan, Active: true}

	doc, err := svc.Register(context.Background(), "b1", DocumentInput{Name: "facture.pdf"})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if _, err := svc.StartScan(context.Background(), operator, doc.ID); err != nil {
		t.Fatalf("StartScan: %v", err)
	}
	if _, err := svc.StartScan(context.Background(), operator, doc.ID); err == nil {
		t.Fatalf("restarting an in-progress scan must fail")
	}
}
