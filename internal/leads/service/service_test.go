package service

import (
	"context"
	"testing"

	domainevents "counsel_portal_backend/internal/events"
	"counsel_portal_backend/internal/leads/domain"
	"counsel_portal_backend/platform/apperr"
)

func TestCreateLeadNormalizesPhone(t *testing.T) {
	store := newFakeStore()
	svc, bus := newTestService(store)

	lead, err := svc.CreateLead(context.Background(), CreateLeadInput{
		Name:  "Priya Sharma",
		Phone: "098765 43210",
	}, testActor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if lead.Phone != "+919876543210" {
		t.Errorf("phone = %q, want E.164 with the default region", lead.Phone)
	}
	if lead.CurrentStage != domain.StageYetToAssign {
		t.Errorf("stage = %q, want Yet to Assign", lead.CurrentStage)
	}
	if len(bus.named(domainevents.LeadCreatedName)) != 1 {
		t.Error("expected a lead created event")
	}
}

func TestCreateLeadDuplicatePhone(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)
	ctx := context.Background()

	input := CreateLeadInput{Name: "Priya Sharma", Phone: "+919876543210"}
	if _, err := svc.CreateLead(ctx, input, testActor); err != nil {
		t.Fatalf("first create: %v", err)
	}
	_, err := svc.CreateLead(ctx, input, testActor)
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("err = %v, want conflict for duplicate phone", err)
	}
}

func TestCreateLeadInvalidPhone(t *testing.T) {
	store := newFakeStore()
	svc, _ := newTestService(store)

	_, err := svc.CreateLead(context.Background(), CreateLeadInput{Name: "X", Phone: "abc"}, testActor)
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestAssignCounselorAdvancesFreshLead(t *testing.T) {
	store := newFakeStore()
	lead := store.addLead(domain.StageYetToAssign)
	svc, bus := newTestService(store)
	ctx := context.Background()

	if err := svc.AssignCounselor(ctx, lead.ID, 42, "Ravi", testActor); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := store.GetByID(ctx, lead.ID)
	if got.AssignedTo == nil || *got.AssignedTo != 42 {
		t.Fatalf("assigned to = %v, want 42", got.AssignedTo)
	}
	if got.CurrentStage != domain.StageYetToContact {
		t.Fatalf("stage = %q, want Yet to Contact", got.CurrentStage)
	}
	if len(bus.named(domainevents.LeadAssignedName)) != 1 {
		t.Error("expected a lead assigned event")
	}
}

func TestAssignCounselorKeepsLaterStage(t *testing.T) {
	store := newFakeStore()
	lead := store.addLead(domain.StageSessionCompleted)
	svc, _ := newTestService(store)
	ctx := context.Background()

	if err := svc.AssignCounselor(ctx, lead.ID, 42, "Ravi", testActor); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := store.GetByID(ctx, lead.ID)
	if got.CurrentStage != domain.StageSessionCompleted {
		t.Fatalf("reassignment moved the stage to %q", got.CurrentStage)
	}
}

func TestOverrideStageRequiresReason(t *testing.T) {
	store := newFakeStore()
	lead := store.addLead(domain.StageYetToContact)
	svc, _ := newTestService(store)

	_, err := svc.OverrideStage(context.Background(), lead.ID, domain.StageSessionScheduled, "  ", testActor)
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestOverrideStagePublishesEvent(t *testing.T) {
	store := newFakeStore()
	lead := store.addLead(domain.StageYetToContact)
	svc, bus := newTestService(store)

	res, err := svc.OverrideStage(context.Background(), lead.ID, domain.StageJoinLater, "student deferred a year", testActor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Changed || res.Stage != domain.StageJoinLater {
		t.Fatalf("result = %+v", res)
	}
	if len(bus.named(domainevents.StageChangedName)) != 1 {
		t.Error("expected a stage changed event")
	}
}

func TestRecordDocumentPassportFlipsFlag(t *testing.T) {
	store := newFakeStore()
	lead := store.addLead(domain.StageDocsSubmitted)
	svc, bus := newTestService(store)
	ctx := context.Background()

	_, err := svc.RecordDocument(ctx, lead.ID, domain.DocTypePassport, "https://files.example.com/passport.pdf", "", testActor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, _ := store.GetByID(ctx, lead.ID)
	if got.PassportStatus != domain.PassportStatusSubmitted {
		t.Fatalf("passport status = %q, want Submitted", got.PassportStatus)
	}
	if len(bus.named(domainevents.DocumentUploadedName)) != 1 {
		t.Error("expected a document uploaded event")
	}
}

func TestRecordDocumentRejectsUnknownType(t *testing.T) {
	store := newFakeStore()
	lead := store.addLead(domain.StageDocsSubmitted)
	svc, _ := newTestService(store)

	_, err := svc.RecordDocument(context.Background(), lead.ID, "Vaccination Card", "https://x", "", testActor)
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("err = %v, want validation error", err)
	}
}

func TestDocumentChecklist(t *testing.T) {
	store := newFakeStore()
	lead := store.addLead(domain.StageDocsSubmitted)
	svc, _ := newTestService(store)
	ctx := context.Background()

	if _, err := svc.RecordDocument(ctx, lead.ID, domain.DocTypeSOP, "https://files.example.com/sop.pdf", "", testActor); err != nil {
		t.Fatal(err)
	}
	st, err := svc.DocumentChecklist(ctx, lead.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(st.Submitted) != 1 || st.Submitted[0] != domain.DocTypeSOP {
		t.Fatalf("submitted = %v, want only SOP", st.Submitted)
	}
	if len(st.Missing) != len(domain.DocumentChecklist())-1 {
		t.Fatalf("missing = %v", st.Missing)
	}
}
