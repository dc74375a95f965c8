package service

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"counsel_portal_backend/internal/leads/domain"
	"counsel_portal_backend/platform/apperr"
)

func TestUpsertApplication(t *testing.T) {
	store := newFakeStore()
	lead := store.addLead(domain.StageShortlistedUniv)
	svc, _ := newTestService(store)
	ctx := context.Background()

	first, err := svc.UpsertApplication(ctx, lead.ID, "University of Leeds", testActor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Status != domain.AppStatusDraft {
		t.Errorf("status = %q, want Draft", first.Status)
	}
	if !first.IsActive {
		t.Error("first application must become active")
	}

	// Same name returns the existing application, case-insensitively.
	again, err := svc.UpsertApplication(ctx, lead.ID, "university of leeds", testActor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if again.ID != first.ID {
		t.Fatalf("upsert created a duplicate: %d vs %d", again.ID, first.ID)
	}

	second, err := svc.UpsertApplication(ctx, lead.ID, "University of Kent", testActor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.IsActive {
		t.Error("second application must not steal the active flag")
	}
}

func TestSetActiveApplicationSwitchesSiblings(t *testing.T) {
	store := newFakeStore()
	lead := store.addLead(domain.StageShortlistedUniv)
	svc, _ := newTestService(store)
	ctx := context.Background()

	first, _ := svc.UpsertApplication(ctx, lead.ID, "A University", testActor)
	second, _ := svc.UpsertApplication(ctx, lead.ID, "B University", testActor)

	if err := svc.SetActiveApplication(ctx, lead.ID, second.ID, testActor); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	apps, _ := store.ListApplicationsByLead(ctx, lead.ID)
	activeCount := 0
	for _, app := range apps {
		if app.IsActive {
			activeCount++
			if app.ID != second.ID {
				t.Errorf("wrong application active: %d", app.ID)
			}
		}
	}
	if activeCount != 1 {
		t.Fatalf("%d active applications, want exactly 1", activeCount)
	}
	_ = first
}

func TestSetActiveApplicationRandomSequences(t *testing.T) {
	store := newFakeStore()
	lead := store.addLead(domain.StageShortlistedUniv)
	svc, _ := newTestService(store)
	ctx := context.Background()

	names := []string{"A University", "B University", "C University", "D University", "E University"}
	ids := make([]int64, 0, len(names))
	for _, name := range names {
		app, err := svc.UpsertApplication(ctx, lead.ID, name, testActor)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		ids = append(ids, app.ID)
	}

	rng := rand.New(rand.NewSource(1))
	for step := 0; step < 100; step++ {
		target := ids[rng.Intn(len(ids))]
		if err := svc.SetActiveApplication(ctx, lead.ID, target, testActor); err != nil {
			t.Fatalf("step %d: unexpected error: %v", step, err)
		}

		apps, _ := store.ListApplicationsByLead(ctx, lead.ID)
		activeCount := 0
		for _, app := range apps {
			if app.IsActive {
				activeCount++
				if app.ID != target {
					t.Fatalf("step %d: wrong application active: %d, want %d", step, app.ID, target)
				}
			}
		}
		if activeCount != 1 {
			t.Fatalf("step %d: %d active applications, want exactly 1", step, activeCount)
		}
	}
}

func TestSetActiveApplicationOwnership(t *testing.T) {
	store := newFakeStore()
	leadA := store.addLead(domain.StageShortlistedUniv)
	leadB := store.addLead(domain.StageShortlistedUniv)
	svc, _ := newTestService(store)
	ctx := context.Background()

	app, _ := svc.UpsertApplication(ctx, leadA.ID, "A University", testActor)

	err := svc.SetActiveApplication(ctx, leadB.ID, app.ID, testActor)
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("err = %v, want conflict for foreign application", err)
	}
}

func TestSaveApplicationAuditRecordsFieldNamesOnly(t *testing.T) {
	store := newFakeStore()
	lead := store.addLead(domain.StageShortlistedUniv)
	svc, _ := newTestService(store)
	ctx := context.Background()

	app, _ := svc.UpsertApplication(ctx, lead.ID, "A University", testActor)

	url := "https://portal.example.edu"
	password := "hunter2"
	updated, err := svc.SaveApplication(ctx, lead.ID, app.ID, ApplicationPatch{
		PortalURL: &url,
		Password:  &password,
	}, testActor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(updated.AuditLog) != 1 {
		t.Fatalf("audit log has %d entries, want 1", len(updated.AuditLog))
	}
	entry := updated.AuditLog[0]
	if entry.ActorID != testActor.ID {
		t.Errorf("audit actor = %d, want %d", entry.ActorID, testActor.ID)
	}
	wantFields := map[string]bool{"portal_url": true, "password": true}
	if len(entry.ChangedFields) != 2 {
		t.Fatalf("changed fields = %v, want portal_url and password", entry.ChangedFields)
	}
	for _, f := range entry.ChangedFields {
		if !wantFields[f] {
			t.Errorf("unexpected changed field %q", f)
		}
		if f == password || f == url {
			t.Error("audit log recorded a value instead of a field name")
		}
	}
}

func TestSaveApplicationEmptyPatchAddsNoAudit(t *testing.T) {
	store := newFakeStore()
	lead := store.addLead(domain.StageShortlistedUniv)
	svc, _ := newTestService(store)
	ctx := context.Background()

	app, _ := svc.UpsertApplication(ctx, lead.ID, "A University", testActor)
	saved, err := svc.SaveApplication(ctx, lead.ID, app.ID, ApplicationPatch{}, testActor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(saved.AuditLog) != 0 {
		t.Fatalf("audit log = %+v, want empty for a no-op save", saved.AuditLog)
	}
}

func TestSaveApplicationWrongLead(t *testing.T) {
	store := newFakeStore()
	leadA := store.addLead(domain.StageShortlistedUniv)
	leadB := store.addLead(domain.StageShortlistedUniv)
	svc, _ := newTestService(store)
	ctx := context.Background()

	app, _ := svc.UpsertApplication(ctx, leadA.ID, "A University", testActor)
	status := domain.AppStatusSubmitted
	_, err := svc.SaveApplication(ctx, leadB.ID, app.ID, ApplicationPatch{Status: &status}, testActor)
	if apperr.GetKind(err) != apperr.KindConflict {
		t.Fatalf("err = %v, want conflict", err)
	}
}

func TestSaveApplicationDepositDerivesStage(t *testing.T) {
	store := newFakeStore()
	lead := store.addLead(domain.StageOfferLetterReceived)
	svc, _ := newTestService(store)
	ctx := context.Background()

	app, _ := svc.UpsertApplication(ctx, lead.ID, "A University", testActor)

	proof := "deposit-receipt.pdf"
	date := time.Now()
	if _, err := svc.SaveApplication(ctx, lead.ID, app.ID, ApplicationPatch{
		DepositProof: &proof,
		DepositDate:  &date,
	}, testActor); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := store.GetByID(ctx, lead.ID)
	if got.CurrentStage != domain.StageDepositPaid {
		t.Fatalf("stage = %q, want Deposit Paid without any explicit override", got.CurrentStage)
	}
}

func TestSaveApplicationOfferDerivesStages(t *testing.T) {
	store := newFakeStore()
	lead := store.addLead(domain.StageShortlistedUniv)
	svc, _ := newTestService(store)
	ctx := context.Background()

	app, _ := svc.UpsertApplication(ctx, lead.ID, "A University", testActor)
	status := domain.AppStatusOfferReceived
	if _, err := svc.SaveApplication(ctx, lead.ID, app.ID, ApplicationPatch{Status: &status}, testActor); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := store.GetByID(ctx, lead.ID)
	if got.CurrentStage != domain.StageOfferLetterReceived {
		t.Fatalf("stage = %q, want Offer Letter Received", got.CurrentStage)
	}

	// Both derived rules fired in order: Application in Progress first,
	// then Offer Letter Received.
	entries := store.historyFor(lead.ID)
	if len(entries) != 2 {
		t.Fatalf("history has %d entries, want 2", len(entries))
	}
	if entries[0].ToStage != domain.StageApplicationProgress || entries[1].ToStage != domain.StageOfferLetterReceived {
		t.Fatalf("history order = %q then %q", entries[0].ToStage, entries[1].ToStage)
	}
}

func TestSaveApplicationInactiveSkipsDerivedStages(t *testing.T) {
	store := newFakeStore()
	lead := store.addLead(domain.StageShortlistedUniv)
	svc, _ := newTestService(store)
	ctx := context.Background()

	active, _ := svc.UpsertApplication(ctx, lead.ID, "A University", testActor)
	inactive, _ := svc.UpsertApplication(ctx, lead.ID, "B University", testActor)

	status := domain.AppStatusOfferReceived
	if _, err := svc.SaveApplication(ctx, lead.ID, inactive.ID, ApplicationPatch{Status: &status}, testActor); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, _ := store.GetByID(ctx, lead.ID)
	if got.CurrentStage != domain.StageShortlistedUniv {
		t.Fatalf("stage = %q, inactive application must not drive stages", got.CurrentStage)
	}
	_ = active
}

func TestSaveApplicationUnknownStatus(t *testing.T) {
	store := newFakeStore()
	lead := store.addLead(domain.StageShortlistedUniv)
	svc, _ := newTestService(store)
	ctx := context.Background()

	app, _ := svc.UpsertApplication(ctx, lead.ID, "A University", testActor)
	status := "Enrolled"
	_, err := svc.SaveApplication(ctx, lead.ID, app.ID, ApplicationPatch{Status: &status}, testActor)
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("err = %v, want validation error", err)
	}
}
