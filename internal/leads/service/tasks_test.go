package service

import (
	"context"
	"testing"
	"time"

	domainevents "counsel_portal_backend/internal/events"
	"counsel_portal_backend/internal/leads/domain"
	"counsel_portal_backend/platform/apperr"
	"counsel_portal_backend/platform/logger"
)

func newTestService(store *fakeStore) (*Service, *fakeBus) {
	log := logger.New("development")
	bus := &fakeBus{}
	return New(store, NewEngine(store, log), bus, log), bus
}

func TestSubmitTaskRequiresRemarks(t *testing.T) {
	store := newFakeStore()
	lead := store.addLead(domain.StageYetToContact)
	svc, _ := newTestService(store)

	_, err := svc.SubmitTask(context.Background(), lead.ID, domain.CallOutcome{CallStatus: domain.CallStatusNotReachable}, "   ", testActor)
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("err = %v, want validation error", err)
	}
	if len(store.tasks) != 0 {
		t.Fatal("rejected submission must not store a task")
	}
}

func TestSubmitTaskNotInterestedWithoutReason(t *testing.T) {
	store := newFakeStore()
	lead := store.addLead(domain.StageYetToContact)
	svc, _ := newTestService(store)

	_, err := svc.SubmitTask(context.Background(), lead.ID, domain.CallOutcome{
		CallStatus:    domain.CallStatusDone,
		CallType:      "Outbound",
		ConnectStatus: domain.ConnectNotInterested,
	}, "spoke with lead", testActor)
	if apperr.GetKind(err) != apperr.KindValidation {
		t.Fatalf("err = %v, want validation error", err)
	}
	if len(store.tasks) != 0 || len(store.historyFor(lead.ID)) != 0 {
		t.Fatal("rejected submission must not mutate state")
	}
}

func TestSubmitTaskNotInterestedWithReason(t *testing.T) {
	store := newFakeStore()
	lead := store.addLead(domain.StageYetToContact)
	svc, _ := newTestService(store)

	res, err := svc.SubmitTask(context.Background(), lead.ID, domain.CallOutcome{
		CallStatus:          domain.CallStatusDone,
		CallType:            "Outbound",
		ConnectStatus:       domain.ConnectNotInterested,
		ReasonNotInterested: "chose a local college",
	}, "spoke with lead", testActor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Transition.Changed || res.Transition.Stage != domain.StageNotInterested {
		t.Fatalf("transition = %+v, want Not Interested", res.Transition)
	}

	entries := store.historyFor(lead.ID)
	if len(entries) != 1 {
		t.Fatalf("history has %d entries, want exactly 1", len(entries))
	}
	if entries[0].ToStage != domain.StageNotInterested {
		t.Fatalf("history to = %q, want Not Interested", entries[0].ToStage)
	}
}

func TestSubmitTaskSessionSchedulingEndToEnd(t *testing.T) {
	store := newFakeStore()
	lead := store.addLead(domain.StageYetToContact)
	svc, bus := newTestService(store)

	future := time.Now().Add(72 * time.Hour)
	res, err := svc.SubmitTask(context.Background(), lead.ID, domain.CallOutcome{
		CallStatus:    domain.CallStatusDone,
		CallType:      "Outbound",
		ConnectStatus: domain.ConnectSessionScheduling,
		SessionDate:   &future,
	}, "booked intro session", testActor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Transition.Stage != domain.StageRegisteredForSession {
		t.Fatalf("stage = %q, want Registered for Session", res.Transition.Stage)
	}

	entries := store.historyFor(lead.ID)
	if len(entries) != 1 {
		t.Fatalf("history has %d entries, want 1", len(entries))
	}
	if entries[0].FromStage != domain.StageYetToContact || entries[0].ToStage != domain.StageRegisteredForSession {
		t.Fatalf("history entry = %+v", entries[0])
	}
	if len(bus.named(domainevents.SessionScheduledName)) != 1 {
		t.Error("expected a session scheduled event")
	}
}

func TestSubmitTaskCreatesAutoRemark(t *testing.T) {
	store := newFakeStore()
	lead := store.addLead(domain.StageYetToContact)
	svc, _ := newTestService(store)

	_, err := svc.SubmitTask(context.Background(), lead.ID,
		domain.CallOutcome{CallStatus: domain.CallStatusCallBusy}, "line busy, retry tomorrow", testActor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	remarks, _ := store.ListRemarksByLead(context.Background(), lead.ID)
	if len(remarks) != 1 || remarks[0].Body != "line busy, retry tomorrow" {
		t.Fatalf("remarks = %+v, want the task remarks copied over", remarks)
	}
	got, _ := store.GetByID(context.Background(), lead.ID)
	if got.LastContactAt == nil {
		t.Error("last contact timestamp not updated")
	}
}

func TestSubmitTaskShortlistGate(t *testing.T) {
	store := newFakeStore()
	lead := store.addLead(domain.StageDocsSubmitted)
	svc, _ := newTestService(store)

	payload := domain.ShortlistingOutcome{FinalStatus: domain.ShortlistingSentToStudents}

	// Passport not submitted: shortlist sent but the lead stays put.
	res, err := svc.SubmitTask(context.Background(), lead.ID, payload, "shortlist shared", testActor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Transition.Changed {
		t.Fatalf("stage moved to %q despite missing passport", res.Transition.Stage)
	}

	// With the passport flag the same task advances the lead.
	if err := store.SetPassportStatus(context.Background(), lead.ID, domain.PassportStatusSubmitted); err != nil {
		t.Fatal(err)
	}
	res, err = svc.SubmitTask(context.Background(), lead.ID, payload, "shortlist shared again", testActor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Transition.Changed || res.Transition.Stage != domain.StageShortlistedUniv {
		t.Fatalf("transition = %+v, want Shortlisted Univ.", res.Transition)
	}
}

func TestSubmitTaskMilestoneResubmissionKeepsProgress(t *testing.T) {
	store := newFakeStore()
	lead := store.addLead(domain.StageApplicationProgress)
	svc, _ := newTestService(store)

	res, err := svc.SubmitTask(context.Background(), lead.ID, domain.SubmitDocumentsOutcome{}, "extra transcripts", testActor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Transition.Changed {
		t.Fatalf("stage regressed to %q", res.Transition.Stage)
	}
	got, _ := store.GetByID(context.Background(), lead.ID)
	if got.CurrentStage != domain.StageApplicationProgress {
		t.Fatalf("stage = %q, want unchanged", got.CurrentStage)
	}
	if len(store.historyFor(lead.ID)) != 0 {
		t.Fatal("dropped proposal must not write history")
	}
}

func TestSubmitTaskTrackingUpdatesActiveApplication(t *testing.T) {
	store := newFakeStore()
	lead := store.addLead(domain.StageShortlistedUniv)
	svc, _ := newTestService(store)

	app, err := svc.UpsertApplication(context.Background(), lead.ID, "TU Munich", testActor)
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	res, err := svc.SubmitTask(context.Background(), lead.ID, domain.TrackingOutcome{
		TrackingStatus:    domain.TrackingApplicationStatus,
		ApplicationStatus: "Application submitted to university",
	}, "application sent", testActor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	updated, _ := store.GetApplication(context.Background(), app.ID)
	if updated.Status != domain.AppStatusSubmitted {
		t.Fatalf("application status = %q, want Submitted", updated.Status)
	}
	got, _ := store.GetByID(context.Background(), lead.ID)
	if got.CurrentStage != domain.StageApplicationProgress {
		t.Fatalf("stage = %q, want Application in Progress", got.CurrentStage)
	}
	// The stage moved via the derived application rules, not the
	// classifier, so the reported transition itself is a no-op.
	if res.Transition.Changed {
		t.Errorf("classifier transition = %+v, want no direct proposal", res.Transition)
	}
}

func TestSubmitTaskVisaApproved(t *testing.T) {
	store := newFakeStore()
	lead := store.addLead(domain.StageDepositPaid)
	svc, _ := newTestService(store)

	res, err := svc.SubmitTask(context.Background(), lead.ID, domain.TrackingOutcome{
		TrackingStatus: domain.TrackingVisaTracking,
		VisaStatus:     domain.VisaStatusApproved,
	}, "visa granted", testActor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Transition.Changed || res.Transition.Stage != domain.StageVisaReceived {
		t.Fatalf("transition = %+v, want Visa Received", res.Transition)
	}
}

func TestSubmitTaskCredentialsLoggingCreatesApplication(t *testing.T) {
	store := newFakeStore()
	lead := store.addLead(domain.StageShortlistedUniv)
	svc, _ := newTestService(store)

	_, err := svc.SubmitTask(context.Background(), lead.ID, domain.TrackingOutcome{
		TrackingStatus: domain.TrackingCredentialsLogging,
		UniversityName: "University of Glasgow",
		UniversityURL:  "https://apply.gla.ac.uk",
		Username:       "lead123",
		Password:       "secret",
	}, "portal account created", testActor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	app, err := store.GetApplicationByName(context.Background(), lead.ID, "University of Glasgow")
	if err != nil {
		t.Fatalf("application not created: %v", err)
	}
	if !app.IsActive {
		t.Error("first application must be active")
	}
	if app.PortalURL == "" || app.Username == "" || app.Password == "" {
		t.Errorf("credentials not stored: %+v", app)
	}
	for _, entry := range app.AuditLog {
		for _, field := range entry.ChangedFields {
			if field == "secret" || field == "lead123" {
				t.Fatal("audit log leaked a credential value")
			}
		}
	}
}
