package notification

import (
	"context"
	"strings"
	"testing"
	"time"

	authrepo "counsel_portal_backend/internal/auth/repository"
	domainevents "counsel_portal_backend/internal/events"
	"counsel_portal_backend/platform/events"
	"counsel_portal_backend/platform/logger"
)

type sentEmail struct {
	to       string
	leadName string
}

type fakeSender struct {
	assigned  []sentEmail
	scheduled []sentEmail
}

func (f *fakeSender) SendLeadAssignedEmail(_ context.Context, toEmail, _ string, leadName string) error {
	f.assigned = append(f.assigned, sentEmail{to: toEmail, leadName: leadName})
	return nil
}

func (f *fakeSender) SendSessionScheduledEmail(_ context.Context, toEmail, _ string, leadName string, _ time.Time) error {
	f.scheduled = append(f.scheduled, sentEmail{to: toEmail, leadName: leadName})
	return nil
}

type fakeUsers struct {
	users map[int64]authrepo.User
}

func (f *fakeUsers) GetByID(_ context.Context, id int64) (authrepo.User, error) {
	user, ok := f.users[id]
	if !ok {
		return authrepo.User{}, authrepo.ErrNotFound
	}
	return user, nil
}

func newTestModule() (*Module, *fakeSender, *fakeUsers) {
	sender := &fakeSender{}
	users := &fakeUsers{users: map[int64]authrepo.User{
		7: {ID: 7, Name: "Asha Nair", Email: "asha@example.com", Role: "counselor"},
	}}
	return New(users, sender, logger.New("test")), sender, users
}

func TestHandleLeadAssignedEmailsCounselor(t *testing.T) {
	m, sender, _ := newTestModule()

	err := m.Handle(context.Background(), domainevents.LeadAssigned{
		BaseEvent:     events.NewBaseEvent(),
		LeadID:        3,
		LeadName:      "Priya Sharma",
		CounselorID:   7,
		CounselorName: "Asha Nair",
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if len(sender.assigned) != 1 {
		t.Fatalf("sent %d assigned emails, want 1", len(sender.assigned))
	}
	if got := sender.assigned[0]; got.to != "asha@example.com" || got.leadName != "Priya Sharma" {
		t.Errorf("email = %+v", got)
	}
}

func TestHandleSessionScheduledEmailsCounselor(t *testing.T) {
	m, sender, _ := newTestModule()

	err := m.Handle(context.Background(), domainevents.SessionScheduled{
		BaseEvent:   events.NewBaseEvent(),
		LeadID:      3,
		LeadName:    "Priya Sharma",
		SessionDate: time.Date(2026, 9, 10, 11, 0, 0, 0, time.UTC),
		CounselorID: 7,
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}

	if len(sender.scheduled) != 1 {
		t.Fatalf("sent %d scheduled emails, want 1", len(sender.scheduled))
	}
}

func TestHandleMissingCounselorIsDropped(t *testing.T) {
	m, sender, _ := newTestModule()

	err := m.Handle(context.Background(), domainevents.LeadAssigned{
		BaseEvent:   events.NewBaseEvent(),
		LeadID:      3,
		CounselorID: 99,
	})
	if err != nil {
		t.Fatalf("missing counselor should not error, got %v", err)
	}
	if len(sender.assigned) != 0 {
		t.Errorf("no email expected, got %+v", sender.assigned)
	}
}

func TestHandleUnassignedSessionIsIgnored(t *testing.T) {
	m, sender, _ := newTestModule()

	err := m.Handle(context.Background(), domainevents.SessionScheduled{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    3,
	})
	if err != nil {
		t.Fatalf("Handle: %v", err)
	}
	if len(sender.scheduled) != 0 {
		t.Errorf("no email expected for unassigned lead, got %+v", sender.scheduled)
	}
}

func TestNilSenderOnlyLogs(t *testing.T) {
	users := &fakeUsers{users: map[int64]authrepo.User{}}
	m := New(users, nil, logger.New("test"))

	err := m.Handle(context.Background(), domainevents.LeadAssigned{
		BaseEvent:   events.NewBaseEvent(),
		CounselorID: 7,
	})
	if err != nil {
		t.Fatalf("nil sender should be a no-op, got %v", err)
	}
}

func TestRenderEmailEscapesContent(t *testing.T) {
	content, err := renderEmail(emailData{
		Heading:   "New lead assigned",
		Recipient: "Asha",
		Body:      "A new lead has been assigned to you.",
		Detail:    "Lead: <script>alert(1)</script>",
	})
	if err != nil {
		t.Fatalf("renderEmail: %v", err)
	}
	if strings.Contains(content, "<script>") {
		t.Error("template must escape html in lead names")
	}
	if !strings.Contains(content, "Hi Asha,") {
		t.Errorf("missing greeting in rendered email:\n%s", content)
	}
}
