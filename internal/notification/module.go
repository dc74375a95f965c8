// Package notification sends counselor emails in response to domain events,
// keeping email concerns out of the leads module.
package notification

import (
	"context"
	"errors"
	"time"

	authrepo "counsel_portal_backend/internal/auth/repository"
	domainevents "counsel_portal_backend/internal/events"
	"counsel_portal_backend/platform/events"
	"counsel_portal_backend/platform/logger"
)

// Sender delivers notification emails.
type Sender interface {
	SendLeadAssignedEmail(ctx context.Context, toEmail, counselorName, leadName string) error
	SendSessionScheduledEmail(ctx context.Context, toEmail, counselorName, leadName string, sessionDate time.Time) error
}

// UserReader resolves counselor accounts to email addresses.
type UserReader interface {
	GetByID(ctx context.Context, id int64) (authrepo.User, error)
}

// Module subscribes to lead events and emails the affected counselor.
// A nil sender disables delivery; events are then only logged.
type Module struct {
	users  UserReader
	sender Sender
	log    *logger.Logger
}

func New(users UserReader, sender Sender, log *logger.Logger) *Module {
	return &Module{users: users, sender: sender, log: log}
}

// RegisterHandlers subscribes the module to the events it cares about.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(domainevents.LeadAssigned{}.EventName(), m)
	bus.Subscribe(domainevents.SessionScheduled{}.EventName(), m)
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case domainevents.LeadAssigned:
		return m.handleLeadAssigned(ctx, e)
	case domainevents.SessionScheduled:
		return m.handleSessionScheduled(ctx, e)
	default:
		return nil
	}
}

func (m *Module) handleLeadAssigned(ctx context.Context, e domainevents.LeadAssigned) error {
	if m.sender == nil {
		m.log.Info("email disabled, skipping lead assigned notification", "leadId", e.LeadID)
		return nil
	}

	counselor, err := m.counselor(ctx, e.CounselorID)
	if err != nil || counselor.Email == "" {
		return err
	}

	if err := m.sender.SendLeadAssignedEmail(ctx, counselor.Email, counselor.Name, e.LeadName); err != nil {
		m.log.Error("failed to send lead assigned email", "leadId", e.LeadID, "counselorId", e.CounselorID, "error", err)
		return err
	}
	return nil
}

func (m *Module) handleSessionScheduled(ctx context.Context, e domainevents.SessionScheduled) error {
	if m.sender == nil || e.CounselorID == 0 {
		return nil
	}

	counselor, err := m.counselor(ctx, e.CounselorID)
	if err != nil || counselor.Email == "" {
		return err
	}

	if err := m.sender.SendSessionScheduledEmail(ctx, counselor.Email, counselor.Name, e.LeadName, e.SessionDate); err != nil {
		m.log.Error("failed to send session scheduled email", "leadId", e.LeadID, "counselorId", e.CounselorID, "error", err)
		return err
	}
	return nil
}

// counselor looks up the recipient. A missing account is logged and dropped
// rather than retried; the event is stale if the user was deleted.
func (m *Module) counselor(ctx context.Context, id int64) (authrepo.User, error) {
	user, err := m.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, authrepo.ErrNotFound) {
			m.log.Warn("notification recipient not found", "userId", id)
			return authrepo.User{}, nil
		}
		return authrepo.User{}, err
	}
	return user, nil
}
