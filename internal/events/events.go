// Package events defines the domain events modules publish on the shared bus.
package events

import (
	"time"

	"counsel_portal_backend/platform/events"
)

// Event names.
const (
	LeadCreatedName      = "leads.lead_created"
	LeadAssignedName     = "leads.lead_assigned"
	StageChangedName     = "leads.stage_changed"
	SessionScheduledName = "leads.session_scheduled"
	DocumentUploadedName = "leads.document_uploaded"
	ImportCompletedName  = "leads.import_completed"
)

// LeadCreated fires when a lead enters the system, by manual entry or import.
type LeadCreated struct {
	events.BaseEvent
	LeadID int64
	Name   string
	Source string
}

func (LeadCreated) EventName() string { return LeadCreatedName }

// LeadAssigned fires when a counselor is assigned to a lead.
type LeadAssigned struct {
	events.BaseEvent
	LeadID        int64
	LeadName      string
	CounselorID   int64
	CounselorName string
}

func (LeadAssigned) EventName() string { return LeadAssignedName }

// StageChanged fires after a committed stage transition.
type StageChanged struct {
	events.BaseEvent
	LeadID    int64
	FromStage string
	ToStage   string
	ActorID   int64
	Reason    string
}

func (StageChanged) EventName() string { return StageChangedName }

// SessionScheduled fires when a task books a counseling session.
type SessionScheduled struct {
	events.BaseEvent
	LeadID      int64
	LeadName    string
	SessionDate time.Time
	CounselorID int64
}

func (SessionScheduled) EventName() string { return SessionScheduledName }

// DocumentUploaded fires when a checklist document is recorded.
type DocumentUploaded struct {
	events.BaseEvent
	LeadID  int64
	DocType string
}

func (DocumentUploaded) EventName() string { return DocumentUploadedName }

// ImportCompleted fires when a CSV import job finishes.
type ImportCompleted struct {
	events.BaseEvent
	JobID    string
	Imported int
	Skipped  int
}

func (ImportCompleted) EventName() string { return ImportCompletedName }
