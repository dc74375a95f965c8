package domain

import (
	"fmt"
	"strings"
	"time"
)

// Actor identifies the user performing a mutating operation. It is threaded
// explicitly through every call that writes audit records; there is no
// ambient "current user".
type Actor struct {
	ID   int64
	Name string
	Role string
}

// TaskType discriminates the closed set of task payload variants.
type TaskType string

const (
	TaskTypeCall               TaskType = "Call"
	TaskTypeMeetDone           TaskType = "Meet Done"
	TaskTypeShortlisting       TaskType = "Shortlisting"
	TaskTypeApplicationProcess TaskType = "Application Process"
	TaskTypeTracking           TaskType = "Tracking"
	TaskTypeSubmitDocuments    TaskType = "Submit Documents"
)

// Call status values.
const (
	CallStatusDone         = "Call Done"
	CallStatusCallBack     = "Call Back"
	CallStatusCallRejected = "Call Rejected"
	CallStatusSwitchOff    = "Switch Off"
	CallStatusNotReachable = "Not Reachable"
	CallStatusNotAnswered  = "Not Answered"
	CallStatusCallBusy     = "Call Busy"
	CallStatusWrongNumber  = "Wrong Number"
)

// Connect status values recorded after a completed call or meeting.
const (
	ConnectInterested        = "Interested"
	ConnectNotInterested     = "Not Interested"
	ConnectPlanningLater     = "Planning later"
	ConnectYetToDecide       = "Yet to Decide"
	ConnectIrrelevant        = "Irrelevant"
	ConnectCallBack          = "Call back"
	ConnectCasualFollowUp    = "Casual Follow-up"
	ConnectSessionScheduling = "Session Scheduling"
)

// Shortlisting final status values.
const (
	ShortlistingSentToStudents = "Sent to students"
	ShortlistingYetToSend      = "Yet to send"
)

// Tracking sub-status values.
const (
	TrackingCredentialsLogging = "Credentials logging"
	TrackingApplicationStatus  = "Application Status"
	TrackingOfferLetterStatus  = "Offer Letter Status"
	TrackingVisaTracking       = "VISA Tracking"
)

// Visa status values.
const (
	VisaStatusApplied   = "Applied"
	VisaStatusInProcess = "In Process"
	VisaStatusApproved  = "Approved"
	VisaStatusRejected  = "Rejected"
)

// Session status values.
const (
	SessionStatusConfirmed   = "Confirmed, Will attend"
	SessionStatusRescheduled = "Rescheduled"
	SessionStatusCancelled   = "Cancelled"
	SessionStatusCompleted   = "Completed"
)

// ApplicationCountMin and ApplicationCountMax bound how many university
// applications a single Application Process task may initiate.
const (
	ApplicationCountMin = 1
	ApplicationCountMax = 7
)

// TaskPayload is the closed set of per-task-type outcome variants. Each
// variant carries only the fields legal for its task type; the classifier
// switches on the concrete type rather than probing optional fields.
type TaskPayload interface {
	// TaskType returns the discriminating task type tag.
	TaskType() TaskType
	// Validate checks the type-specific required fields against the option
	// catalog. It returns a human-readable reason for the first violation.
	Validate(opts *OptionCatalog) error
}

// CallOutcome records a phone call attempt.
type CallOutcome struct {
	CallType            string
	CallStatus          string
	ConnectStatus       string
	ReasonNotInterested string
	PreferredLanguage   string
	SessionStatus       string
	SessionDate         *time.Time
	IsRescheduled       bool
}

func (CallOutcome) TaskType() TaskType { return TaskTypeCall }

func (p CallOutcome) Validate(opts *OptionCatalog) error {
	if strings.TrimSpace(p.CallStatus) == "" {
		return fmt.Errorf("call status is required for call tasks")
	}
	if !opts.IsCallStatus(p.CallStatus) {
		return fmt.Errorf("unknown call status %q", p.CallStatus)
	}
	if p.CallStatus == CallStatusDone {
		if strings.TrimSpace(p.CallType) == "" {
			return fmt.Errorf("call type is required when call is done")
		}
		if strings.TrimSpace(p.ConnectStatus) == "" {
			return fmt.Errorf("connect status is required when call is completed")
		}
		if !opts.IsConnectStatus(p.ConnectStatus) {
			return fmt.Errorf("unknown connect status %q", p.ConnectStatus)
		}
	}
	return validateConnectDetails(p.ConnectStatus, p.ReasonNotInterested, p.SessionStatus, p.SessionDate)
}

// MeetOutcome records an in-person or virtual meeting that took place.
type MeetOutcome struct {
	ConnectStatus       string
	ReasonNotInterested string
	PreferredLanguage   string
	SessionStatus       string
	SessionDate         *time.Time
}

func (MeetOutcome) TaskType() TaskType { return TaskTypeMeetDone }

func (p MeetOutcome) Validate(opts *OptionCatalog) error {
	if strings.TrimSpace(p.ConnectStatus) == "" {
		return fmt.Errorf("connect status is required for meeting tasks")
	}
	if !opts.IsConnectStatus(p.ConnectStatus) {
		return fmt.Errorf("unknown connect status %q", p.ConnectStatus)
	}
	return validateConnectDetails(p.ConnectStatus, p.ReasonNotInterested, p.SessionStatus, p.SessionDate)
}

// ShortlistingOutcome records progress on university shortlisting.
type ShortlistingOutcome struct {
	Initiated   string
	Status      string
	FinalStatus string
}

func (ShortlistingOutcome) TaskType() TaskType { return TaskTypeShortlisting }

func (p ShortlistingOutcome) Validate(opts *OptionCatalog) error {
	if strings.TrimSpace(p.FinalStatus) == "" {
		return fmt.Errorf("shortlisting final status is required")
	}
	if !opts.IsShortlistingFinalStatus(p.FinalStatus) {
		return fmt.Errorf("unknown shortlisting final status %q", p.FinalStatus)
	}
	return nil
}

// ApplicationProcessOutcome records the start of university applications.
type ApplicationProcessOutcome struct {
	Process          string
	ApplicationCount int
}

func (ApplicationProcessOutcome) TaskType() TaskType { return TaskTypeApplicationProcess }

func (p ApplicationProcessOutcome) Validate(opts *OptionCatalog) error {
	if strings.TrimSpace(p.Process) == "" {
		return fmt.Errorf("application process is required")
	}
	if p.ApplicationCount < ApplicationCountMin || p.ApplicationCount > ApplicationCountMax {
		return fmt.Errorf("applications count must be between %d and %d", ApplicationCountMin, ApplicationCountMax)
	}
	return nil
}

// TrackingOutcome records application, offer, or visa tracking updates.
type TrackingOutcome struct {
	TrackingStatus    string
	ApplicationStatus string
	OfferLetterStatus string
	VisaStatus        string

	// Credentials logging fields.
	UniversityName string
	UniversityURL  string
	Username       string
	Password       string
}

func (TrackingOutcome) TaskType() TaskType { return TaskTypeTracking }

func (p TrackingOutcome) Validate(opts *OptionCatalog) error {
	if strings.TrimSpace(p.TrackingStatus) == "" {
		return fmt.Errorf("tracking status is required")
	}
	if !opts.IsTrackingStatus(p.TrackingStatus) {
		return fmt.Errorf("unknown tracking status %q", p.TrackingStatus)
	}

	switch p.TrackingStatus {
	case TrackingCredentialsLogging:
		if strings.TrimSpace(p.UniversityName) == "" {
			return fmt.Errorf("university name is required when logging credentials")
		}
	case TrackingApplicationStatus:
		if strings.TrimSpace(p.ApplicationStatus) == "" {
			return fmt.Errorf("application status is required")
		}
		if !opts.IsApplicationStatus(p.ApplicationStatus) {
			return fmt.Errorf("unknown application status %q", p.ApplicationStatus)
		}
	case TrackingVisaTracking:
		if strings.TrimSpace(p.VisaStatus) == "" {
			return fmt.Errorf("visa status is required")
		}
		if !opts.IsVisaStatus(p.VisaStatus) {
			return fmt.Errorf("unknown visa status %q", p.VisaStatus)
		}
	}
	return nil
}

// SubmitDocumentsOutcome records a completed document submission round.
type SubmitDocumentsOutcome struct{}

func (SubmitDocumentsOutcome) TaskType() TaskType { return TaskTypeSubmitDocuments }

func (SubmitDocumentsOutcome) Validate(*OptionCatalog) error { return nil }

// validateConnectDetails covers the cross-field rules shared by call and
// meeting outcomes: a reason for disinterest and a follow-up date where the
// outcome implies one.
func validateConnectDetails(connectStatus, reasonNotInterested, sessionStatus string, sessionDate *time.Time) error {
	if connectStatus == ConnectNotInterested && strings.TrimSpace(reasonNotInterested) == "" {
		return fmt.Errorf("reason is required when lead is not interested")
	}

	requiresFollowUp := connectStatus == ConnectCallBack ||
		connectStatus == ConnectSessionScheduling ||
		connectStatus == ConnectCasualFollowUp ||
		sessionStatus == SessionStatusRescheduled
	if requiresFollowUp && sessionDate == nil {
		return fmt.Errorf("follow-up date is required when scheduling callbacks, sessions, or follow-ups")
	}

	return nil
}
