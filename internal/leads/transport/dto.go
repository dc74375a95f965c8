// Package transport defines the request and response shapes of the leads API.
package transport

import (
	"time"

	"counsel_portal_backend/internal/leads/domain"
)

type CreateLeadRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=120"`
	Phone   string `json:"phone" validate:"required"`
	Email   string `json:"email" validate:"omitempty,email"`
	Country string `json:"country" validate:"max=80"`
	Course  string `json:"course" validate:"max=160"`
	Intake  string `json:"intake" validate:"max=40"`
	Source  string `json:"source" validate:"max=80"`
}

type UpdateLeadRequest struct {
	Name    *string `json:"name" validate:"omitempty,min=2,max=120"`
	Email   *string `json:"email" validate:"omitempty,email"`
	Country *string `json:"country" validate:"omitempty,max=80"`
	Course  *string `json:"course" validate:"omitempty,max=160"`
	Intake  *string `json:"intake" validate:"omitempty,max=40"`
	Source  *string `json:"source" validate:"omitempty,max=80"`
}

type AssignCounselorRequest struct {
	CounselorID   int64  `json:"counselorId" validate:"required,gt=0"`
	CounselorName string `json:"counselorName" validate:"required"`
}

type OverrideStageRequest struct {
	TargetStage string `json:"targetStage" validate:"required"`
	Reason      string `json:"reason" validate:"required,min=3"`
}

// SubmitTaskRequest is the flat task form. The handler folds it into the
// payload variant matching TaskType before it reaches the service.
type SubmitTaskRequest struct {
	TaskType string `json:"taskType" validate:"required"`
	Remarks  string `json:"remarks" validate:"required,min=2"`

	CallType            string     `json:"callType"`
	CallStatus          string     `json:"callStatus"`
	ConnectStatus       string     `json:"connectStatus"`
	ReasonNotInterested string     `json:"reasonNotInterested"`
	PreferredLanguage   string     `json:"preferredLanguage"`
	SessionStatus       string     `json:"sessionStatus"`
	SessionDate         *time.Time `json:"sessionDate"`

	ShortlistingInitiated   string `json:"shortlistingInitiated"`
	ShortlistingStatus      string `json:"shortlistingStatus"`
	ShortlistingFinalStatus string `json:"shortlistingFinalStatus"`

	ApplicationProcess string `json:"applicationProcess"`
	ApplicationCount   int    `json:"applicationCount"`

	TrackingStatus    string `json:"trackingStatus"`
	ApplicationStatus string `json:"applicationStatus"`
	OfferLetterStatus string `json:"offerLetterStatus"`
	VisaStatus        string `json:"visaStatus"`
	UniversityName    string `json:"universityName"`
	UniversityURL     string `json:"universityUrl"`
	Username          string `json:"username"`
	Password          string `json:"password"`
}

// Payload builds the typed task payload for the requested task type.
func (r SubmitTaskRequest) Payload() (domain.TaskPayload, bool) {
	switch domain.TaskType(r.TaskType) {
	case domain.TaskTypeCall:
		return domain.CallOutcome{
			CallType:            r.CallType,
			CallStatus:          r.CallStatus,
			ConnectStatus:       r.ConnectStatus,
			ReasonNotInterested: r.ReasonNotInterested,
			PreferredLanguage:   r.PreferredLanguage,
			SessionStatus:       r.SessionStatus,
			SessionDate:         r.SessionDate,
		}, true
	case domain.TaskTypeMeetDone:
		return domain.MeetOutcome{
			ConnectStatus:       r.ConnectStatus,
			ReasonNotInterested: r.ReasonNotInterested,
			PreferredLanguage:   r.PreferredLanguage,
			SessionStatus:       r.SessionStatus,
			SessionDate:         r.SessionDate,
		}, true
	case domain.TaskTypeShortlisting:
		return domain.ShortlistingOutcome{
			Initiated:   r.ShortlistingInitiated,
			Status:      r.ShortlistingStatus,
			FinalStatus: r.ShortlistingFinalStatus,
		}, true
	case domain.TaskTypeApplicationProcess:
		return domain.ApplicationProcessOutcome{
			Process:          r.ApplicationProcess,
			ApplicationCount: r.ApplicationCount,
		}, true
	case domain.TaskTypeTracking:
		return domain.TrackingOutcome{
			TrackingStatus:    r.TrackingStatus,
			ApplicationStatus: r.ApplicationStatus,
			OfferLetterStatus: r.OfferLetterStatus,
			VisaStatus:        r.VisaStatus,
			UniversityName:    r.UniversityName,
			UniversityURL:     r.UniversityURL,
			Username:          r.Username,
			Password:          r.Password,
		}, true
	case domain.TaskTypeSubmitDocuments:
		return domain.SubmitDocumentsOutcome{}, true
	default:
		return nil, false
	}
}

type AddRemarkRequest struct {
	Body string `json:"body" validate:"required,min=1"`
}

// RecordDocumentRequest accepts either a full URL or an object storage file
// key produced by the upload-url endpoint.
type RecordDocumentRequest struct {
	Type    string `json:"type" validate:"required"`
	URL     string `json:"url" validate:"required,max=1024"`
	Remarks string `json:"remarks" validate:"max=500"`
}

type DocumentUploadURLRequest struct {
	FileName string `json:"fileName" validate:"required,max=255"`
}

type UpsertApplicationRequest struct {
	UniversityName string `json:"universityName" validate:"required,min=2,max=200"`
}

type SaveApplicationRequest struct {
	PortalURL       *string    `json:"portalUrl" validate:"omitempty,url"`
	Username        *string    `json:"username"`
	Password        *string    `json:"password"`
	Status          *string    `json:"status"`
	DepositProof    *string    `json:"depositProof"`
	DepositDate     *time.Time `json:"depositDate"`
	TuitionProof    *string    `json:"tuitionProof"`
	TuitionDate     *time.Time `json:"tuitionDate"`
	CommissionProof *string    `json:"commissionProof"`
	CommissionDate  *time.Time `json:"commissionDate"`
}

// LeadResponse decorates a lead with its pipeline progress.
type LeadResponse struct {
	domain.Lead
	ProgressPercent int `json:"progressPercent"`
}

func NewLeadResponse(lead domain.Lead) LeadResponse {
	return LeadResponse{Lead: lead, ProgressPercent: domain.StageProgressPercent(lead.CurrentStage)}
}

func NewLeadResponses(leads []domain.Lead) []LeadResponse {
	out := make([]LeadResponse, 0, len(leads))
	for _, l := range leads {
		out = append(out, NewLeadResponse(l))
	}
	return out
}

type ListLeadsResponse struct {
	Items []LeadResponse `json:"items"`
	Total int            `json:"total"`
}

type TransitionResponse struct {
	Changed bool   `json:"changed"`
	Stage   string `json:"stage"`
}
