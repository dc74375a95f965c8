package domain

import "time"

// Lead is a prospective student working through the counseling pipeline.
// CurrentStage only changes through the stage transition engine; no code path
// writes it directly without an accompanying history entry.
type Lead struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Phone          string     `json:"phone"`
	Email          string     `json:"email,omitempty"`
	Country        string     `json:"country,omitempty"`
	Course         string     `json:"course,omitempty"`
	Intake         string     `json:"intake,omitempty"`
	Source         string     `json:"source,omitempty"`
	CurrentStage   string     `json:"currentStage"`
	AssignedTo     *int64     `json:"assignedTo,omitempty"`
	PassportStatus string     `json:"passportStatus,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	LastContactAt  *time.Time `json:"lastContactAt,omitempty"`
}

// Task is one logged interaction event. Immutable once created.
type Task struct {
	ID        int64       `json:"id"`
	LeadID    int64       `json:"leadId"`
	Type      TaskType    `json:"type"`
	Payload   TaskPayload `json:"payload"`
	Remarks   string      `json:"remarks"`
	CreatedBy int64       `json:"createdBy"`
	CreatedAt time.Time   `json:"createdAt"`
}

// StageHistoryEntry is one append-only audit record of a stage change.
// FromStage is empty for the first transition of an imported lead.
type StageHistoryEntry struct {
	ID        int64     `json:"id"`
	LeadID    int64     `json:"leadId"`
	FromStage string    `json:"fromStage,omitempty"`
	ToStage   string    `json:"toStage"`
	ActorID   int64     `json:"actorId"`
	Reason    string    `json:"reason,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// UniversityApplication is a child of a lead. At most one per lead is active
// at a time; activating one deactivates its siblings in the same transaction.
type UniversityApplication struct {
	ID              int64           `json:"id"`
	LeadID          int64           `json:"leadId"`
	UniversityName  string          `json:"universityName"`
	PortalURL       string          `json:"portalUrl,omitempty"`
	Username        string          `json:"username,omitempty"`
	Password        string          `json:"-"`
	Status          string          `json:"status"`
	IsActive        bool            `json:"isActive"`
	DepositProof    string          `json:"depositProof,omitempty"`
	DepositDate     *time.Time      `json:"depositDate,omitempty"`
	TuitionProof    string          `json:"tuitionProof,omitempty"`
	TuitionDate     *time.Time      `json:"tuitionDate,omitempty"`
	CommissionProof string          `json:"commissionProof,omitempty"`
	CommissionDate  *time.Time      `json:"commissionDate,omitempty"`
	AuditLog        []AppAuditEntry `json:"auditLog"`
	CreatedAt       time.Time       `json:"createdAt"`
	UpdatedAt       time.Time       `json:"updatedAt"`
}

// Document is one uploaded file reference for a lead's checklist.
type Document struct {
	ID        int64     `json:"id"`
	LeadID    int64     `json:"leadId"`
	Type      string    `json:"type"`
	URL       string    `json:"url"`
	Remarks   string    `json:"remarks,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Remark is a free-text note on a lead, append-only.
type Remark struct {
	ID         int64     `json:"id"`
	LeadID     int64     `json:"leadId"`
	Body       string    `json:"body"`
	AuthorID   int64     `json:"authorId"`
	AuthorName string    `json:"authorName,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
}
