package domain

import "time"

// University application statuses.
const (
	AppStatusDraft         = "Draft"
	AppStatusInProgress    = "In Progress"
	AppStatusSubmitted     = "Submitted"
	AppStatusOfferReceived = "Offer Received"
	AppStatusRejected      = "Rejected"
)

// MapTrackingStatusToAppStatus translates an application tracking update into
// the status stored on the active university application. Unknown tracking
// values leave the status untouched.
func MapTrackingStatusToAppStatus(trackingValue string) (string, bool) {
	switch trackingValue {
	case "Application submitted to KC", "Application submitted to university", "Awaiting decision":
		return AppStatusSubmitted, true
	case "Docs Pending", "In Progress":
		return AppStatusInProgress, true
	case "Accepted":
		return AppStatusOfferReceived, true
	case "Rejected":
		return AppStatusRejected, true
	default:
		return "", false
	}
}

// ApplicationMilestones is the view of the active application the derived
// stage rules need: its status plus whether each payment proof and date pair
// is complete.
type ApplicationMilestones struct {
	Status             string
	DepositComplete    bool
	TuitionComplete    bool
	CommissionComplete bool
}

// MilestonesFor builds the milestone view from an application. A payment
// milestone counts only when both the proof and its date are recorded.
func MilestonesFor(app *UniversityApplication) ApplicationMilestones {
	return ApplicationMilestones{
		Status:             app.Status,
		DepositComplete:    app.DepositProof != "" && app.DepositDate != nil,
		TuitionComplete:    app.TuitionProof != "" && app.TuitionDate != nil,
		CommissionComplete: app.CommissionProof != "" && app.CommissionDate != nil,
	}
}

// DerivedStageProposals evaluates the derived-stage rules against the active
// application and returns proposals in pipeline order. Each rule is
// independent and idempotent; the transition validator drops any proposal the
// lead has already passed.
func DerivedStageProposals(m ApplicationMilestones) []StageProposal {
	var out []StageProposal

	switch m.Status {
	case AppStatusSubmitted, AppStatusInProgress, AppStatusOfferReceived:
		out = append(out, StageProposal{Stage: StageApplicationProgress, Reason: "active application " + m.Status})
	}
	if m.Status == AppStatusOfferReceived {
		out = append(out, StageProposal{Stage: StageOfferLetterReceived, Reason: "active application received an offer"})
	}
	if m.DepositComplete {
		out = append(out, StageProposal{Stage: StageDepositPaid, Reason: "deposit proof and date recorded"})
	}
	if m.TuitionComplete {
		out = append(out, StageProposal{Stage: StageTuitionFeePaid, Reason: "tuition proof and date recorded"})
	}
	if m.CommissionComplete {
		out = append(out, StageProposal{Stage: StageCommissionReceived, Reason: "commission proof and date recorded"})
	}
	return out
}

// AppAuditEntry is one append-only audit record on a university application.
// It records which fields changed, never their values, so portal credentials
// and payment proofs stay out of the log.
type AppAuditEntry struct {
	At            time.Time `json:"at"`
	ActorID       int64     `json:"actor_id"`
	ActorName     string    `json:"actor_name"`
	ChangedFields []string  `json:"changed_fields"`
}
