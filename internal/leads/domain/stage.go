// Package domain provides core business rules for the leads bounded context:
// the counseling pipeline stage catalog, task outcome classification, and
// stage transition validation.
package domain

// StageUnchanged is a sentinel indicating that a derivation function
// intentionally does not prescribe a pipeline stage. The caller must
// substitute the current stage of the lead.
const StageUnchanged = ""

const (
	StageYetToAssign          = "Yet to Assign"
	StageYetToContact         = "Yet to Contact"
	StageContactAgain         = "Contact Again"
	StageNotInterested        = "Not Interested"
	StagePlanningLater        = "Planning Later"
	StageYetToDecide          = "Yet to Decide"
	StageIrrelevantLead       = "Irrelevant Lead"
	StageRegisteredForSession = "Registered for Session"
	StageSessionScheduled     = "Session Scheduled"
	StageSessionCompleted     = "Session Completed"
	StageDocsSubmitted        = "Docs Submitted"
	StageShortlistedUniv      = "Shortlisted Univ."
	StageApplicationProgress  = "Application in Progress"
	StageOfferLetterReceived  = "Offer Letter Received"
	StageDepositPaid          = "Deposit Paid"
	StageVisaReceived         = "Visa Received"
	StageFlightBooked         = "Flight and Accommodation Booked"
	StageTuitionFeePaid       = "Tuition Fee Paid"
	StageCommissionReceived   = "Commission Received"
	StageInterested           = "Interested"
	StageJoinLater            = "Join Later"
	StageLanguageReassignment = "Language Reassignment"
	StageCasualFollowUp       = "Casual Follow-up"
)

// pipelineStages is the ordered, immutable stage catalog. The order encodes
// business priority and is the single source of truth for all ordering
// decisions; no other component may hardcode a stage's relative position.
var pipelineStages = []string{
	StageYetToAssign,
	StageYetToContact,
	StageContactAgain,
	StageNotInterested,
	StagePlanningLater,
	StageYetToDecide,
	StageIrrelevantLead,
	StageRegisteredForSession,
	StageSessionScheduled,
	StageSessionCompleted,
	StageDocsSubmitted,
	StageShortlistedUniv,
	StageApplicationProgress,
	StageOfferLetterReceived,
	StageDepositPaid,
	StageVisaReceived,
	StageFlightBooked,
	StageTuitionFeePaid,
	StageCommissionReceived,
	StageInterested,
	StageJoinLater,
	StageLanguageReassignment,
	StageCasualFollowUp,
}

var stageIndexes = buildStageIndexes()

func buildStageIndexes() map[string]int {
	indexes := make(map[string]int, len(pipelineStages))
	for i, stage := range pipelineStages {
		indexes[stage] = i
	}
	return indexes
}

// Stages returns a copy of the ordered stage catalog.
func Stages() []string {
	out := make([]string, len(pipelineStages))
	copy(out, pipelineStages)
	return out
}

// StageCount returns the number of stages in the catalog.
func StageCount() int {
	return len(pipelineStages)
}

// StageIndex returns the numeric index of a stage, or -1 if unknown.
func StageIndex(stage string) int {
	if index, ok := stageIndexes[stage]; ok {
		return index
	}
	return -1
}

// IsKnownStage reports whether stage is a member of the catalog.
func IsKnownStage(stage string) bool {
	_, ok := stageIndexes[stage]
	return ok
}

// IsStageAtOrAfter reports whether current sits at or past target in the catalog.
func IsStageAtOrAfter(current, target string) bool {
	return StageIndex(current) >= StageIndex(target)
}

// StageProgressPercent maps a stage to a 0..100 progress value based on its
// position in the catalog. Unknown stages report 0.
func StageProgressPercent(stage string) int {
	index := StageIndex(stage)
	if index == -1 {
		return 0
	}
	return int(float64(index+1)/float64(len(pipelineStages))*100 + 0.5)
}

// terminalStages are stages where the counseling workflow is complete:
// the negative funnel exits and the funnel-complete stage.
var terminalStages = map[string]bool{
	StageNotInterested:      true,
	StageIrrelevantLead:     true,
	StageCommissionReceived: true,
}

// IsTerminalStage reports whether stage ends the pipeline for a lead.
func IsTerminalStage(stage string) bool {
	return terminalStages[stage]
}

// regressionExemptStages are funnel exits and retry holding stages. Moving a
// lead into one of these is allowed regardless of catalog ordering: they
// represent exits and re-contacts, not progress, and a lead may cycle back
// into them repeatedly.
var regressionExemptStages = map[string]bool{
	StageNotInterested:  true,
	StageIrrelevantLead: true,
	StageContactAgain:   true,
	StagePlanningLater:  true,
	StageYetToDecide:    true,
}

// IsRegressionExempt reports whether stage may be entered from any position
// in the pipeline, including backward moves.
func IsRegressionExempt(stage string) bool {
	return regressionExemptStages[stage]
}
