package domain

import "fmt"

// TransitionDecision is the outcome of validating a proposed stage change.
type TransitionDecision int

const (
	// TransitionAccept means the stage change should be committed.
	TransitionAccept TransitionDecision = iota
	// TransitionNoOp means the proposal is legal but changes nothing: it
	// equals the current stage or would silently regress past a milestone
	// already reached. Not an error, and no history entry is written.
	TransitionNoOp
	// TransitionReject means the proposal is illegal, such as a stage not
	// present in the catalog.
	TransitionReject
)

// ValidateTransition decides whether a lead at currentStage may move to
// proposedStage. Forward moves are always allowed. Backward moves are allowed
// only into the regression-exempt stages (funnel exits and retries); any
// other backward proposal is a no-op so that re-submitting an
// already-satisfied milestone task does not reset progress.
func ValidateTransition(currentStage, proposedStage string) (TransitionDecision, error) {
	if !IsKnownStage(proposedStage) {
		return TransitionReject, fmt.Errorf("unknown pipeline stage %q", proposedStage)
	}
	if currentStage != "" && !IsKnownStage(currentStage) {
		return TransitionReject, fmt.Errorf("lead is in unknown pipeline stage %q", currentStage)
	}
	if proposedStage == currentStage {
		return TransitionNoOp, nil
	}
	if IsRegressionExempt(proposedStage) {
		return TransitionAccept, nil
	}
	if currentStage != "" && IsStageAtOrAfter(currentStage, proposedStage) {
		return TransitionNoOp, nil
	}
	return TransitionAccept, nil
}
