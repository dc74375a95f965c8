package domain

// StageProposal is a candidate next stage produced by classification. It is
// not yet committed; validation and the transition engine decide whether it
// takes effect.
type StageProposal struct {
	Stage string
	// Reason is an operator-readable summary of what triggered the proposal.
	// It becomes the reason on the resulting history entry.
	Reason string
}

// ClassifyTaskOutcome maps a submitted task payload to a stage proposal, or
// nil when the outcome implies no stage change. Pure function: callers run
// the result through transition validation before committing anything.
func ClassifyTaskOutcome(payload TaskPayload) *StageProposal {
	switch p := payload.(type) {
	case CallOutcome:
		return classifyCall(p)
	case *CallOutcome:
		return classifyCall(*p)
	case MeetOutcome:
		return classifyMeet(p)
	case *MeetOutcome:
		return classifyMeet(*p)
	case ShortlistingOutcome:
		return classifyShortlisting(p)
	case *ShortlistingOutcome:
		return classifyShortlisting(*p)
	case ApplicationProcessOutcome:
		return classifyApplicationProcess(p)
	case *ApplicationProcessOutcome:
		return classifyApplicationProcess(*p)
	case TrackingOutcome:
		return classifyTracking(p)
	case *TrackingOutcome:
		return classifyTracking(*p)
	case SubmitDocumentsOutcome, *SubmitDocumentsOutcome:
		return &StageProposal{Stage: StageDocsSubmitted, Reason: "documents submitted"}
	default:
		return nil
	}
}

func classifyCall(p CallOutcome) *StageProposal {
	switch p.CallStatus {
	case CallStatusDone:
		if stage, ok := stageForConnectStatus(p.ConnectStatus); ok {
			return &StageProposal{Stage: stage, Reason: "call completed: " + p.ConnectStatus}
		}
		return nil
	case CallStatusWrongNumber:
		return &StageProposal{Stage: StageIrrelevantLead, Reason: "wrong number"}
	case CallStatusCallBack, CallStatusCallRejected, CallStatusSwitchOff,
		CallStatusNotReachable, CallStatusNotAnswered, CallStatusCallBusy:
		return &StageProposal{Stage: StageContactAgain, Reason: "call attempt: " + p.CallStatus}
	default:
		return nil
	}
}

func classifyMeet(p MeetOutcome) *StageProposal {
	if p.ConnectStatus == ConnectInterested {
		return &StageProposal{Stage: StageSessionCompleted, Reason: "meeting completed: interested"}
	}
	if stage, ok := stageForConnectStatus(p.ConnectStatus); ok {
		return &StageProposal{Stage: stage, Reason: "meeting completed: " + p.ConnectStatus}
	}
	return nil
}

// stageForConnectStatus covers the connect-status mapping shared by completed
// calls and meetings. Interested deliberately yields no stage here: the lead
// stays put until a session is scheduled.
func stageForConnectStatus(connectStatus string) (string, bool) {
	switch connectStatus {
	case ConnectNotInterested:
		return StageNotInterested, true
	case ConnectPlanningLater:
		return StagePlanningLater, true
	case ConnectYetToDecide:
		return StageYetToDecide, true
	case ConnectIrrelevant:
		return StageIrrelevantLead, true
	case ConnectSessionScheduling:
		return StageRegisteredForSession, true
	default:
		return StageUnchanged, false
	}
}

func classifyShortlisting(p ShortlistingOutcome) *StageProposal {
	if p.FinalStatus == ShortlistingSentToStudents {
		return &StageProposal{Stage: StageShortlistedUniv, Reason: "shortlist sent to student"}
	}
	return nil
}

func classifyApplicationProcess(p ApplicationProcessOutcome) *StageProposal {
	if p.Process != "" {
		return &StageProposal{Stage: StageApplicationProgress, Reason: "application process initiated"}
	}
	return nil
}

func classifyTracking(p TrackingOutcome) *StageProposal {
	switch p.TrackingStatus {
	case TrackingOfferLetterStatus:
		if p.OfferLetterStatus != "" {
			return &StageProposal{Stage: StageOfferLetterReceived, Reason: "offer letter: " + p.OfferLetterStatus}
		}
	case TrackingVisaTracking:
		if p.VisaStatus == VisaStatusApproved {
			return &StageProposal{Stage: StageVisaReceived, Reason: "visa approved"}
		}
	}
	return nil
}
