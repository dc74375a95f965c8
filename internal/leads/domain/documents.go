package domain

// Document checklist types. The checklist is fixed; uploads carry one of
// these types and gating logic only cares about the latest record per type.
const (
	DocTypePassport            = "Passport"
	DocTypeAcademicTranscripts = "Academic Transcripts"
	DocTypeEnglishTestScore    = "English Test Score"
	DocTypeCV                  = "CV/Resume"
	DocTypeSOP                 = "SOP"
	DocTypeLOR                 = "LOR"
	DocTypeFinancialDocuments  = "Financial Documents"
	DocTypeOther               = "Other"
)

// PassportStatusSubmitted is the lead passport flag value that unlocks the
// shortlisting milestone.
const PassportStatusSubmitted = "Submitted"

var documentChecklist = []string{
	DocTypePassport,
	DocTypeAcademicTranscripts,
	DocTypeEnglishTestScore,
	DocTypeCV,
	DocTypeSOP,
	DocTypeLOR,
	DocTypeFinancialDocuments,
	DocTypeOther,
}

// DocumentChecklist returns the fixed checklist in display order.
func DocumentChecklist() []string {
	out := make([]string, len(documentChecklist))
	copy(out, documentChecklist)
	return out
}

// IsChecklistType reports whether t is a member of the fixed checklist.
func IsChecklistType(t string) bool {
	for _, c := range documentChecklist {
		if c == t {
			return true
		}
	}
	return false
}

// ChecklistStatus partitions the fixed checklist into submitted and missing
// types for one lead.
type ChecklistStatus struct {
	Submitted []string
	Missing   []string
}

// BuildChecklistStatus computes the checklist status from the set of document
// types a lead has on file. Types outside the checklist are ignored.
func BuildChecklistStatus(submittedTypes map[string]bool) ChecklistStatus {
	var st ChecklistStatus
	for _, t := range documentChecklist {
		if submittedTypes[t] {
			st.Submitted = append(st.Submitted, t)
		} else {
			st.Missing = append(st.Missing, t)
		}
	}
	return st
}

// ShortlistGateOpen reports whether a "Shortlisted Univ." proposal from a
// shortlisting task may proceed. Both the task's final status and the lead's
// passport submission flag must hold; either one alone is not enough.
func ShortlistGateOpen(finalStatus, passportStatus string) bool {
	return finalStatus == ShortlistingSentToStudents && passportStatus == PassportStatusSubmitted
}
