package domain

import "testing"

func TestBuildChecklistStatus(t *testing.T) {
	st := BuildChecklistStatus(map[string]bool{
		DocTypePassport: true,
		DocTypeSOP:      true,
		"Vaccination":   true, // not on the checklist, ignored
	})

	if len(st.Submitted) != 2 {
		t.Fatalf("submitted = %v, want passport and SOP", st.Submitted)
	}
	if len(st.Submitted)+len(st.Missing) != len(DocumentChecklist()) {
		t.Fatalf("checklist split does not cover the full checklist: %v / %v", st.Submitted, st.Missing)
	}
	for _, missing := range st.Missing {
		if missing == DocTypePassport || missing == DocTypeSOP {
			t.Fatalf("%q reported missing despite being submitted", missing)
		}
	}
}

func TestBuildChecklistStatusEmpty(t *testing.T) {
	st := BuildChecklistStatus(nil)
	if len(st.Submitted) != 0 {
		t.Fatalf("submitted = %v, want empty", st.Submitted)
	}
	if len(st.Missing) != len(DocumentChecklist()) {
		t.Fatalf("missing = %d types, want the full checklist", len(st.Missing))
	}
}

func TestIsChecklistType(t *testing.T) {
	for _, d := range DocumentChecklist() {
		if !IsChecklistType(d) {
			t.Errorf("IsChecklistType(%q) = false", d)
		}
	}
	if IsChecklistType("Birth Certificate") {
		t.Error("IsChecklistType accepted a type outside the checklist")
	}
}

func TestShortlistGateOpen(t *testing.T) {
	tests := []struct {
		name           string
		finalStatus    string
		passportStatus string
		want           bool
	}{
		{"both preconditions hold", ShortlistingSentToStudents, PassportStatusSubmitted, true},
		{"passport pending", ShortlistingSentToStudents, "Pending", false},
		{"shortlist not sent", ShortlistingYetToSend, PassportStatusSubmitted, false},
		{"neither", ShortlistingYetToSend, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ShortlistGateOpen(tt.finalStatus, tt.passportStatus); got != tt.want {
				t.Fatalf("ShortlistGateOpen(%q, %q) = %v, want %v", tt.finalStatus, tt.passportStatus, got, tt.want)
			}
		})
	}
}
