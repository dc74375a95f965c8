package domain

import (
	"testing"
	"time"
)

func TestMapTrackingStatusToAppStatus(t *testing.T) {
	tests := []struct {
		tracking string
		want     string
		ok       bool
	}{
		{"Application submitted to KC", AppStatusSubmitted, true},
		{"Application submitted to university", AppStatusSubmitted, true},
		{"Awaiting decision", AppStatusSubmitted, true},
		{"Docs Pending", AppStatusInProgress, true},
		{"In Progress", AppStatusInProgress, true},
		{"Accepted", AppStatusOfferReceived, true},
		{"Rejected", AppStatusRejected, true},
		{"Withdrawn", "", false},
	}
	for _, tt := range tests {
		got, ok := MapTrackingStatusToAppStatus(tt.tracking)
		if got != tt.want || ok != tt.ok {
			t.Errorf("MapTrackingStatusToAppStatus(%q) = (%q, %v), want (%q, %v)", tt.tracking, got, ok, tt.want, tt.ok)
		}
	}
}

func TestMilestonesFor(t *testing.T) {
	now := time.Now()
	app := &UniversityApplication{
		Status:       AppStatusSubmitted,
		DepositProof: "deposit.pdf",
		DepositDate:  &now,
		TuitionProof: "tuition.pdf", // no date, incomplete
	}
	m := MilestonesFor(app)
	if !m.DepositComplete {
		t.Error("deposit with proof and date must be complete")
	}
	if m.TuitionComplete {
		t.Error("tuition without a date must not be complete")
	}
	if m.CommissionComplete {
		t.Error("commission with neither field must not be complete")
	}
}

func TestDerivedStageProposals(t *testing.T) {
	tests := []struct {
		name string
		m    ApplicationMilestones
		want []string
	}{
		{"draft proposes nothing", ApplicationMilestones{Status: AppStatusDraft}, nil},
		{"submitted", ApplicationMilestones{Status: AppStatusSubmitted}, []string{StageApplicationProgress}},
		{"in progress", ApplicationMilestones{Status: AppStatusInProgress}, []string{StageApplicationProgress}},
		{"offer received", ApplicationMilestones{Status: AppStatusOfferReceived}, []string{StageApplicationProgress, StageOfferLetterReceived}},
		{"rejected proposes nothing", ApplicationMilestones{Status: AppStatusRejected}, nil},
		{
			"deposit only",
			ApplicationMilestones{Status: AppStatusDraft, DepositComplete: true},
			[]string{StageDepositPaid},
		},
		{
			"all payments on an offer",
			ApplicationMilestones{Status: AppStatusOfferReceived, DepositComplete: true, TuitionComplete: true, CommissionComplete: true},
			[]string{StageApplicationProgress, StageOfferLetterReceived, StageDepositPaid, StageTuitionFeePaid, StageCommissionReceived},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DerivedStageProposals(tt.m)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d proposals, want %d: %+v", len(got), len(tt.want), got)
			}
			for i := range got {
				if got[i].Stage != tt.want[i] {
					t.Errorf("proposal[%d] = %q, want %q", i, got[i].Stage, tt.want[i])
				}
			}
		})
	}
}
