package service

import (
	"context"
	"strings"
	"time"

	domainevents "counsel_portal_backend/internal/events"
	"counsel_portal_backend/internal/leads/domain"
	"counsel_portal_backend/platform/apperr"
	"counsel_portal_backend/platform/events"
)

// SubmitTaskResult reports the stored task and what happened to the lead's
// stage as a consequence.
type SubmitTaskResult struct {
	Task       domain.Task
	Transition TransitionResult
}

// SubmitTask records one interaction event and runs its consequences: the
// task row, an auto-remark, classification, and the resulting stage
// transition. Validation failures reject the whole submission before anything
// is written.
func (s *Service) SubmitTask(ctx context.Context, leadID int64, payload domain.TaskPayload, remarks string, actor domain.Actor) (SubmitTaskResult, error) {
	if strings.TrimSpace(remarks) == "" {
		return SubmitTaskResult{}, apperr.Validation("remarks are required")
	}
	if payload == nil {
		return SubmitTaskResult{}, apperr.Validation("task payload is required")
	}
	if err := payload.Validate(s.opts); err != nil {
		return SubmitTaskResult{}, apperr.Wrap(apperr.KindValidation, err.Error(), err)
	}

	lead, err := s.GetLead(ctx, leadID)
	if err != nil {
		return SubmitTaskResult{}, err
	}

	task, err := s.store.InsertTask(ctx, domain.Task{
		LeadID:    leadID,
		Type:      payload.TaskType(),
		Payload:   payload,
		Remarks:   strings.TrimSpace(remarks),
		CreatedBy: actor.ID,
	})
	if err != nil {
		return SubmitTaskResult{}, apperr.Wrap(apperr.KindInternal, "failed to record task", err)
	}

	// Every task's remarks also land in the lead's remark feed.
	if _, err := s.store.InsertRemark(ctx, domain.Remark{
		LeadID:   leadID,
		Body:     task.Remarks,
		AuthorID: actor.ID,
	}); err != nil {
		s.log.DatabaseError("insert task remark", err)
	}
	if err := s.store.TouchLastContact(ctx, leadID, task.CreatedAt); err != nil {
		s.log.DatabaseError("touch last contact", err)
	}

	if err := s.applyTaskSideEffects(ctx, lead, payload, actor); err != nil {
		return SubmitTaskResult{}, err
	}

	transition, err := s.transitionFromTask(ctx, lead, payload, actor)
	if err != nil {
		return SubmitTaskResult{}, err
	}

	s.publishTaskEvents(ctx, lead, payload, actor)
	return SubmitTaskResult{Task: task, Transition: transition}, nil
}

func (s *Service) ListTasks(ctx context.Context, leadID int64) ([]domain.Task, error) {
	if _, err := s.GetLead(ctx, leadID); err != nil {
		return nil, err
	}
	tasks, err := s.store.ListTasksByLead(ctx, leadID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list tasks", err)
	}
	return tasks, nil
}

// transitionFromTask classifies the payload and commits the proposal. The
// shortlisting milestone additionally requires the lead's passport to be
// submitted; without it the proposal is dropped and the lead stays put.
func (s *Service) transitionFromTask(ctx context.Context, lead domain.Lead, payload domain.TaskPayload, actor domain.Actor) (TransitionResult, error) {
	proposal := domain.ClassifyTaskOutcome(payload)
	if proposal == nil {
		return TransitionResult{Changed: false, Stage: lead.CurrentStage}, nil
	}

	if proposal.Stage == domain.StageShortlistedUniv {
		p, ok := shortlistingPayload(payload)
		if !ok || !domain.ShortlistGateOpen(p.FinalStatus, lead.PassportStatus) {
			return TransitionResult{Changed: false, Stage: lead.CurrentStage}, nil
		}
	}

	res, err := s.engine.Apply(ctx, lead.ID, *proposal, actor)
	if err != nil {
		return TransitionResult{}, err
	}
	if res.Changed && res.Entry != nil {
		s.publishStageChanged(ctx, lead.ID, res.Entry)
	}
	return res, nil
}

// applyTaskSideEffects routes tracking and application-process payloads into
// the university application manager before classification runs, so derived
// stage rules see the updated application state.
func (s *Service) applyTaskSideEffects(ctx context.Context, lead domain.Lead, payload domain.TaskPayload, actor domain.Actor) error {
	switch p := taskTracking(payload); {
	case p == nil:
		return nil
	case p.TrackingStatus == domain.TrackingCredentialsLogging:
		return s.logApplicationCredentials(ctx, lead, *p, actor)
	case p.TrackingStatus == domain.TrackingApplicationStatus:
		status, ok := domain.MapTrackingStatusToAppStatus(p.ApplicationStatus)
		if !ok {
			return nil
		}
		return s.updateActiveApplicationStatus(ctx, lead, status, actor)
	case p.TrackingStatus == domain.TrackingOfferLetterStatus && p.OfferLetterStatus != "":
		return s.updateActiveApplicationStatus(ctx, lead, domain.AppStatusOfferReceived, actor)
	default:
		return nil
	}
}

func (s *Service) publishTaskEvents(ctx context.Context, lead domain.Lead, payload domain.TaskPayload, actor domain.Actor) {
	var (
		connectStatus string
		sessionDate   *time.Time
	)
	switch p := payload.(type) {
	case domain.CallOutcome:
		connectStatus = p.ConnectStatus
		sessionDate = p.SessionDate
	case domain.MeetOutcome:
		connectStatus = p.ConnectStatus
		sessionDate = p.SessionDate
	}
	if connectStatus == domain.ConnectSessionScheduling && sessionDate != nil {
		s.bus.Publish(ctx, domainevents.SessionScheduled{
			BaseEvent:   events.NewBaseEvent(),
			LeadID:      lead.ID,
			LeadName:    lead.Name,
			SessionDate: *sessionDate,
			CounselorID: actor.ID,
		})
	}
}

func shortlistingPayload(payload domain.TaskPayload) (domain.ShortlistingOutcome, bool) {
	switch p := payload.(type) {
	case domain.ShortlistingOutcome:
		return p, true
	case *domain.ShortlistingOutcome:
		return *p, true
	default:
		return domain.ShortlistingOutcome{}, false
	}
}

func taskTracking(payload domain.TaskPayload) *domain.TrackingOutcome {
	switch p := payload.(type) {
	case domain.TrackingOutcome:
		return &p
	case *domain.TrackingOutcome:
		return p
	default:
		return nil
	}
}
