package service

import (
	"context"
	"errors"

	"counsel_portal_backend/internal/leads/domain"
	"counsel_portal_backend/internal/leads/repository"
	"counsel_portal_backend/platform/apperr"
	"counsel_portal_backend/platform/logger"
)

// maxTransitionAttempts bounds the retry loop when a stage write loses the
// race against a concurrent transition for the same lead.
const maxTransitionAttempts = 3

// StageStore is the persistence surface the transition engine needs.
type StageStore interface {
	GetByID(ctx context.Context, id int64) (domain.Lead, error)
	CommitStageChange(ctx context.Context, leadID int64, expectedStage, toStage string, actorID int64, reason string) (domain.StageHistoryEntry, error)
}

// TransitionResult reports what the engine did with a proposal.
type TransitionResult struct {
	Changed bool
	Stage   string
	Entry   *domain.StageHistoryEntry
}

// Engine commits stage changes. It is the only code path that moves a lead's
// current stage, so every accepted change produces exactly one history entry.
type Engine struct {
	store StageStore
	log   *logger.Logger
}

func NewEngine(store StageStore, log *logger.Logger) *Engine {
	return &Engine{store: store, log: log}
}

// Apply runs an automatic proposal through transition validation and commits
// it. Proposals that validation turns into no-ops report Changed=false with
// no error and no history entry. A lost race against a concurrent transition
// is retried against the refreshed stage a bounded number of times.
func (e *Engine) Apply(ctx context.Context, leadID int64, proposal domain.StageProposal, actor domain.Actor) (TransitionResult, error) {
	return e.apply(ctx, leadID, proposal, actor, false)
}

// Override commits a privileged manual stage change. It bypasses the
// forward-only rule so admins can move a lead anywhere in the catalog, but
// the target must still be a catalog member and the change is audited like
// any other.
func (e *Engine) Override(ctx context.Context, leadID int64, targetStage, reason string, actor domain.Actor) (TransitionResult, error) {
	return e.apply(ctx, leadID, domain.StageProposal{Stage: targetStage, Reason: reason}, actor, true)
}

func (e *Engine) apply(ctx context.Context, leadID int64, proposal domain.StageProposal, actor domain.Actor, manual bool) (TransitionResult, error) {
	for attempt := 0; attempt < maxTransitionAttempts; attempt++ {
		lead, err := e.store.GetByID(ctx, leadID)
		if errors.Is(err, repository.ErrNotFound) {
			return TransitionResult{}, apperr.NotFound("lead not found")
		}
		if err != nil {
			return TransitionResult{}, apperr.Wrap(apperr.KindInternal, "failed to load lead", err)
		}

		decision, err := domain.ValidateTransition(lead.CurrentStage, proposal.Stage)
		if decision == domain.TransitionReject {
			return TransitionResult{}, apperr.Wrap(apperr.KindConflict, "stage change rejected", err)
		}
		if decision == domain.TransitionNoOp && !manual {
			return TransitionResult{Changed: false, Stage: lead.CurrentStage}, nil
		}
		if manual && proposal.Stage == lead.CurrentStage {
			return TransitionResult{Changed: false, Stage: lead.CurrentStage}, nil
		}

		entry, err := e.store.CommitStageChange(ctx, leadID, lead.CurrentStage, proposal.Stage, actor.ID, proposal.Reason)
		if errors.Is(err, repository.ErrStageConflict) {
			continue
		}
		if err != nil {
			return TransitionResult{}, apperr.Wrap(apperr.KindInternal, "failed to commit stage change", err)
		}

		e.log.StageTransition(leadID, lead.CurrentStage, proposal.Stage, actor.ID, proposal.Reason)
		return TransitionResult{Changed: true, Stage: proposal.Stage, Entry: &entry}, nil
	}
	return TransitionResult{}, apperr.Conflict("lead stage is changing concurrently, try again")
}

// ApplyAll runs derived proposals in order, short-circuiting on the first
// real error. Each proposal is independently validated so later proposals
// still run when an earlier one collapses to a no-op.
func (e *Engine) ApplyAll(ctx context.Context, leadID int64, proposals []domain.StageProposal, actor domain.Actor) (TransitionResult, error) {
	last := TransitionResult{}
	changed := false
	for _, p := range proposals {
		res, err := e.Apply(ctx, leadID, p, actor)
		if err != nil {
			return TransitionResult{}, err
		}
		if res.Changed {
			changed = true
			last = res
		} else if !changed {
			last = res
		}
	}
	last.Changed = changed
	return last, nil
}
