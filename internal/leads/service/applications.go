package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"counsel_portal_backend/internal/leads/domain"
	"counsel_portal_backend/internal/leads/repository"
	"counsel_portal_backend/platform/apperr"
)

// ApplicationPatch carries the fields a save may change. Nil means leave the
// field alone; a pointer to the zero value clears it.
type ApplicationPatch struct {
	PortalURL       *string
	Username        *string
	Password        *string
	Status          *string
	DepositProof    *string
	DepositDate     *time.Time
	TuitionProof    *string
	TuitionDate     *time.Time
	CommissionProof *string
	CommissionDate  *time.Time
}

// UpsertApplication returns the lead's application for the named university,
// creating it as a Draft when absent. The lead's first application becomes
// active automatically.
func (s *Service) UpsertApplication(ctx context.Context, leadID int64, universityName string, actor domain.Actor) (domain.UniversityApplication, error) {
	universityName = strings.TrimSpace(universityName)
	if universityName == "" {
		return domain.UniversityApplication{}, apperr.Validation("university name is required")
	}
	if _, err := s.GetLead(ctx, leadID); err != nil {
		return domain.UniversityApplication{}, err
	}

	existing, err := s.store.GetApplicationByName(ctx, leadID, universityName)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrApplicationNotFound) {
		return domain.UniversityApplication{}, apperr.Wrap(apperr.KindInternal, "failed to look up application", err)
	}

	siblings, err := s.store.ListApplicationsByLead(ctx, leadID)
	if err != nil {
		return domain.UniversityApplication{}, apperr.Wrap(apperr.KindInternal, "failed to list applications", err)
	}

	created, err := s.store.InsertApplication(ctx, domain.UniversityApplication{
		LeadID:         leadID,
		UniversityName: universityName,
		Status:         domain.AppStatusDraft,
		IsActive:       len(siblings) == 0,
	})
	if err != nil {
		return domain.UniversityApplication{}, apperr.Wrap(apperr.KindInternal, "failed to create application", err)
	}
	return created, nil
}

// SetActiveApplication makes one application the lead's active one and
// deactivates its siblings atomically.
func (s *Service) SetActiveApplication(ctx context.Context, leadID, applicationID int64, actor domain.Actor) error {
	err := s.store.SetActiveApplication(ctx, leadID, applicationID)
	switch {
	case errors.Is(err, repository.ErrApplicationNotFound):
		return apperr.NotFound("application not found")
	case errors.Is(err, repository.ErrApplicationOwnership):
		return apperr.Conflict("application does not belong to this lead")
	case err != nil:
		return apperr.Wrap(apperr.KindInternal, "failed to switch active application", err)
	}
	return nil
}

// SaveApplication merges the patch, appends one audit entry naming the
// changed fields, and, when the application is the lead's active one, runs
// the derived stage rules.
func (s *Service) SaveApplication(ctx context.Context, leadID, applicationID int64, patch ApplicationPatch, actor domain.Actor) (domain.UniversityApplication, error) {
	app, err := s.store.GetApplication(ctx, applicationID)
	if errors.Is(err, repository.ErrApplicationNotFound) {
		return domain.UniversityApplication{}, apperr.NotFound("application not found")
	}
	if err != nil {
		return domain.UniversityApplication{}, apperr.Wrap(apperr.KindInternal, "failed to load application", err)
	}
	if app.LeadID != leadID {
		return domain.UniversityApplication{}, apperr.Conflict("application does not belong to this lead")
	}

	changed := mergePatch(&app, patch)
	if len(changed) == 0 {
		return app, nil
	}
	if patch.Status != nil && !isKnownAppStatus(*patch.Status) {
		return domain.UniversityApplication{}, apperr.Validation("unknown application status")
	}

	// Audit records field names only; values such as portal passwords and
	// payment proofs never reach the log.
	updated, err := s.store.UpdateApplication(ctx, app, domain.AppAuditEntry{
		At:            time.Now(),
		ActorID:       actor.ID,
		ActorName:     actor.Name,
		ChangedFields: changed,
	})
	if err != nil {
		return domain.UniversityApplication{}, apperr.Wrap(apperr.KindInternal, "failed to save application", err)
	}

	if updated.IsActive {
		if err := s.applyDerivedStages(ctx, leadID, updated, actor); err != nil {
			return domain.UniversityApplication{}, err
		}
	}
	return updated, nil
}

func (s *Service) ListApplications(ctx context.Context, leadID int64) ([]domain.UniversityApplication, error) {
	if _, err := s.GetLead(ctx, leadID); err != nil {
		return nil, err
	}
	apps, err := s.store.ListApplicationsByLead(ctx, leadID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list applications", err)
	}
	return apps, nil
}

// applyDerivedStages evaluates the milestone rules for the active application
// and commits each resulting proposal. Every rule is idempotent: proposals
// the lead has already passed collapse to no-ops in the engine.
func (s *Service) applyDerivedStages(ctx context.Context, leadID int64, app domain.UniversityApplication, actor domain.Actor) error {
	proposals := domain.DerivedStageProposals(domain.MilestonesFor(&app))
	res, err := s.engine.ApplyAll(ctx, leadID, proposals, actor)
	if err != nil {
		return err
	}
	if res.Changed && res.Entry != nil {
		s.publishStageChanged(ctx, leadID, res.Entry)
	}
	return nil
}

// updateActiveApplicationStatus routes a tracking update onto the lead's
// active application. A lead without an active application is left alone.
func (s *Service) updateActiveApplicationStatus(ctx context.Context, lead domain.Lead, status string, actor domain.Actor) error {
	app, err := s.store.GetActiveApplication(ctx, lead.ID)
	if errors.Is(err, repository.ErrApplicationNotFound) {
		s.log.Warn("tracking update without an active application", "lead_id", lead.ID)
		return nil
	}
	if err != nil {
		return apperr.Wrap(apperr.KindInternal, "failed to load active application", err)
	}
	_, err = s.SaveApplication(ctx, lead.ID, app.ID, ApplicationPatch{Status: &status}, actor)
	return err
}

// logApplicationCredentials records university portal credentials from a
// tracking task, creating the application if needed.
func (s *Service) logApplicationCredentials(ctx context.Context, lead domain.Lead, p domain.TrackingOutcome, actor domain.Actor) error {
	app, err := s.UpsertApplication(ctx, lead.ID, p.UniversityName, actor)
	if err != nil {
		return err
	}
	patch := ApplicationPatch{}
	if p.UniversityURL != "" {
		patch.PortalURL = &p.UniversityURL
	}
	if p.Username != "" {
		patch.Username = &p.Username
	}
	if p.Password != "" {
		patch.Password = &p.Password
	}
	_, err = s.SaveApplication(ctx, lead.ID, app.ID, patch, actor)
	return err
}

// mergePatch applies non-nil patch fields onto the application and returns
// the names of the fields whose values actually changed.
func mergePatch(app *domain.UniversityApplication, patch ApplicationPatch) []string {
	var changed []string

	setStr := func(name string, dst *string, src *string) {
		if src != nil && *dst != *src {
			*dst = *src
			changed = append(changed, name)
		}
	}
	setTime := func(name string, dst **time.Time, src *time.Time) {
		if src == nil {
			return
		}
		if *dst == nil || !(*dst).Equal(*src) {
			*dst = src
			changed = append(changed, name)
		}
	}

	setStr("portal_url", &app.PortalURL, patch.PortalURL)
	setStr("username", &app.Username, patch.Username)
	setStr("password", &app.Password, patch.Password)
	setStr("status", &app.Status, patch.Status)
	setStr("deposit_proof", &app.DepositProof, patch.DepositProof)
	setTime("deposit_date", &app.DepositDate, patch.DepositDate)
	setStr("tuition_proof", &app.TuitionProof, patch.TuitionProof)
	setTime("tuition_date", &app.TuitionDate, patch.TuitionDate)
	setStr("commission_proof", &app.CommissionProof, patch.CommissionProof)
	setTime("commission_date", &app.CommissionDate, patch.CommissionDate)

	return changed
}

func isKnownAppStatus(status string) bool {
	switch status {
	case domain.AppStatusDraft, domain.AppStatusInProgress, domain.AppStatusSubmitted,
		domain.AppStatusOfferReceived, domain.AppStatusRejected:
		return true
	}
	return false
}
