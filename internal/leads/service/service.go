// Package service holds the application services for the leads bounded
// context: lead lifecycle, task submission, stage transitions, university
// applications, and the document checklist.
package service

import (
	"context"
	"errors"
	"strings"
	"time"

	domainevents "counsel_portal_backend/internal/events"
	"counsel_portal_backend/internal/leads/domain"
	"counsel_portal_backend/internal/leads/repository"
	"counsel_portal_backend/platform/apperr"
	"counsel_portal_backend/platform/events"
	"counsel_portal_backend/platform/logger"
	"counsel_portal_backend/platform/phone"
)

// Store is the full persistence surface of the leads context. The concrete
// implementation is the pgx repository; tests swap in an in-memory fake.
type Store interface {
	StageStore

	Create(ctx context.Context, params repository.CreateLeadParams) (domain.Lead, error)
	GetByPhone(ctx context.Context, phone string) (domain.Lead, error)
	Update(ctx context.Context, id int64, params repository.UpdateLeadParams) (domain.Lead, error)
	AssignCounselor(ctx context.Context, id int64, counselorID int64) error
	SetPassportStatus(ctx context.Context, id int64, status string) error
	TouchLastContact(ctx context.Context, id int64, at time.Time) error
	List(ctx context.Context, params repository.ListParams) ([]domain.Lead, int, error)
	ListStageHistory(ctx context.Context, leadID int64) ([]domain.StageHistoryEntry, error)

	InsertTask(ctx context.Context, task domain.Task) (domain.Task, error)
	ListTasksByLead(ctx context.Context, leadID int64) ([]domain.Task, error)

	InsertRemark(ctx context.Context, remark domain.Remark) (domain.Remark, error)
	ListRemarksByLead(ctx context.Context, leadID int64) ([]domain.Remark, error)

	GetApplication(ctx context.Context, id int64) (domain.UniversityApplication, error)
	GetApplicationByName(ctx context.Context, leadID int64, universityName string) (domain.UniversityApplication, error)
	GetActiveApplication(ctx context.Context, leadID int64) (domain.UniversityApplication, error)
	ListApplicationsByLead(ctx context.Context, leadID int64) ([]domain.UniversityApplication, error)
	InsertApplication(ctx context.Context, app domain.UniversityApplication) (domain.UniversityApplication, error)
	UpdateApplication(ctx context.Context, app domain.UniversityApplication, entry domain.AppAuditEntry) (domain.UniversityApplication, error)
	SetActiveApplication(ctx context.Context, leadID, applicationID int64) error

	InsertDocument(ctx context.Context, doc domain.Document) (domain.Document, error)
	ListDocumentsByLead(ctx context.Context, leadID int64) ([]domain.Document, error)
	DocumentTypesOnFile(ctx context.Context, leadID int64) (map[string]bool, error)
}

type Service struct {
	store  Store
	engine *Engine
	opts   *domain.OptionCatalog
	bus    events.Bus
	log    *logger.Logger
}

func New(store Store, engine *Engine, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		store:  store,
		engine: engine,
		opts:   domain.DefaultOptionCatalog(),
		bus:    bus,
		log:    log,
	}
}

type CreateLeadInput struct {
	Name    string `validate:"required,min=2"`
	Phone   string `validate:"required"`
	Email   string `validate:"omitempty,email"`
	Country string
	Course  string
	Intake  string
	Source  string
}

func (s *Service) CreateLead(ctx context.Context, input CreateLeadInput, actor domain.Actor) (domain.Lead, error) {
	if !phone.IsValid(input.Phone) {
		return domain.Lead{}, apperr.Validation("phone number is not valid")
	}
	normalized := phone.NormalizeE164(input.Phone)

	if existing, err := s.store.GetByPhone(ctx, normalized); err == nil {
		return domain.Lead{}, apperr.Conflict("a lead with this phone already exists").WithDetails(map[string]int64{"existingId": existing.ID})
	} else if !errors.Is(err, repository.ErrNotFound) {
		return domain.Lead{}, apperr.Wrap(apperr.KindInternal, "failed to check for existing lead", err)
	}

	lead, err := s.store.Create(ctx, repository.CreateLeadParams{
		Name:         strings.TrimSpace(input.Name),
		Phone:        normalized,
		Email:        strings.TrimSpace(input.Email),
		Country:      input.Country,
		Course:       input.Course,
		Intake:       input.Intake,
		Source:       input.Source,
		CurrentStage: domain.StageYetToAssign,
	})
	if err != nil {
		return domain.Lead{}, apperr.Wrap(apperr.KindInternal, "failed to create lead", err)
	}

	s.bus.Publish(ctx, domainevents.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		Name:      lead.Name,
		Source:    lead.Source,
	})
	return lead, nil
}

func (s *Service) GetLead(ctx context.Context, id int64) (domain.Lead, error) {
	lead, err := s.store.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Lead{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return domain.Lead{}, apperr.Wrap(apperr.KindInternal, "failed to load lead", err)
	}
	return lead, nil
}

func (s *Service) UpdateLead(ctx context.Context, id int64, params repository.UpdateLeadParams) (domain.Lead, error) {
	lead, err := s.store.Update(ctx, id, params)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.Lead{}, apperr.NotFound("lead not found")
	}
	if err != nil {
		return domain.Lead{}, apperr.Wrap(apperr.KindInternal, "failed to update lead", err)
	}
	return lead, nil
}

func (s *Service) ListLeads(ctx context.Context, params repository.ListParams) ([]domain.Lead, int, error) {
	if params.Stage != "" && !domain.IsKnownStage(params.Stage) {
		return nil, 0, apperr.Validation("unknown pipeline stage filter")
	}
	leads, total, err := s.store.List(ctx, params)
	if err != nil {
		return nil, 0, apperr.Wrap(apperr.KindInternal, "failed to list leads", err)
	}
	return leads, total, nil
}

// AssignCounselor hands a lead to a counselor and moves freshly imported
// leads out of "Yet to Assign".
func (s *Service) AssignCounselor(ctx context.Context, leadID, counselorID int64, counselorName string, actor domain.Actor) error {
	lead, err := s.GetLead(ctx, leadID)
	if err != nil {
		return err
	}

	if err := s.store.AssignCounselor(ctx, leadID, counselorID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("lead not found")
		}
		return apperr.Wrap(apperr.KindInternal, "failed to assign counselor", err)
	}

	if lead.CurrentStage == domain.StageYetToAssign {
		if _, err := s.engine.Apply(ctx, leadID, domain.StageProposal{
			Stage:  domain.StageYetToContact,
			Reason: "assigned to " + counselorName,
		}, actor); err != nil {
			return err
		}
	}

	s.bus.Publish(ctx, domainevents.LeadAssigned{
		BaseEvent:     events.NewBaseEvent(),
		LeadID:        leadID,
		LeadName:      lead.Name,
		CounselorID:   counselorID,
		CounselorName: counselorName,
	})
	return nil
}

func (s *Service) SetPassportStatus(ctx context.Context, leadID int64, status string) error {
	if err := s.store.SetPassportStatus(ctx, leadID, status); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("lead not found")
		}
		return apperr.Wrap(apperr.KindInternal, "failed to set passport status", err)
	}
	return nil
}

// OverrideStage performs a privileged manual stage change, bypassing task
// classification but not validation or history.
func (s *Service) OverrideStage(ctx context.Context, leadID int64, targetStage, reason string, actor domain.Actor) (TransitionResult, error) {
	if strings.TrimSpace(reason) == "" {
		return TransitionResult{}, apperr.Validation("a reason is required for manual stage changes")
	}
	res, err := s.engine.Override(ctx, leadID, targetStage, reason, actor)
	if err != nil {
		return TransitionResult{}, err
	}
	if res.Changed && res.Entry != nil {
		s.publishStageChanged(ctx, leadID, res.Entry)
	}
	return res, nil
}

func (s *Service) StageHistory(ctx context.Context, leadID int64) ([]domain.StageHistoryEntry, error) {
	if _, err := s.GetLead(ctx, leadID); err != nil {
		return nil, err
	}
	entries, err := s.store.ListStageHistory(ctx, leadID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to load stage history", err)
	}
	return entries, nil
}

func (s *Service) AddRemark(ctx context.Context, leadID int64, body string, actor domain.Actor) (domain.Remark, error) {
	if strings.TrimSpace(body) == "" {
		return domain.Remark{}, apperr.Validation("remark body must not be empty")
	}
	if _, err := s.GetLead(ctx, leadID); err != nil {
		return domain.Remark{}, err
	}
	remark, err := s.store.InsertRemark(ctx, domain.Remark{
		LeadID:   leadID,
		Body:     strings.TrimSpace(body),
		AuthorID: actor.ID,
	})
	if err != nil {
		return domain.Remark{}, apperr.Wrap(apperr.KindInternal, "failed to add remark", err)
	}
	remark.AuthorName = actor.Name
	return remark, nil
}

func (s *Service) ListRemarks(ctx context.Context, leadID int64) ([]domain.Remark, error) {
	if _, err := s.GetLead(ctx, leadID); err != nil {
		return nil, err
	}
	remarks, err := s.store.ListRemarksByLead(ctx, leadID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list remarks", err)
	}
	return remarks, nil
}

func (s *Service) publishStageChanged(ctx context.Context, leadID int64, entry *domain.StageHistoryEntry) {
	s.bus.Publish(ctx, domainevents.StageChanged{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    leadID,
		FromStage: entry.FromStage,
		ToStage:   entry.ToStage,
		ActorID:   entry.ActorID,
		Reason:    entry.Reason,
	})
}
