package service

import (
	"context"
	"strings"

	domainevents "counsel_portal_backend/internal/events"
	"counsel_portal_backend/internal/leads/domain"
	"counsel_portal_backend/platform/apperr"
	"counsel_portal_backend/platform/events"
)

// RecordDocument stores one checklist document reference for a lead. A
// passport upload also flips the lead's passport flag, which is what unlocks
// the shortlisting milestone later.
func (s *Service) RecordDocument(ctx context.Context, leadID int64, docType, url, remarks string, actor domain.Actor) (domain.Document, error) {
	if !domain.IsChecklistType(docType) {
		return domain.Document{}, apperr.Validation("unknown document type")
	}
	if strings.TrimSpace(url) == "" {
		return domain.Document{}, apperr.Validation("document url is required")
	}
	if _, err := s.GetLead(ctx, leadID); err != nil {
		return domain.Document{}, err
	}

	doc, err := s.store.InsertDocument(ctx, domain.Document{
		LeadID:  leadID,
		Type:    docType,
		URL:     url,
		Remarks: strings.TrimSpace(remarks),
	})
	if err != nil {
		return domain.Document{}, apperr.Wrap(apperr.KindInternal, "failed to record document", err)
	}

	if docType == domain.DocTypePassport {
		if err := s.store.SetPassportStatus(ctx, leadID, domain.PassportStatusSubmitted); err != nil {
			return domain.Document{}, apperr.Wrap(apperr.KindInternal, "failed to flag passport submission", err)
		}
	}

	s.bus.Publish(ctx, domainevents.DocumentUploaded{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    leadID,
		DocType:   docType,
	})
	return doc, nil
}

func (s *Service) ListDocuments(ctx context.Context, leadID int64) ([]domain.Document, error) {
	if _, err := s.GetLead(ctx, leadID); err != nil {
		return nil, err
	}
	docs, err := s.store.ListDocumentsByLead(ctx, leadID)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to list documents", err)
	}
	return docs, nil
}

// DocumentChecklist reports which checklist types the lead has submitted and
// which are still missing.
func (s *Service) DocumentChecklist(ctx context.Context, leadID int64) (domain.ChecklistStatus, error) {
	if _, err := s.GetLead(ctx, leadID); err != nil {
		return domain.ChecklistStatus{}, err
	}
	types, err := s.store.DocumentTypesOnFile(ctx, leadID)
	if err != nil {
		return domain.ChecklistStatus{}, apperr.Wrap(apperr.KindInternal, "failed to load document types", err)
	}
	return domain.BuildChecklistStatus(types), nil
}
