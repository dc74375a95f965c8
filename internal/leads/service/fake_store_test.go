package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"counsel_portal_backend/internal/leads/domain"
	"counsel_portal_backend/internal/leads/repository"
	"counsel_portal_backend/platform/events"
)

// fakeStore is an in-memory Store for service tests. It enforces the same
// compare-and-swap semantics as the pgx repository so the engine's retry
// behavior can be exercised without a database.
type fakeStore struct {
	mu sync.Mutex

	leads        map[int64]*domain.Lead
	history      []domain.StageHistoryEntry
	tasks        []domain.Task
	remarks      []domain.Remark
	applications map[int64]*domain.UniversityApplication
	documents    []domain.Document

	nextID int64

	// conflictsBeforeCommit makes the next N CommitStageChange calls fail
	// with ErrStageConflict, simulating lost races.
	conflictsBeforeCommit int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		leads:        make(map[int64]*domain.Lead),
		applications: make(map[int64]*domain.UniversityApplication),
		nextID:       1,
	}
}

func (f *fakeStore) addLead(stage string) *domain.Lead {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	lead := &domain.Lead{
		ID:           id,
		Name:         "Test Lead",
		Phone:        "+919876543210",
		CurrentStage: stage,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	f.leads[id] = lead
	return lead
}

func (f *fakeStore) GetByID(_ context.Context, id int64) (domain.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok {
		return domain.Lead{}, repository.ErrNotFound
	}
	return *lead, nil
}

func (f *fakeStore) CommitStageChange(_ context.Context, leadID int64, expectedStage, toStage string, actorID int64, reason string) (domain.StageHistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.conflictsBeforeCommit > 0 {
		f.conflictsBeforeCommit--
		return domain.StageHistoryEntry{}, repository.ErrStageConflict
	}

	lead, ok := f.leads[leadID]
	if !ok {
		return domain.StageHistoryEntry{}, repository.ErrNotFound
	}
	if lead.CurrentStage != expectedStage {
		return domain.StageHistoryEntry{}, repository.ErrStageConflict
	}

	lead.CurrentStage = toStage
	entry := domain.StageHistoryEntry{
		ID:        f.nextID,
		LeadID:    leadID,
		FromStage: expectedStage,
		ToStage:   toStage,
		ActorID:   actorID,
		Reason:    reason,
		CreatedAt: time.Now(),
	}
	f.nextID++
	f.history = append(f.history, entry)
	return entry, nil
}

func (f *fakeStore) historyFor(leadID int64) []domain.StageHistoryEntry {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.StageHistoryEntry
	for _, e := range f.history {
		if e.LeadID == leadID {
			out = append(out, e)
		}
	}
	return out
}

func (f *fakeStore) Create(_ context.Context, params repository.CreateLeadParams) (domain.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextID
	f.nextID++
	lead := &domain.Lead{
		ID:             id,
		Name:           params.Name,
		Phone:          params.Phone,
		Email:          params.Email,
		Country:        params.Country,
		Course:         params.Course,
		Intake:         params.Intake,
		Source:         params.Source,
		CurrentStage:   params.CurrentStage,
		AssignedTo:     params.AssignedTo,
		PassportStatus: params.PassportStatus,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}
	f.leads[id] = lead
	return *lead, nil
}

func (f *fakeStore) GetByPhone(_ context.Context, phone string) (domain.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, l := range f.leads {
		if l.Phone == phone {
			return *l, nil
		}
	}
	return domain.Lead{}, repository.ErrNotFound
}

func (f *fakeStore) Update(_ context.Context, id int64, params repository.UpdateLeadParams) (domain.Lead, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok {
		return domain.Lead{}, repository.ErrNotFound
	}
	if params.Name != nil {
		lead.Name = *params.Name
	}
	if params.Email != nil {
		lead.Email = *params.Email
	}
	if params.Country != nil {
		lead.Country = *params.Country
	}
	if params.Course != nil {
		lead.Course = *params.Course
	}
	if params.Intake != nil {
		lead.Intake = *params.Intake
	}
	if params.Source != nil {
		lead.Source = *params.Source
	}
	return *lead, nil
}

func (f *fakeStore) AssignCounselor(_ context.Context, id int64, counselorID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok {
		return repository.ErrNotFound
	}
	lead.AssignedTo = &counselorID
	return nil
}

func (f *fakeStore) SetPassportStatus(_ context.Context, id int64, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	lead, ok := f.leads[id]
	if !ok {
		return repository.ErrNotFound
	}
	lead.PassportStatus = status
	return nil
}

func (f *fakeStore) TouchLastContact(_ context.Context, id int64, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if lead, ok := f.leads[id]; ok {
		lead.LastContactAt = &at
	}
	return nil
}

func (f *fakeStore) List(_ context.Context, params repository.ListParams) ([]domain.Lead, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Lead
	for _, l := range f.leads {
		if params.Stage != "" && l.CurrentStage != params.Stage {
			continue
		}
		if params.AssignedTo != nil && (l.AssignedTo == nil || *l.AssignedTo != *params.AssignedTo) {
			continue
		}
		if params.Search != "" && !strings.Contains(l.Name, params.Search) {
			continue
		}
		out = append(out, *l)
	}
	return out, len(out), nil
}

func (f *fakeStore) ListStageHistory(_ context.Context, leadID int64) ([]domain.StageHistoryEntry, error) {
	return f.historyFor(leadID), nil
}

func (f *fakeStore) InsertTask(_ context.Context, task domain.Task) (domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	task.ID = f.nextID
	f.nextID++
	task.CreatedAt = time.Now()
	f.tasks = append(f.tasks, task)
	return task, nil
}

func (f *fakeStore) ListTasksByLead(_ context.Context, leadID int64) ([]domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Task
	for _, t := range f.tasks {
		if t.LeadID == leadID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) InsertRemark(_ context.Context, remark domain.Remark) (domain.Remark, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	remark.ID = f.nextID
	f.nextID++
	remark.CreatedAt = time.Now()
	f.remarks = append(f.remarks, remark)
	return remark, nil
}

func (f *fakeStore) ListRemarksByLead(_ context.Context, leadID int64) ([]domain.Remark, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Remark
	for _, r := range f.remarks {
		if r.LeadID == leadID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeStore) GetApplication(_ context.Context, id int64) (domain.UniversityApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	app, ok := f.applications[id]
	if !ok {
		return domain.UniversityApplication{}, repository.ErrApplicationNotFound
	}
	return *app, nil
}

func (f *fakeStore) GetApplicationByName(_ context.Context, leadID int64, universityName string) (domain.UniversityApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, app := range f.applications {
		if app.LeadID == leadID && strings.EqualFold(app.UniversityName, universityName) {
			return *app, nil
		}
	}
	return domain.UniversityApplication{}, repository.ErrApplicationNotFound
}

func (f *fakeStore) GetActiveApplication(_ context.Context, leadID int64) (domain.UniversityApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, app := range f.applications {
		if app.LeadID == leadID && app.IsActive {
			return *app, nil
		}
	}
	return domain.UniversityApplication{}, repository.ErrApplicationNotFound
}

func (f *fakeStore) ListApplicationsByLead(_ context.Context, leadID int64) ([]domain.UniversityApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.UniversityApplication
	for _, app := range f.applications {
		if app.LeadID == leadID {
			out = append(out, *app)
		}
	}
	return out, nil
}

func (f *fakeStore) InsertApplication(_ context.Context, app domain.UniversityApplication) (domain.UniversityApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	app.ID = f.nextID
	f.nextID++
	app.CreatedAt = time.Now()
	app.UpdatedAt = app.CreatedAt
	if app.AuditLog == nil {
		app.AuditLog = []domain.AppAuditEntry{}
	}
	stored := app
	f.applications[app.ID] = &stored
	return app, nil
}

func (f *fakeStore) UpdateApplication(_ context.Context, app domain.UniversityApplication, entry domain.AppAuditEntry) (domain.UniversityApplication, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored, ok := f.applications[app.ID]
	if !ok {
		return domain.UniversityApplication{}, repository.ErrApplicationNotFound
	}
	app.IsActive = stored.IsActive
	app.AuditLog = append(stored.AuditLog, entry)
	app.UpdatedAt = time.Now()
	updated := app
	f.applications[app.ID] = &updated
	return app, nil
}

func (f *fakeStore) SetActiveApplication(_ context.Context, leadID, applicationID int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	target, ok := f.applications[applicationID]
	if !ok {
		return repository.ErrApplicationNotFound
	}
	if target.LeadID != leadID {
		return repository.ErrApplicationOwnership
	}
	for _, app := range f.applications {
		if app.LeadID == leadID {
			app.IsActive = app.ID == applicationID
		}
	}
	return nil
}

func (f *fakeStore) InsertDocument(_ context.Context, doc domain.Document) (domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc.ID = f.nextID
	f.nextID++
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = doc.CreatedAt
	f.documents = append(f.documents, doc)
	return doc, nil
}

func (f *fakeStore) ListDocumentsByLead(_ context.Context, leadID int64) ([]domain.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Document
	for _, d := range f.documents {
		if d.LeadID == leadID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (f *fakeStore) DocumentTypesOnFile(_ context.Context, leadID int64) (map[string]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	types := make(map[string]bool)
	for _, d := range f.documents {
		if d.LeadID == leadID {
			types[d.Type] = true
		}
	}
	return types, nil
}

// fakeBus records published events synchronously.
type fakeBus struct {
	mu     sync.Mutex
	events []events.Event
}

func (b *fakeBus) Publish(_ context.Context, event events.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)
}

func (b *fakeBus) PublishSync(ctx context.Context, event events.Event) error {
	b.Publish(ctx, event)
	return nil
}

func (b *fakeBus) Subscribe(string, events.Handler) {}

func (b *fakeBus) named(name string) []events.Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []events.Event
	for _, e := range b.events {
		if e.EventName() == name {
			out = append(out, e)
		}
	}
	return out
}
