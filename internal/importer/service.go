// Package importer ingests CSV files of lead records, asynchronously,
// through a redis-backed task queue.
package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	authrepo "counsel_portal_backend/internal/auth/repository"
	domainevents "counsel_portal_backend/internal/events"
	"counsel_portal_backend/internal/leads/domain"
	leadservice "counsel_portal_backend/internal/leads/service"
	"counsel_portal_backend/platform/apperr"
	"counsel_portal_backend/platform/events"
	"counsel_portal_backend/platform/logger"
)

// maxReportedFailures caps how many per-row failure reasons a summary
// carries; the rest are still counted as skipped.
const maxReportedFailures = 50

// LeadWriter is the slice of the leads service the importer needs.
type LeadWriter interface {
	CreateLead(ctx context.Context, input leadservice.CreateLeadInput, actor domain.Actor) (domain.Lead, error)
	AssignCounselor(ctx context.Context, leadID, counselorID int64, counselorName string, actor domain.Actor) error
	OverrideStage(ctx context.Context, leadID int64, targetStage, reason string, actor domain.Actor) (leadservice.TransitionResult, error)
}

// CounselorDirectory resolves counselor names from the CSV to user accounts.
type CounselorDirectory interface {
	FindCounselorByName(ctx context.Context, name string) (authrepo.User, error)
}

// RowFailure records why a single CSV row was skipped.
type RowFailure struct {
	Row    int    `json:"row"`
	Reason string `json:"reason"`
}

// Summary is the outcome of one import job.
type Summary struct {
	JobID    string       `json:"jobId"`
	Total    int          `json:"total"`
	Imported int          `json:"imported"`
	Skipped  int          `json:"skipped"`
	Failures []RowFailure `json:"failures,omitempty"`
}

// Service runs import jobs against the leads pipeline.
type Service struct {
	leads      LeadWriter
	counselors CounselorDirectory
	bus        events.Bus
	log        *logger.Logger
}

func NewService(leads LeadWriter, counselors CounselorDirectory, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		leads:      leads,
		counselors: counselors,
		bus:        bus,
		log:        log,
	}
}

// Run parses the CSV stream and creates one lead per data row. Rows with a
// missing name or phone, an invalid phone, or a phone already in the system
// are skipped and reported; they never abort the job. When a counselor
// column matches a counselor account the new lead is assigned to them,
// which also moves it out of the unassigned stage.
func (s *Service) Run(ctx context.Context, payload LeadImportPayload, file io.Reader) (Summary, error) {
	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return Summary{}, fmt.Errorf("failed to read csv header: %w", err)
	}

	cols, err := mapColumns(header)
	if err != nil {
		return Summary{}, err
	}

	actor := domain.Actor{ID: payload.RequestedByID, Name: payload.RequestedBy, Role: "admin"}
	summary := Summary{JobID: payload.JobID}

	for rowNum := 2; ; rowNum++ {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			summary.Total++
			summary.skip(rowNum, "malformed csv row")
			continue
		}

		summary.Total++
		s.importRow(ctx, cols.row(record), rowNum, actor, &summary)
	}

	s.log.Info("lead import finished",
		"jobId", payload.JobID,
		"file", payload.FileName,
		"imported", summary.Imported,
		"skipped", summary.Skipped,
	)

	s.bus.Publish(ctx, domainevents.ImportCompleted{
		BaseEvent: events.NewBaseEvent(),
		JobID:     payload.JobID,
		Imported:  summary.Imported,
		Skipped:   summary.Skipped,
	})

	return summary, nil
}

func (s *Service) importRow(ctx context.Context, row leadRow, rowNum int, actor domain.Actor, summary *Summary) {
	if row.Name == "" || row.Phone == "" {
		summary.skip(rowNum, "name and phone are required")
		return
	}
	if row.Stage != "" && !domain.IsKnownStage(row.Stage) {
		summary.skip(rowNum, fmt.Sprintf("unknown pipeline stage %q", row.Stage))
		return
	}

	source := row.Source
	if source == "" {
		source = "CSV Import"
	}

	lead, err := s.leads.CreateLead(ctx, leadservice.CreateLeadInput{
		Name:    row.Name,
		Phone:   row.Phone,
		Email:   row.Email,
		Country: row.Country,
		Course:  row.Course,
		Intake:  row.Intake,
		Source:  source,
	}, actor)
	if err != nil {
		switch apperr.GetKind(err) {
		case apperr.KindConflict:
			summary.skip(rowNum, "phone number already exists")
		case apperr.KindValidation:
			summary.skip(rowNum, err.Error())
		default:
			s.log.Error("lead import row failed", "row", rowNum, "error", err)
			summary.skip(rowNum, "internal error")
		}
		return
	}

	summary.Imported++

	// An unmatched counselor name leaves the lead unassigned; the row still
	// counts as imported.
	if row.Counselor != "" {
		s.assignCounselor(ctx, lead.ID, row.Counselor, rowNum, actor)
	}

	// A stage column places the lead directly at a known stage, audited the
	// same way a manual stage change would be.
	if row.Stage != "" && row.Stage != domain.StageYetToAssign {
		if _, err := s.leads.OverrideStage(ctx, lead.ID, row.Stage, "CSV import", actor); err != nil {
			s.log.Error("import stage placement failed", "row", rowNum, "leadId", lead.ID, "stage", row.Stage, "error", err)
		}
	}
}

func (s *Service) assignCounselor(ctx context.Context, leadID int64, name string, rowNum int, actor domain.Actor) {
	counselor, err := s.counselors.FindCounselorByName(ctx, name)
	if err != nil {
		if errors.Is(err, authrepo.ErrNotFound) {
			s.log.Warn("import counselor not found", "row", rowNum, "counselor", name)
			return
		}
		s.log.Error("import counselor lookup failed", "row", rowNum, "error", err)
		return
	}

	if err := s.leads.AssignCounselor(ctx, leadID, counselor.ID, counselor.Name, actor); err != nil {
		s.log.Error("import counselor assignment failed", "row", rowNum, "leadId", leadID, "error", err)
	}
}

func (s *Summary) skip(rowNum int, reason string) {
	s.Skipped++
	if len(s.Failures) < maxReportedFailures {
		s.Failures = append(s.Failures, RowFailure{Row: rowNum, Reason: reason})
	}
}

type leadRow struct {
	Name      string
	Phone     string
	Email     string
	Country   string
	Course    string
	Intake    string
	Source    string
	Counselor string
	Stage     string
}

// columnMap holds the index of each recognized header in the CSV.
type columnMap map[string]int

func mapColumns(header []string) (columnMap, error) {
	cols := columnMap{}
	for i, raw := range header {
		switch normalizeHeader(raw) {
		case "name", "studentname", "leadname":
			cols["name"] = i
		case "phone", "phonenumber", "mobile", "contact":
			cols["phone"] = i
		case "email", "emailid":
			cols["email"] = i
		case "country", "preferredcountry":
			cols["country"] = i
		case "course", "program":
			cols["course"] = i
		case "intake":
			cols["intake"] = i
		case "source", "leadsource":
			cols["source"] = i
		case "counselor", "counsellor", "assignedto":
			cols["counselor"] = i
		case "stage", "currentstage":
			cols["stage"] = i
		}
	}

	if _, ok := cols["name"]; !ok {
		return nil, apperr.Validation("csv is missing a name column")
	}
	if _, ok := cols["phone"]; !ok {
		return nil, apperr.Validation("csv is missing a phone column")
	}
	return cols, nil
}

func (m columnMap) row(record []string) leadRow {
	return leadRow{
		Name:      m.field(record, "name"),
		Phone:     m.field(record, "phone"),
		Email:     m.field(record, "email"),
		Country:   m.field(record, "country"),
		Course:    m.field(record, "course"),
		Intake:    m.field(record, "intake"),
		Source:    m.field(record, "source"),
		Counselor: m.field(record, "counselor"),
		Stage:     m.field(record, "stage"),
	}
}

func (m columnMap) field(record []string, name string) string {
	idx, ok := m[name]
	if !ok || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}

func normalizeHeader(raw string) string {
	cleaned := strings.ToLower(strings.TrimSpace(raw))
	cleaned = strings.ReplaceAll(cleaned, " ", "")
	cleaned = strings.ReplaceAll(cleaned, "_", "")
	return cleaned
}
