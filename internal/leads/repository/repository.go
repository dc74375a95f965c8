package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"counsel_portal_backend/internal/leads/domain"
)

var (
	ErrNotFound = errors.New("lead not found")
	// ErrStageConflict is returned when a stage write loses the race against
	// a concurrent transition for the same lead. Callers retry against the
	// refreshed current stage.
	ErrStageConflict = errors.New("stage changed concurrently")
)

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const leadColumns = `id, name, phone, email, country, course, intake, source,
	current_stage, assigned_to, passport_status, created_at, updated_at, last_contact_at`

type CreateLeadParams struct {
	Name           string
	Phone          string
	Email          string
	Country        string
	Course         string
	Intake         string
	Source         string
	CurrentStage   string
	AssignedTo     *int64
	PassportStatus string
}

func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (name, phone, email, country, course, intake, source, current_stage, assigned_to, passport_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+leadColumns,
		params.Name, params.Phone, params.Email, params.Country, params.Course,
		params.Intake, params.Source, params.CurrentStage, params.AssignedTo, params.PassportStatus,
	)
	lead, err := scanLead(row)
	if err != nil {
		return domain.Lead{}, fmt.Errorf("failed to insert lead: %w", err)
	}
	return lead, nil
}

func (r *Repository) GetByID(ctx context.Context, id int64) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	if err != nil {
		return domain.Lead{}, err
	}
	return lead, nil
}

func (r *Repository) GetByPhone(ctx context.Context, phone string) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+leadColumns+` FROM leads WHERE phone = $1`, phone)
	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	if err != nil {
		return domain.Lead{}, err
	}
	return lead, nil
}

type UpdateLeadParams struct {
	Name    *string
	Email   *string
	Country *string
	Course  *string
	Intake  *string
	Source  *string
}

func (r *Repository) Update(ctx context.Context, id int64, params UpdateLeadParams) (domain.Lead, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE leads SET
			name = COALESCE($2, name),
			email = COALESCE($3, email),
			country = COALESCE($4, country),
			course = COALESCE($5, course),
			intake = COALESCE($6, intake),
			source = COALESCE($7, source),
			updated_at = now()
		WHERE id = $1
		RETURNING `+leadColumns,
		id, params.Name, params.Email, params.Country, params.Course, params.Intake, params.Source,
	)
	lead, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Lead{}, ErrNotFound
	}
	if err != nil {
		return domain.Lead{}, fmt.Errorf("failed to update lead: %w", err)
	}
	return lead, nil
}

func (r *Repository) AssignCounselor(ctx context.Context, id int64, counselorID int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE leads SET assigned_to = $2, updated_at = now() WHERE id = $1`, id, counselorID)
	if err != nil {
		return fmt.Errorf("failed to assign counselor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) SetPassportStatus(ctx context.Context, id int64, status string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE leads SET passport_status = $2, updated_at = now() WHERE id = $1`, id, status)
	if err != nil {
		return fmt.Errorf("failed to set passport status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) TouchLastContact(ctx context.Context, id int64, at time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE leads SET last_contact_at = $2, updated_at = now() WHERE id = $1`, id, at)
	return err
}

type ListParams struct {
	Stage      string
	AssignedTo *int64
	Search     string
	Limit      int
	Offset     int
}

func (r *Repository) List(ctx context.Context, params ListParams) ([]domain.Lead, int, error) {
	where := []string{"1=1"}
	args := []any{}

	if params.Stage != "" {
		args = append(args, params.Stage)
		where = append(where, fmt.Sprintf("current_stage = $%d", len(args)))
	}
	if params.AssignedTo != nil {
		args = append(args, *params.AssignedTo)
		where = append(where, fmt.Sprintf("assigned_to = $%d", len(args)))
	}
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		where = append(where, fmt.Sprintf("(name ILIKE $%d OR phone ILIKE $%d OR email ILIKE $%d)", len(args), len(args), len(args)))
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM leads WHERE `+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count leads: %w", err)
	}

	limit := params.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	args = append(args, limit, params.Offset)
	query := fmt.Sprintf(`SELECT %s FROM leads WHERE %s ORDER BY updated_at DESC LIMIT $%d OFFSET $%d`,
		leadColumns, whereClause, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	leads := make([]domain.Lead, 0)
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, 0, err
		}
		leads = append(leads, lead)
	}
	if rows.Err() != nil {
		return nil, 0, rows.Err()
	}
	return leads, total, nil
}

func scanLead(row pgx.Row) (domain.Lead, error) {
	var lead domain.Lead
	err := row.Scan(
		&lead.ID, &lead.Name, &lead.Phone, &lead.Email, &lead.Country, &lead.Course,
		&lead.Intake, &lead.Source, &lead.CurrentStage, &lead.AssignedTo,
		&lead.PassportStatus, &lead.CreatedAt, &lead.UpdatedAt, &lead.LastContactAt,
	)
	return lead, err
}
