package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"counsel_portal_backend/internal/leads/domain"
)

var (
	ErrApplicationNotFound = errors.New("university application not found")
	// ErrApplicationOwnership is returned when an application id does not
	// belong to the lead the caller named.
	ErrApplicationOwnership = errors.New("application does not belong to lead")
)

const applicationColumns = `id, lead_id, university_name, portal_url, username, password, status, is_active,
	deposit_proof, deposit_date, tuition_proof, tuition_date, commission_proof, commission_date,
	audit_log, created_at, updated_at`

func (r *Repository) GetApplication(ctx context.Context, id int64) (domain.UniversityApplication, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+applicationColumns+` FROM university_applications WHERE id = $1`, id)
	app, err := scanApplication(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UniversityApplication{}, ErrApplicationNotFound
	}
	return app, err
}

func (r *Repository) GetApplicationByName(ctx context.Context, leadID int64, universityName string) (domain.UniversityApplication, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+applicationColumns+`
		FROM university_applications
		WHERE lead_id = $1 AND lower(university_name) = lower($2)
	`, leadID, universityName)
	app, err := scanApplication(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UniversityApplication{}, ErrApplicationNotFound
	}
	return app, err
}

func (r *Repository) GetActiveApplication(ctx context.Context, leadID int64) (domain.UniversityApplication, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+applicationColumns+`
		FROM university_applications
		WHERE lead_id = $1 AND is_active
	`, leadID)
	app, err := scanApplication(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UniversityApplication{}, ErrApplicationNotFound
	}
	return app, err
}

func (r *Repository) ListApplicationsByLead(ctx context.Context, leadID int64) ([]domain.UniversityApplication, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+applicationColumns+`
		FROM university_applications
		WHERE lead_id = $1
		ORDER BY created_at ASC, id ASC
	`, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer rows.Close()

	apps := make([]domain.UniversityApplication, 0)
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

func (r *Repository) InsertApplication(ctx context.Context, app domain.UniversityApplication) (domain.UniversityApplication, error) {
	audit, err := encodeAuditLog(app.AuditLog)
	if err != nil {
		return domain.UniversityApplication{}, err
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO university_applications
			(lead_id, university_name, portal_url, username, password, status, is_active,
			 deposit_proof, deposit_date, tuition_proof, tuition_date, commission_proof, commission_date, audit_log)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING `+applicationColumns,
		app.LeadID, app.UniversityName, app.PortalURL, app.Username, app.Password, app.Status, app.IsActive,
		app.DepositProof, app.DepositDate, app.TuitionProof, app.TuitionDate, app.CommissionProof, app.CommissionDate, audit,
	)
	created, err := scanApplication(row)
	if err != nil {
		return domain.UniversityApplication{}, fmt.Errorf("failed to insert application: %w", err)
	}
	return created, nil
}

// UpdateApplication persists the merged application fields and appends one
// audit entry in the same statement. The audit column only ever grows.
func (r *Repository) UpdateApplication(ctx context.Context, app domain.UniversityApplication, entry domain.AppAuditEntry) (domain.UniversityApplication, error) {
	entryJSON, err := json.Marshal(entry)
	if err != nil {
		return domain.UniversityApplication{}, fmt.Errorf("failed to encode audit entry: %w", err)
	}
	row := r.pool.QueryRow(ctx, `
		UPDATE university_applications SET
			portal_url = $2, username = $3, password = $4, status = $5,
			deposit_proof = $6, deposit_date = $7,
			tuition_proof = $8, tuition_date = $9,
			commission_proof = $10, commission_date = $11,
			audit_log = audit_log || $12::jsonb,
			updated_at = now()
		WHERE id = $1
		RETURNING `+applicationColumns,
		app.ID, app.PortalURL, app.Username, app.Password, app.Status,
		app.DepositProof, app.DepositDate, app.TuitionProof, app.TuitionDate,
		app.CommissionProof, app.CommissionDate, entryJSON,
	)
	updated, err := scanApplication(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UniversityApplication{}, ErrApplicationNotFound
	}
	if err != nil {
		return domain.UniversityApplication{}, fmt.Errorf("failed to update application: %w", err)
	}
	return updated, nil
}

// SetActiveApplication activates one application and deactivates its
// siblings, keeping the one-active invariant even under concurrent calls.
// The ownership check runs in the same transaction. Siblings are cleared
// before the target is set: the partial unique index on (lead_id) WHERE
// is_active checks rows as they are written, so a single UPDATE touching
// the new row before the old one would trip it.
func (r *Repository) SetActiveApplication(ctx context.Context, leadID, applicationID int64) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var ownerID int64
	err = tx.QueryRow(ctx, `SELECT lead_id FROM university_applications WHERE id = $1 FOR UPDATE`, applicationID).Scan(&ownerID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrApplicationNotFound
	}
	if err != nil {
		return err
	}
	if ownerID != leadID {
		return ErrApplicationOwnership
	}

	if _, err := tx.Exec(ctx, `
		UPDATE university_applications SET is_active = false, updated_at = now()
		WHERE lead_id = $1 AND is_active AND id <> $2
	`, leadID, applicationID); err != nil {
		return fmt.Errorf("failed to deactivate sibling applications: %w", err)
	}

	if _, err := tx.Exec(ctx, `
		UPDATE university_applications SET is_active = true, updated_at = now()
		WHERE id = $2 AND lead_id = $1 AND NOT is_active
	`, leadID, applicationID); err != nil {
		return fmt.Errorf("failed to activate application: %w", err)
	}

	return tx.Commit(ctx)
}

func scanApplication(row pgx.Row) (domain.UniversityApplication, error) {
	var (
		app   domain.UniversityApplication
		audit []byte
	)
	err := row.Scan(
		&app.ID, &app.LeadID, &app.UniversityName, &app.PortalURL, &app.Username, &app.Password,
		&app.Status, &app.IsActive,
		&app.DepositProof, &app.DepositDate, &app.TuitionProof, &app.TuitionDate,
		&app.CommissionProof, &app.CommissionDate,
		&audit, &app.CreatedAt, &app.UpdatedAt,
	)
	if err != nil {
		return domain.UniversityApplication{}, err
	}
	if len(audit) > 0 {
		if err := json.Unmarshal(audit, &app.AuditLog); err != nil {
			return domain.UniversityApplication{}, fmt.Errorf("failed to decode audit log: %w", err)
		}
	}
	return app, nil
}

func encodeAuditLog(log []domain.AppAuditEntry) ([]byte, error) {
	if log == nil {
		log = []domain.AppAuditEntry{}
	}
	b, err := json.Marshal(log)
	if err != nil {
		return nil, fmt.Errorf("failed to encode audit log: %w", err)
	}
	return b, nil
}
