package repository

import (
	"context"
	"fmt"

	"counsel_portal_backend/internal/leads/domain"
)

func (r *Repository) InsertRemark(ctx context.Context, remark domain.Remark) (domain.Remark, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO remarks (lead_id, body, author_id)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, remark.LeadID, remark.Body, remark.AuthorID).Scan(&remark.ID, &remark.CreatedAt)
	if err != nil {
		return domain.Remark{}, fmt.Errorf("failed to insert remark: %w", err)
	}
	return remark, nil
}

func (r *Repository) ListRemarksByLead(ctx context.Context, leadID int64) ([]domain.Remark, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT r.id, r.lead_id, r.body, r.author_id, COALESCE(u.name, ''), r.created_at
		FROM remarks r
		LEFT JOIN users u ON u.id = r.author_id
		WHERE r.lead_id = $1
		ORDER BY r.created_at DESC, r.id DESC
	`, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list remarks: %w", err)
	}
	defer rows.Close()

	remarks := make([]domain.Remark, 0)
	for rows.Next() {
		var rem domain.Remark
		if err := rows.Scan(&rem.ID, &rem.LeadID, &rem.Body, &rem.AuthorID, &rem.AuthorName, &rem.CreatedAt); err != nil {
			return nil, err
		}
		remarks = append(remarks, rem)
	}
	return remarks, rows.Err()
}
