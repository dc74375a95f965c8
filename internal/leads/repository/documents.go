package repository

import (
	"context"
	"fmt"

	"counsel_portal_backend/internal/leads/domain"
)

func (r *Repository) InsertDocument(ctx context.Context, doc domain.Document) (domain.Document, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO documents (lead_id, doc_type, url, remarks)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at
	`, doc.LeadID, doc.Type, doc.URL, doc.Remarks).Scan(&doc.ID, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return domain.Document{}, fmt.Errorf("failed to insert document: %w", err)
	}
	return doc, nil
}

func (r *Repository) ListDocumentsByLead(ctx context.Context, leadID int64) ([]domain.Document, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, doc_type, url, COALESCE(remarks, ''), created_at, updated_at
		FROM documents
		WHERE lead_id = $1
		ORDER BY created_at DESC, id DESC
	`, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	docs := make([]domain.Document, 0)
	for rows.Next() {
		var d domain.Document
		if err := rows.Scan(&d.ID, &d.LeadID, &d.Type, &d.URL, &d.Remarks, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

// DocumentTypesOnFile returns the distinct checklist types the lead has at
// least one document for.
func (r *Repository) DocumentTypesOnFile(ctx context.Context, leadID int64) (map[string]bool, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT doc_type FROM documents WHERE lead_id = $1`, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to query document types: %w", err)
	}
	defer rows.Close()

	types := make(map[string]bool)
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		types[t] = true
	}
	return types, rows.Err()
}
