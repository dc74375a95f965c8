package repository

import (
	"context"
	"fmt"

	"counsel_portal_backend/internal/leads/domain"
)

// CommitStageChange atomically moves a lead from expectedStage to toStage and
// appends the matching history entry. The stage update is a compare-and-swap
// against expectedStage; if a concurrent transition got there first the
// transaction rolls back and ErrStageConflict is returned so the caller can
// re-read and retry. Either both writes commit or neither does.
func (r *Repository) CommitStageChange(ctx context.Context, leadID int64, expectedStage, toStage string, actorID int64, reason string) (domain.StageHistoryEntry, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return domain.StageHistoryEntry{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		UPDATE leads SET current_stage = $3, updated_at = now()
		WHERE id = $1 AND current_stage = $2
	`, leadID, expectedStage, toStage)
	if err != nil {
		return domain.StageHistoryEntry{}, fmt.Errorf("failed to update stage: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM leads WHERE id = $1)`, leadID).Scan(&exists); err != nil {
			return domain.StageHistoryEntry{}, err
		}
		if !exists {
			return domain.StageHistoryEntry{}, ErrNotFound
		}
		return domain.StageHistoryEntry{}, ErrStageConflict
	}

	var entry domain.StageHistoryEntry
	var fromStage *string
	if expectedStage != "" {
		fromStage = &expectedStage
	}
	err = tx.QueryRow(ctx, `
		INSERT INTO stage_history (lead_id, from_stage, to_stage, actor_id, reason)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, lead_id, COALESCE(from_stage, ''), to_stage, actor_id, COALESCE(reason, ''), created_at
	`, leadID, fromStage, toStage, actorID, reason).Scan(
		&entry.ID, &entry.LeadID, &entry.FromStage, &entry.ToStage, &entry.ActorID, &entry.Reason, &entry.CreatedAt,
	)
	if err != nil {
		return domain.StageHistoryEntry{}, fmt.Errorf("failed to insert stage history: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return domain.StageHistoryEntry{}, fmt.Errorf("failed to commit stage change: %w", err)
	}
	return entry, nil
}

func (r *Repository) ListStageHistory(ctx context.Context, leadID int64) ([]domain.StageHistoryEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, COALESCE(from_stage, ''), to_stage, actor_id, COALESCE(reason, ''), created_at
		FROM stage_history
		WHERE lead_id = $1
		ORDER BY created_at ASC, id ASC
	`, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stage history: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.StageHistoryEntry, 0)
	for rows.Next() {
		var e domain.StageHistoryEntry
		if err := rows.Scan(&e.ID, &e.LeadID, &e.FromStage, &e.ToStage, &e.ActorID, &e.Reason, &e.CreatedAt); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
