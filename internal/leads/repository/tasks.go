package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"counsel_portal_backend/internal/leads/domain"
)

func (r *Repository) InsertTask(ctx context.Context, task domain.Task) (domain.Task, error) {
	payload, err := json.Marshal(task.Payload)
	if err != nil {
		return domain.Task{}, fmt.Errorf("failed to encode task payload: %w", err)
	}

	err = r.pool.QueryRow(ctx, `
		INSERT INTO tasks (lead_id, task_type, payload, remarks, created_by)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`, task.LeadID, string(task.Type), payload, task.Remarks, task.CreatedBy).Scan(&task.ID, &task.CreatedAt)
	if err != nil {
		return domain.Task{}, fmt.Errorf("failed to insert task: %w", err)
	}
	return task, nil
}

func (r *Repository) ListTasksByLead(ctx context.Context, leadID int64) ([]domain.Task, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, task_type, payload, remarks, created_by, created_at
		FROM tasks
		WHERE lead_id = $1
		ORDER BY created_at DESC, id DESC
	`, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]domain.Task, 0)
	for rows.Next() {
		var (
			t       domain.Task
			typ     string
			rawJSON []byte
		)
		if err := rows.Scan(&t.ID, &t.LeadID, &typ, &rawJSON, &t.Remarks, &t.CreatedBy, &t.CreatedAt); err != nil {
			return nil, err
		}
		t.Type = domain.TaskType(typ)
		payload, err := decodeTaskPayload(t.Type, rawJSON)
		if err != nil {
			return nil, fmt.Errorf("failed to decode payload of task %d: %w", t.ID, err)
		}
		t.Payload = payload
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// decodeTaskPayload restores the concrete payload variant from its stored
// JSON using the task type tag.
func decodeTaskPayload(typ domain.TaskType, raw []byte) (domain.TaskPayload, error) {
	switch typ {
	case domain.TaskTypeCall:
		var p domain.CallOutcome
		return p, json.Unmarshal(raw, &p)
	case domain.TaskTypeMeetDone:
		var p domain.MeetOutcome
		return p, json.Unmarshal(raw, &p)
	case domain.TaskTypeShortlisting:
		var p domain.ShortlistingOutcome
		return p, json.Unmarshal(raw, &p)
	case domain.TaskTypeApplicationProcess:
		var p domain.ApplicationProcessOutcome
		return p, json.Unmarshal(raw, &p)
	case domain.TaskTypeTracking:
		var p domain.TrackingOutcome
		return p, json.Unmarshal(raw, &p)
	case domain.TaskTypeSubmitDocuments:
		return domain.SubmitDocumentsOutcome{}, nil
	default:
		return nil, fmt.Errorf("unknown task type %q", typ)
	}
}
