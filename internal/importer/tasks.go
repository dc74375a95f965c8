package importer

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskLeadImport = "leads.import"

// LeadImportPayload identifies a CSV file staged in object storage and the
// user who requested the import.
type LeadImportPayload struct {
	JobID         string `json:"jobId"`
	FileKey       string `json:"fileKey"`
	FileName      string `json:"fileName"`
	RequestedByID int64  `json:"requestedById"`
	RequestedBy   string `json:"requestedBy"`
}

func NewLeadImportTask(payload LeadImportPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskLeadImport, data), nil
}

func ParseLeadImportPayload(task *asynq.Task) (LeadImportPayload, error) {
	var payload LeadImportPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return LeadImportPayload{}, err
	}
	return payload, nil
}
