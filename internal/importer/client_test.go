package importer

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
)

type testRedisConfig struct {
	url   string
	queue string
}

func (c testRedisConfig) GetRedisURL() string        { return c.url }
func (c testRedisConfig) GetImportQueueName() string { return c.queue }

func TestClientEnqueuesLeadImport(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := testRedisConfig{url: "redis://" + mr.Addr(), queue: "imports"}

	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	payload := LeadImportPayload{
		JobID:         "job-123",
		FileKey:       "imports/leads.csv",
		FileName:      "leads.csv",
		RequestedByID: 1,
		RequestedBy:   "Admin",
	}
	if err := client.EnqueueLeadImport(context.Background(), payload); err != nil {
		t.Fatalf("EnqueueLeadImport: %v", err)
	}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: mr.Addr()})
	defer inspector.Close()

	tasks, err := inspector.ListPendingTasks("imports")
	if err != nil {
		t.Fatalf("ListPendingTasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("pending tasks = %d, want 1", len(tasks))
	}
	if tasks[0].Type != TaskLeadImport {
		t.Errorf("task type = %q, want %q", tasks[0].Type, TaskLeadImport)
	}

	parsed, err := ParseLeadImportPayload(asynq.NewTask(tasks[0].Type, tasks[0].Payload))
	if err != nil {
		t.Fatalf("ParseLeadImportPayload: %v", err)
	}
	if parsed != payload {
		t.Errorf("payload round trip = %+v, want %+v", parsed, payload)
	}
}

func TestNewClientRequiresRedisURL(t *testing.T) {
	if _, err := NewClient(testRedisConfig{}); err == nil {
		t.Fatal("expected error for missing redis url")
	}
}
