package scheduler

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
)

type stubSchedulerConfig struct {
	redisURL string
	queue    string
}

func (c stubSchedulerConfig) GetRedisURL() string       { return c.redisURL }
func (c stubSchedulerConfig) GetRedisTLSInsecure() bool { return false }
func (c stubSchedulerConfig) GetAsynqQueueName() string { return c.queue }
func (c stubSchedulerConfig) GetAsynqConcurrency() int  { return 1 }

func TestClientRequiresRedisURL(t *testing.T) {
	_, err := NewClient(stubSchedulerConfig{})
	if err == nil {
		t.Fatal("expected error for missing redis url")
	}
}

func TestEnqueueNotificationEmail(t *testing.T) {
	srv := miniredis.RunT(t)

	cfg := stubSchedulerConfig{redisURL: "redis://" + srv.Addr(), queue: "notifications"}
	client, err := NewClient(cfg)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	defer client.Close()

	payload := NotificationEmailPayload{
		NotificationID: "0d9f1f41-21a8-4f33-9db3-0a2a4e6e9a01",
		UserID:         "7c5a3a52-6a2e-4f0f-8e49-2f9f3f0f6a02",
	}
	if err := client.EnqueueNotificationEmail(context.Background(), payload); err != nil {
		t.Fatalf("EnqueueNotificationEmail: %v", err)
	}

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: srv.Addr()})
	defer inspector.Close()

	tasks, err := inspector.ListPendingTasks("notifications")
	if err != nil {
		t.Fatalf("ListPendingTasks: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("pending tasks = %d, want 1", len(tasks))
	}
	if tasks[0].Type != TaskNotificationEmail {
		t.Errorf("task type = %q, want %q", tasks[0].Type, TaskNotificationEmail)
	}

	var got NotificationEmailPayload
	if err := json.Unmarshal(tasks[0].Payload, &got); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if got != payload {
		t.Errorf("payload = %+v, want %+v", got, payload)
	}
}

func TestParseNotificationEmailPayloadRejectsGarbage(t *testing.T) {
	task := asynq.NewTask(TaskNotificationEmail, []byte("not json"))
	if _, err := ParseNotificationEmailPayload(task); err == nil {
		t.Fatal("expected parse error")
	}
}
