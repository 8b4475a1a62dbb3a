package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

const (
	QueueGenerateProject = "queue:generate_project"
	QueueExportProject   = "queue:export_project"
)

type Queue struct {
	client *redis.Client
}

type Job struct {
	ID             uuid.UUID `json:"id"`
	Type           string    `json:"type"`
	ProjectID      uuid.UUID `json:"project_id"`
	ConfirmPartial bool      `json:"confirm_partial,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

func New(redisURL string) (*Queue, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Queue{client: client}, nil
}

func (q *Queue) Close() error {
	return q.client.Close()
}

func (q *Queue) Enqueue(ctx context.Context, queueName string, job *Job) error {
	job.CreatedAt = time.Now()

	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}

	return q.client.RPush(ctx, queueName, data).Err()
}

func (q *Queue) Dequeue(ctx context.Context, queueName string, timeout time.Duration) (*Job, error) {
	result, err := q.client.BLPop(ctx, timeout, queueName).Result()
	if err == redis.Nil {
		return nil, nil // No job available
	}
	if err != nil {
		return nil, fmt.Errorf("failed to dequeue: %w", err)
	}

	if len(result) != 2 {
		return nil, fmt.Errorf("unexpected redis response")
	}

	var job Job
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal job: %w", err)
	}

	return &job, nil
}

func (q *Queue) GetQueueLength(ctx context.Context, queueName string) (int64, error) {
	return q.client.LLen(ctx, queueName).Result()
}

// EnqueueGenerateProject enqueues storyboard plus scene resolution for a
// freshly created project.
func (q *Queue) EnqueueGenerateProject(ctx context.Context, projectID, jobID uuid.UUID) error {
	job := &Job{
		ID:        jobID,
		Type:      "generate_project",
		ProjectID: projectID,
	}
	return q.Enqueue(ctx, QueueGenerateProject, job)
}

// EnqueueExportProject enqueues final assembly. confirmPartial carries the
// caller's consent to export with degraded scenes dropped.
func (q *Queue) EnqueueExportProject(ctx context.Context, projectID, jobID uuid.UUID, confirmPartial bool) error {
	job := &Job{
		ID:             jobID,
		Type:           "export_project",
		ProjectID:      projectID,
		ConfirmPartial: confirmPartial,
	}
	return q.Enqueue(ctx, QueueExportProject, job)
}
