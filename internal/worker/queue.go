package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// Job is a typed unit of background work: a kind tag plus a JSON payload.
type Job struct {
	Kind    string          `json:"kind"`
	Payload json.RawMessage `json:"payload"`
}

func NewJob(kind string, payload interface{}) (Job, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Job{}, fmt.Errorf("marshal job payload: %w", err)
	}
	return Job{Kind: kind, Payload: raw}, nil
}

// Queue is the message-passing boundary between request handling and
// background work. Delivery is at-least-once; handlers must tolerate
// duplicates.
// Implementations: Redis list (production) or in-memory (local dev).
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	// Dequeue blocks for up to timeout. The boolean is false when the wait
	// expired with nothing to hand out.
	Dequeue(ctx context.Context, timeout time.Duration) (Job, bool, error)
}
