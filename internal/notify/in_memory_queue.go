package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

type inMemoryTask struct {
	queue   string
	payload []byte
}

func (t *inMemoryTask) Type() string {
	return t.queue
}

func (t *inMemoryTask) Payload() []byte {
	return t.payload
}

func (t *inMemoryTask) Ack() error {
	return nil
}

func (t *inMemoryTask) Nack() error {
	return nil
}

func (t *inMemoryTask) Reject() error {
	return nil
}

// InMemoryQueue is a channel-backed Publisher and Receiver for tests and
// single-process runs without a broker.
type InMemoryQueue struct {
	mu     sync.Mutex
	tasks  chan Task
	closed bool
}

func NewInMemoryQueue() *InMemoryQueue {
	return &InMemoryQueue{
		tasks: make(chan Task, 100),
	}
}

func (q *InMemoryQueue) PublishInvitation(ctx context.Context, payload InvitationPayload) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	// The closed check and the send happen under the same lock so a racing
	// Close cannot close the channel between them.
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return fmt.Errorf("queue is closed")
	}

	select {
	case q.tasks <- &inMemoryTask{queue: InvitationQueue, payload: data}:
		return nil
	default:
		return fmt.Errorf("queue is full")
	}
}

func (q *InMemoryQueue) Tasks() <-chan Task {
	return q.tasks
}

func (q *InMemoryQueue) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return
	}
	q.closed = true
	close(q.tasks)
}
