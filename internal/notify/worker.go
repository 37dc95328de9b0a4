package notify

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"
)

const deliveryTimeout = 30 * time.Second

// Worker drains the invitation queue and hands each payload to the email
// sender. Malformed payloads are rejected; delivery failures are nacked so the
// broker can dead-letter them.
type Worker struct {
	receiver Receiver
	sender   EmailSender

	stopOnce sync.Once
	done     chan struct{}
}

func NewWorker(receiver Receiver, sender EmailSender) *Worker {
	return &Worker{
		receiver: receiver,
		sender:   sender,
		done:     make(chan struct{}),
	}
}

func (w *Worker) Start() {
	for task := range w.receiver.Tasks() {
		w.handle(task)
	}
	close(w.done)
}

func (w *Worker) handle(task Task) {
	var payload InvitationPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		slog.Error("error unmarshalling invitation payload", "queue", task.Type(), "error", err)
		if err := task.Reject(); err != nil {
			slog.Error("error rejecting task", "error", err)
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), deliveryTimeout)
	defer cancel()

	if err := w.sender.SendInvitation(ctx, payload); err != nil {
		slog.Error("error delivering invitation", "token", payload.Token, "error", err)
		if err := task.Nack(); err != nil {
			slog.Error("error nacking task", "error", err)
		}
		return
	}

	slog.Info("invitation delivered", "token", payload.Token, "recipient", payload.GuestEmail)
	if err := task.Ack(); err != nil {
		slog.Error("error acking task", "error", err)
	}
}

// Stop closes the receiver and waits for in-flight deliveries to finish.
func (w *Worker) Stop() {
	w.stopOnce.Do(func() {
		w.receiver.Close()
		<-w.done
	})
}
