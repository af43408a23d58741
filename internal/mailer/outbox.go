package mailer

import (
	"context"
	"sync"
)

// Outbox is an in-memory Sender that keeps every message. Set Err to simulate
// a relay failure.
type Outbox struct {
	mu       sync.Mutex
	messages []Message
	Err      error
}

func (o *Outbox) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.Err != nil {
		return o.Err
	}
	o.messages = append(o.messages, msg)
	return nil
}

func (o *Outbox) Messages() []Message {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]Message, len(o.messages))
	copy(out, o.messages)
	return out
}

// Last returns the most recent message and whether one exists.
func (o *Outbox) Last() (Message, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.messages) == 0 {
		return Message{}, false
	}
	return o.messages[len(o.messages)-1], true
}

func (o *Outbox) SetErr(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Err = err
}
