package events

import (
	"context"
	"encoding/json"
	"sync"
)

type Published struct {
	Key  string
	Body json.RawMessage
}

// MemoryPublisher records events in order. Err, when set, fails Publish.
type MemoryPublisher struct {
	mu     sync.Mutex
	events []Published
	Err    error
}

func (p *MemoryPublisher) Publish(_ context.Context, key string, payload any) error {
	b, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.events = append(p.events, Published{Key: key, Body: b})
	return nil
}

func (p *MemoryPublisher) Close() error { return nil }

func (p *MemoryPublisher) Events() []Published {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Published(nil), p.events...)
}
