package events

import (
	"context"
	"encoding/json"
	"testing"
)

func TestNewAMQPPublisher_RejectsBadURL(t *testing.T) {
	if _, err := NewAMQPPublisher("http://localhost:5672", "eshop.events"); err == nil {
		t.Fatal("expected error for non-amqp scheme")
	}
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	if err := p.Publish(context.Background(), KeyOrderPlaced, map[string]string{"id": "1"}); err != nil {
		t.Errorf("Publish: %v", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

func TestMemoryPublisher_KeepsOrder(t *testing.T) {
	p := &MemoryPublisher{}
	ctx := context.Background()
	_ = p.Publish(ctx, KeyReviewCreated, map[string]string{"rating": "5"})
	_ = p.Publish(ctx, KeyOrderPlaced, map[string]any{"total": "10.00"})

	got := p.Events()
	if len(got) != 2 {
		t.Fatalf("events = %d, want 2", len(got))
	}
	if got[0].Key != KeyReviewCreated || got[1].Key != KeyOrderPlaced {
		t.Errorf("keys = %q, %q", got[0].Key, got[1].Key)
	}
	var body map[string]any
	if err := json.Unmarshal(got[1].Body, &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if body["total"] != "10.00" {
		t.Errorf("total = %v, want 10.00", body["total"])
	}
}
