package pubsub

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"
)

func receive(t *testing.T, sub Subscription) Event {
	t.Helper()
	select {
	case event := <-sub.Events():
		return event
	case <-time.After(100 * time.Millisecond):
		t.Fatal("Timeout waiting for event")
		return Event{}
	}
}

func expectNothing(t *testing.T, sub Subscription) {
	t.Helper()
	select {
	case event := <-sub.Events():
		t.Errorf("Received unexpected event %s version %d", event.Type, event.Version)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDiagramTopicReplaysRecentChanges(t *testing.T) {
	pub := NewSSEPublisher()
	defer pub.Close()

	for i := 1; i <= 12; i++ {
		change := DiagramChange{Kind: "node_updated", ID: "api", NodesCount: i}
		if err := pub.Publish(TopicDiagram, change.Kind, change); err != nil {
			t.Fatalf("Failed to publish change %d: %v", i, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	sub, err := pub.Subscribe(ctx, TopicDiagram)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	defer sub.Close()

	// Buffer keeps the last 10 of 12 changes.
	for want := 3; want <= 12; want++ {
		event := receive(t, sub)
		if event.Version != want {
			t.Errorf("Expected version %d, got %d", want, event.Version)
		}
	}
	expectNothing(t, sub)
}

func TestStatusTopicReplaysLatestOnly(t *testing.T) {
	pub := NewSSEPublisher()
	defer pub.Close()

	for i, state := range []string{"loading", "generating", "ready"} {
		status := GenerationStatus{State: state, Step: i + 1, Total: 3}
		if err := pub.Publish(TopicStatus, state, status); err != nil {
			t.Fatalf("Failed to publish %s: %v", state, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	sub, err := pub.Subscribe(ctx, TopicStatus)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	defer sub.Close()

	event := receive(t, sub)
	if event.Type != "ready" || event.Version != 3 {
		t.Errorf("Expected ready/3, got %s/%d", event.Type, event.Version)
	}
	var status GenerationStatus
	if err := json.Unmarshal(event.Data, &status); err != nil {
		t.Fatalf("Failed to decode payload: %v", err)
	}
	if status.Step != 3 {
		t.Errorf("Expected step 3, got %d", status.Step)
	}
	expectNothing(t, sub)
}

func TestNoBufferDeliversOnlyLiveEvents(t *testing.T) {
	pub := NewSSEPublisher()
	defer pub.Close()
	pub.ConfigureTopic("test", TopicConfig{BufferSize: 0})

	for i := 1; i <= 3; i++ {
		if err := pub.Publish("test", "event", map[string]int{"num": i}); err != nil {
			t.Fatalf("Failed to publish event %d: %v", i, err)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	sub, err := pub.Subscribe(ctx, "test")
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	defer sub.Close()
	expectNothing(t, sub)

	if err := pub.Publish("test", "event", map[string]int{"num": 4}); err != nil {
		t.Fatalf("Failed to publish new event: %v", err)
	}
	if event := receive(t, sub); event.Version != 4 {
		t.Errorf("Expected version 4, got %d", event.Version)
	}
}

func TestClosedSubscriptionStopsReceiving(t *testing.T) {
	pub := NewSSEPublisher()
	defer pub.Close()

	sub, err := pub.Subscribe(context.Background(), TopicDocuments)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	if err := sub.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := pub.Publish(TopicDocuments, "ready", DocumentsData{Complete: true}); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	expectNothing(t, sub)
}

func TestPublisherClose(t *testing.T) {
	pub := NewSSEPublisher()
	sub, err := pub.Subscribe(context.Background(), TopicDiagram)
	if err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}
	if err := pub.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if _, ok := <-sub.Events(); ok {
		t.Error("events channel should be closed")
	}
	if err := pub.Publish(TopicDiagram, "x", nil); !errors.Is(err, ErrClosed) {
		t.Errorf("Publish after close = %v, want ErrClosed", err)
	}
	if _, err := pub.Subscribe(context.Background(), TopicDiagram); !errors.Is(err, ErrClosed) {
		t.Errorf("Subscribe after close = %v, want ErrClosed", err)
	}
}

func TestWriteSSE(t *testing.T) {
	var buf bytes.Buffer
	event := Event{Topic: TopicDocuments, Type: "ready", Data: json.RawMessage(`{"complete":true}`), Version: 7}
	if err := WriteSSE(&buf, event); err != nil {
		t.Fatalf("WriteSSE: %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "event: documents\ndata: {") || !strings.HasSuffix(out, "}\n\n") {
		t.Errorf("unexpected frame %q", out)
	}
	if !strings.Contains(out, `"data":{"complete":true}`) {
		t.Errorf("payload not embedded: %q", out)
	}
}
