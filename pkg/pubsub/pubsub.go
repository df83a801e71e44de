// Package pubsub fans out diagram and document events to subscribers such as
// SSE clients.
package pubsub

import (
	"context"
	"encoding/json"
	"errors"
)

// Topics published by the server.
const (
	TopicStatus    = "generation_status" // progress of a generation run
	TopicDiagram   = "diagram"           // committed diagram mutations
	TopicDocuments = "documents"         // results of a generation run
)

// ErrClosed is returned by a publisher after Close.
var ErrClosed = errors.New("publisher is closed")

// Event is one published message.
type Event struct {
	Topic   string          `json:"topic"`
	Type    string          `json:"type"` // e.g. "loading", "generating", "ready", "node_updated"
	Data    json.RawMessage `json:"data"`
	Version int             `json:"version"` // per-topic sequence number
}

// Subscription receives events of one topic.
type Subscription interface {
	Topic() string
	Events() <-chan Event
	Close() error
}

// Publisher manages subscriptions and publishing.
type Publisher interface {
	// Subscribe creates a subscription that is closed when ctx is done.
	Subscribe(ctx context.Context, topic string) (Subscription, error)

	// Publish marshals data to JSON and sends it to every subscriber of topic.
	Publish(topic string, eventType string, data interface{}) error

	Close() error
}

// GenerationStatus reports where a generation run is.
type GenerationStatus struct {
	State   string `json:"state"` // loading, generating, writing, ready, error
	Message string `json:"message"`
	Step    int    `json:"step"`
	Total   int    `json:"total"`
}

// DiagramChange announces a committed mutation of the diagram.
type DiagramChange struct {
	Kind       string `json:"kind"`
	ID         string `json:"id,omitempty"`
	NodesCount int    `json:"nodes_count"`
	EdgesCount int    `json:"edges_count"`
}

// DocumentsData summarizes a generation run.
type DocumentsData struct {
	Artifacts []string          `json:"artifacts"`
	Failures  map[string]string `json:"failures,omitempty"` // artifact -> error
	Complete  bool              `json:"complete"`           // true when no artifact failed
}
