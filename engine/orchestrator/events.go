package orchestrator

import (
	"context"
	"time"

	"github.com/WessleyAI/mediacrawl/engine/domain"
	"github.com/WessleyAI/mediacrawl/pkg/natsutil"
)

// EventType is a task lifecycle transition.
type EventType string

const (
	EventStarted   EventType = "started"
	EventCompleted EventType = "completed"
	EventFailed    EventType = "failed"
	EventTimedOut  EventType = "timed_out"
)

// Event reports a lifecycle transition of one task.
type Event struct {
	ID     string        `json:"id"`
	Type   EventType     `json:"type"`
	TaskID string        `json:"task_id"`
	Source domain.Source `json:"source"`
	Mode   domain.Mode   `json:"mode"`
	Status domain.Status `json:"status"`
	Error  string        `json:"error,omitempty"`
	At     time.Time     `json:"at"`
}

// Notifier receives lifecycle events. Delivery failures are logged and never
// fail the task operation that produced the event.
type Notifier interface {
	Notify(ctx context.Context, e Event) error
}

// DefaultSubjectPrefix is the NATS subject prefix for lifecycle events.
const DefaultSubjectPrefix = "mediacrawl.task"

// NATSNotifier publishes events as JSON to {prefix}.{type}.
type NATSNotifier struct {
	pub    natsutil.MsgPublisher
	prefix string
}

// NewNATSNotifier returns a notifier publishing through pub. An empty prefix
// uses DefaultSubjectPrefix.
func NewNATSNotifier(pub natsutil.MsgPublisher, prefix string) *NATSNotifier {
	if prefix == "" {
		prefix = DefaultSubjectPrefix
	}
	return &NATSNotifier{pub: pub, prefix: prefix}
}

// Subject returns the subject events of type t are published on.
func (n *NATSNotifier) Subject(t EventType) string {
	return n.prefix + "." + string(t)
}

// Notify implements Notifier.
func (n *NATSNotifier) Notify(ctx context.Context, e Event) error {
	return natsutil.Publish(ctx, n.pub, n.Subject(e.Type), e)
}
