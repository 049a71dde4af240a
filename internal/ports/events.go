package ports

import "context"

// Event is a match notification addressed to specific players.
type Event struct {
	Kind       string
	Content    map[string]interface{}
	Recipients []string // user IDs
}

// EventPublisher delivers match events to players. Delivery is best effort:
// implementations log failures instead of returning them.
type EventPublisher interface {
	Publish(ctx context.Context, events ...Event)
}
