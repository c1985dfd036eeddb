// Package broadcast defines the port for broadcasting real-time events to connected clients.
package broadcast

import "context"

// Broadcaster sends real-time events to connected clients.
type Broadcaster interface {
	// BroadcastEvent sends a typed event to clients subscribed to sessionID.
	// An empty sessionID reaches every client.
	BroadcastEvent(ctx context.Context, sessionID, eventType string, payload any)
}
