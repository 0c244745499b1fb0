package broadcast

import (
	"context"
	"log"

	"github.com/go-monolith/mono"
)

// BroadcastModule owns the WebSocket hub that delivers chat events to clients.
type BroadcastModule struct {
	hub       *Hub
	cancelHub context.CancelFunc
}

// Compile-time interface checks.
var _ mono.Module = (*BroadcastModule)(nil)
var _ mono.HealthCheckableModule = (*BroadcastModule)(nil)

// NewModule creates a new BroadcastModule.
func NewModule() *BroadcastModule {
	return &BroadcastModule{
		hub: NewHub(),
	}
}

// Name returns the module name.
func (m *BroadcastModule) Name() string {
	return "broadcast"
}

// Start runs the hub until Stop.
func (m *BroadcastModule) Start(_ context.Context) error {
	ctx, cancel := context.WithCancel(context.Background())
	m.cancelHub = cancel
	go m.hub.Run(ctx)
	log.Println("[broadcast] Module started - room gateway accepting clients")
	return nil
}

// Stop closes every client connection and waits for the hub to finish.
func (m *BroadcastModule) Stop(_ context.Context) error {
	clients := m.hub.ClientCount()
	rooms := len(m.hub.RoomOccupancy())
	if m.cancelHub != nil {
		m.cancelHub()
		m.hub.Wait()
	}
	log.Printf("[broadcast] Module stopped - closed %d clients across %d rooms", clients, rooms)
	return nil
}

// Health reports whether the gateway accepts clients, with per-room occupancy.
func (m *BroadcastModule) Health(_ context.Context) mono.HealthStatus {
	occupancy := m.hub.RoomOccupancy()
	status := mono.HealthStatus{
		Healthy: m.cancelHub != nil && !m.hub.Closed(),
		Message: "operational",
		Details: map[string]any{
			"connected_clients": m.hub.ClientCount(),
			"active_rooms":      len(occupancy),
			"room_members":      occupancy,
		},
	}
	if !status.Healthy {
		status.Message = "hub not running"
	}
	return status
}

// GetHub returns the hub used as the chat gateway and by the API module.
func (m *BroadcastModule) GetHub() *Hub {
	return m.hub
}
