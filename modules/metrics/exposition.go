package metrics

import (
	"fmt"
	"strings"
)

// Gauges are the point-in-time values sampled by the caller.
type Gauges struct {
	ActiveConnections int
	TotalMessages     int
	ActiveRooms       int
	ActiveUsers       int
}

type sample struct {
	name  string
	help  string
	kind  string
	value uint64
}

// Render formats gauges and the module's counters in the plain-text
// exposition format.
func (m *Module) Render(g Gauges) string {
	c := &m.counters
	samples := []sample{
		{"ezcomm_active_connections", "Current WebSocket connections", "gauge", uint64(g.ActiveConnections)},
		{"ezcomm_total_messages", "Total messages sent", "counter", uint64(g.TotalMessages)},
		{"ezcomm_active_rooms", "Active chat rooms", "gauge", uint64(g.ActiveRooms)},
		{"ezcomm_active_users", "Active users", "gauge", uint64(g.ActiveUsers)},
		{"ezcomm_joins_total", "Successful room joins", "counter", c.Joins.Load()},
		{"ezcomm_join_rejections_total", "Joins rejected because the name was taken", "counter", c.JoinRejections.Load()},
		{"ezcomm_leaves_total", "Users that left a room", "counter", c.Leaves.Load()},
		{"ezcomm_messages_posted_total", "User messages posted", "counter", c.Messages.Load()},
		{"ezcomm_messages_edited_total", "User messages edited", "counter", c.Edits.Load()},
		{"ezcomm_messages_deleted_total", "User messages deleted", "counter", c.Deletes.Load()},
	}

	var b strings.Builder
	for _, s := range samples {
		fmt.Fprintf(&b, "# HELP %s %s\n", s.name, s.help)
		fmt.Fprintf(&b, "# TYPE %s %s\n", s.name, s.kind)
		fmt.Fprintf(&b, "%s %d\n", s.name, s.value)
	}
	return b.String()
}
