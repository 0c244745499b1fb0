package api

import (
	"net/url"
	"runtime"
	"time"

	"github.com/example/ezcomm-chat/modules/metrics"
	"github.com/example/ezcomm-chat/modules/ratelimit"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

const maxRoomNameLength = 100

// setupRoutes configures all HTTP routes.
func (m *APIModule) setupRoutes(app *fiber.App) {
	app.Get("/health", m.healthHandler)
	app.Get("/metrics", m.metricsHandler)

	// WebSocket endpoint
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(m.handleWebSocket))

	// REST API v1
	api := app.Group("/api/v1")
	if m.limiter != nil {
		api.Use(ratelimit.IPRateLimit(m.limiter))
	}
	api.Get("/rooms", m.listRooms)
	api.Get("/rooms/:name/messages", m.getRoomLog)
	api.Get("/stats", m.getStats)

	if m.cfg.PublicDir != "" {
		app.Static("/", m.cfg.PublicDir)
	}
}

// healthHandler handles GET /health.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	resp := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339Nano),
		Version:   m.version,
		Uptime:    time.Since(m.startedAt).Seconds(),
		Memory: MemoryStats{
			Alloc:     mem.Alloc,
			HeapAlloc: mem.HeapAlloc,
			Sys:       mem.Sys,
		},
		Connections: m.hub.ClientCount(),
	}

	if len(m.healthChecks) > 0 {
		resp.Modules = make(map[string]ModuleHealth, len(m.healthChecks))
		for _, hc := range m.healthChecks {
			status := hc.module.Health(c.UserContext())
			resp.Modules[hc.name] = ModuleHealth{
				Healthy: status.Healthy,
				Message: status.Message,
				Details: status.Details,
			}
			if !status.Healthy {
				resp.Status = "degraded"
			}
		}
	}

	code := fiber.StatusOK
	if resp.Status != "healthy" {
		code = fiber.StatusServiceUnavailable
	}
	return c.Status(code).JSON(resp)
}

// metricsHandler handles GET /metrics.
func (m *APIModule) metricsHandler(c *fiber.Ctx) error {
	stats := m.chatService.Stats()
	body := m.metrics.Render(metrics.Gauges{
		ActiveConnections: m.hub.ClientCount(),
		TotalMessages:     stats.Messages,
		ActiveRooms:       stats.Rooms,
		ActiveUsers:       stats.Users,
	})

	c.Set(fiber.HeaderContentType, "text/plain; version=0.0.4; charset=utf-8")
	return c.SendString(body)
}

// listRooms handles GET /api/v1/rooms.
func (m *APIModule) listRooms(c *fiber.Ctx) error {
	rooms, err := m.chatAdapter.ListRooms(c.UserContext())
	if err != nil {
		m.logger.Warn("Failed to list rooms", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "list_failed",
			Message: "Failed to list rooms",
		})
	}

	response := RoomListResponse{
		Rooms: make([]RoomResponse, 0, len(rooms)),
	}
	for _, room := range rooms {
		response.Rooms = append(response.Rooms, RoomResponse{
			Name:     room.Name,
			Messages: room.Messages,
			Typing:   room.Typing,
			Members:  m.hub.RoomClientCount(room.Name),
		})
	}

	return c.JSON(response)
}

// getRoomLog handles GET /api/v1/rooms/:name/messages.
func (m *APIModule) getRoomLog(c *fiber.Ctx) error {
	name, err := url.PathUnescape(c.Params("name"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: "Room name is not a valid path segment",
		})
	}
	if name == "" || len(name) > maxRoomNameLength {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: "Room name must be 1-100 characters",
		})
	}

	roomLog, err := m.chatAdapter.RoomLog(c.UserContext(), name)
	if err != nil {
		m.logger.Warn("Failed to get room log", "room", name, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "log_failed",
			Message: "Failed to get room messages",
		})
	}

	return c.JSON(RoomLogResponse{
		Room:     name,
		Messages: roomLog.Messages,
		Typing:   roomLog.Typing,
		Members:  m.hub.RoomClientCount(name),
	})
}

// getStats handles GET /api/v1/stats.
func (m *APIModule) getStats(c *fiber.Ctx) error {
	stats, err := m.chatAdapter.Stats(c.UserContext())
	if err != nil {
		m.logger.Warn("Failed to get chat stats", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "stats_failed",
			Message: "Failed to get chat statistics",
		})
	}

	return c.JSON(StatsResponse{
		Rooms:       stats.Rooms,
		Messages:    stats.Messages,
		Users:       stats.Users,
		Connections: m.hub.ClientCount(),
	})
}
