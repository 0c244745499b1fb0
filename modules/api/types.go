package api

import (
	domain "github.com/example/ezcomm-chat/domain/chat"
)

// RoomResponse is the API response for a room.
type RoomResponse struct {
	Name     string `json:"name"`
	Messages int    `json:"messages"`
	Typing   int    `json:"typing"`
	Members  int    `json:"members"`
}

// RoomListResponse is the API response for listing rooms.
type RoomListResponse struct {
	Rooms []RoomResponse `json:"rooms"`
}

// RoomLogResponse is the API response for a room's log.
type RoomLogResponse struct {
	Room     string           `json:"room"`
	Messages []domain.Message `json:"messages"`
	Typing   []string         `json:"typing"`
	Members  int              `json:"members"`
}

// StatsResponse is the API response for chat statistics.
type StatsResponse struct {
	Rooms       int `json:"rooms"`
	Messages    int `json:"messages"`
	Users       int `json:"users"`
	Connections int `json:"connections"`
}

// ErrorResponse is the API error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// MemoryStats reports runtime memory usage in bytes.
type MemoryStats struct {
	Alloc     uint64 `json:"alloc"`
	HeapAlloc uint64 `json:"heapAlloc"`
	Sys       uint64 `json:"sys"`
}

// ModuleHealth is one module's health as reported by /health.
type ModuleHealth struct {
	Healthy bool           `json:"healthy"`
	Message string         `json:"message,omitempty"`
	Details map[string]any `json:"details,omitempty"`
}

// HealthResponse is the API health check response.
type HealthResponse struct {
	Status      string                  `json:"status"`
	Timestamp   string                  `json:"timestamp"`
	Version     string                  `json:"version"`
	Uptime      float64                 `json:"uptime"`
	Memory      MemoryStats             `json:"memory"`
	Connections int                     `json:"connections"`
	Modules     map[string]ModuleHealth `json:"modules,omitempty"`
}
