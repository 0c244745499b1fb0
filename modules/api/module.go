package api

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/example/ezcomm-chat/config"
	"github.com/example/ezcomm-chat/modules/broadcast"
	"github.com/example/ezcomm-chat/modules/chat"
	"github.com/example/ezcomm-chat/modules/metrics"
	"github.com/example/ezcomm-chat/modules/ratelimit"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// ChatService is the part of the chat service the transport drives directly.
type ChatService interface {
	NewSession(id string) *chat.Session
	Stats() chat.Stats
}

type healthSource struct {
	name   string
	module mono.HealthCheckableModule
}

// APIModule is the HTTP module serving the websocket transport, health,
// metrics, the read-only REST API and the static client.
type APIModule struct {
	app          *fiber.App
	cfg          config.ServerConfig
	version      string
	startedAt    time.Time
	chatAdapter  chat.ChatPort
	chatService  ChatService
	hub          *broadcast.Hub
	metrics      *metrics.Module
	limiter      ratelimit.Limiter
	healthChecks []healthSource
	logger       types.Logger
}

// Compile-time interface checks.
var _ mono.Module = (*APIModule)(nil)
var _ mono.DependentModule = (*APIModule)(nil)
var _ mono.HealthCheckableModule = (*APIModule)(nil)

// NewModule creates a new APIModule.
func NewModule(cfg config.ServerConfig, version string, logger types.Logger) *APIModule {
	return &APIModule{
		cfg:       cfg,
		version:   version,
		startedAt: time.Now(),
		logger:    logger,
	}
}

// Name returns the module name.
func (m *APIModule) Name() string {
	return "api"
}

// Dependencies returns the list of module dependencies.
func (m *APIModule) Dependencies() []string {
	return []string{"chat"}
}

// SetDependencyServiceContainer receives service containers from dependencies.
func (m *APIModule) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	switch dependency {
	case "chat":
		m.chatAdapter = chat.NewChatAdapter(container)
	}
}

// SetHub sets the broadcast hub (called from main.go).
func (m *APIModule) SetHub(hub *broadcast.Hub) {
	m.hub = hub
}

// SetChatService sets the chat service driven by websocket sessions.
func (m *APIModule) SetChatService(svc ChatService) {
	m.chatService = svc
}

// SetMetrics sets the metrics module rendered by /metrics.
func (m *APIModule) SetMetrics(mod *metrics.Module) {
	m.metrics = mod
}

// SetRateLimiter sets the limiter guarding the REST API.
func (m *APIModule) SetRateLimiter(l ratelimit.Limiter) {
	m.limiter = l
}

// AddHealthCheck includes a module's health in /health.
func (m *APIModule) AddHealthCheck(name string, module mono.HealthCheckableModule) {
	m.healthChecks = append(m.healthChecks, healthSource{name: name, module: module})
}

// Start builds the Fiber app and starts listening.
func (m *APIModule) Start(_ context.Context) error {
	if m.chatAdapter == nil {
		return fmt.Errorf("chat adapter dependency not set")
	}
	if m.chatService == nil {
		return fmt.Errorf("chat service dependency not set")
	}
	if m.hub == nil {
		return fmt.Errorf("broadcast hub dependency not set")
	}
	if m.metrics == nil {
		return fmt.Errorf("metrics module dependency not set")
	}

	m.app = m.newApp()

	errCh := make(chan error, 1)
	go func() {
		if err := m.app.Listen(m.cfg.Addr()); err != nil {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("HTTP server failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
	}

	m.logger.Info("HTTP server started", "addr", m.cfg.Addr(), "public_dir", m.cfg.PublicDir)
	return nil
}

// Stop shuts down the Fiber HTTP server.
func (m *APIModule) Stop(ctx context.Context) error {
	if m.app == nil {
		return nil
	}
	m.logger.Info("Shutting down HTTP server")
	if err := m.app.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// Health returns the health status.
func (m *APIModule) Health(_ context.Context) mono.HealthStatus {
	details := map[string]any{
		"addr": m.cfg.Addr(),
	}
	if m.hub != nil {
		details["connected_clients"] = m.hub.ClientCount()
	}
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: details,
	}
}

// newApp creates the Fiber app with middleware and routes.
func (m *APIModule) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "ezcomm",
		DisableStartupMessage: true,
		ErrorHandler:          m.errorHandler,
		ReadTimeout:           m.cfg.ReadTimeout,
		WriteTimeout:          m.cfg.WriteTimeout,
		IdleTimeout:           m.cfg.IdleTimeout,
	})

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Next: func(c *fiber.Ctx) bool {
			return websocket.IsWebSocketUpgrade(c)
		},
		Format: "[${time}] ${status} ${method} ${path} ${latency}\n",
	}))
	if m.cfg.CORSOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins: m.cfg.CORSOrigins,
			AllowMethods: "GET,OPTIONS",
			AllowHeaders: "Content-Type",
		}))
	}

	m.setupRoutes(app)
	return app
}

// errorHandler handles errors globally.
func (m *APIModule) errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	}

	if code >= fiber.StatusInternalServerError {
		m.logger.Error("HTTP error", "code", code, "path", c.Path(), "error", err)
	}

	return c.Status(code).JSON(ErrorResponse{
		Error:   "server_error",
		Message: message,
	})
}
