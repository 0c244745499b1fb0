package ratelimit

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "ezcomm:ratelimit:ip:"

// Options configures the Redis connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	Config   Config
}

// Module owns the Redis client backing the limiter. With no address, or when
// Redis is unreachable at start, the module stays disabled and allows every
// request.
type Module struct {
	opts    Options
	client  *redis.Client
	limiter atomic.Pointer[SlidingWindowLimiter]
	logger  types.Logger
}

// Compile-time interface checks
var (
	_ mono.Module                = (*Module)(nil)
	_ mono.HealthCheckableModule = (*Module)(nil)
	_ Limiter                    = (*Module)(nil)
)

// NewModule creates a rate limiting module.
func NewModule(opts Options, logger types.Logger) *Module {
	if opts.Config.RequestsPerWindow <= 0 || opts.Config.WindowSize <= 0 {
		opts.Config = DefaultConfig()
	}
	return &Module{opts: opts, logger: logger}
}

// Name returns the module name.
func (m *Module) Name() string {
	return "ratelimit"
}

// Start connects to Redis when an address is configured.
func (m *Module) Start(ctx context.Context) error {
	if m.opts.Addr == "" {
		m.logger.Info("Rate limiting disabled", "reason", "no redis address")
		return nil
	}

	m.client = redis.NewClient(&redis.Options{
		Addr:     m.opts.Addr,
		Password: m.opts.Password,
		DB:       m.opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := m.client.Ping(pingCtx).Err(); err != nil {
		m.logger.Warn("Rate limiting disabled, redis unreachable", "addr", m.opts.Addr, "error", err)
		return nil
	}

	m.limiter.Store(NewSlidingWindowLimiter(m.client, m.opts.Config, keyPrefix))
	m.logger.Info("Rate limiting enabled",
		"addr", m.opts.Addr,
		"requests", m.opts.Config.RequestsPerWindow,
		"window", m.opts.Config.WindowSize.String())
	return nil
}

// Stop closes the Redis connection.
func (m *Module) Stop(_ context.Context) error {
	m.limiter.Store(nil)
	if m.client != nil {
		if err := m.client.Close(); err != nil {
			m.logger.Warn("Error closing redis connection", "error", err)
		}
	}
	m.logger.Info("Rate limit module stopped")
	return nil
}

// Enabled reports whether requests are being limited.
func (m *Module) Enabled() bool {
	return m.limiter.Load() != nil
}

// Limit returns the configured requests per window.
func (m *Module) Limit() int {
	return m.opts.Config.RequestsPerWindow
}

// Allow delegates to the Redis limiter, or allows the request when disabled.
func (m *Module) Allow(ctx context.Context, key string) (*Result, error) {
	l := m.limiter.Load()
	if l == nil {
		return &Result{
			Allowed:   true,
			Remaining: m.opts.Config.RequestsPerWindow,
			ResetAt:   time.Now().Add(m.opts.Config.WindowSize),
		}, nil
	}
	return l.Allow(ctx, key)
}

// Health returns the health status.
func (m *Module) Health(ctx context.Context) mono.HealthStatus {
	if !m.Enabled() {
		return mono.HealthStatus{
			Healthy: true,
			Message: "disabled",
		}
	}
	if err := m.client.Ping(ctx).Err(); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "redis unreachable",
			Details: map[string]any{"error": err.Error()},
		}
	}
	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{
			"requests_per_window": m.opts.Config.RequestsPerWindow,
			"window":              m.opts.Config.WindowSize.String(),
		},
	}
}
