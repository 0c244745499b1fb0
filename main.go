package main

import (
	"context"
	"log"
	"os"

	"github.com/example/ezcomm-chat/config"
	domain "github.com/example/ezcomm-chat/domain/chat"
	"github.com/example/ezcomm-chat/modules/api"
	"github.com/example/ezcomm-chat/modules/broadcast"
	"github.com/example/ezcomm-chat/modules/chat"
	"github.com/example/ezcomm-chat/modules/metrics"
	"github.com/example/ezcomm-chat/modules/ratelimit"
	gfshutdown "github.com/gelmium/graceful-shutdown"
	"github.com/go-monolith/mono"
)

func main() {
	log.Println("=== ezcomm - room chat over WebSocket ===")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel := mono.LogLevelInfo
	if cfg.Log.Level == "error" {
		logLevel = mono.LogLevelError
	}

	// Create mono application
	app, err := mono.NewMonoApplication(
		mono.WithShutdownTimeout(cfg.ShutdownTimeout),
		mono.WithLogLevel(logLevel),
		mono.WithLogFormat(mono.LogFormatText),
	)
	if err != nil {
		log.Fatalf("Failed to create application: %v", err)
	}

	logger := app.Logger()

	// Create modules
	broadcastModule := broadcast.NewModule()

	var chatOpts []chat.Option
	if len(cfg.Chat.Palette) > 0 {
		palette := make([]domain.Color, len(cfg.Chat.Palette))
		for i, c := range cfg.Chat.Palette {
			palette[i] = domain.Color(c)
		}
		chatOpts = append(chatOpts, chat.WithPalette(palette))
	}
	chatModule := chat.NewModule(broadcastModule.GetHub(), logger, chatOpts...)

	metricsModule := metrics.NewModule(logger)

	rateLimitModule := ratelimit.NewModule(ratelimit.Options{
		Addr:     cfg.RateLimit.RedisAddr,
		Password: cfg.RateLimit.RedisPassword,
		DB:       cfg.RateLimit.RedisDB,
		Config: ratelimit.Config{
			RequestsPerWindow: cfg.RateLimit.Requests,
			WindowSize:        cfg.RateLimit.Window,
		},
	}, logger)

	apiModule := api.NewModule(cfg.Server, cfg.Version, logger)

	// The hub and the session-driving service are not exposed via
	// ServiceContainer, so they are injected here.
	apiModule.SetHub(broadcastModule.GetHub())
	apiModule.SetChatService(chatModule.Service())
	apiModule.SetMetrics(metricsModule)
	apiModule.SetRateLimiter(rateLimitModule)
	apiModule.AddHealthCheck("chat", chatModule)
	apiModule.AddHealthCheck("broadcast", broadcastModule)
	apiModule.AddHealthCheck("ratelimit", rateLimitModule)

	// Register modules with the framework.
	// - broadcast: WebSocket hub (chat's Gateway)
	// - chat: Core domain (ServiceProviderModule + EventEmitterModule)
	// - metrics: Event consumer counting chat activity
	// - ratelimit: Redis sliding window for the REST API
	// - api: Driving adapter (Fiber HTTP/WebSocket server, depends on chat)
	app.Register(broadcastModule)
	app.Register(chatModule)
	app.Register(metricsModule)
	app.Register(rateLimitModule)
	app.Register(apiModule)

	if err := app.Start(context.Background()); err != nil {
		log.Fatalf("Failed to start application: %v", err)
	}

	logger.Info("ezcomm started",
		"addr", cfg.Server.Addr(),
		"version", cfg.Version,
		"rate_limit", rateLimitModule.Enabled())
	logger.Info("Endpoints",
		"websocket", "ws://localhost"+cfg.Server.Addr()+"/ws",
		"health", "/health",
		"metrics", "/metrics",
		"rest", "/api/v1/rooms")
	logger.Info("Press Ctrl+C to shutdown gracefully")

	// Graceful shutdown
	wait := gfshutdown.GracefulShutdown(
		context.Background(),
		cfg.ShutdownTimeout,
		map[string]gfshutdown.Operation{
			"mono-app": func(ctx context.Context) error {
				log.Println("Graceful shutdown initiated...")
				return app.Stop(ctx)
			},
		},
	)

	exitCode := <-wait
	log.Printf("Application exited with code: %d", exitCode)
	os.Exit(exitCode)
}
