package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Houeta/stylebook-bot/internal/bot"
	"github.com/Houeta/stylebook-bot/internal/config"
	"github.com/Houeta/stylebook-bot/internal/conversation"
	"github.com/Houeta/stylebook-bot/internal/gateway"
	"github.com/Houeta/stylebook-bot/internal/i18n"
	"github.com/Houeta/stylebook-bot/internal/metrics"
	"github.com/Houeta/stylebook-bot/internal/repository"
	"github.com/Houeta/stylebook-bot/internal/server"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Constants for different environment types.
const (
	envLocal        = "local"
	envDev          = "development"
	envProd         = "production"
	janitorInterval = 10 * time.Minute
)

// main is the entry point of the application.
func main() {
	// Create a context that will be canceled when an interrupt signal is received.
	// This allows for graceful shutdown.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop() // Ensure stop is called to release resources related to signal handling.

	// Load application configuration.
	cfg := config.MustLoad()

	// Set up the logger based on the environment.
	logger := setupLogger(cfg.Env)

	// Create a separate registry for metrics with exemplar
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics(reg)

	// Initialize the database connection and bring the schema up to date.
	dtb, err := repository.NewDatabase(
		cfg.Database.Host, cfg.Database.Port, cfg.Database.User, cfg.Database.Password, cfg.Database.Name,
	)
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}
	defer dtb.Close()

	if err = repository.Migrate(ctx, dtb); err != nil {
		log.Fatalf("Failed to migrate DB: %v", err)
	}

	// Create a new repository instance using the database connection.
	repo := repository.NewRepository(dtb)

	localizer, err := i18n.NewLocalizer()
	if err != nil {
		log.Fatalf("Failed to initialize localizer: %v", err)
	}
	lang := localizer.NormalizeLanguageCode(cfg.Locale)

	hours, err := gateway.ParseHours(
		cfg.Salon.Location, cfg.Salon.Open, cfg.Salon.Close, cfg.Salon.SlotDuration, cfg.Salon.ClosedDays,
	)
	if err != nil {
		log.Fatalf("Invalid salon opening hours: %v", err)
	}
	clock := func() time.Time { return time.Now().In(hours.Location) }

	// Initialize the bot with logger, localizer, token, and poller timeout.
	salonBot, err := bot.NewBot(logger, appMetrics, localizer, bot.Settings{
		Token:       cfg.Telegram.Token,
		Poller:      cfg.Telegram.Timeout,
		Lang:        lang,
		AdminChatID: cfg.Telegram.AdminChatID,
		Hours:       hours,
	})
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	salonGateway := gateway.New(logger, repo, salonBot.Sender(), appMetrics, hours, clock)
	engine := conversation.NewEngine(
		logger,
		salonGateway,
		localizer,
		salonBot.Sender(),
		appMetrics,
		conversation.NewStore(),
		conversation.EngineConfig{
			Lang:  lang,
			Vars:  map[string]any{"salon_phone": cfg.Salon.ContactPhone},
			Pacer: conversation.Pacer{Base: cfg.Pacing.Base, Step: cfg.Pacing.Step},
			Clock: clock,
		},
	)

	// Log that the application has started.
	logger.InfoContext(ctx, "Application started. Press Ctrl+C to stop.")

	// Start the bot in a goroutine to allow main to listen for signals.
	go salonBot.Start(engine, salonGateway)

	// Start the moniroting server
	go server.StartMonitoringServer(ctx, logger, reg, dtb, salonBot, cfg.Monitoring.Port)

	// Forget conversations nobody came back to.
	go engine.RunJanitor(ctx, cfg.SessionTTL, janitorInterval)

	// Wait for the context to be canceled (e.g., by Ctrl+C).
	<-ctx.Done()

	// Log that a shutdown signal has been received.
	logger.InfoContext(ctx, "Shutdown signal received. Stopping application...")

	// Stop the bot gracefully, then let running reports finish and their notices go out.
	salonBot.Stop()
	engine.Wait()
	salonBot.Sender().Wait()

	// Log graceful shutdown completion.
	logger.InfoContext(ctx, "Application stopped gracefully.")
}

// setupLogger initializes and returns a logger based on the environment provided.
func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = slog.New(
			slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelDebug,
				AddSource: true,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelInfo,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					return a
				},
			}),
		)
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelWarn,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level:     slog.LevelError,
				AddSource: false,
				ReplaceAttr: func(_ []string, a slog.Attr) slog.Attr {
					if a.Key == slog.TimeKey {
						return slog.Attr{}
					}
					return a
				},
			}),
		)

		log.Error(
			"The env parameter was not specified	 or was invalid. Logging will be minimal, by default.",
			slog.String("available_envs", "local, development, production"))
	}

	return log
}
