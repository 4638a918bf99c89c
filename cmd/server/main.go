// cmd/server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"rf-serial-service/internal/config"
	"rf-serial-service/internal/handler"
	"rf-serial-service/internal/model"
	"rf-serial-service/internal/protocol"
	"rf-serial-service/internal/routes"
	"rf-serial-service/internal/service"
	"rf-serial-service/internal/utils"
)

// Application represents the main application
type Application struct {
	config   *config.Config
	logger   *zap.Logger
	server   *http.Server
	manager  *service.ConnectionManager
	eventBus *handler.EventBus
}

func main() {
	app, err := NewApplication()
	if err != nil {
		fmt.Printf("Failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	if err := app.Start(); err != nil {
		app.logger.Fatal("Failed to start application", zap.Error(err))
	}
}

// NewApplication creates a new application instance
func NewApplication() (*Application, error) {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	// Initialize logger
	logger, err := utils.NewLogger(&cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	serviceLogger := utils.NewServiceLogger(logger, "rf-serial-service")
	serviceLogger.LogServiceStart(cfg.App.Version, cfg)

	app := &Application{
		config: cfg,
		logger: logger,
	}

	app.initializeEventBus()
	app.initializeConnectionManager()

	if err := app.initializeServer(); err != nil {
		return nil, fmt.Errorf("failed to initialize server: %w", err)
	}

	return app, nil
}

// initializeEventBus creates the status event bus
func (app *Application) initializeEventBus() {
	app.eventBus = handler.NewEventBus(app.logger)
	go app.eventBus.Start()

	app.logger.Info("Event bus initialized")
}

// initializeConnectionManager creates the serial connection manager
// and wires its status callback into the event bus
func (app *Application) initializeConnectionManager() {
	app.manager = service.NewConnectionManager(
		app.config,
		protocol.NewSerialTransport,
		app.logger,
	)

	app.manager.SetStatusCallback(func(status model.ConnectionStatus, message string) {
		app.eventBus.Publish(model.StatusEvent{
			Status:    status,
			Message:   message,
			Port:      app.manager.Port(),
			Timestamp: time.Now(),
		})
	})

	app.logger.Info("Connection manager initialized",
		zap.String("port", app.config.Serial.Port),
		zap.Int("baud_rate", app.config.Serial.BaudRate),
	)
}

// initializeServer sets up HTTP server and routes
func (app *Application) initializeServer() error {
	routerManager := routes.NewRouter(
		app.config,
		app.logger,
		app.manager,
		app.eventBus,
	)

	router := routerManager.SetupRouter()

	app.server = &http.Server{
		Addr:         app.config.GetServerAddr(),
		Handler:      router,
		ReadTimeout:  app.config.Server.ReadTimeout,
		WriteTimeout: app.config.Server.WriteTimeout,
		IdleTimeout:  app.config.Server.IdleTimeout,
	}

	app.logger.Info("HTTP server initialized",
		zap.String("address", app.config.GetServerAddr()),
	)

	return nil
}

// connectAtStartup attempts the initial serial connection when the
// resolved configuration asks for it. A failure is not fatal: the
// operator can pick a port and retry through the API.
func (app *Application) connectAtStartup() {
	if !app.config.Serial.AutoConnect {
		app.logger.Info("Auto-connect disabled, waiting for port selection")
		return
	}

	if err := app.manager.Connect(); err != nil {
		app.logger.Warn("Initial connection failed",
			zap.String("port", app.config.Serial.Port),
			zap.String("reason", app.manager.LastError()),
		)
	}
}

// waitForShutdown waits for shutdown signal and performs graceful shutdown
func (app *Application) waitForShutdown() {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quit
	app.logger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	app.shutdown()
}

// shutdown performs graceful shutdown
func (app *Application) shutdown() {
	serviceLogger := utils.NewServiceLogger(app.logger, "rf-serial-service")
	serviceLogger.LogServiceStop("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.server.Shutdown(ctx); err != nil {
		app.logger.Error("HTTP server shutdown error", zap.Error(err))
	} else {
		app.logger.Info("HTTP server stopped")
	}

	// Release the serial port
	app.manager.Disconnect()
	app.logger.Info("Serial port released")

	app.eventBus.Stop()

	if err := utils.CloseLogger(app.logger); err != nil {
		fmt.Printf("Logger close error: %v\n", err)
	}

	app.logger.Info("Application shutdown completed")
}

func (app *Application) Start() error {
	// Start server in goroutine
	go func() {
		app.logger.Info("Starting HTTP server",
			zap.String("address", app.server.Addr),
		)

		if err := app.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			app.logger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// Attempt the initial serial connection
	app.connectAtStartup()

	// Wait for interrupt signal
	app.waitForShutdown()

	return nil
}
