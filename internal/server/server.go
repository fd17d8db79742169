package server

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/velora/medialog/internal/config"
	"github.com/velora/medialog/internal/database"
	"github.com/velora/medialog/internal/events"
	"github.com/velora/medialog/internal/logger"
	"github.com/velora/medialog/internal/modules/modulemanager"

	// Import all modules to trigger their registration
	_ "github.com/velora/medialog/internal/modules/librarymodule"
	_ "github.com/velora/medialog/internal/modules/resolvermodule"
)

var systemEventBus events.EventBus

// EventBusAware is implemented by modules that publish events.
type EventBusAware interface {
	SetEventBus(bus events.EventBus)
}

// SetupRouter configures and returns the main router
func SetupRouter(cfg *config.Config) *gin.Engine {
	r := gin.Default()

	if cfg.Server.EnableCORS {
		r.Use(corsMiddleware())
	}

	if err := initializeEventBus(); err != nil {
		logger.Error("Failed to initialize event bus: %v", err)
	}

	if err := initializeModules(); err != nil {
		logger.Error("Failed to initialize modules: %v", err)
	}

	setupRoutes(r)
	modulemanager.RegisterAllRoutes(r)

	return r
}

// Shutdown stops the shared server components.
func Shutdown(ctx context.Context) {
	if systemEventBus != nil {
		if err := systemEventBus.Stop(ctx); err != nil {
			logger.Warn("Event bus shutdown: %v", err)
		}
	}
}

// EventBus returns the system event bus.
func EventBus() events.EventBus {
	return systemEventBus
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func initializeEventBus() error {
	systemEventBus = events.NewEventBus(events.DefaultEventBusConfig())
	if err := systemEventBus.Start(context.Background()); err != nil {
		return err
	}

	systemEventBus.Publish(events.Event{
		Type:      events.EventSystemStarted,
		Source:    "system",
		Title:     "System started",
		Timestamp: time.Now(),
	})
	return nil
}

func initializeModules() error {
	// Hand the event bus to modules that publish before LoadAll runs
	// their Init, so events from initialization are not lost.
	for _, module := range modulemanager.ListModules() {
		if aware, ok := module.(EventBusAware); ok {
			aware.SetEventBus(systemEventBus)
		}
	}

	return modulemanager.LoadAll(database.GetDB())
}
