package librarymodule

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/hashicorp/go-hclog"
	"gorm.io/gorm"

	"github.com/velora/medialog/internal/config"
	"github.com/velora/medialog/internal/database"
	"github.com/velora/medialog/internal/events"
	"github.com/velora/medialog/internal/modules/modulemanager"
)

// Module is the library management module
type Module struct {
	id          string
	name        string
	version     string
	core        bool
	initialized bool
	db          *gorm.DB
	eventBus    events.EventBus

	manager *Manager
}

// Auto-register the module when imported
func init() {
	Register()
}

// Register registers this module with the module system
func Register() {
	libraryModule := &Module{
		id:      "system.library",
		name:    "Library Manager",
		version: "1.0.0",
		core:    true,
	}
	modulemanager.Register(libraryModule)
}

// ID returns the module ID
func (m *Module) ID() string {
	return m.id
}

// Name returns the module name
func (m *Module) Name() string {
	return m.name
}

// Core returns whether this is a core module
func (m *Module) Core() bool {
	return m.core
}

// SetEventBus sets the event bus for publishing library events
func (m *Module) SetEventBus(bus events.EventBus) {
	m.eventBus = bus
	if m.manager != nil {
		m.manager.eventBus = bus
	}
}

// Migrate runs database migrations for the module
func (m *Module) Migrate(db *gorm.DB) error {
	m.db = db
	return db.AutoMigrate(&database.User{}, &database.LibraryEntry{}, &database.ReferenceAlias{})
}

// Init initializes the library module
func (m *Module) Init() error {
	if m.db == nil {
		m.db = database.GetDB()
	}
	if m.db == nil {
		return fmt.Errorf("library module requires a database connection")
	}

	cfg := config.Get()
	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "medialog",
		Level: hclog.LevelFromString(cfg.Logging.Level),
	})

	m.manager = NewManager(m.db, m.eventBus, logger,
		cfg.Resolver.DuplicateDetectFloor, cfg.Resolver.DuplicateMatchFloor)

	m.initialized = true
	return nil
}

// Manager exposes the library manager to other modules.
func (m *Module) Manager() *Manager {
	return m.manager
}

// RegisterRoutes registers the module's HTTP routes
func (m *Module) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.GET("/library", m.handleListEntries)
		api.POST("/library", m.handleAddEntry)
		api.GET("/library/conflicts", m.handleListConflicts)
		api.POST("/library/conflicts/:id", m.handleResolveConflict)
	}
}
