package resolvermodule

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

// Module is the cross-provider reference resolution module
type Module struct {
	id          string
	name        string
	version     string
	core        bool
	initialized bool
	db          *gorm.DB
	eventBus    events.EventBus

	rankings *ProviderRankings
	cache    *ResolutionCache
	resolver *Resolver
}

// Auto-register the module when imported
func init() {
	Register()
}

// Register registers this module with the module system
func Register() {
	resolverModule := &Module{
		id:      "system.resolver",
		name:    "Reference Resolver",
		version: "1.0.0",
		core:    true,
	}
	modulemanager.Register(resolverModule)
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

// SetEventBus sets the event bus for publishing resolution events
func (m *Module) SetEventBus(bus events.EventBus) {
	m.eventBus = bus
	if m.resolver != nil {
		m.resolver.bus = bus
	}
}

// Migrate runs database migrations for the module
func (m *Module) Migrate(db *gorm.DB) error {
	m.db = db
	return db.AutoMigrate(&database.ProviderMapping{})
}

// Init initializes the resolver module
func (m *Module) Init() error {
	if m.db == nil {
		m.db = database.GetDB()
	}
	if m.db == nil {
		return fmt.Errorf("resolver module requires a database connection")
	}

	cfg := config.Get()

	logger := hclog.New(&hclog.LoggerOptions{
		Name:  "medialog",
		Level: hclog.LevelFromString(cfg.Logging.Level),
	})

	m.rankings = NewProviderRankings(cfg.Providers)
	m.cache = NewResolutionCache()

	searcher := NewHTTPSearcher(cfg.Resolver.ProviderBaseURLs, cfg.Resolver.SearchTimeout, logger)
	store := NewGormMappingStore(m.db)

	m.resolver = NewResolver(cfg.Resolver, store, m.cache, searcher, searcher, m.rankings, m.eventBus, logger)

	m.initialized = true
	return nil
}

// Resolver exposes the orchestrator to other modules (the library
// module uses it to verify mappings picked during disambiguation).
func (m *Module) Resolver() *Resolver {
	return m.resolver
}

// Rankings exposes the provider ranking table.
func (m *Module) Rankings() *ProviderRankings {
	return m.rankings
}

// RegisterRoutes registers the module's HTTP routes
func (m *Module) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.POST("/resolve", m.handleResolve)
		api.POST("/resolve/confirm", m.handleConfirm)
		api.GET("/resolve/mappings/:source/:id", m.handleListMappings)
		api.DELETE("/resolve/mappings/:source/:id/:provider", m.handleDeleteMapping)
		api.GET("/providers/:category", m.handleProviderTable)
	}
}
