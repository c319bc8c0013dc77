package settingsmodule

import (
	"context"
	"fmt"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sphildreth/melodee/internal/database"
	"github.com/sphildreth/melodee/internal/events"
	"github.com/sphildreth/melodee/internal/logger"
	"github.com/sphildreth/melodee/internal/modules/modulemanager"
)

func init() {
	Register()
}

const (
	ModuleID   = "system.settings"
	ModuleName = "Settings Store"
)

// Module provides the instance settings store
type Module struct {
	db       *gorm.DB
	eventBus events.EventBus
	store    *Store
}

// Register registers the settings module with the module system
func Register() {
	modulemanager.Register(&Module{})
}

func (m *Module) ID() string   { return ModuleID }
func (m *Module) Name() string { return ModuleName }
func (m *Module) Core() bool   { return true }

// Migrate creates the settings schema
func (m *Module) Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&database.Setting{}); err != nil {
		return fmt.Errorf("failed to migrate settings models: %w", err)
	}
	return nil
}

// Init builds the store and seeds declared defaults
func (m *Module) Init() error {
	logger.Info("Initializing settings module")

	if m.db == nil {
		m.db = database.GetDB()
	}
	if m.eventBus == nil {
		m.eventBus = events.GetGlobalEventBus()
	}

	m.store = NewStore(m.db, m.eventBus)
	if err := m.store.SeedDefaults(context.Background()); err != nil {
		return fmt.Errorf("failed to seed default settings: %w", err)
	}
	return nil
}

// Store returns the settings store for other modules
func (m *Module) Store() *Store {
	return m.store
}

// RegisterRoutes registers HTTP routes
func (m *Module) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/settings")
	{
		api.GET("", m.listSettings)
		api.GET("/:key", m.getSetting)
		api.PUT("/:key", m.putSetting)
		api.DELETE("/:key", m.deleteSetting)
	}
}

// Shutdown gracefully shuts down the module
func (m *Module) Shutdown(ctx context.Context) error {
	return nil
}
