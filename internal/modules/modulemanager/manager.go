// Package modulemanager wires feature modules into the application
// lifecycle: registration, schema migration, initialization, route
// registration and shutdown.
package modulemanager

import (
	"context"
	"fmt"
	"sync"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sphildreth/melodee/internal/logger"
)

// Module defines the interface that all modules must implement
type Module interface {
	ID() string                // Unique identifier for the module
	Name() string              // Display name for the module
	Core() bool                // Whether this is a core module (cannot be disabled)
	Migrate(db *gorm.DB) error // Run database migrations
	Init() error               // Initialize the module
}

// RouteRegistrar is an optional interface for modules that register routes
type RouteRegistrar interface {
	RegisterRoutes(router *gin.Engine)
}

// Shutdowner is an optional interface for modules with shutdown cleanup
type Shutdowner interface {
	Shutdown(ctx context.Context) error
}

// ModuleRegistry manages module registration and initialization
type ModuleRegistry struct {
	modules     []Module
	byID        map[string]Module
	mu          sync.RWMutex
	initialized bool
}

// Registry is the global module registry
var Registry = &ModuleRegistry{
	byID: make(map[string]Module),
}

// Register adds a module to the registry
func Register(m Module) {
	Registry.Register(m)
}

// Register adds a module to the registry. Registration order is
// initialization order.
func (r *ModuleRegistry) Register(m Module) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		logger.Warn("Module registered after initialization", "module", m.ID())
	}
	if _, exists := r.byID[m.ID()]; exists {
		logger.Warn("Module registered twice, ignoring", "module", m.ID())
		return
	}

	r.modules = append(r.modules, m)
	r.byID[m.ID()] = m
	logger.Info("Module registered", "module", m.ID(), "name", m.Name())
}

// LoadAll migrates and initializes all registered modules
func LoadAll(db *gorm.DB) error {
	return Registry.LoadAll(db)
}

// LoadAll migrates and initializes all registered modules in
// registration order.
func (r *ModuleRegistry) LoadAll(db *gorm.DB) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.initialized {
		logger.Warn("Module system already initialized")
		return nil
	}

	logger.Info("Loading modules", "count", len(r.modules))
	for i, module := range r.modules {
		logger.Info("Initializing module", "index", i+1, "total", len(r.modules), "module", module.Name())

		if err := module.Migrate(db); err != nil {
			return fmt.Errorf("failed to migrate %s: %w", module.Name(), err)
		}
		if err := module.Init(); err != nil {
			return fmt.Errorf("failed to initialize %s: %w", module.Name(), err)
		}
	}

	r.initialized = true
	return nil
}

// GetModule returns a module by ID
func GetModule(id string) (Module, bool) {
	return Registry.GetModule(id)
}

// GetModule returns a module by ID
func (r *ModuleRegistry) GetModule(id string) (Module, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	module, exists := r.byID[id]
	return module, exists
}

// ListModules returns all registered modules
func ListModules() []Module {
	return Registry.ListModules()
}

// ListModules returns all registered modules in registration order
func (r *ModuleRegistry) ListModules() []Module {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Module, len(r.modules))
	copy(out, r.modules)
	return out
}

// RegisterRoutes registers routes for all modules that implement RouteRegistrar
func RegisterRoutes(router *gin.Engine) {
	Registry.RegisterRoutes(router)
}

// RegisterRoutes registers routes for all modules that implement RouteRegistrar
func (r *ModuleRegistry) RegisterRoutes(router *gin.Engine) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, module := range r.modules {
		if registrar, ok := module.(RouteRegistrar); ok {
			logger.Info("Registering routes", "module", module.Name())
			registrar.RegisterRoutes(router)
		}
	}
}

// ShutdownAll shuts modules down in reverse registration order
func ShutdownAll(ctx context.Context) {
	Registry.ShutdownAll(ctx)
}

// ShutdownAll shuts modules down in reverse registration order
func (r *ModuleRegistry) ShutdownAll(ctx context.Context) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for i := len(r.modules) - 1; i >= 0; i-- {
		if s, ok := r.modules[i].(Shutdowner); ok {
			if err := s.Shutdown(ctx); err != nil {
				logger.Error("Module shutdown failed", "module", r.modules[i].ID(), "error", err)
			}
		}
	}
}
