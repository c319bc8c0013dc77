package scannermodule

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/sphildreth/melodee/internal/database"
	"github.com/sphildreth/melodee/internal/events"
	"github.com/sphildreth/melodee/internal/logger"
	"github.com/sphildreth/melodee/internal/modules/librarymodule"
	"github.com/sphildreth/melodee/internal/modules/modulemanager"
)

func init() {
	Register()
}

const (
	ModuleID   = "system.scanner"
	ModuleName = "Library Scanner"
)

// Module drives filesystem scans through the catalog assembler.
type Module struct {
	db       *gorm.DB
	eventBus events.EventBus
	scanner  *Scanner
}

// Register registers the scanner module with the module system
func Register() {
	modulemanager.Register(&Module{})
}

func (m *Module) ID() string   { return ModuleID }
func (m *Module) Name() string { return ModuleName }
func (m *Module) Core() bool   { return false }

// Migrate is a no-op; the scanner writes through the catalog schema
func (m *Module) Migrate(db *gorm.DB) error {
	return nil
}

// Init wires the scanner to the library module's write path
func (m *Module) Init() error {
	logger.Info("Initializing scanner module")

	if m.db == nil {
		m.db = database.GetDB()
	}
	if m.eventBus == nil {
		m.eventBus = events.GetGlobalEventBus()
	}

	registered, ok := modulemanager.GetModule(librarymodule.ModuleID)
	if !ok {
		return errors.New("scanner requires the library module")
	}
	libMod, ok := registered.(*librarymodule.Module)
	if !ok {
		return errors.New("scanner requires the library module")
	}

	m.scanner = NewScanner(libMod.Assembler(), libMod.Libraries(), librarymodule.NewScanHistoryRepo(m.db), m.eventBus)
	return nil
}

// Scanner returns the scanner for other modules
func (m *Module) Scanner() *Scanner {
	return m.scanner
}

// RegisterRoutes registers HTTP routes
func (m *Module) RegisterRoutes(router *gin.Engine) {
	router.POST("/api/libraries/:apiKey/scan", m.startScan)
}

// startScan runs a synchronous scan of one library
func (m *Module) startScan(c *gin.Context) {
	var lib database.Library
	if err := m.db.Where("api_key = ?", c.Param("apiKey")).First(&lib).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
		return
	}

	summary, err := m.scanner.ScanLibrary(c.Request.Context(), lib.ID)
	if err != nil {
		if errors.Is(err, database.ErrLocked) {
			c.JSON(http.StatusConflict, gin.H{"error": "A scan is already running for this library"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"scan": summary})
}

// Shutdown gracefully shuts down the module
func (m *Module) Shutdown(ctx context.Context) error {
	return nil
}
