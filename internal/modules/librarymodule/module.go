package librarymodule

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
	ModuleID   = "system.library"
	ModuleName = "Library Catalog"
)

// Module owns the catalog hierarchy: libraries, artists, albums, discs,
// songs, contributors, scan history and the radio station registry.
type Module struct {
	db       *gorm.DB
	eventBus events.EventBus

	libraries *LibraryRepo
	artists   *ArtistRepo
	albums    *AlbumRepo
	songs     *SongRepo
	radios    *RadioStationRepo
	scans     *ScanHistoryRepo
	assembler *Assembler
}

// Register registers the library module with the module system
func Register() {
	modulemanager.Register(&Module{})
}

func (m *Module) ID() string   { return ModuleID }
func (m *Module) Name() string { return ModuleName }
func (m *Module) Core() bool   { return true }

// Migrate creates the catalog schema
func (m *Module) Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&database.Library{},
		&database.Artist{},
		&database.ArtistRelation{},
		&database.Album{},
		&database.AlbumDisc{},
		&database.Song{},
		&database.Contributor{},
		&database.LibraryScanHistory{},
		&database.RadioStation{},
	); err != nil {
		return fmt.Errorf("failed to migrate catalog models: %w", err)
	}
	return nil
}

// Init builds the repositories and the assembler
func (m *Module) Init() error {
	logger.Info("Initializing library module")

	if m.db == nil {
		m.db = database.GetDB()
	}
	if m.eventBus == nil {
		m.eventBus = events.GetGlobalEventBus()
	}

	m.libraries = NewLibraryRepo(m.db)
	m.artists = NewArtistRepo(m.db)
	m.albums = NewAlbumRepo(m.db)
	m.songs = NewSongRepo(m.db)
	m.radios = NewRadioStationRepo(m.db)
	m.scans = NewScanHistoryRepo(m.db)
	m.assembler = NewAssembler(m.db, m.eventBus)
	return nil
}

// Assembler returns the scan write path for external collaborators
func (m *Module) Assembler() *Assembler {
	return m.assembler
}

// Libraries returns the library repository
func (m *Module) Libraries() *LibraryRepo { return m.libraries }

// Artists returns the artist repository
func (m *Module) Artists() *ArtistRepo { return m.artists }

// Albums returns the album repository
func (m *Module) Albums() *AlbumRepo { return m.albums }

// Songs returns the song repository
func (m *Module) Songs() *SongRepo { return m.songs }

// RegisterRoutes registers HTTP routes
func (m *Module) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.GET("/libraries", m.getLibraries)
		api.POST("/libraries", m.createLibrary)
		api.GET("/libraries/:apiKey", m.getLibrary)
		api.DELETE("/libraries/:apiKey", m.deleteLibrary)
		api.GET("/libraries/:apiKey/scans", m.getScanHistory)

		api.GET("/artists/:apiKey", m.getArtist)
		api.GET("/artists/:apiKey/albums", m.getArtistAlbums)
		api.GET("/albums/:apiKey", m.getAlbum)
		api.GET("/songs/:apiKey", m.getSong)

		api.GET("/search", m.search)

		api.GET("/radio-stations", m.getRadioStations)
		api.POST("/radio-stations", m.createRadioStation)
		api.DELETE("/radio-stations/:apiKey", m.deleteRadioStation)
	}
}

// Shutdown gracefully shuts down the module
func (m *Module) Shutdown(ctx context.Context) error {
	return nil
}
