package usermodule

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
	ModuleID   = "system.users"
	ModuleName = "User Activity"
)

// Module owns users and everything they do with the catalog: stars,
// ratings, plays, playlists, shares, bookmarks and the play queue.
type Module struct {
	db       *gorm.DB
	eventBus events.EventBus

	users     *UserRepo
	playlists *PlaylistRepo
	shares    *ShareRepo
	players   *PlayerRepo
	activity  *ActivityTracker
}

// Register registers the user module with the module system
func Register() {
	modulemanager.Register(&Module{})
}

func (m *Module) ID() string   { return ModuleID }
func (m *Module) Name() string { return ModuleName }
func (m *Module) Core() bool   { return true }

// Migrate creates the user-side schema
func (m *Module) Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&database.User{},
		&database.UserArtist{},
		&database.UserAlbum{},
		&database.UserSong{},
		&database.Playlist{},
		&database.PlaylistSong{},
		&database.PlayQueue{},
		&database.Scrobble{},
		&database.Bookmark{},
		&database.Share{},
		&database.Player{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate user models: %w", err)
	}
	return nil
}

// Init builds the repositories and the activity tracker
func (m *Module) Init() error {
	logger.Info("Initializing user module")

	if m.db == nil {
		m.db = database.GetDB()
	}
	if m.eventBus == nil {
		m.eventBus = events.GetGlobalEventBus()
	}

	m.users = NewUserRepo(m.db, m.eventBus)
	m.playlists = NewPlaylistRepo(m.db)
	m.shares = NewShareRepo(m.db)
	m.players = NewPlayerRepo(m.db)
	m.activity = NewActivityTracker(m.db, m.eventBus)
	return nil
}

// Users returns the user repository for other modules
func (m *Module) Users() *UserRepo { return m.users }

// Playlists returns the playlist repository for other modules
func (m *Module) Playlists() *PlaylistRepo { return m.playlists }

// Activity returns the activity tracker for other modules
func (m *Module) Activity() *ActivityTracker { return m.activity }

// Shutdown gracefully shuts down the module
func (m *Module) Shutdown(ctx context.Context) error {
	return nil
}

// RegisterRoutes registers HTTP routes
func (m *Module) RegisterRoutes(router *gin.Engine) {
	users := router.Group("/api/users")
	{
		users.GET("", m.getUsers)
		users.POST("", m.createUser)
		users.GET("/:apiKey", m.getUser)
		users.DELETE("/:apiKey", m.deleteUser)
		users.GET("/:apiKey/playlists", m.getUserPlaylists)
		users.GET("/:apiKey/queue", m.getQueue)
		users.POST("/:apiKey/queue", m.enqueueSong)
		users.PUT("/:apiKey/queue/current", m.setCurrentSong)
		users.POST("/:apiKey/plays", m.recordPlay)
		users.PUT("/:apiKey/star", m.star)
		users.DELETE("/:apiKey/star", m.unstar)
		users.PUT("/:apiKey/rating", m.setRating)
		users.PUT("/:apiKey/bookmarks", m.saveBookmark)
	}

	playlists := router.Group("/api/playlists")
	{
		playlists.POST("", m.createPlaylist)
		playlists.GET("/:apiKey", m.getPlaylist)
		playlists.DELETE("/:apiKey", m.deletePlaylist)
		playlists.POST("/:apiKey/songs", m.addPlaylistSong)
		playlists.DELETE("/:apiKey/songs/:songApiKey", m.removePlaylistSong)
	}

	shares := router.Group("/api/shares")
	{
		shares.POST("", m.createShare)
		shares.GET("/:apiKey", m.visitShare)
		shares.DELETE("/:apiKey", m.deleteShare)
	}
}
