package usermodule

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sphildreth/melodee/internal/database"
)

// respondError maps the repository error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, database.ErrConstraintViolation):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, database.ErrForeignKeyViolation):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, database.ErrLocked):
		c.JSON(http.StatusForbidden, gin.H{"error": "Entity is locked"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// resolveUser turns the path apiKey into a User row.
func (m *Module) resolveUser(c *gin.Context) (*database.User, bool) {
	user, err := m.users.GetByAPIKey(c.Request.Context(), c.Param("apiKey"))
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return user, true
}

// resolveTarget maps (target type, external key) to an internal id.
func (m *Module) resolveTarget(ctx context.Context, target TargetType, apiKey string) (uint, error) {
	var id uint
	var err error
	switch target {
	case TargetArtist:
		var artist database.Artist
		err = m.db.WithContext(ctx).Select("id").Where("api_key = ?", apiKey).First(&artist).Error
		id = artist.ID
	case TargetAlbum:
		var album database.Album
		err = m.db.WithContext(ctx).Select("id").Where("api_key = ?", apiKey).First(&album).Error
		id = album.ID
	case TargetSong:
		var song database.Song
		err = m.db.WithContext(ctx).Select("id").Where("api_key = ?", apiKey).First(&song).Error
		id = song.ID
	default:
		return 0, fmt.Errorf("%w: unknown target type %q", database.ErrConstraintViolation, target)
	}
	if err != nil {
		return 0, database.TranslateError(err)
	}
	return id, nil
}

func (m *Module) resolveSong(ctx context.Context, apiKey string) (*database.Song, error) {
	var song database.Song
	if err := m.db.WithContext(ctx).Where("api_key = ?", apiKey).First(&song).Error; err != nil {
		return nil, database.TranslateError(err)
	}
	return &song, nil
}

func encryptPassword(plain string) string {
	sum := sha256.Sum256([]byte(plain))
	return hex.EncodeToString(sum[:])
}

// getUsers returns all users
func (m *Module) getUsers(c *gin.Context) {
	users, err := m.users.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"users": users,
		"count": len(users),
	})
}

// createUser creates a new user account
func (m *Module) createUser(c *gin.Context) {
	var req struct {
		UserName string `json:"user_name" binding:"required"`
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
		IsAdmin  bool   `json:"is_admin"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: user_name, email and password are required"})
		return
	}

	user := &database.User{
		PasswordEncrypted: encryptPassword(req.Password),
		IsAdmin:           req.IsAdmin,
	}
	user.SetUserName(req.UserName)
	user.SetEmail(req.Email)
	if err := m.users.Create(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": user})
}

// getUser returns one user by external key
func (m *Module) getUser(c *gin.Context) {
	user, ok := m.resolveUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}

// deleteUser removes a user and cascades to all owned activity
func (m *Module) deleteUser(c *gin.Context) {
	user, ok := m.resolveUser(c)
	if !ok {
		return
	}
	if err := m.users.Delete(c.Request.Context(), user.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

// getUserPlaylists returns a user's playlists
func (m *Module) getUserPlaylists(c *gin.Context) {
	user, ok := m.resolveUser(c)
	if !ok {
		return
	}
	playlists, err := m.playlists.ListForUser(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"playlists": playlists,
		"count":     len(playlists),
	})
}

// getQueue returns the user's play queue in position order
func (m *Module) getQueue(c *gin.Context) {
	user, ok := m.resolveUser(c)
	if !ok {
		return
	}
	entries, err := m.activity.Queue(c.Request.Context(), user.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"queue": entries,
		"count": len(entries),
	})
}

// enqueueSong appends a song to the user's play queue
func (m *Module) enqueueSong(c *gin.Context) {
	user, ok := m.resolveUser(c)
	if !ok {
		return
	}
	var req struct {
		SongAPIKey string `json:"song_api_key" binding:"required"`
		ChangedBy  string `json:"changed_by"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: song_api_key is required"})
		return
	}

	song, err := m.resolveSong(c.Request.Context(), req.SongAPIKey)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := m.activity.Enqueue(c.Request.Context(), user.ID, song.ID, req.ChangedBy); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Song queued"})
}

// setCurrentSong flips the queue cursor to the given song
func (m *Module) setCurrentSong(c *gin.Context) {
	user, ok := m.resolveUser(c)
	if !ok {
		return
	}
	var req struct {
		SongAPIKey string `json:"song_api_key" binding:"required"`
		ChangedBy  string `json:"changed_by"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: song_api_key is required"})
		return
	}

	song, err := m.resolveSong(c.Request.Context(), req.SongAPIKey)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := m.activity.SetCurrentSong(c.Request.Context(), user.ID, song.ID, req.ChangedBy); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Current song updated"})
}

// recordPlay records a play and, when the user scrobbles, relays it
func (m *Module) recordPlay(c *gin.Context) {
	user, ok := m.resolveUser(c)
	if !ok {
		return
	}
	var req struct {
		SongAPIKey string `json:"song_api_key" binding:"required"`
		ServiceURL string `json:"service_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: song_api_key is required"})
		return
	}

	song, err := m.resolveSong(c.Request.Context(), req.SongAPIKey)
	if err != nil {
		respondError(c, err)
		return
	}

	now := time.Now().UTC()
	if err := m.activity.RecordPlay(c.Request.Context(), user.ID, song.ID, now); err != nil {
		respondError(c, err)
		return
	}

	// The scrobble write is independent; its failure never unwinds the
	// locally recorded play.
	scrobbled := false
	if user.IsScrobblingEnabled && req.ServiceURL != "" {
		if err := m.activity.RecordScrobble(c.Request.Context(), user.ID, song.ID, req.ServiceURL, now); err == nil {
			scrobbled = true
		}
	}
	c.JSON(http.StatusOK, gin.H{"message": "Play recorded", "scrobbled": scrobbled})
}

type activityTargetRequest struct {
	Target       string `json:"target" binding:"required"`
	TargetAPIKey string `json:"target_api_key" binding:"required"`
	Rating       int    `json:"rating"`
}

// star marks an artist, album or song starred for the user
func (m *Module) star(c *gin.Context) {
	m.applyStar(c, true)
}

// unstar clears the star on an artist, album or song
func (m *Module) unstar(c *gin.Context) {
	m.applyStar(c, false)
}

func (m *Module) applyStar(c *gin.Context, starred bool) {
	user, ok := m.resolveUser(c)
	if !ok {
		return
	}
	var req activityTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: target and target_api_key are required"})
		return
	}

	target := TargetType(req.Target)
	targetID, err := m.resolveTarget(c.Request.Context(), target, req.TargetAPIKey)
	if err != nil {
		respondError(c, err)
		return
	}

	if starred {
		err = m.activity.Star(c.Request.Context(), user.ID, targetID, target)
	} else {
		err = m.activity.Unstar(c.Request.Context(), user.ID, targetID, target)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Star updated"})
}

// setRating stores a 0..5 rating for the user on a target
func (m *Module) setRating(c *gin.Context) {
	user, ok := m.resolveUser(c)
	if !ok {
		return
	}
	var req activityTargetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: target and target_api_key are required"})
		return
	}

	target := TargetType(req.Target)
	targetID, err := m.resolveTarget(c.Request.Context(), target, req.TargetAPIKey)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := m.activity.SetRating(c.Request.Context(), user.ID, targetID, target, req.Rating); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Rating updated"})
}

// saveBookmark upserts the user's resume position on a song
func (m *Module) saveBookmark(c *gin.Context) {
	user, ok := m.resolveUser(c)
	if !ok {
		return
	}
	var req struct {
		SongAPIKey string  `json:"song_api_key" binding:"required"`
		Position   float64 `json:"position"`
		Comment    string  `json:"comment"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: song_api_key is required"})
		return
	}

	song, err := m.resolveSong(c.Request.Context(), req.SongAPIKey)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := m.activity.SaveBookmark(c.Request.Context(), user.ID, song.ID, req.Position, req.Comment); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Bookmark saved"})
}

// createPlaylist creates a playlist for a user
func (m *Module) createPlaylist(c *gin.Context) {
	var req struct {
		UserAPIKey  string `json:"user_api_key" binding:"required"`
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		IsPublic    bool   `json:"is_public"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: user_api_key and name are required"})
		return
	}

	user, err := m.users.GetByAPIKey(c.Request.Context(), req.UserAPIKey)
	if err != nil {
		respondError(c, err)
		return
	}

	playlist := &database.Playlist{
		UserID:   user.ID,
		Name:     req.Name,
		IsPublic: req.IsPublic,
	}
	playlist.Description = req.Description
	if err := m.playlists.Create(c.Request.Context(), playlist); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"playlist": playlist})
}

// getPlaylist returns a playlist with its membership in order
func (m *Module) getPlaylist(c *gin.Context) {
	playlist, err := m.playlists.GetByAPIKey(c.Request.Context(), c.Param("apiKey"))
	if err != nil {
		respondError(c, err)
		return
	}
	songs, err := m.playlists.Songs(c.Request.Context(), playlist.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"playlist": playlist,
		"songs":    songs,
	})
}

// deletePlaylist removes a playlist and its membership rows
func (m *Module) deletePlaylist(c *gin.Context) {
	playlist, err := m.playlists.GetByAPIKey(c.Request.Context(), c.Param("apiKey"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := m.playlists.Delete(c.Request.Context(), playlist.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Playlist deleted"})
}

// addPlaylistSong appends a song at the end of a playlist
func (m *Module) addPlaylistSong(c *gin.Context) {
	playlist, err := m.playlists.GetByAPIKey(c.Request.Context(), c.Param("apiKey"))
	if err != nil {
		respondError(c, err)
		return
	}
	var req struct {
		SongAPIKey string `json:"song_api_key" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: song_api_key is required"})
		return
	}

	song, err := m.resolveSong(c.Request.Context(), req.SongAPIKey)
	if err != nil {
		respondError(c, err)
		return
	}
	if err := m.playlists.AddSong(c.Request.Context(), playlist.ID, song.ID); err != nil {
		respondError(c, err)
		return
	}
	if err := m.playlists.RecomputeAggregates(c.Request.Context(), playlist.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Song added"})
}

// removePlaylistSong removes a song from a playlist
func (m *Module) removePlaylistSong(c *gin.Context) {
	playlist, err := m.playlists.GetByAPIKey(c.Request.Context(), c.Param("apiKey"))
	if err != nil {
		respondError(c, err)
		return
	}
	song, err := m.resolveSong(c.Request.Context(), c.Param("songApiKey"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := m.playlists.RemoveSong(c.Request.Context(), playlist.ID, song.ID); err != nil {
		respondError(c, err)
		return
	}
	if err := m.playlists.RecomputeAggregates(c.Request.Context(), playlist.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Song removed"})
}

// createShare creates a time-limited external link to a set of songs
func (m *Module) createShare(c *gin.Context) {
	var req struct {
		UserAPIKey     string   `json:"user_api_key" binding:"required"`
		SongAPIKeys    []string `json:"song_api_keys" binding:"required"`
		Description    string   `json:"description"`
		ExpiresInHours int      `json:"expires_in_hours"`
		IsDownloadable bool     `json:"is_downloadable"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: user_api_key and song_api_keys are required"})
		return
	}

	user, err := m.users.GetByAPIKey(c.Request.Context(), req.UserAPIKey)
	if err != nil {
		respondError(c, err)
		return
	}

	songIDs := make(database.StringList, 0, len(req.SongAPIKeys))
	for _, key := range req.SongAPIKeys {
		song, err := m.resolveSong(c.Request.Context(), key)
		if err != nil {
			respondError(c, err)
			return
		}
		songIDs = append(songIDs, song.APIKey)
	}

	expiresIn := req.ExpiresInHours
	if expiresIn <= 0 {
		expiresIn = 7 * 24
	}
	share := &database.Share{
		UserID:         user.ID,
		SongIDs:        songIDs,
		ExpiresAt:      time.Now().UTC().Add(time.Duration(expiresIn) * time.Hour),
		IsDownloadable: req.IsDownloadable,
	}
	share.Description = req.Description
	if err := m.shares.Create(c.Request.Context(), share); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"share": share})
}

// visitShare resolves a share link, rejecting expired ones
func (m *Module) visitShare(c *gin.Context) {
	share, err := m.shares.GetByAPIKey(c.Request.Context(), c.Param("apiKey"))
	if err != nil {
		respondError(c, err)
		return
	}
	if share.IsExpired(time.Now().UTC()) {
		c.JSON(http.StatusGone, gin.H{"error": "Share has expired"})
		return
	}
	if err := m.shares.RecordVisit(c.Request.Context(), share.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"share": share})
}

// deleteShare removes a share link
func (m *Module) deleteShare(c *gin.Context) {
	share, err := m.shares.GetByAPIKey(c.Request.Context(), c.Param("apiKey"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := m.shares.Delete(c.Request.Context(), share.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Share deleted"})
}
