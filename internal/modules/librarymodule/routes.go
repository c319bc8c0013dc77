package librarymodule

import (
	"errors"
	"net/http"
	"strconv"

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

// getLibraries returns all libraries
func (m *Module) getLibraries(c *gin.Context) {
	libraries, err := m.libraries.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"libraries": libraries,
		"count":     len(libraries),
	})
}

// createLibrary creates a new library
func (m *Module) createLibrary(c *gin.Context) {
	var req struct {
		Path string `json:"path" binding:"required"`
		Type string `json:"type" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: path and type are required"})
		return
	}

	lib := &database.Library{Path: req.Path, Type: database.LibraryType(req.Type)}
	if err := m.libraries.Create(c.Request.Context(), lib); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"library": lib})
}

// getLibrary returns one library by external key
func (m *Module) getLibrary(c *gin.Context) {
	lib, err := m.libraries.GetByAPIKey(c.Request.Context(), c.Param("apiKey"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"library": lib})
}

// deleteLibrary deletes a library and its whole catalog subtree
func (m *Module) deleteLibrary(c *gin.Context) {
	lib, err := m.libraries.GetByAPIKey(c.Request.Context(), c.Param("apiKey"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := m.libraries.Delete(c.Request.Context(), lib.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Library deleted"})
}

// getScanHistory returns a library's scan audit log, newest first
func (m *Module) getScanHistory(c *gin.Context) {
	lib, err := m.libraries.GetByAPIKey(c.Request.Context(), c.Param("apiKey"))
	if err != nil {
		respondError(c, err)
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	entries, err := m.scans.ListForLibrary(c.Request.Context(), lib.ID, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"scans": entries,
		"count": len(entries),
	})
}

// getArtist returns one artist by external key
func (m *Module) getArtist(c *gin.Context) {
	artist, err := m.artists.GetByAPIKey(c.Request.Context(), c.Param("apiKey"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"artist": artist})
}

// getArtistAlbums returns an artist's albums in release order
func (m *Module) getArtistAlbums(c *gin.Context) {
	artist, err := m.artists.GetByAPIKey(c.Request.Context(), c.Param("apiKey"))
	if err != nil {
		respondError(c, err)
		return
	}
	albums, err := m.albums.ListForArtist(c.Request.Context(), artist.ID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"albums": albums,
		"count":  len(albums),
	})
}

// getAlbum returns one album by external key
func (m *Module) getAlbum(c *gin.Context) {
	album, err := m.albums.GetByAPIKey(c.Request.Context(), c.Param("apiKey"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"album": album})
}

// getSong returns one song by external key
func (m *Module) getSong(c *gin.Context) {
	song, err := m.songs.GetByAPIKey(c.Request.Context(), c.Param("apiKey"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"song": song})
}

// search runs a normalized-name search over artists, albums and songs
func (m *Module) search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing query parameter q"})
		return
	}
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	ctx := c.Request.Context()
	artists, err := m.artists.Search(ctx, q, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	albums, err := m.albums.Search(ctx, q, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	songs, err := m.songs.Search(ctx, q, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"artists": artists,
		"albums":  albums,
		"songs":   songs,
	})
}

// getRadioStations returns the radio station registry
func (m *Module) getRadioStations(c *gin.Context) {
	stations, err := m.radios.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"stations": stations,
		"count":    len(stations),
	})
}

// createRadioStation adds a station to the registry
func (m *Module) createRadioStation(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		StreamURL   string `json:"stream_url" binding:"required"`
		HomepageURL string `json:"homepage_url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: name and stream_url are required"})
		return
	}

	station := &database.RadioStation{
		Name:        req.Name,
		StreamURL:   req.StreamURL,
		HomepageURL: req.HomepageURL,
	}
	if err := m.radios.Create(c.Request.Context(), station); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"station": station})
}

// deleteRadioStation removes a station from the registry
func (m *Module) deleteRadioStation(c *gin.Context) {
	station, err := m.radios.GetByAPIKey(c.Request.Context(), c.Param("apiKey"))
	if err != nil {
		respondError(c, err)
		return
	}
	if err := m.radios.Delete(c.Request.Context(), station.ID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Radio station deleted"})
}
