package settingsmodule

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/sphildreth/melodee/internal/database"
)

// listSettings returns all settings, optionally filtered by category
func (m *Module) listSettings(c *gin.Context) {
	var (
		settings []database.Setting
		err      error
	)

	if categoryStr := c.Query("category"); categoryStr != "" {
		category, convErr := strconv.Atoi(categoryStr)
		if convErr != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid category"})
			return
		}
		settings, err = m.store.ListByCategory(c.Request.Context(), category)
	} else {
		settings, err = m.store.All(c.Request.Context())
	}

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"settings": settings,
		"count":    len(settings),
	})
}

// getSetting returns one setting by key
func (m *Module) getSetting(c *gin.Context) {
	setting, err := m.store.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Setting not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"setting": setting})
}

// putSetting upserts a setting value
func (m *Module) putSetting(c *gin.Context) {
	var req struct {
		Value string `json:"value"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	key := c.Param("key")
	if err := m.store.Set(c.Request.Context(), key, req.Value); err != nil {
		if errors.Is(err, database.ErrLocked) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Setting is locked"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Setting updated", "key": key})
}

// deleteSetting removes a setting
func (m *Module) deleteSetting(c *gin.Context) {
	key := c.Param("key")
	if err := m.store.Delete(c.Request.Context(), key); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Setting not found"})
			return
		}
		if errors.Is(err, database.ErrLocked) {
			c.JSON(http.StatusForbidden, gin.H{"error": "Setting is locked"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Setting deleted", "key": key})
}
