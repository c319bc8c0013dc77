// Package server assembles the HTTP surface: router, middleware, module
// routes and the health endpoint.
package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sphildreth/melodee/internal/config"
	"github.com/sphildreth/melodee/internal/database"
	"github.com/sphildreth/melodee/internal/middleware"
	"github.com/sphildreth/melodee/internal/modules/modulemanager"
)

// SetupRouter configures and returns the main router. Modules must be
// loaded before this is called; their routes are registered here.
func SetupRouter() *gin.Engine {
	if config.Get().Logging.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.ErrorLogger())

	r.GET("/api/health", healthCheck)

	modulemanager.RegisterRoutes(r)
	return r
}

// healthCheck reports process and database liveness
func healthCheck(c *gin.Context) {
	db := database.GetDB()
	if db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "starting"})
		return
	}
	sqlDB, err := db.DB()
	if err != nil || sqlDB.Ping() != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
