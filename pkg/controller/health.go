// Package controller provides the HTTP surface of the transcript API
// service: health checks, API documentation and static content.
package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/yttools/transcript-api/pkg/config"
	"github.com/yttools/transcript-api/pkg/server"
)

const defaultMountPath = "/api"

// HealthResponse is the payload returned by the health endpoints.
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// HealthControllerConfig defines the configuration for the health
// controller. Path is the mount point, defaulting to /api.
type HealthControllerConfig struct {
	Path string `yaml:"path,omitempty"`
}

// Validate accepts any configuration; an empty path falls back to /api.
func (h HealthControllerConfig) Validate() error {
	return nil
}

// NewHealthController creates the controller serving the health endpoints.
func NewHealthController(controllerConfig config.RawConfig, _ server.ControllerContext) (server.IController, error) {
	cfg, err := config.To[HealthControllerConfig](controllerConfig)
	if err != nil {
		return nil, err
	}

	path := cfg.Path
	if path == "" {
		path = defaultMountPath
	}

	log.Info().Str("path", path).Msg("Health endpoints configured")
	return &health{path: path}, nil
}

type health struct {
	path string
}

// Bind registers the health routes: the root of the mount path answers the
// basic liveness probe and /health the detailed one.
func (h *health) Bind(engine *gin.Engine) error {
	group := engine.Group(h.path)
	group.GET("", func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{
			Status:  "healthy",
			Message: "YouTube Transcript API is running",
		})
	})
	group.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{
			Status:  "healthy",
			Message: "Service is running. YouTube Transcript API ready.",
		})
	})
	return nil
}

// Close performs no cleanup; the controller holds no resources.
func (h *health) Close() error {
	return nil
}
