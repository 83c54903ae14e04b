package server

import (
	"github.com/gin-gonic/gin"

	"github.com/yttools/transcript-api/pkg/apikey"
	"github.com/yttools/transcript-api/pkg/config"
)

// IController defines the interface that all controllers must implement.
// Controllers are modular components plugged into the server to provide a
// slice of the HTTP surface: health checks, API documentation, static
// content or custom application logic.
type IController interface {
	// Bind registers the controller's routes with the provided Gin engine.
	// It is called once during server startup.
	Bind(engine *gin.Engine) error

	// Close releases any resources held by the controller. It is called
	// during graceful shutdown.
	Close() error
}

// ControllerContext provides runtime dependencies to controllers during
// instantiation, separating pure YAML configuration from values computed at
// startup such as the resolved API key credential.
type ControllerContext struct {
	// ServerConfig contains the server section of the config file.
	ServerConfig config.ServerConfig

	// Credential is the API key resolved at startup. It may be absent;
	// controllers must not treat that as an error.
	Credential apikey.Credential
}

// Constructor is a factory function that creates a new controller instance
// from its raw config section and the runtime context.
type Constructor func(controllerConfig config.RawConfig, ctx ControllerContext) (IController, error)
