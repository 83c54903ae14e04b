package controller

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/yttools/transcript-api/pkg/config"
	"github.com/yttools/transcript-api/pkg/server"
)

const swaggerUIPage = `<!DOCTYPE html>
<html>
<head>
	<meta charset="utf-8"/>
	<title>%s - Swagger UI</title>
	<link rel="stylesheet" href="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui.css">
</head>
<body>
	<div id="swagger-ui"></div>
	<script src="https://cdn.jsdelivr.net/npm/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
	<script>
	SwaggerUIBundle({
		url: %q,
		dom_id: '#swagger-ui',
		layout: 'BaseLayout',
		deepLinking: true,
		presets: [SwaggerUIBundle.presets.apis, SwaggerUIBundle.SwaggerUIStandalonePreset]
	});
	</script>
</body>
</html>`

const redocPage = `<!DOCTYPE html>
<html>
<head>
	<meta charset="utf-8"/>
	<title>%s - ReDoc</title>
	<meta name="viewport" content="width=device-width, initial-scale=1">
</head>
<body>
	<redoc spec-url=%q></redoc>
	<script src="https://cdn.jsdelivr.net/npm/redoc@2/bundles/redoc.standalone.js"></script>
</body>
</html>`

// DocsControllerConfig defines the configuration for the documentation
// controller. Path is the mount point (default /api). OpenAPIURL is the
// document URL the rendered pages load; it defaults to <path>/openapi.json
// but may point elsewhere when the service sits behind a path-rewriting
// ingress.
type DocsControllerConfig struct {
	Path       string `yaml:"path,omitempty"`
	Title      string `yaml:"title,omitempty"`
	OpenAPIURL string `yaml:"openapi_url,omitempty"`
}

// Validate accepts any configuration; every field has a default.
func (d DocsControllerConfig) Validate() error {
	return nil
}

// NewDocsController creates the controller serving the OpenAPI document and
// the rendered documentation pages.
func NewDocsController(controllerConfig config.RawConfig, _ server.ControllerContext) (server.IController, error) {
	cfg, err := config.To[DocsControllerConfig](controllerConfig)
	if err != nil {
		return nil, err
	}

	path := cfg.Path
	if path == "" {
		path = defaultMountPath
	}
	title := cfg.Title
	if title == "" {
		title = "YouTube Transcript API"
	}
	openAPIURL := cfg.OpenAPIURL
	if openAPIURL == "" {
		openAPIURL = path + "/openapi.json"
	}

	log.Info().
		Str("path", path).
		Str("openapi_url", openAPIURL).
		Msg("API documentation configured")

	return &docs{
		path:       path,
		title:      title,
		openAPIURL: openAPIURL,
		document:   openAPIDocument(title, path),
	}, nil
}

type docs struct {
	path       string
	title      string
	openAPIURL string
	document   gin.H
}

// Bind registers the documentation routes: the OpenAPI document (also at
// the legacy swagger.json location), Swagger UI, ReDoc and a debug endpoint
// listing the configured URLs.
func (d *docs) Bind(engine *gin.Engine) error {
	group := engine.Group(d.path)

	serveDocument := func(c *gin.Context) {
		c.JSON(http.StatusOK, d.document)
	}
	group.GET("/openapi.json", serveDocument)
	// kept for compatibility with older clients
	group.GET("/swagger.json", serveDocument)

	group.GET("/docs", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8",
			fmt.Appendf(nil, swaggerUIPage, d.title, d.openAPIURL))
	})
	group.GET("/redoc", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/html; charset=utf-8",
			fmt.Appendf(nil, redocPage, d.title, d.openAPIURL))
	})

	group.GET("/debug/urls", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"docs_url":    d.path + "/docs",
			"redoc_url":   d.path + "/redoc",
			"openapi_url": d.openAPIURL,
			"available_endpoints": []string{
				d.path + "/docs",
				d.path + "/redoc",
				d.path + "/openapi.json",
				d.path + "/swagger.json",
				d.path + "/health",
				d.path + "/debug/urls",
			},
		})
	})

	return nil
}

// Close performs no cleanup; the controller holds no resources.
func (d *docs) Close() error {
	return nil
}
