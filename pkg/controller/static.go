package controller

import (
	"os"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"github.com/yttools/transcript-api/internal/deepcopy"
	"github.com/yttools/transcript-api/pkg/config"
	"github.com/yttools/transcript-api/pkg/server"
)

// StaticControllerConfig defines the configuration for a static content
// controller. Each instance serves a single path with either a directory
// or a single file, useful for pre-rendered documentation or deployment
// artifacts.
type StaticControllerConfig struct {
	Path string `yaml:"path"`
	Dir  string `yaml:"dir,omitempty"`
	File string `yaml:"file,omitempty"`
}

func (s StaticControllerConfig) Validate() error {
	if s.Path == "" {
		return errors.New("path must be set and non-empty")
	}
	if s.Dir == "" && s.File == "" {
		return errors.New("either dir or file must be set and non-empty")
	}
	if s.Dir != "" && s.File != "" {
		return errors.New("cannot set both dir and file, choose one")
	}

	if s.File != "" {
		if stat, err := os.Stat(s.File); err != nil || stat.IsDir() {
			return errors.Wrap(err, "static file not present or is a directory")
		}
		return nil
	}

	if stat, err := os.Stat(s.Dir); err != nil || !stat.IsDir() {
		return errors.Wrap(err, "statics directory not present or is not a directory")
	}
	return nil
}

// NewStaticController creates a controller serving static content.
func NewStaticController(controllerConfig config.RawConfig, _ server.ControllerContext) (server.IController, error) {
	cfg, err := config.To[StaticControllerConfig](controllerConfig)
	if err != nil {
		return nil, err
	}

	// deep copy to enforce immutability
	configCopy := deepcopy.MustCopy(cfg)

	log.Info().
		Str("path", configCopy.Path).
		Str("dir", configCopy.Dir).
		Str("file", configCopy.File).
		Msg("Static content configured")

	return &static{
		path: configCopy.Path,
		dir:  configCopy.Dir,
		file: configCopy.File,
	}, nil
}

type static struct {
	path string
	dir  string
	file string
}

// Bind registers the static routes for the configured file or directory.
func (s *static) Bind(engine *gin.Engine) error {
	isFile := s.file != ""

	log.Info().
		Str("path", s.path).
		Str("file", s.file).
		Str("dir", s.dir).
		Msgf("Binding static %s", map[bool]string{true: "file", false: "directory"}[isFile])

	if isFile {
		engine.StaticFile(s.path, s.file)
	} else {
		engine.Static(s.path, s.dir)
	}
	return nil
}

// Close performs no cleanup; the controller holds no resources.
func (s *static) Close() error {
	return nil
}
