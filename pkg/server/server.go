// Package server provides the HTTP server for the transcript API service.
// It handles controller registration, middleware setup (CORS, security
// headers, logging, recovery) and graceful shutdown.
package server

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/secure"
	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yttools/transcript-api/pkg/apikey"
	"github.com/yttools/transcript-api/pkg/config"
)

const shutdownTimeout = 30 * time.Second

// Server represents the HTTP server instance. It encapsulates the
// configuration, the resolved API key credential, the underlying
// http.Server, shutdown hooks and signal handling.
type Server struct {
	config          *config.Config
	credential      apikey.Credential
	httpServer      *http.Server
	listener        net.Listener
	controllers     []IController
	shutdownHooks   []func() error
	shutdownChannel chan os.Signal
}

// controllerRegistry maps controller type names to their factories.
var controllerRegistry = make(map[string]Constructor)

var debug = false

// SetDebug toggles debug mode for the server and the global log level.
func SetDebug(enabled bool) {
	debug = enabled
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// GetDebug reports whether debug mode is enabled.
func GetDebug() bool {
	return debug
}

// RegisterController registers a controller factory under a type name used
// in the controllers section of the config file.
func RegisterController(typeName string, factory Constructor) {
	if _, exists := controllerRegistry[typeName]; exists {
		log.Warn().Msgf("Controller type %q is already registered, overriding", typeName)
	}
	controllerRegistry[typeName] = factory
}

// NewServer creates a new Server instance with the provided configuration
// and the credential resolved at startup. A missing credential never
// prevents the server from being created or started.
func NewServer(cfg *config.Config, credential apikey.Credential) *Server {
	return &Server{config: cfg, credential: credential}
}

// StartAndWaitForSignal starts the HTTP server and blocks until an OS
// signal triggers a graceful shutdown.
func (s *Server) StartAndWaitForSignal() error {
	if err := s.Start(); err != nil {
		return err
	}
	return s.waitForSignal()
}

// Start configures the engine, binds the controllers and begins serving.
// It returns once the listener is accepting connections.
func (s *Server) Start() error {
	if debug {
		log.Debug().Msg("Debug mode is enabled")
		log.Debug().Msgf("Listen address: %q", s.config.Server.Address)
		log.Debug().Msgf("API key source: %s", s.credential.Source)
		for _, binding := range s.config.Controllers {
			log.Debug().Msgf("Expected controller - type: %s, name: %s", binding.TypeName, binding.Name)
		}
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	return s.bootstrap()
}

// Addr returns the address the server is listening on. Useful when the
// configured address uses port 0.
func (s *Server) Addr() string {
	if s.listener == nil {
		return s.config.Server.Address
	}
	return s.listener.Addr().String()
}

func (s *Server) bootstrap() error {
	log.Info().Msg("Bootstrapping server...")

	controllers, configErrors := s.configureControllers()
	if len(configErrors) > 0 {
		log.Error().Msg("Configuration errors encountered, affected controllers have been excluded from bootstrap:")
		for _, configErr := range configErrors {
			log.Error().Msgf(" - %v", configErr)
		}
	}
	s.controllers = controllers

	engine := gin.New()
	if gin.IsDebugging() {
		log.Info().Msg("Running in debug mode")
		engine.Use(bodyLogMiddleware, gin.ErrorLogger())
	} else {
		log.Info().Msg("Running in release mode")
		if err := engine.SetTrustedProxies(nil); err != nil {
			return err
		}
		engine.Use(gin.ErrorLoggerT(gin.ErrorTypePrivate))
	}
	engine.Use(
		gin.Logger(),
		gin.Recovery(),
		corsMiddleware(s.config.Server.CORS),
		securityHeaders(),
	)

	for _, c := range s.controllers {
		if err := c.Bind(engine); err != nil {
			return errors.Wrap(err, "failed to bind controller")
		}
		s.addShutdownHook(c.Close)
	}

	listener, err := net.Listen("tcp", s.config.Server.Address)
	if err != nil {
		return errors.Wrapf(err, "failed to listen on %q", s.config.Server.Address)
	}
	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Info().Msgf("Starting server on %s", listener.Addr())
	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("Listen error: %s", err)
		}
	}()

	return nil
}

func (s *Server) configureControllers() (controllers []IController, configErrors []error) {
	instanceCounts := make(map[string]int)

	ctx := ControllerContext{
		ServerConfig: s.config.Server,
		Credential:   s.credential,
	}

	for _, binding := range s.config.Controllers {
		instanceName := binding.Name
		if instanceName == "" {
			instanceCounts[binding.TypeName]++
			count := instanceCounts[binding.TypeName]
			if count == 1 {
				instanceName = binding.TypeName
			} else {
				instanceName = fmt.Sprintf("%s-%d", binding.TypeName, count)
			}
		}

		factory, exists := controllerRegistry[binding.TypeName]
		if !exists {
			configErrors = append(configErrors, fmt.Errorf("no factory found for controller type %q (instance: %q)", binding.TypeName, instanceName))
			continue
		}

		controller, err := newController(ctx, instanceName, binding, factory)
		if err != nil {
			configErrors = append(configErrors, fmt.Errorf("error configuring controller %q of type %q: %v", instanceName, binding.TypeName, err))
			continue
		}
		controllers = append(controllers, controller)
	}
	return controllers, configErrors
}

func newController(ctx ControllerContext, name string, binding config.ControllerBinding, factory Constructor) (controller IController, err error) {
	log.Info().Msgf("Configuring %s controller of type: %s", name, binding.TypeName)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during %s controller configuration, controller was not added: %v", name, r)
			controller = nil
		}
	}()
	if controller, err = factory(binding.Config, ctx); err != nil {
		return nil, errors.Wrapf(err, "failed to configure %s controller of type: %s", name, binding.TypeName)
	}
	return controller, nil
}

func corsMiddleware(c config.CORSConfig) gin.HandlerFunc {
	corsCfg := cors.DefaultConfig()
	if c.AllowAll() {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = c.AllowOrigins
		corsCfg.AllowCredentials = c.AllowCredentials
	}
	corsCfg.AllowHeaders = append(corsCfg.AllowHeaders, "Authorization")
	return cors.New(corsCfg)
}

func securityHeaders() gin.HandlerFunc {
	return secure.New(secure.Config{
		ContentTypeNosniff: true,
		FrameDeny:          true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	})
}

func (s *Server) waitForSignal() error {
	s.shutdownChannel = make(chan os.Signal, 1)
	// kill (no params) by default sends syscall.SIGTERM
	// kill -2 is syscall.SIGINT
	signal.Notify(s.shutdownChannel, syscall.SIGINT, syscall.SIGTERM)
	log.Info().Msgf("Shutdown signal received (%s)", <-s.shutdownChannel)
	return s.Shutdown()
}

func (s *Server) addShutdownHook(f func() error) {
	s.shutdownHooks = append(s.shutdownHooks, f)
}

// Shutdown gracefully shuts down the server, draining active connections
// and running controller shutdown hooks.
func (s *Server) Shutdown() error {
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("forced shutdown: %s", err)
	}

	log.Info().Msg("Executing shutdown hooks...")
	for _, hook := range s.shutdownHooks {
		if err := hook(); err != nil {
			log.Error().Msgf("Error during shutdown hook: %s", err)
		}
	}

	log.Info().Msg("Server exited gracefully")
	return nil
}

type bodyLogWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w bodyLogWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func bodyLogMiddleware(c *gin.Context) {
	blw := &bodyLogWriter{body: bytes.NewBufferString(""), ResponseWriter: c.Writer}
	c.Writer = blw
	c.Next()
	log.Debug().Msgf("Response body: %s", blw.body.String())
}
