package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/yttools/transcript-api/pkg/apikey"
	"github.com/yttools/transcript-api/pkg/config"
	"github.com/yttools/transcript-api/pkg/controller"
	"github.com/yttools/transcript-api/pkg/secrets"
	"github.com/yttools/transcript-api/pkg/server"
)

// Version information set during build
var (
	version = "dev"
)

func main() {
	showVersion := flag.Bool("version", false, "Show version information")
	debugMode := flag.Bool("debug", false, "Enable debug mode")
	configFile := flag.String("config", "", "Path to configuration file (optional)")

	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s\n", "transcript-api", version)
		os.Exit(0)
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		NoColor:    false,
		TimeFormat: "2006-01-02 15:04:05",
	})
	server.SetDebug(*debugMode)

	server.RegisterController("health", controller.NewHealthController)
	server.RegisterController("docs", controller.NewDocsController)
	server.RegisterController("static", controller.NewStaticController)

	defer func() {
		// Exit gracefully after panicking
		if r := recover(); r != nil {
			log.Fatal().Msgf("Fatal error: %v", r)
		}
	}()

	cfg := readConfig(*configFile)

	remote := registerSecretBackends(cfg)
	if err := cfg.Load(); err != nil {
		panic(errors.Wrap(err, "failed to load configuration"))
	}

	// The credential is optional: the service starts and listens whether or
	// not a key was resolved.
	credential := resolveAPIKey(cfg.APIKey, remote)

	srv := server.NewServer(cfg, credential)
	if err := srv.StartAndWaitForSignal(); err != nil {
		log.Fatal().Err(err).Msg("Server error")
	}
}

func readConfig(file string) *config.Config {
	if file == "" {
		log.Info().Msg("No config file given, using default configuration")
		return config.Default()
	}

	cfg, err := config.Read(file)
	if err != nil {
		panic(err)
	}
	return cfg
}

// registerSecretBackends wires the configured secret stores into the
// resolver registry and returns the remote store consulted first by the API
// key resolution chain, or nil when none is configured. A backend that
// cannot be set up is logged and skipped; secret store trouble never stops
// the service from starting.
func registerSecretBackends(cfg *config.Config) secrets.PropertyResolver {
	var remote secrets.PropertyResolver

	if cfg.Vault != nil {
		resolver, err := vaultBackend(cfg.Vault)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up Vault secret backend, skipping")
		} else {
			secrets.Register("vault", resolver)
			remote = resolver
		}
	}

	if cfg.AWS != nil {
		resolver, err := awsBackend(cfg.AWS)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up AWS Secrets Manager backend, skipping")
		} else {
			secrets.Register("aws", resolver)
			if remote == nil {
				remote = resolver
			}
		}
	}

	if cfg.FileSecrets != nil {
		if err := config.ExpandStruct(cfg.FileSecrets); err != nil {
			log.Warn().Err(err).Msg("Failed to expand file secrets configuration, skipping")
		} else if resolver, err := cfg.FileSecrets.CreateClient(); err != nil {
			log.Warn().Err(err).Msg("Failed to set up file secret backend, skipping")
		} else {
			secrets.Register("file", resolver)
		}
	}

	return remote
}

func vaultBackend(vaultCfg *secrets.VaultConfig) (secrets.PropertyResolver, error) {
	if err := config.ExpandStruct(vaultCfg); err != nil {
		return nil, err
	}
	client, err := vaultCfg.CreateClient()
	if err != nil {
		return nil, err
	}
	return secrets.NewVaultResolver(client, vaultCfg.Path), nil
}

func awsBackend(awsCfg *secrets.AWSConfig) (secrets.PropertyResolver, error) {
	if err := config.ExpandStruct(awsCfg); err != nil {
		return nil, err
	}
	client, err := awsCfg.CreateClient()
	if err != nil {
		return nil, err
	}
	return secrets.NewAWSResolver(client, awsCfg.SecretName), nil
}

// resolveAPIKey runs the startup resolution chain: remote store (when
// configured), then the environment variable, then the local settings file.
func resolveAPIKey(cfg config.APIKeyConfig, remote secrets.PropertyResolver) apikey.Credential {
	providers := make([]apikey.Provider, 0, 3)
	if remote != nil {
		providers = append(providers, apikey.NewRemoteStoreProvider(remote, cfg.SecretName))
	}
	providers = append(providers,
		apikey.NewEnvProvider(cfg.EnvVar),
		apikey.NewSettingsFileProvider(cfg.SettingsFile, cfg.SecretName),
	)
	return apikey.Resolve(providers...)
}
