// internal/app/bootstrap/config.go
package bootstrap

import (
	"fmt"
	"time"

	"github.com/dalemusser/waffle/config"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"go.uber.org/zap"
)

// appConfigKeys defines the configuration keys for Convene.
// These are loaded via WAFFLE's config system with support for:
//   - Config files: mongo_uri, token_secret, etc.
//   - Environment variables: CONVENE_MONGO_URI, CONVENE_TOKEN_SECRET, etc.
//   - Command-line flags: --mongo_uri, --token_secret, etc.
var appConfigKeys = []config.AppKey{
	{Name: "mongo_uri", Default: "mongodb://localhost:27017", Desc: "MongoDB connection URI"},
	{Name: "mongo_database", Default: "convene", Desc: "MongoDB database name"},
	{Name: "mongo_max_pool_size", Default: 100, Desc: "MongoDB max connection pool size (default: 100)"},
	{Name: "mongo_min_pool_size", Default: 10, Desc: "MongoDB min connection pool size (default: 10)"},

	{Name: "token_secret", Default: "dev-only-change-me-please-0123456789ABCDEF", Desc: "Bearer token signing secret (must be strong in production)"},
	{Name: "token_ttl", Default: "720h", Desc: "Bearer token lifetime (e.g., 720h for 30 days)"},
}

// LoadConfig loads WAFFLE core config and app-specific config.
//
// It is called early in startup so that both WAFFLE and the app have
// access to configuration before any backends or handlers are built.
// CoreConfig comes from the shared WAFFLE layer; AppConfig is specific
// to this app and can be extended as the app grows.
//
// WAFFLE's config.LoadWithAppConfig handles:
//   - Loading from .env files
//   - Loading from config.yaml/json/toml files
//   - Reading environment variables (WAFFLE_* for core, CONVENE_* for app)
//   - Parsing command-line flags
//   - Merging with precedence: flags > env > files > defaults
func LoadConfig(logger *zap.Logger) (*config.CoreConfig, AppConfig, error) {
	coreCfg, appValues, err := config.LoadWithAppConfig(logger, "CONVENE", appConfigKeys)
	if err != nil {
		return nil, AppConfig{}, err
	}

	appCfg := AppConfig{
		MongoURI:         appValues.String("mongo_uri"),
		MongoDatabase:    appValues.String("mongo_database"),
		MongoMaxPoolSize: uint64(appValues.Int("mongo_max_pool_size")),
		MongoMinPoolSize: uint64(appValues.Int("mongo_min_pool_size")),

		TokenSecret: appValues.String("token_secret"),
		TokenTTL:    appValues.Duration("token_ttl", 30*24*time.Hour),
	}

	return coreCfg, appCfg, nil
}

// ValidateConfig performs app-specific config validation.
//
// Return nil to accept the loaded config, or an error to abort startup.
// This is the right place to enforce required fields or invariants that
// involve both the core and app configs.
//
// Convene validates the MongoDB URI format to catch configuration
// errors early, before attempting to connect, and refuses to run in
// production with the development token secret.
func ValidateConfig(coreCfg *config.CoreConfig, appCfg AppConfig, logger *zap.Logger) error {
	if err := wafflemongo.ValidateURI(appCfg.MongoURI); err != nil {
		logger.Error("invalid MongoDB URI", zap.Error(err))
		return fmt.Errorf("invalid MongoDB URI: %w", err)
	}

	if coreCfg.Env == "prod" && appCfg.TokenSecret == "dev-only-change-me-please-0123456789ABCDEF" {
		return fmt.Errorf("token_secret must be set to a strong value in production")
	}

	if appCfg.TokenTTL <= 0 {
		return fmt.Errorf("token_ttl must be positive, got %s", appCfg.TokenTTL)
	}

	return nil
}
