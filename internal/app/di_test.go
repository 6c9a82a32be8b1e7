package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actiongate/actiongate/internal/config"
)

// sqliteConfig returns a configuration backed by an in-memory SQLite
// database, enough to wire every component without external services.
func sqliteConfig() *config.Config {
	return &config.Config{
		LogLevel:                  "error",
		Environment:               "test",
		DBDriver:                  "sqlite",
		DBConnectionString:        ":memory:",
		DBMaxOpenConnections:      1,
		DBMaxIdleConnections:      1,
		DBConnMaxLifetime:         time.Hour,
		ServerHost:                "localhost",
		ServerPort:                8080,
		AuthDefaultCapabilities:   "read",
		AuthLastUsedFlushInterval: time.Minute,
	}
}

func TestNewContainer(t *testing.T) {
	cfg := sqliteConfig()

	container := NewContainer(cfg)

	require.NotNil(t, container)
	assert.Equal(t, cfg, container.Config())
	assert.Equal(t, "dev", container.version)
}

func TestContainerSetVersion(t *testing.T) {
	container := NewContainer(sqliteConfig())

	container.SetVersion("1.2.3")
	assert.Equal(t, "1.2.3", container.version)

	// An empty version keeps the current value
	container.SetVersion("")
	assert.Equal(t, "1.2.3", container.version)
}

func TestContainerLogger(t *testing.T) {
	container := NewContainer(sqliteConfig())

	logger := container.Logger()
	require.NotNil(t, logger)

	// Repeated access returns the same instance
	assert.Same(t, logger, container.Logger())
}

func TestContainerLoggerUnknownLevel(t *testing.T) {
	cfg := sqliteConfig()
	cfg.LogLevel = "invalid"

	container := NewContainer(cfg)

	require.NotNil(t, container.Logger())
}

func TestContainerLazyInitialization(t *testing.T) {
	container := NewContainer(sqliteConfig())

	assert.Nil(t, container.logger)

	require.NotNil(t, container.Logger())
	assert.NotNil(t, container.logger)
}

func TestContainerDBError(t *testing.T) {
	cfg := sqliteConfig()
	cfg.DBDriver = "invalid_driver"

	container := NewContainer(cfg)

	_, err := container.DB()
	require.Error(t, err)

	// The stored error is returned on every subsequent call
	_, err = container.DB()
	require.Error(t, err)
}

func TestContainerRepositoryUnknownDriver(t *testing.T) {
	cfg := sqliteConfig()
	container := NewContainer(cfg)

	// Flip the driver after the connection is established so repository
	// construction sees an unsupported value.
	_, err := container.DB()
	require.NoError(t, err)
	cfg.DBDriver = "oracle"

	_, err = container.CredentialRepository()
	require.ErrorContains(t, err, "unsupported database driver")

	_, err = container.CredentialRepository()
	require.ErrorContains(t, err, "unsupported database driver")

	require.NoError(t, container.Shutdown(context.Background()))
}

func TestContainerActionRegistry(t *testing.T) {
	container := NewContainer(sqliteConfig())

	actionRegistry := container.ActionRegistry()
	require.NotNil(t, actionRegistry)
	assert.Same(t, actionRegistry, container.ActionRegistry())
}

func TestContainerDocsGeneratorVersion(t *testing.T) {
	container := NewContainer(sqliteConfig())
	container.SetVersion("9.9.9")

	generator := container.DocsGenerator()
	require.NotNil(t, generator)

	document, err := generator.Generate()
	require.NoError(t, err)
	assert.Equal(t, "Action Gateway", document.Info.Title)
	assert.Equal(t, "9.9.9", document.Info.Version)
}

func TestContainerMetricsDisabled(t *testing.T) {
	cfg := sqliteConfig()
	cfg.MetricsEnabled = false

	container := NewContainer(cfg)

	provider, err := container.MetricsProvider()
	require.NoError(t, err)
	assert.Nil(t, provider)

	metricsServer, err := container.MetricsServer()
	require.NoError(t, err)
	assert.Nil(t, metricsServer)
}

func TestContainerServices(t *testing.T) {
	container := NewContainer(sqliteConfig())

	assert.NotNil(t, container.TokenService())
	assert.NotNil(t, container.PasswordService())
}

func TestContainerFullWiring(t *testing.T) {
	container := NewContainer(sqliteConfig())
	container.SetVersion("0.1.0")

	httpServer, err := container.HTTPServer()
	require.NoError(t, err)
	require.NotNil(t, httpServer)

	dispatcher, err := container.Dispatcher()
	require.NoError(t, err)
	require.NotNil(t, dispatcher)

	// The dispatcher is a singleton
	again, err := container.Dispatcher()
	require.NoError(t, err)
	assert.Equal(t, dispatcher, again)

	require.NoError(t, container.Shutdown(context.Background()))
}

func TestContainerDispatcherWithDecorators(t *testing.T) {
	cfg := sqliteConfig()
	cfg.MetricsEnabled = true
	cfg.MetricsNamespace = "actiongate_test"
	cfg.MetricsPort = 9090
	cfg.AuditEnabled = true

	container := NewContainer(cfg)

	dispatcher, err := container.Dispatcher()
	require.NoError(t, err)
	require.NotNil(t, dispatcher)

	metricsServer, err := container.MetricsServer()
	require.NoError(t, err)
	require.NotNil(t, metricsServer)

	require.NoError(t, container.Shutdown(context.Background()))
}

func TestContainerShutdownWithoutInitialization(t *testing.T) {
	container := NewContainer(sqliteConfig())

	require.NoError(t, container.Shutdown(context.Background()))
}
