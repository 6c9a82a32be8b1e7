package app

import (
	"fmt"
	"strings"

	actionDispatcher "github.com/actiongate/actiongate/internal/action/dispatcher"
	"github.com/actiongate/actiongate/internal/action/docs"
	"github.com/actiongate/actiongate/internal/action/handlers"
	"github.com/actiongate/actiongate/internal/action/registry"
	"github.com/actiongate/actiongate/internal/metrics"
)

// ActionRegistry returns the action catalog registry. The registry starts
// empty; Dispatcher installs the built-in factory manifest before the first
// dispatch.
func (c *Container) ActionRegistry() *registry.Registry {
	c.actionRegistryInit.Do(func() {
		var disabledActions []string
		if c.config.ActionsDisabled != "" {
			disabledActions = strings.Split(c.config.ActionsDisabled, ",")
		}

		c.actionRegistry = registry.New(registry.Config{
			DisabledActions: disabledActions,
			CacheTTL:        c.config.DiscoveryCacheTTL,
		})
	})
	return c.actionRegistry
}

// DocsGenerator returns the documentation generator backed by the action
// registry.
func (c *Container) DocsGenerator() *docs.Generator {
	c.docsGeneratorInit.Do(func() {
		c.docsGenerator = docs.NewGenerator(c.ActionRegistry(), docs.Info{
			Title:       "Action Gateway",
			Version:     c.version,
			Description: "Single-endpoint action dispatch API",
		})
	})
	return c.docsGenerator
}

// Dispatcher returns the dispatch pipeline: registry-backed resolution,
// permission checks, and the metrics and audit decorators when their
// subsystems are enabled.
func (c *Container) Dispatcher() (actionDispatcher.Dispatcher, error) {
	var err error
	c.dispatcherInit.Do(func() {
		c.dispatcher, err = c.initDispatcher()
		if err != nil {
			c.initErrors["dispatcher"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["dispatcher"]; exists {
		return nil, storedErr
	}
	return c.dispatcher, nil
}

// initDispatcher assembles the dispatch pipeline and installs the built-in
// action manifest on the registry. The manifest is wired here rather than in
// ActionRegistry so handler factories can capture use cases without the
// registry depending on them at construction time.
func (c *Container) initDispatcher() (actionDispatcher.Dispatcher, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for dispatcher: %w", err)
	}

	userUC, err := c.UserUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get user use case for dispatcher: %w", err)
	}

	credentialUC, err := c.CredentialUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential use case for dispatcher: %w", err)
	}

	permissionUC, err := c.PermissionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get permission use case for dispatcher: %w", err)
	}

	entryUC, err := c.EntryUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get entry use case for dispatcher: %w", err)
	}

	actionRegistry := c.ActionRegistry()
	actionRegistry.SetManifest(handlers.Manifest(handlers.Dependencies{
		Version:     c.version,
		StartedAt:   c.startedAt,
		DB:          db,
		Actions:     actionRegistry,
		Catalog:     actionRegistry,
		Docs:        c.DocsGenerator(),
		Users:       userUC,
		Credentials: credentialUC,
		Overrides:   permissionUC,
		Audit:       entryUC,
	}))

	dispatcher := actionDispatcher.NewDispatcher(
		actionRegistry,
		permissionUC,
		c.Logger(),
		c.config.IsProduction(),
	)

	if c.config.MetricsEnabled {
		metricsProvider, err := c.MetricsProvider()
		if err != nil {
			return nil, fmt.Errorf("failed to get metrics provider for dispatcher: %w", err)
		}

		dispatchMetrics, err := metrics.NewDispatchMetrics(metricsProvider.MeterProvider(), metricsProvider.Namespace())
		if err != nil {
			return nil, fmt.Errorf("failed to create dispatch metrics: %w", err)
		}

		dispatcher = actionDispatcher.NewDispatcherWithMetrics(dispatcher, dispatchMetrics)
	}

	if c.config.AuditEnabled {
		dispatcher = actionDispatcher.NewDispatcherWithAudit(dispatcher, entryUC, c.Logger())
	}

	return dispatcher, nil
}
