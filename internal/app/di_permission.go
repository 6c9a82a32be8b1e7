package app

import (
	"fmt"

	permissionRepository "github.com/actiongate/actiongate/internal/permission/repository"
	permissionUseCase "github.com/actiongate/actiongate/internal/permission/usecase"
)

// OverrideRepository returns the permission override repository based on
// database driver.
func (c *Container) OverrideRepository() (permissionUseCase.OverrideRepository, error) {
	var err error
	c.overrideRepoInit.Do(func() {
		c.overrideRepo, err = c.initOverrideRepository()
		if err != nil {
			c.initErrors["overrideRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["overrideRepo"]; exists {
		return nil, storedErr
	}
	return c.overrideRepo, nil
}

// PermissionUseCase returns the permission use case: the dispatch-time
// resolver plus the override management surface.
func (c *Container) PermissionUseCase() (permissionUseCase.PermissionUseCase, error) {
	var err error
	c.permissionUseCaseInit.Do(func() {
		c.permissionUseCase, err = c.initPermissionUseCase()
		if err != nil {
			c.initErrors["permissionUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["permissionUseCase"]; exists {
		return nil, storedErr
	}
	return c.permissionUseCase, nil
}

// initOverrideRepository creates the override repository based on the database driver.
func (c *Container) initOverrideRepository() (permissionUseCase.OverrideRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for override repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return permissionRepository.NewPostgreSQLOverrideRepository(db), nil
	case "mysql":
		return permissionRepository.NewMySQLOverrideRepository(db), nil
	case "sqlite":
		return permissionRepository.NewSQLiteOverrideRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initPermissionUseCase creates the permission use case with all its dependencies.
func (c *Container) initPermissionUseCase() (permissionUseCase.PermissionUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for permission use case: %w", err)
	}

	overrideRepository, err := c.OverrideRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get override repository for permission use case: %w", err)
	}

	return permissionUseCase.NewPermissionUseCase(txManager, overrideRepository), nil
}
