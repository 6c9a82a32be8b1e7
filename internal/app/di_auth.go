package app

import (
	"fmt"

	authRepository "github.com/actiongate/actiongate/internal/auth/repository"
	authService "github.com/actiongate/actiongate/internal/auth/service"
	authUseCase "github.com/actiongate/actiongate/internal/auth/usecase"
)

// TokenService returns the bearer token service.
func (c *Container) TokenService() authService.TokenService {
	c.tokenServiceInit.Do(func() {
		c.tokenService = c.initTokenService()
	})
	return c.tokenService
}

// CredentialRepository returns the credential repository based on database driver.
func (c *Container) CredentialRepository() (authUseCase.CredentialRepository, error) {
	var err error
	c.credentialRepoInit.Do(func() {
		c.credentialRepo, err = c.initCredentialRepository()
		if err != nil {
			c.initErrors["credentialRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["credentialRepo"]; exists {
		return nil, storedErr
	}
	return c.credentialRepo, nil
}

// CredentialUseCase returns the credential management use case.
func (c *Container) CredentialUseCase() (authUseCase.CredentialUseCase, error) {
	var err error
	c.credentialUseCaseInit.Do(func() {
		c.credentialUseCase, err = c.initCredentialUseCase()
		if err != nil {
			c.initErrors["credentialUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["credentialUseCase"]; exists {
		return nil, storedErr
	}
	return c.credentialUseCase, nil
}

// AuthenticateUseCase returns the bearer token authentication use case.
func (c *Container) AuthenticateUseCase() (authUseCase.AuthenticateUseCase, error) {
	var err error
	c.authenticateUseCaseInit.Do(func() {
		c.authenticateUseCase, err = c.initAuthenticateUseCase()
		if err != nil {
			c.initErrors["authenticateUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["authenticateUseCase"]; exists {
		return nil, storedErr
	}
	return c.authenticateUseCase, nil
}

// LastUsedRecorder returns the buffered credential usage recorder. The server
// command starts its flush loop; other commands never touch it.
func (c *Container) LastUsedRecorder() (*authUseCase.LastUsedRecorder, error) {
	var err error
	c.lastUsedRecorderInit.Do(func() {
		c.lastUsedRecorder, err = c.initLastUsedRecorder()
		if err != nil {
			c.initErrors["lastUsedRecorder"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["lastUsedRecorder"]; exists {
		return nil, storedErr
	}
	return c.lastUsedRecorder, nil
}

// initTokenService creates the bearer token service.
func (c *Container) initTokenService() authService.TokenService {
	return authService.NewTokenService()
}

// initCredentialRepository creates the credential repository based on the database driver.
func (c *Container) initCredentialRepository() (authUseCase.CredentialRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for credential repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return authRepository.NewPostgreSQLCredentialRepository(db), nil
	case "mysql":
		return authRepository.NewMySQLCredentialRepository(db), nil
	case "sqlite":
		return authRepository.NewSQLiteCredentialRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initCredentialUseCase creates the credential use case with all its dependencies.
func (c *Container) initCredentialUseCase() (authUseCase.CredentialUseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for credential use case: %w", err)
	}

	credentialRepository, err := c.CredentialRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential repository for credential use case: %w", err)
	}

	return authUseCase.NewCredentialUseCase(
		c.config,
		txManager,
		credentialRepository,
		c.TokenService(),
	), nil
}

// initAuthenticateUseCase creates the authentication use case with usage tracking.
func (c *Container) initAuthenticateUseCase() (authUseCase.AuthenticateUseCase, error) {
	credentialRepository, err := c.CredentialRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential repository for authenticate use case: %w", err)
	}

	lastUsedRecorder, err := c.LastUsedRecorder()
	if err != nil {
		return nil, fmt.Errorf("failed to get last used recorder for authenticate use case: %w", err)
	}

	useCase, err := authUseCase.NewAuthenticateUseCase(c.config, credentialRepository, lastUsedRecorder)
	if err != nil {
		return nil, fmt.Errorf("failed to create authenticate use case: %w", err)
	}

	return useCase, nil
}

// initLastUsedRecorder creates the buffered credential usage recorder.
func (c *Container) initLastUsedRecorder() (*authUseCase.LastUsedRecorder, error) {
	credentialRepository, err := c.CredentialRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get credential repository for last used recorder: %w", err)
	}

	return authUseCase.NewLastUsedRecorder(
		credentialRepository,
		c.config.AuthLastUsedFlushInterval,
		c.Logger(),
	), nil
}
