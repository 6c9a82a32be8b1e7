package app

import (
	"encoding/base64"
	"fmt"

	auditRepository "github.com/actiongate/actiongate/internal/audit/repository"
	auditService "github.com/actiongate/actiongate/internal/audit/service"
	auditUseCase "github.com/actiongate/actiongate/internal/audit/usecase"
)

// EntryRepository returns the audit entry repository based on database driver.
func (c *Container) EntryRepository() (auditUseCase.EntryRepository, error) {
	var err error
	c.entryRepoInit.Do(func() {
		c.entryRepo, err = c.initEntryRepository()
		if err != nil {
			c.initErrors["entryRepo"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["entryRepo"]; exists {
		return nil, storedErr
	}
	return c.entryRepo, nil
}

// EntryUseCase returns the audit entry use case.
func (c *Container) EntryUseCase() (auditUseCase.EntryUseCase, error) {
	var err error
	c.entryUseCaseInit.Do(func() {
		c.entryUseCase, err = c.initEntryUseCase()
		if err != nil {
			c.initErrors["entryUseCase"] = err
		}
	})
	if err != nil {
		return nil, err
	}
	if storedErr, exists := c.initErrors["entryUseCase"]; exists {
		return nil, storedErr
	}
	return c.entryUseCase, nil
}

// initEntryRepository creates the audit entry repository based on the database driver.
func (c *Container) initEntryRepository() (auditUseCase.EntryRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for entry repository: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		return auditRepository.NewPostgreSQLEntryRepository(db), nil
	case "mysql":
		return auditRepository.NewMySQLEntryRepository(db), nil
	case "sqlite":
		return auditRepository.NewSQLiteEntryRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initEntryUseCase creates the audit entry use case. The entry signer is only
// built when a signing key is configured; without one, entries are recorded
// unsigned.
func (c *Container) initEntryUseCase() (auditUseCase.EntryUseCase, error) {
	entryRepository, err := c.EntryRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get entry repository for entry use case: %w", err)
	}

	var signer auditService.EntrySigner
	if c.config.AuditSigningKey != "" {
		rootKey, err := base64.StdEncoding.DecodeString(c.config.AuditSigningKey)
		if err != nil {
			return nil, fmt.Errorf("failed to decode audit signing key: %w", err)
		}

		signer, err = auditService.NewEntrySigner(rootKey)
		if err != nil {
			return nil, fmt.Errorf("failed to create audit entry signer: %w", err)
		}
	}

	return auditUseCase.NewEntryUseCase(entryRepository, signer), nil
}
