package cmd

import (
	"time"

	"callsight/internal/config"
	"callsight/internal/security"
	"callsight/internal/snowflake"
	"callsight/pkg/errors"
	"callsight/pkg/models"
)

const passwordCredential = "snowflake-password"

// loadConfigAndConnect loads configuration, resolves the password from the
// credential store when it is not inline, and returns a connected service.
func loadConfigAndConnect() (*snowflake.Service, *models.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, errors.Wrap(err, errors.ErrCodeConfigInvalid, "Failed to load configuration")
	}

	password := cfg.Snowflake.Password
	if password == "" {
		store, err := security.NewCredentialStore()
		if err != nil {
			return nil, nil, errors.Wrap(err, errors.ErrCodeCredentialMissing, "Failed to open credential store")
		}
		password, err = store.Get(passwordCredential)
		if err != nil {
			return nil, nil, errors.New(errors.ErrCodeCredentialMissing, "No Snowflake password configured").
				WithSuggestions("Run 'callsight setup' to configure credentials")
		}
	}

	timeout := 30 * time.Second
	if cfg.Snowflake.Timeout != "" {
		if d, err := time.ParseDuration(cfg.Snowflake.Timeout); err == nil {
			timeout = d
		}
	}

	svcConfig := snowflake.Config{
		Account:   cfg.Snowflake.Account,
		Username:  cfg.Snowflake.Username,
		Password:  password,
		Database:  cfg.Snowflake.Database,
		Schema:    cfg.Snowflake.Schema,
		Warehouse: cfg.Snowflake.Warehouse,
		Role:      cfg.Snowflake.Role,
		Timeout:   timeout,
	}

	if err := snowflake.ValidateConfig(svcConfig); err != nil {
		return nil, nil, errors.ConfigError(err.Error(), "snowflake")
	}

	svc := snowflake.NewService(svcConfig)
	if err := svc.Connect(); err != nil {
		return nil, nil, err
	}

	return svc, cfg, nil
}
