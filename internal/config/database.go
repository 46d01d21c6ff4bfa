package config

import (
	"errors"
	"os"
)

type DatabaseConfig struct {
	// PostgresDSN switches the key registry to postgres when set; empty
	// keeps the env-seeded in-memory registry.
	PostgresDSN string

	// Whitelist is a comma-separated pool address list seeding the
	// in-memory registry. Ignored when postgres is configured.
	Whitelist string

	// ManagerKey / LPOwnerKey seed the in-memory registry's secrets for
	// every whitelisted pool (dev deployments run one manager wallet).
	ManagerKey string
	LPOwnerKey string
}

func (dc *DatabaseConfig) Key() string {
	return DATABASE_CONFIG_KEY
}

func (dc *DatabaseConfig) Load() error {
	dc.PostgresDSN = os.Getenv("POSTGRES_DSN")
	dc.Whitelist = os.Getenv("POOL_WHITELIST")
	dc.ManagerKey = os.Getenv("MANAGER_PRIVATE_KEY")
	dc.LPOwnerKey = os.Getenv("LP_OWNER_PRIVATE_KEY")
	return nil
}

func (dc *DatabaseConfig) Validate() error {
	if dc.PostgresDSN == "" && dc.Whitelist != "" && (dc.ManagerKey == "" || dc.LPOwnerKey == "") {
		return errors.New("in-memory key registry needs MANAGER_PRIVATE_KEY and LP_OWNER_PRIVATE_KEY")
	}
	return nil
}
