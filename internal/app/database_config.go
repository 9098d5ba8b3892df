package app

import (
	"strings"

	"github.com/virtualstage/backlot/internal/database"
)

// ConnectionConfig converts DatabaseConfig into the connection representation.
// Driver aliases are normalised so "postgresql" and "mariadb" behave like
// their canonical names; unknown drivers pass through and fail at open time.
func (c DatabaseConfig) ConnectionConfig() database.Config {
	dbCfg := database.Config{
		Driver: strings.ToLower(strings.TrimSpace(c.Driver)),
		Path:   strings.TrimSpace(c.Path),
		DSN:    strings.TrimSpace(c.DSN),
	}

	switch dbCfg.Driver {
	case "", "sqlite":
		dbCfg.Driver = "sqlite"
	case "postgres", "postgresql":
		dbCfg.Driver = "postgres"
		dbCfg.Host = strings.TrimSpace(c.Postgres.Host)
		dbCfg.Port = c.Postgres.Port
		dbCfg.Name = strings.TrimSpace(c.Postgres.Database)
		dbCfg.User = strings.TrimSpace(c.Postgres.Username)
		dbCfg.Password = strings.TrimSpace(c.Postgres.Password)
	case "mysql", "mariadb":
		dbCfg.Driver = "mysql"
		dbCfg.Host = strings.TrimSpace(c.MySQL.Host)
		dbCfg.Port = c.MySQL.Port
		dbCfg.Name = strings.TrimSpace(c.MySQL.Database)
		dbCfg.User = strings.TrimSpace(c.MySQL.Username)
		dbCfg.Password = strings.TrimSpace(c.MySQL.Password)
	}

	return dbCfg
}
