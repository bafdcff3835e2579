// internal/config/database.go
package config

// DSN returns the Postgres connection string. DATABASE_URL is the only
// supported source; Validate rejects an empty value at boot.
func (c DatabaseConfig) DSN() string {
	return c.URL
}
