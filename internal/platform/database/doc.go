// Package database provides the SQL data source: it opens the connection
// pool for the configured driver (pgx for PostgreSQL, mysql for MySQL),
// verifies it with a ping and applies pending goose migrations.
package database
