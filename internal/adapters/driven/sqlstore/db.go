package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/microsoft/go-mssqldb"
	_ "modernc.org/sqlite"

	"github.com/custodia-labs/unleashed-sync/internal/core/domain"
)

// Supported database/sql driver names.
const (
	DriverPostgres  = "postgres"
	DriverSQLServer = "sqlserver"
	DriverSQLite    = "sqlite"
)

//go:embed schema/*.sql
var schemaFS embed.FS

// DB wraps a sql.DB connection pool and remembers which dialect it speaks.
type DB struct {
	*sql.DB
	driver string
}

// Config holds database connection configuration
type Config struct {
	// Driver is one of postgres, sqlserver or sqlite
	Driver string

	// URL is the driver-specific connection string
	URL string

	// MaxOpenConns is the maximum number of open connections
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections
	MaxIdleConns int

	// ConnMaxLifetime is the maximum lifetime of a connection
	ConnMaxLifetime time.Duration

	// ConnMaxIdleTime is the maximum idle time of a connection
	ConnMaxIdleTime time.Duration
}

// DefaultConfig returns defaults sized for a single sequential importer.
func DefaultConfig(driver, url string) Config {
	return Config{
		Driver:          driver,
		URL:             url,
		MaxOpenConns:    4,
		MaxIdleConns:    2,
		ConnMaxLifetime: 5 * time.Minute,
		ConnMaxIdleTime: 1 * time.Minute,
	}
}

// ValidDriver reports whether driver is supported.
func ValidDriver(driver string) bool {
	switch driver {
	case DriverPostgres, DriverSQLServer, DriverSQLite:
		return true
	}
	return false
}

// Connect opens the pool and verifies the connection.
func Connect(ctx context.Context, cfg Config) (*DB, error) {
	if !ValidDriver(cfg.Driver) {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedDriver, cfg.Driver)
	}

	db, err := sql.Open(cfg.Driver, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// Verify connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{DB: db, driver: cfg.Driver}, nil
}

// Driver returns the driver name the pool was opened with.
func (db *DB) Driver() string {
	return db.driver
}

// InitSchema creates the line and run history tables.
// This is idempotent - safe to run multiple times.
// SQL Server tables are managed outside this tool.
func (db *DB) InitSchema(ctx context.Context) error {
	if db.driver == DriverSQLServer {
		return fmt.Errorf("%w: schema initialization is not available for %s", domain.ErrUnsupportedDriver, db.driver)
	}

	schema, err := schemaFS.ReadFile("schema/" + db.driver + ".sql")
	if err != nil {
		return fmt.Errorf("failed to read schema: %w", err)
	}

	for _, stmt := range strings.Split(string(schema), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize schema: %w", err)
		}
	}
	return nil
}

// Version returns the server version banner.
func (db *DB) Version(ctx context.Context) (string, error) {
	var query string
	switch db.driver {
	case DriverSQLServer:
		query = "SELECT @@VERSION"
	case DriverSQLite:
		query = "SELECT 'SQLite ' || sqlite_version()"
	default:
		query = "SELECT version()"
	}

	var version string
	if err := db.QueryRowContext(ctx, query).Scan(&version); err != nil {
		return "", fmt.Errorf("query version: %w", err)
	}
	return version, nil
}

// Ping checks if the database is reachable
func (db *DB) Ping(ctx context.Context) error {
	return db.PingContext(ctx)
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.DB.Close()
}

// Transaction executes a function within a database transaction
func (db *DB) Transaction(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("tx failed: %w, rollback failed: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Rebind rewrites ? placeholders into the driver's bind syntax:
// $1.. for postgres, @p1.. for sqlserver, unchanged for sqlite.
// Queries must not contain literal question marks.
func (db *DB) Rebind(query string) string {
	return rebind(db.driver, query)
}

func rebind(driver, query string) string {
	var prefix string
	switch driver {
	case DriverPostgres:
		prefix = "$"
	case DriverSQLServer:
		prefix = "@p"
	default:
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 16)
	n := 0
	for _, r := range query {
		if r != '?' {
			b.WriteRune(r)
			continue
		}
		n++
		b.WriteString(prefix)
		b.WriteString(strconv.Itoa(n))
	}
	return b.String()
}

// limit appends a row limit in the driver's dialect. The query must end
// with an ORDER BY clause for sqlserver.
func (db *DB) limit(query string) string {
	if db.driver == DriverSQLServer {
		return query + " OFFSET 0 ROWS FETCH NEXT ? ROWS ONLY"
	}
	return query + " LIMIT ?"
}

// NullTime converts a time pointer to sql.NullTime
func NullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

// TimePtr converts sql.NullTime to time pointer
func TimePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	return &nt.Time
}
