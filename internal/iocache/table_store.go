package iocache

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/huangsam/courseload/internal/contract"
	"github.com/huangsam/courseload/schema"
)

// ScoreTableStoreImpl keeps versioned score table blobs in a SQL database.
type ScoreTableStoreImpl struct {
	db        *sql.DB
	tableName string
	backend   schema.DatabaseBackend
	connStr   string
}

var _ contract.ScoreTableStore = &ScoreTableStoreImpl{} // Compile-time check

// NewScoreTableStore opens a SQL backed score table store and creates its table.
func NewScoreTableStore(tableName string, backend schema.DatabaseBackend, connStr string) (contract.ScoreTableStore, error) {
	if err := validateTableName(tableName); err != nil {
		return nil, err
	}
	if backend == schema.NoneBackend {
		// Return a no-op store for disabled persistence
		return &ScoreTableStoreImpl{tableName: tableName, backend: backend, connStr: connStr}, nil
	}

	db, err := openDB(backend, connStr, GetTableDBFilePath())
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(createTableQuery(tableName, backend)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create table %s: %w", tableName, err)
	}
	return &ScoreTableStoreImpl{db: db, tableName: tableName, backend: backend, connStr: connStr}, nil
}

// createTableQuery returns the CREATE TABLE query for the given backend.
func createTableQuery(tableName string, backend schema.DatabaseBackend) string {
	quoted := quoteTableName(tableName, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				table_key VARCHAR(255) PRIMARY KEY,
				table_value LONGBLOB NOT NULL,
				table_version INT NOT NULL,
				table_timestamp BIGINT NOT NULL
			);
		`, quoted)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				table_key TEXT PRIMARY KEY,
				table_value BYTEA NOT NULL,
				table_version INTEGER NOT NULL,
				table_timestamp BIGINT NOT NULL
			);
		`, quoted)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				table_key TEXT PRIMARY KEY,
				table_value BLOB NOT NULL,
				table_version INTEGER NOT NULL,
				table_timestamp INTEGER NOT NULL
			);
		`, quoted)
	}
}

func (ts *ScoreTableStoreImpl) disabled() bool {
	return ts.backend == schema.NoneBackend || ts.db == nil
}

// Get retrieves a value by key. A missing key returns sql.ErrNoRows.
func (ts *ScoreTableStoreImpl) Get(key string) ([]byte, int, int64, error) {
	if ts.disabled() {
		return nil, 0, 0, sql.ErrNoRows
	}

	var value []byte
	var version int
	var stamp int64
	query := fmt.Sprintf(`SELECT table_value, table_version, table_timestamp FROM %s WHERE table_key = %s`,
		quoteTableName(ts.tableName, ts.backend), placeholders(ts.backend, 1))
	if err := ts.db.QueryRow(query, key).Scan(&value, &version, &stamp); err != nil {
		return nil, 0, 0, err
	}
	return value, version, stamp, nil
}

// Set inserts or replaces a key/value pair.
func (ts *ScoreTableStoreImpl) Set(key string, value []byte, version int, timestamp int64) error {
	if ts.disabled() {
		return nil
	}
	_, err := ts.db.Exec(ts.upsertQuery(), key, value, version, timestamp)
	return err
}

// Delete removes a key. Deleting a missing key is not an error.
func (ts *ScoreTableStoreImpl) Delete(key string) error {
	if ts.disabled() {
		return nil
	}
	query := fmt.Sprintf(`DELETE FROM %s WHERE table_key = %s`,
		quoteTableName(ts.tableName, ts.backend), placeholders(ts.backend, 1))
	_, err := ts.db.Exec(query, key)
	return err
}

// upsertQuery returns the UPSERT query for the backend.
func (ts *ScoreTableStoreImpl) upsertQuery() string {
	quoted := quoteTableName(ts.tableName, ts.backend)
	switch ts.backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (table_key, table_value, table_version, table_timestamp) VALUES (?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE table_value = new.table_value, table_version = new.table_version, table_timestamp = new.table_timestamp`, quoted)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`INSERT INTO %s (table_key, table_value, table_version, table_timestamp) VALUES ($1, $2, $3, $4)
			ON CONFLICT (table_key) DO UPDATE SET table_value = EXCLUDED.table_value, table_version = EXCLUDED.table_version, table_timestamp = EXCLUDED.table_timestamp`, quoted)

	default: // SQLite
		return fmt.Sprintf(`INSERT OR REPLACE INTO %s (table_key, table_value, table_version, table_timestamp) VALUES (?, ?, ?, ?)`, quoted)
	}
}

// Close closes the underlying DB connection.
func (ts *ScoreTableStoreImpl) Close() error {
	if ts.db != nil {
		return ts.db.Close()
	}
	return nil
}

// GetStatus returns status information about the score table store.
func (ts *ScoreTableStoreImpl) GetStatus() (schema.TableStoreStatus, error) {
	status := schema.TableStoreStatus{
		Backend:   string(ts.backend),
		Connected: ts.db != nil,
	}
	if ts.disabled() {
		return status, nil
	}

	quoted := quoteTableName(ts.tableName, ts.backend)
	if err := ts.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", quoted)).Scan(&status.TotalEntries); err != nil {
		return status, fmt.Errorf("failed to get total entries: %w", err)
	}
	if status.TotalEntries == 0 {
		return status, nil
	}

	var lastTs, oldestTs int64
	row := ts.db.QueryRow(fmt.Sprintf("SELECT MAX(table_timestamp), MIN(table_timestamp) FROM %s", quoted))
	if err := row.Scan(&lastTs, &oldestTs); err != nil {
		return status, fmt.Errorf("failed to get entry times: %w", err)
	}
	status.LastEntryTime = time.Unix(lastTs, 0)
	status.OldestEntryTime = time.Unix(oldestTs, 0)
	status.TableSizeBytes = ts.tableSize(int64(status.TotalEntries))
	return status, nil
}

// tableSize asks the backend for the on-disk size, falling back to a rough estimate.
func (ts *ScoreTableStoreImpl) tableSize(entries int64) int64 {
	estimate := entries * 1000
	var size int64
	switch ts.backend {
	case schema.SQLiteBackend:
		row := ts.db.QueryRow("SELECT page_count * page_size FROM pragma_page_count(), pragma_page_size()")
		if err := row.Scan(&size); err != nil {
			return 0
		}
	case schema.MySQLBackend:
		cfg, err := mysql.ParseDSN(ts.connStr)
		if err != nil || cfg.DBName == "" {
			return estimate
		}
		row := ts.db.QueryRow("SELECT data_length + index_length FROM information_schema.tables WHERE table_schema = ? AND table_name = ?",
			cfg.DBName, ts.tableName)
		if err := row.Scan(&size); err != nil {
			return estimate
		}
	case schema.PostgreSQLBackend:
		if err := ts.db.QueryRow("SELECT pg_total_relation_size($1)", ts.tableName).Scan(&size); err != nil {
			return estimate
		}
	default:
		return estimate
	}
	return size
}
