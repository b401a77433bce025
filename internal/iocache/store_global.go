package iocache

import (
	"database/sql"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/huangsam/courseload/internal/contract"
	"github.com/huangsam/courseload/internal/rediscache"
	"github.com/huangsam/courseload/schema"
)

// scoreTablesTable is the name of the table holding serialized score tables.
const scoreTablesTable = "courseload_score_tables"

// Global Manager instance for main logic.
var (
	Manager   = &StoreManager{}
	initOnce  sync.Once
	closeOnce sync.Once
)

// GetTableDBFilePath returns the path to the SQLite DB file for score tables.
func GetTableDBFilePath() string {
	return contract.GetTableDBFilePath()
}

// GetRunDBFilePath returns the path to the SQLite DB file for run history.
func GetRunDBFilePath() string {
	return contract.GetRunDBFilePath()
}

// OpenTableStore opens the score table store for any supported backend.
func OpenTableStore(backend schema.DatabaseBackend, connStr string, ttl time.Duration) (contract.ScoreTableStore, error) {
	if backend == schema.RedisBackend {
		return rediscache.New(connStr, rediscache.DefaultPrefix, ttl)
	}
	return NewScoreTableStore(scoreTablesTable, backend, connStr)
}

// InitStores initializes the global manager with separate table and run stores.
// An empty backend leaves that store uninitialized.
func InitStores(tableBackend schema.DatabaseBackend, tableConnStr string, tableTTL time.Duration,
	runBackend schema.DatabaseBackend, runConnStr string,
) error {
	var initErr error

	initOnce.Do(func() {
		var err error

		var tables contract.ScoreTableStore
		if tableBackend != "" {
			tables, err = OpenTableStore(tableBackend, tableConnStr, tableTTL)
			if err != nil {
				initErr = fmt.Errorf("failed to initialize score table store: %w", err)
				return
			}
		}

		var runs contract.RunStore
		if runBackend != "" {
			runs, err = NewRunStore(runBackend, runConnStr)
			if err != nil {
				if tables != nil {
					_ = tables.Close()
				}
				initErr = fmt.Errorf("failed to initialize run store: %w", err)
				return
			}
		}

		Manager.Lock()
		defer Manager.Unlock()
		Manager.tables = tables
		Manager.runs = runs
	})

	return initErr
}

// CloseStores should be called on application shutdown.
func CloseStores() { // called in main defer
	closeOnce.Do(func() {
		Manager.Lock()
		defer Manager.Unlock()
		if Manager.tables != nil {
			_ = Manager.tables.Close()
		}
		if Manager.runs != nil {
			_ = Manager.runs.Close()
		}
	})
}

// ClearTables removes every stored score table.
// For SQLite, it deletes the database file. For MySQL and PostgreSQL, it drops the table.
// For Redis, it deletes the keys under the store prefix.
func ClearTables(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		return removeSQLiteFile(dbFilePath)
	case schema.MySQLBackend, schema.PostgreSQLBackend:
		return dropSQLTables(backend, connStr, scoreTablesTable)
	case schema.RedisBackend:
		store, err := rediscache.New(connStr, rediscache.DefaultPrefix, 0)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()
		return store.Clear()
	case schema.NoneBackend:
		return nil
	default:
		return fmt.Errorf("unsupported table backend for clearing: %s", backend)
	}
}

// ClearRuns removes the run history including its migration version.
// For SQLite, it deletes the database file. For MySQL and PostgreSQL, it drops the tables.
func ClearRuns(backend schema.DatabaseBackend, dbFilePath, connStr string) error {
	switch backend {
	case schema.SQLiteBackend:
		return removeSQLiteFile(dbFilePath)
	case schema.MySQLBackend, schema.PostgreSQLBackend:
		return dropSQLTables(backend, connStr, recommendationsTable, subjectScoresTable, runsTable, migrationsTable)
	case schema.NoneBackend:
		return nil
	default:
		return fmt.Errorf("unsupported store backend for clearing: %s", backend)
	}
}

func removeSQLiteFile(dbFilePath string) error {
	if dbFilePath == "" {
		return fmt.Errorf("dbFilePath cannot be empty for SQLite backend")
	}
	// Remove the file; ignore if it doesn't exist
	if err := os.Remove(dbFilePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove SQLite database file %s: %w", dbFilePath, err)
	}
	return nil
}

// dropSQLTables connects to the SQL database and drops the tables if they exist.
func dropSQLTables(backend schema.DatabaseBackend, connStr string, tables ...string) error {
	driverName, err := driverFor(backend)
	if err != nil {
		return err
	}
	db, err := sql.Open(driverName, connStr)
	if err != nil {
		return fmt.Errorf("failed to connect to %s database: %w", backend, err)
	}
	defer func() { _ = db.Close() }()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping %s database: %w", backend, err)
	}
	for _, table := range tables {
		query := fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteTableName(table, backend))
		if _, err := db.Exec(query); err != nil {
			return fmt.Errorf("failed to drop table %s: %w", table, err)
		}
	}
	return nil
}
