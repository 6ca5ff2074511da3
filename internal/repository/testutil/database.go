// Package testutil provisions isolated PostgreSQL schemas for integration tests.
package testutil

import (
	"database/sql"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"github.com/xalts/authsuite/internal/config"
	"github.com/xalts/authsuite/internal/database"
)

// TestDatabase is a migrated schema private to one test
type TestDatabase struct {
	DB         *sql.DB
	SchemaName string
	masterDB   *sql.DB
}

// SetupTestDatabase creates and migrates an isolated schema, dropped on cleanup
func SetupTestDatabase(t *testing.T) *TestDatabase {
	t.Helper()

	pgConfig, err := config.LoadPostgresConfig(withDefaults(os.Getenv))
	if err != nil {
		t.Fatalf("Failed to load postgres config: %v", err)
	}

	masterDB, err := database.Open(pgConfig)
	if err != nil {
		t.Fatalf("Failed to connect to master database: %v", err)
	}

	schemaName := "test_runs_" + strings.ReplaceAll(uuid.NewString(), "-", "")
	if _, err := masterDB.Exec(fmt.Sprintf("CREATE SCHEMA %s", schemaName)); err != nil {
		masterDB.Close()
		t.Fatalf("Failed to create test schema: %v", err)
	}

	td := &TestDatabase{SchemaName: schemaName, masterDB: masterDB}
	t.Cleanup(func() { td.teardown(t) })

	testDB, err := sql.Open("postgres", fmt.Sprintf("%s search_path=%s", pgConfig.ConnectionString(), schemaName))
	if err != nil {
		t.Fatalf("Failed to connect to test schema: %v", err)
	}
	testDB.SetMaxOpenConns(5)
	testDB.SetMaxIdleConns(2)
	testDB.SetConnMaxLifetime(5 * time.Minute)
	td.DB = testDB

	if err := testDB.Ping(); err != nil {
		t.Fatalf("Failed to ping test database: %v", err)
	}
	if err := database.Migrate(testDB); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}

	return td
}

func (td *TestDatabase) teardown(t *testing.T) {
	if td.DB != nil {
		td.DB.Close()
	}
	if _, err := td.masterDB.Exec(fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", td.SchemaName)); err != nil {
		t.Logf("Warning: Failed to drop test schema %s: %v", td.SchemaName, err)
	}
	td.masterDB.Close()
}

// withDefaults points unset connection settings at a local postgres
func withDefaults(getenv func(string) string) func(string) string {
	defaults := map[string]string{
		"POSTGRES_USER":     "postgres",
		"POSTGRES_PASSWORD": "postgres",
		"POSTGRES_DB":       "postgres",
		"POSTGRES_HOSTNAME": "localhost",
	}
	return func(key string) string {
		if value := getenv(key); value != "" {
			return value
		}
		return defaults[key]
	}
}
