// Package testutil provides test helpers for setting up in-memory databases,
// creating fixtures, and making assertions.
package testutil

import (
	"fmt"
	"strings"
	"testing"

	"ginkit/internal/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an in-memory SQLite database with all models migrated.
// Each test gets its own database; plugins (such as the audit recorder) are
// installed before migration.
func SetupTestDB(t *testing.T, plugins ...gorm.Plugin) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Discard,
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	for _, p := range plugins {
		if err := db.Use(p); err != nil {
			t.Fatalf("failed to install plugin %s: %v", p.Name(), err)
		}
	}

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

// TeardownTestDB closes the underlying database connection.
func TeardownTestDB(t *testing.T, db *gorm.DB) {
	t.Helper()

	sqlDB, err := db.DB()
	if err != nil {
		t.Errorf("failed to get underlying DB for teardown: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		t.Errorf("failed to close test database: %v", err)
	}
}

// CountAuditEntries returns the number of audit entries matching the
// optional table name and action.
func CountAuditEntries(t *testing.T, db *gorm.DB, tableName string, action models.AuditAction) int64 {
	t.Helper()

	q := db.Model(&models.AuditEntry{})
	if tableName != "" {
		q = q.Where("table_name = ?", tableName)
	}
	if action != "" {
		q = q.Where("action = ?", action)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		t.Fatalf("failed to count audit entries: %v", err)
	}
	return count
}
