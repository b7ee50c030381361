package testutil

import (
	"testing"

	"github.com/kendall-kelly/private-messaging-api/config"
	"github.com/kendall-kelly/private-messaging-api/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// NewTestDB opens a migrated in-memory SQLite database private to the test.
// A single connection keeps every query, transactions included, on the same
// in-memory database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), config.GormConfig())
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("Failed to get test database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	if err := models.AutoMigrate(db); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return db
}

// CreateUser inserts a directory user for tests
func CreateUser(t *testing.T, db *gorm.DB, userName string, tenantID *string) models.User {
	t.Helper()

	key := userName
	if tenantID != nil {
		key = *tenantID + "." + userName
	}
	user := models.User{
		Auth0ID:  "auth0|" + key,
		TenantID: tenantID,
		UserName: userName,
		Name:     userName + " display",
		Email:    key + "@example.com",
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user %s: %v", userName, err)
	}
	return user
}
