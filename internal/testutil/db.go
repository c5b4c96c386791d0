package testutil

import (
	"fmt"
	"strings"
	"testing"

	"github.com/atlas-procurement/request-api/internal/database"
	"github.com/atlas-procurement/request-api/internal/domain"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// SetupTestDB creates an isolated in-memory SQLite database with the full
// schema migrated. Each test gets its own database, named after the test so
// parallel tests never share state. Foreign keys are enabled so cascade
// behavior matches postgres.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_fk=1", name)

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err, "failed to open test database")

	require.NoError(t, database.AutoMigrate(db), "failed to migrate test database")

	return db
}

// CreateTestRequester inserts a requester for use in tests
func CreateTestRequester(t *testing.T, db *gorm.DB, name string) *domain.Requester {
	t.Helper()
	requester := &domain.Requester{
		Name:  name,
		Email: strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
	}
	require.NoError(t, db.Create(requester).Error)
	return requester
}

// CreateTestBuyer inserts a buyer for use in tests
func CreateTestBuyer(t *testing.T, db *gorm.DB, name string) *domain.Buyer {
	t.Helper()
	buyer := &domain.Buyer{
		Name:  name,
		Email: strings.ToLower(strings.ReplaceAll(name, " ", ".")) + "@example.com",
	}
	require.NoError(t, db.Create(buyer).Error)
	return buyer
}

// CreateTestUser inserts a user account for use in tests
func CreateTestUser(t *testing.T, db *gorm.DB, username string) *domain.User {
	t.Helper()
	user := &domain.User{
		Username:    username,
		DisplayName: username,
		Email:       username + "@example.com",
		IsActive:    true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}
