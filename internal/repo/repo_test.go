package repo

import (
	"context"
	"testing"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/lib/pq"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func InitTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("failed to connect to in-memory db: %v", err)
	}
	sqlDB, err := db.DB()
	require.NoError(t, err)
	// every connection to :memory: is a fresh database
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(models.All()...); err != nil {
		t.Fatalf("failed to migrate tables: %v", err)
	}
	return db
}

func seedUser(t *testing.T, r *GormRepo, email string) *models.User {
	t.Helper()
	u := &models.User{Email: email, Name: "n", Password: "x", Permissions: pq.StringArray{"USER"}}
	require.NoError(t, r.CreateUserIfNotExists(context.Background(), u))
	return u
}

func seedItem(t *testing.T, r *GormRepo, owner, title string, price int64) *models.Item {
	t.Helper()
	it, err := r.CreateItem(context.Background(), &models.Item{
		Title: title, Description: title + " description", Price: price, UserID: owner,
	})
	require.NoError(t, err)
	return it
}
