// Package testutil opens throwaway databases and seeds rows for tests.
package testutil

import (
	"fmt"
	"testing"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/andrewpaige1/brickstat-api/config"
	"github.com/andrewpaige1/brickstat-api/models"
)

// DB returns a migrated in-memory SQLite database private to the test. It
// uses a single connection, so concurrent transactions queue behind each
// other the way row locks would serialize them in Postgres.
func DB(tb testing.TB) *gorm.DB {
	tb.Helper()

	name, err := gonanoid.Generate("abcdefghijklmnopqrstuvwxyz0123456789", 16)
	if err != nil {
		tb.Fatalf("generate db name: %v", err)
	}

	db, err := config.Connect(fmt.Sprintf("file:%s?mode=memory&cache=shared", name), zap.NewNop())
	if err != nil {
		tb.Fatalf("open test db: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		tb.Fatalf("get sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	tb.Cleanup(func() { _ = sqlDB.Close() })

	if err := config.Migrate(db); err != nil {
		tb.Fatalf("migrate test db: %v", err)
	}
	return db
}

func SeedSet(tb testing.TB, db *gorm.DB, setNum, name string) *models.Set {
	tb.Helper()
	s := &models.Set{SetNum: setNum, Name: name}
	if err := db.Create(s).Error; err != nil {
		tb.Fatalf("seed set: %v", err)
	}
	return s
}

// SeedReview inserts a review with an explicit creation time so ordering
// assertions do not depend on clock resolution.
func SeedReview(tb testing.TB, db *gorm.DB, setNum string, userID int, createdAt time.Time) *models.Review {
	tb.Helper()
	r := &models.Review{SetNum: setNum, UserID: &userID, CreatedAt: createdAt}
	if err := db.Create(r).Error; err != nil {
		tb.Fatalf("seed review: %v", err)
	}
	return r
}

func IntPtr(v int) *int { return &v }

func StrPtr(v string) *string { return &v }
