package service

import (
	"fmt"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tdnguyen-dev/classroom-go-api/internal/models"
)

func testLogger() zerolog.Logger {
	return zerolog.Nop()
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Class{},
		&models.Assignment{},
		&models.Submission{},
		&models.SubmissionGradeEntry{},
		&models.Comment{},
		&models.ActivityLog{},
		&models.UploadRecord{},
	))

	return db
}

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	return redis.NewClient(&redis.Options{Addr: mr.Addr()})
}

func seedUser(t *testing.T, db *gorm.DB, name, role string) models.User {
	t.Helper()

	user := models.User{
		Name:   name,
		Email:  fmt.Sprintf("%s@example.com", name),
		Role:   role,
		Status: models.UserStatusActive,
	}
	require.NoError(t, db.Create(&user).Error)

	return user
}

func seedClass(t *testing.T, db *gorm.DB, teacher models.User, code string, members ...models.User) models.Class {
	t.Helper()

	class := models.Class{
		Name:      "Class " + code,
		Code:      code,
		TeacherID: teacher.ID,
		Status:    models.ClassStatusActive,
	}
	require.NoError(t, db.Create(&class).Error)
	for i := range members {
		require.NoError(t, db.Model(&class).Association("Members").Append(&members[i]))
	}

	return class
}

func seedAssignment(t *testing.T, db *gorm.DB, class models.Class, title string, dueDate *time.Time, allowLate bool) models.Assignment {
	t.Helper()

	assignment := models.Assignment{
		ClassID:   class.ID,
		Title:     title,
		DueDate:   dueDate,
		MaxScore:  models.DefaultMaxScore,
		AllowLate: allowLate,
	}
	require.NoError(t, db.Create(&assignment).Error)

	return assignment
}

func timePtr(t time.Time) *time.Time {
	return &t
}
