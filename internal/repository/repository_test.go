package repository

import (
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/domain"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&domain.User{},
		&domain.Category{},
		&domain.Resource{},
		&domain.Comment{},
		&domain.CommentImage{},
		&domain.Collection{},
		&domain.Follow{},
		&domain.Notification{},
		&domain.Conversation{},
		&domain.ChatMessage{},
		&domain.RoleChangeRequest{},
		&domain.OperationLog{},
		&domain.AnalyticsEvent{},
	))
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, username string, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{Username: username, Password: "x", Nickname: username, Role: role}
	require.NoError(t, db.Create(u).Error)
	return u
}

func createTestResource(t *testing.T, db *gorm.DB, uploaderID uint) *domain.Resource {
	t.Helper()
	r := &domain.Resource{
		UploaderID:    uploaderID,
		Title:         "test resource",
		Status:        domain.ResourceApproved,
		AllowComments: true,
	}
	require.NoError(t, db.Create(r).Error)
	return r
}
