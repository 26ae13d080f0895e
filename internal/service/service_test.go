package service

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/domain"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/repository"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/storage"
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

type testEnv struct {
	db            *gorm.DB
	store         *storage.MemoryStore
	users         *repository.UserRepository
	resources     *repository.ResourceRepository
	comments      *repository.CommentRepository
	notifications *repository.NotificationRepository
	notifySvc     *NotificationService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupTestDB(t)
	env := &testEnv{
		db:            db,
		store:         storage.NewMemoryStore(),
		users:         repository.NewUserRepository(db),
		resources:     repository.NewResourceRepository(db),
		comments:      repository.NewCommentRepository(db),
		notifications: repository.NewNotificationRepository(db),
	}
	env.notifySvc = NewNotificationService(env.notifications)
	return env
}

func (e *testEnv) commentService() *CommentService {
	return NewCommentService(e.db, e.comments, e.resources, e.users, e.notifySvc, e.store, 5*1024*1024)
}

func (e *testEnv) createUser(t *testing.T, username string, role domain.Role) *domain.User {
	t.Helper()
	u := &domain.User{Username: username, Password: "x", Nickname: username, Role: role}
	require.NoError(t, e.db.Create(u).Error)
	return u
}

func (e *testEnv) createResource(t *testing.T, uploaderID uint, allowComments bool) *domain.Resource {
	t.Helper()
	r := &domain.Resource{
		UploaderID:    uploaderID,
		Title:         "linear algebra notes",
		Status:        domain.ResourceApproved,
		AllowComments: allowComments,
	}
	require.NoError(t, e.db.Create(r).Error)
	return r
}

func testImageBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 100, 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}
