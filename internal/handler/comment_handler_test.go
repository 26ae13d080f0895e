package handler

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/auth"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/domain"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/dto"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/middleware"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/repository"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/service"
	"github.com/15339065062/Graduation-Design-EduResourcePlatform/internal/storage"
)

type testApp struct {
	app        *fiber.App
	db         *gorm.DB
	jwtService *auth.JWTService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.User{}, &domain.Resource{}, &domain.Comment{},
		&domain.CommentImage{}, &domain.Notification{},
	))

	store := storage.NewMemoryStore()
	userRepo := repository.NewUserRepository(db)
	resourceRepo := repository.NewResourceRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	notificationSvc := service.NewNotificationService(notificationRepo)
	commentSvc := service.NewCommentService(db, commentRepo, resourceRepo, userRepo, notificationSvc, store, 5*1024*1024)

	jwtService := auth.NewJWTService("test-secret-test-secret-test-secret", time.Hour, "edushare")
	commentHandler := NewCommentHandler(commentSvc)

	app := fiber.New()
	required := middleware.Required(jwtService)
	optional := middleware.Optional(jwtService)
	app.Get("/api/comments", optional, commentHandler.List)
	app.Post("/api/comments", required, commentHandler.Create)
	app.Get("/api/resources/:id/comments", optional, commentHandler.ListByResource)
	app.Get("/api/comments/:id/replies", optional, commentHandler.ListReplies)
	app.Put("/api/comments/:id", required, commentHandler.Update)
	app.Delete("/api/comments/:id", required, commentHandler.Delete)

	return &testApp{app: app, db: db, jwtService: jwtService}
}

func (ta *testApp) createUser(t *testing.T, username string, role domain.Role) (*domain.User, string) {
	t.Helper()
	u := &domain.User{Username: username, Password: "x", Nickname: username, Role: role}
	require.NoError(t, ta.db.Create(u).Error)
	token, err := ta.jwtService.GenerateToken(u)
	require.NoError(t, err)
	return u, token
}

func (ta *testApp) createResource(t *testing.T, uploaderID uint) *domain.Resource {
	t.Helper()
	r := &domain.Resource{
		UploaderID: uploaderID, Title: "notes",
		Status: domain.ResourceApproved, AllowComments: true,
	}
	require.NoError(t, ta.db.Create(r).Error)
	return r
}

func doJSON(t *testing.T, app *fiber.App, method, path, token string, body interface{}) (*http.Response, dto.Response) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	var envelope dto.Response
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, &envelope))
	return resp, envelope
}

func TestCreateCommentEndpoint(t *testing.T) {
	ta := newTestApp(t)
	uploader, _ := ta.createUser(t, "uploader", domain.RoleTeacher)
	_, token := ta.createUser(t, "alice", domain.RoleUser)
	res := ta.createResource(t, uploader.ID)

	resp, envelope := doJSON(t, ta.app, fiber.MethodPost, "/api/comments", token, fiber.Map{
		"resourceId": res.ID,
		"content":    "nice notes",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, envelope.Success)
}

func TestCreateCommentRequiresAuth(t *testing.T) {
	ta := newTestApp(t)

	resp, envelope := doJSON(t, ta.app, fiber.MethodPost, "/api/comments", "", fiber.Map{
		"resourceId": 1, "content": "hi",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.False(t, envelope.Success)
}

func TestBusinessFailureUsesEnvelope(t *testing.T) {
	ta := newTestApp(t)
	uploader, token := ta.createUser(t, "uploader", domain.RoleTeacher)
	res := ta.createResource(t, uploader.ID)

	// validation failures are a business failure, not an HTTP error
	resp, envelope := doJSON(t, ta.app, fiber.MethodPost, "/api/comments", token, fiber.Map{
		"resourceId": res.ID, "content": "   ",
	})
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, envelope.Success)
}

func TestCommentsDisabledIsForbidden(t *testing.T) {
	ta := newTestApp(t)
	uploader, token := ta.createUser(t, "uploader", domain.RoleTeacher)
	res := ta.createResource(t, uploader.ID)
	require.NoError(t, ta.db.Model(res).Update("allow_comments", false).Error)

	resp, envelope := doJSON(t, ta.app, fiber.MethodPost, "/api/comments", token, fiber.Map{
		"resourceId": res.ID, "content": "hi",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.False(t, envelope.Success)
}

func TestListCommentsPageSizeClamp(t *testing.T) {
	ta := newTestApp(t)
	uploader, token := ta.createUser(t, "uploader", domain.RoleTeacher)
	res := ta.createResource(t, uploader.ID)

	for i := 0; i < 3; i++ {
		_, envelope := doJSON(t, ta.app, fiber.MethodPost, "/api/comments", token, fiber.Map{
			"resourceId": res.ID, "content": fmt.Sprintf("comment %d", i),
		})
		require.True(t, envelope.Success)
	}

	resp, envelope := doJSON(t, ta.app, fiber.MethodGet,
		fmt.Sprintf("/api/resources/%d/comments?page=0&pageSize=500", res.ID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, envelope.Success)

	payload, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var page dto.PageResult
	require.NoError(t, json.Unmarshal(payload, &page))

	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 50, page.PageSize)
	assert.Equal(t, int64(3), page.Total)
}

func TestUpdateCommentEndpoint(t *testing.T) {
	ta := newTestApp(t)
	uploader, _ := ta.createUser(t, "uploader", domain.RoleTeacher)
	_, aliceToken := ta.createUser(t, "alice", domain.RoleUser)
	_, eveToken := ta.createUser(t, "eve", domain.RoleUser)
	res := ta.createResource(t, uploader.ID)

	_, envelope := doJSON(t, ta.app, fiber.MethodPost, "/api/comments", aliceToken, fiber.Map{
		"resourceId": res.ID, "content": "first take",
	})
	require.True(t, envelope.Success)

	payload, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var created dto.CommentInfo
	require.NoError(t, json.Unmarshal(payload, &created))

	// only the author may edit
	resp, _ := doJSON(t, ta.app, fiber.MethodPut, fmt.Sprintf("/api/comments/%d", created.ID), eveToken, fiber.Map{
		"content": "hijack",
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, envelope = doJSON(t, ta.app, fiber.MethodPut, fmt.Sprintf("/api/comments/%d", created.ID), aliceToken, fiber.Map{
		"content": "second take",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, envelope.Success)

	payload, err = json.Marshal(envelope.Data)
	require.NoError(t, err)
	var updated dto.CommentInfo
	require.NoError(t, json.Unmarshal(payload, &updated))
	assert.Equal(t, "second take", updated.Content)
}

func TestListCommentsByQueryParam(t *testing.T) {
	ta := newTestApp(t)
	uploader, token := ta.createUser(t, "uploader", domain.RoleTeacher)
	res := ta.createResource(t, uploader.ID)

	_, envelope := doJSON(t, ta.app, fiber.MethodPost, "/api/comments", token, fiber.Map{
		"resourceId": res.ID, "content": "hello",
	})
	require.True(t, envelope.Success)

	resp, envelope := doJSON(t, ta.app, fiber.MethodGet,
		fmt.Sprintf("/api/comments?resourceId=%d", res.ID), "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.True(t, envelope.Success)

	payload, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var page dto.PageResult
	require.NoError(t, json.Unmarshal(payload, &page))
	assert.Equal(t, int64(1), page.Total)

	// missing resourceId is a validation failure
	resp, envelope = doJSON(t, ta.app, fiber.MethodGet, "/api/comments", "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.False(t, envelope.Success)
}

func TestDeleteCommentEndpoint(t *testing.T) {
	ta := newTestApp(t)
	uploader, _ := ta.createUser(t, "uploader", domain.RoleTeacher)
	_, aliceToken := ta.createUser(t, "alice", domain.RoleUser)
	_, eveToken := ta.createUser(t, "eve", domain.RoleUser)
	res := ta.createResource(t, uploader.ID)

	_, envelope := doJSON(t, ta.app, fiber.MethodPost, "/api/comments", aliceToken, fiber.Map{
		"resourceId": res.ID, "content": "delete me",
	})
	require.True(t, envelope.Success)

	payload, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var created dto.CommentInfo
	require.NoError(t, json.Unmarshal(payload, &created))

	// a stranger is forbidden
	resp, _ := doJSON(t, ta.app, fiber.MethodDelete, fmt.Sprintf("/api/comments/%d", created.ID), eveToken, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// the author may delete
	resp, _ = doJSON(t, ta.app, fiber.MethodDelete, fmt.Sprintf("/api/comments/%d", created.ID), aliceToken, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// a second delete finds nothing
	resp, _ = doJSON(t, ta.app, fiber.MethodDelete, fmt.Sprintf("/api/comments/%d", created.ID), aliceToken, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
