package handler_test

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/golang/mock/gomock"
	"github.com/malee31/TimesheetManagementServer/internal/mocks"
	"github.com/malee31/TimesheetManagementServer/internal/timesheet/domain"
	"github.com/malee31/TimesheetManagementServer/internal/timesheet/handler"
	"github.com/malee31/TimesheetManagementServer/internal/timesheet/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAdminKey = "A-Test-Admin-Key"

// newTestApp wires the full route surface over a mocked repository.
func newTestApp(t *testing.T) (*fiber.App, *mocks.MockRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	mockRepo := mocks.NewMockRepository(ctrl)
	logger := slog.New(slog.DiscardHandler)

	credentialService := service.NewCredentialService(mockRepo, logger)
	sessionService := service.NewSessionService(mockRepo, logger)
	identityService := service.NewIdentityService(mockRepo, logger)

	h := handler.NewHandler(credentialService, sessionService, identityService, logger)
	m := handler.NewAuthMiddleware(credentialService, testAdminKey, logger)

	app := fiber.New()
	handler.RegisterRoutes(app, h, m)

	return app, mockRepo
}

// decodeBody unmarshals a response body into a generic map.
func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))

	return body
}

func TestRequireAuth(t *testing.T) {
	t.Run("missing authorization", func(t *testing.T) {
		app, _ := newTestApp(t)

		req := httptest.NewRequest(http.MethodGet, "/user/", nil)
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, false, body["ok"])
		assert.Equal(t, "not_authed", body["error"])
	})

	t.Run("non-bearer authorization", func(t *testing.T) {
		app, _ := newTestApp(t)

		req := httptest.NewRequest(http.MethodGet, "/user/", nil)
		req.Header.Set("Authorization", "Basic abc123")
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "invalid_auth_format", decodeBody(t, resp)["error"])
	})
}

func TestRequireUser(t *testing.T) {
	t.Run("wrong key prefix", func(t *testing.T) {
		app, _ := newTestApp(t)

		req := httptest.NewRequest(http.MethodGet, "/user/", nil)
		req.Header.Set("Authorization", "Bearer "+testAdminKey)
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "invalid_auth_format", decodeBody(t, resp)["error"])
	})

	t.Run("unknown key", func(t *testing.T) {
		app, mockRepo := newTestApp(t)
		mockRepo.EXPECT().CredentialsByToken(gomock.Any(), "U-Missing").Return(nil, nil)

		req := httptest.NewRequest(http.MethodGet, "/user/", nil)
		req.Header.Set("Authorization", "Bearer U-Missing")
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "user_not_found", decodeBody(t, resp)["error"])
	})

	t.Run("revoked key", func(t *testing.T) {
		app, mockRepo := newTestApp(t)
		revoked := []domain.Credential{{ID: 3, Secret: "pw-c", Token: "U-Dead-Key", Revoked: true}}
		mockRepo.EXPECT().CredentialsByToken(gomock.Any(), "U-Dead-Key").Return(revoked, nil)

		req := httptest.NewRequest(http.MethodGet, "/user/", nil)
		req.Header.Set("Authorization", "Bearer U-Dead-Key")
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "auth_revoked_by_user", decodeBody(t, resp)["error"])
	})

	t.Run("valid key attaches the secret", func(t *testing.T) {
		app, mockRepo := newTestApp(t)
		creds := []domain.Credential{{ID: 1, Secret: "pw-a", Token: "U-User-A-Key"}}
		mockRepo.EXPECT().CredentialsByToken(gomock.Any(), "U-User-A-Key").Return(creds, nil)
		mockRepo.EXPECT().UserBySecret(gomock.Any(), "pw-a").
			Return(&domain.User{ID: 1, FirstName: "test-a", LastName: "last-a", Secret: "pw-a"}, nil)

		req := httptest.NewRequest(http.MethodGet, "/user/", nil)
		req.Header.Set("Authorization", "Bearer U-User-A-Key")
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, true, body["ok"])
	})
}

func TestRequireAdmin(t *testing.T) {
	t.Run("user key on an admin route", func(t *testing.T) {
		app, _ := newTestApp(t)

		req := httptest.NewRequest(http.MethodGet, "/users/sessions?count=5&page=1", nil)
		req.Header.Set("Authorization", "Bearer U-User-A-Key")
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "invalid_auth_format", decodeBody(t, resp)["error"])
	})

	t.Run("wrong admin key", func(t *testing.T) {
		app, _ := newTestApp(t)

		req := httptest.NewRequest(http.MethodGet, "/users/sessions?count=5&page=1", nil)
		req.Header.Set("Authorization", "Bearer A-Wrong-Key")
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		assert.Equal(t, "invalid_admin_auth", decodeBody(t, resp)["error"])
	})

	t.Run("correct admin key proceeds", func(t *testing.T) {
		app, mockRepo := newTestApp(t)
		mockRepo.EXPECT().ListSessions(gomock.Any(), 5, 0).
			Return([]domain.Session{{ID: 1, Secret: "pw-a", StartTime: 1000}}, nil)

		req := httptest.NewRequest(http.MethodGet, "/users/sessions?count=5&page=1", nil)
		req.Header.Set("Authorization", "Bearer "+testAdminKey)
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, decodeBody(t, resp)["ok"])
	})
}
