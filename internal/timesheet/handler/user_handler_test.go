package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/golang/mock/gomock"
	apperror "github.com/malee31/TimesheetManagementServer/internal/errors"
	"github.com/malee31/TimesheetManagementServer/internal/timesheet/domain"
	"github.com/malee31/TimesheetManagementServer/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetUser(t *testing.T) {
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
	assert.Equal(t, float64(1), body["id"])
	assert.Equal(t, "test-a", body["first_name"])
	assert.Equal(t, "last-a", body["last_name"])
	assert.Nil(t, body["session"])
	assert.NotContains(t, body, "secret")
}

func TestGetUserStatus(t *testing.T) {
	creds := []domain.Credential{{ID: 1, Secret: "pw-a", Token: "U-User-A-Key"}}
	statusReq := func() *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/user/status", nil)
		req.Header.Set("Authorization", "Bearer U-User-A-Key")
		return req
	}

	t.Run("user with an ongoing session", func(t *testing.T) {
		app, mockRepo := newTestApp(t)
		mockRepo.EXPECT().CredentialsByToken(gomock.Any(), "U-User-A-Key").Return(creds, nil)
		mockRepo.EXPECT().UserBySecret(gomock.Any(), "pw-a").
			Return(&domain.User{ID: 1, FirstName: "test-a", LastName: "last-a", Secret: "pw-a"}, nil)
		mockRepo.EXPECT().LatestSession(gomock.Any(), "pw-a").
			Return(&domain.Session{ID: 2, Secret: "pw-a", StartTime: 1681894800000}, nil)

		resp, err := app.Test(statusReq())
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, true, body["ok"])
		user, _ := body["user"].(map[string]any)
		require.NotNil(t, user)
		assert.Equal(t, float64(1), user["id"])
		assert.Equal(t, "test-a", user["first_name"])
		session, _ := user["session"].(map[string]any)
		require.NotNil(t, session)
		assert.Equal(t, float64(2), session["session_id"])
	})

	t.Run("user with no session", func(t *testing.T) {
		app, mockRepo := newTestApp(t)
		mockRepo.EXPECT().CredentialsByToken(gomock.Any(), "U-User-A-Key").Return(creds, nil)
		mockRepo.EXPECT().UserBySecret(gomock.Any(), "pw-a").
			Return(&domain.User{ID: 1, FirstName: "test-a", LastName: "last-a", Secret: "pw-a"}, nil)
		mockRepo.EXPECT().LatestSession(gomock.Any(), "pw-a").Return(nil, nil)

		resp, err := app.Test(statusReq())
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		user, _ := decodeBody(t, resp)["user"].(map[string]any)
		require.NotNil(t, user)
		assert.Nil(t, user["session"])
	})
}

func TestCreateUser(t *testing.T) {
	adminJSON := func(body string) *http.Request {
		req := jsonRequest(http.MethodPost, "/user", body)
		req.Header.Set("Authorization", "Bearer "+testAdminKey)
		return req
	}

	t.Run("registers a user and mints a key", func(t *testing.T) {
		app, mockRepo := newTestApp(t)
		mockRepo.EXPECT().
			CreateUser(gomock.Any(), "New", "Member", "pw-new", gomock.Any()).
			DoAndReturn(func(_ context.Context, firstName, lastName, secret, apiKey string) (*domain.User, error) {
				require.True(t, token.IsUserKey(apiKey))
				return &domain.User{ID: 7, FirstName: firstName, LastName: lastName, Secret: secret}, nil
			})

		resp, err := app.Test(adminJSON(`{"firstName":"New","lastName":"Member","password":"pw-new"}`))
		require.NoError(t, err)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, true, body["ok"])
		user, _ := body["user"].(map[string]any)
		require.NotNil(t, user)
		assert.Equal(t, float64(7), user["id"])
		assert.Equal(t, "New", user["first_name"])
	})

	t.Run("existing password answers password_in_use", func(t *testing.T) {
		app, mockRepo := newTestApp(t)
		mockRepo.EXPECT().
			CreateUser(gomock.Any(), "Imposter", "A", "pw-a", gomock.Any()).
			Return(nil, apperror.ErrPasswordInUse)

		resp, err := app.Test(adminJSON(`{"firstName":"Imposter","lastName":"A","password":"pw-a"}`))
		require.NoError(t, err)

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, false, body["ok"])
		assert.Equal(t, "password_in_use", body["error"])
	})

	t.Run("rejects blank fields", func(t *testing.T) {
		app, _ := newTestApp(t)

		resp, err := app.Test(adminJSON(`{"firstName":"  ","lastName":"Member","password":"pw-new"}`))
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "user_data_not_nonempty_strings", decodeBody(t, resp)["error"])
	})
}

func TestChangePassword(t *testing.T) {
	creds := []domain.Credential{{ID: 1, Secret: "pw-a", Token: "U-User-A-Key"}}
	userJSON := func(body string) *http.Request {
		req := jsonRequest(http.MethodPut, "/user/password", body)
		req.Header.Set("Authorization", "Bearer U-User-A-Key")
		return req
	}

	t.Run("re-keys the caller", func(t *testing.T) {
		app, mockRepo := newTestApp(t)
		mockRepo.EXPECT().CredentialsByToken(gomock.Any(), "U-User-A-Key").Return(creds, nil)
		mockRepo.EXPECT().SecretInUse(gomock.Any(), "pw-next").Return(false, nil)
		mockRepo.EXPECT().UpdateSecret(gomock.Any(), "pw-a", "pw-next").Return(nil)

		resp, err := app.Test(userJSON(`{"newPassword":"pw-next"}`))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, decodeBody(t, resp)["ok"])
	})

	t.Run("collision leaves everything untouched", func(t *testing.T) {
		app, mockRepo := newTestApp(t)
		mockRepo.EXPECT().CredentialsByToken(gomock.Any(), "U-User-A-Key").Return(creds, nil)
		mockRepo.EXPECT().SecretInUse(gomock.Any(), "pw-b").Return(true, nil)

		resp, err := app.Test(userJSON(`{"newPassword":"pw-b"}`))
		require.NoError(t, err)

		assert.Equal(t, http.StatusConflict, resp.StatusCode)
		assert.Equal(t, "password_in_use", decodeBody(t, resp)["error"])
	})

	t.Run("missing password", func(t *testing.T) {
		app, mockRepo := newTestApp(t)
		mockRepo.EXPECT().CredentialsByToken(gomock.Any(), "U-User-A-Key").Return(creds, nil)

		resp, err := app.Test(userJSON(`{}`))
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "no_password_provided", decodeBody(t, resp)["error"])
	})
}

func TestDeleteUser(t *testing.T) {
	adminJSON := func(body string) *http.Request {
		req := jsonRequest(http.MethodDelete, "/user", body)
		req.Header.Set("Authorization", "Bearer "+testAdminKey)
		return req
	}

	t.Run("removes the user", func(t *testing.T) {
		app, mockRepo := newTestApp(t)
		mockRepo.EXPECT().DeleteUser(gomock.Any(), "pw-a").Return(nil)

		resp, err := app.Test(adminJSON(`{"password":"pw-a"}`))
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, true, decodeBody(t, resp)["ok"])
	})

	t.Run("missing user is a soft warning", func(t *testing.T) {
		app, mockRepo := newTestApp(t)
		mockRepo.EXPECT().DeleteUser(gomock.Any(), "pw-gone").Return(apperror.ErrAlreadyDeleted)

		resp, err := app.Test(adminJSON(`{"password":"pw-gone"}`))
		require.NoError(t, err)

		assert.Equal(t, http.StatusAccepted, resp.StatusCode)
		body := decodeBody(t, resp)
		assert.Equal(t, true, body["ok"])
		assert.Equal(t, "already_deleted", body["warning"])
	})
}
