package handlers_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"smart_parking_auth/internal/handlers"
	"smart_parking_auth/internal/model"
	svc_mocks "smart_parking_auth/internal/service/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupTestProfileHandler(mockService *svc_mocks.AuthService) *handlers.ProfileHandler {
	testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return handlers.NewProfileHandler(mockService, testLogger)
}

// 認証ミドルウェア通過後の状態を再現する
func contextWithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, model.UserIDKey, userID)
}

// --- Test GetProfile ---
func TestProfileHandler_GetProfile(t *testing.T) {
	userID := uuid.New()

	t.Run("正常系: シークレットを除いたプロフィールを返す", func(t *testing.T) {
		mockService := new(svc_mocks.AuthService)
		mockService.On("GetProfile", mock.Anything, userID).
			Return(&model.ProfileResponse{
				UserID:     userID,
				Email:      "user@example.com",
				Name:       "Taro",
				IsVerified: true,
				AuthMethod: model.AuthMethodEmail,
			}, nil).Once()
		handler := setupTestProfileHandler(mockService)

		req := newJsonRequest(t, http.MethodGet, "/api/v1/data", nil)
		req = req.WithContext(contextWithUserID(req.Context(), userID))
		rr := httptest.NewRecorder()
		handler.GetProfile(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)

		var resp map[string]interface{}
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
		assert.Equal(t, "user@example.com", resp["email"])
		// ダイジェストやトークンに相当するキーが無いこと
		assert.NotContains(t, resp, "password_hash")
		assert.NotContains(t, resp, "refresh_token")
		assert.NotContains(t, resp, "verification_code")
		mockService.AssertExpectations(t)
	})

	t.Run("異常系: コンテキストにユーザーIDがない", func(t *testing.T) {
		mockService := new(svc_mocks.AuthService)
		handler := setupTestProfileHandler(mockService)

		req := newJsonRequest(t, http.MethodGet, "/api/v1/data", nil)
		rr := httptest.NewRecorder()
		handler.GetProfile(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		mockService.AssertNotCalled(t, "GetProfile", mock.Anything, mock.Anything)
	})

	t.Run("異常系: ユーザーが存在しないので404", func(t *testing.T) {
		mockService := new(svc_mocks.AuthService)
		mockService.On("GetProfile", mock.Anything, userID).
			Return(nil, model.NewAppError("USER_NOT_FOUND", "ユーザーが見つかりません。", "", model.ErrNotFound)).Once()
		handler := setupTestProfileHandler(mockService)

		req := newJsonRequest(t, http.MethodGet, "/api/v1/data", nil)
		req = req.WithContext(contextWithUserID(req.Context(), userID))
		rr := httptest.NewRecorder()
		handler.GetProfile(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		mockService.AssertExpectations(t)
	})
}

// --- Test UpdateProfile ---
func TestProfileHandler_UpdateProfile(t *testing.T) {
	userID := uuid.New()
	name := "New Name"

	t.Run("正常系: 更新成功で200", func(t *testing.T) {
		mockService := new(svc_mocks.AuthService)
		mockService.On("UpdateProfile", mock.Anything, userID, mock.AnythingOfType("*model.UpdateProfileRequest")).
			Return(&model.ProfileResponse{UserID: userID, Email: "user@example.com", Name: name}, nil).Once()
		handler := setupTestProfileHandler(mockService)

		req := newJsonRequest(t, http.MethodPut, "/api/v1/profile", model.UpdateProfileRequest{
			Email: "user@example.com",
			Name:  &name,
		})
		req = req.WithContext(contextWithUserID(req.Context(), userID))
		rr := httptest.NewRecorder()
		handler.UpdateProfile(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("異常系: メールアドレス未指定で400", func(t *testing.T) {
		mockService := new(svc_mocks.AuthService)
		handler := setupTestProfileHandler(mockService)

		req := newJsonRequest(t, http.MethodPut, "/api/v1/profile", model.UpdateProfileRequest{Name: &name})
		req = req.WithContext(contextWithUserID(req.Context(), userID))
		rr := httptest.NewRecorder()
		handler.UpdateProfile(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "UpdateProfile", mock.Anything, mock.Anything, mock.Anything)
	})
}

// --- Test Logout ---
func TestProfileHandler_Logout(t *testing.T) {
	userID := uuid.New()

	t.Run("正常系: ログアウト成功で204", func(t *testing.T) {
		mockService := new(svc_mocks.AuthService)
		mockService.On("Logout", mock.Anything, userID).Return(nil).Once()
		handler := setupTestProfileHandler(mockService)

		req := newJsonRequest(t, http.MethodDelete, "/api/v1/logout", nil)
		req = req.WithContext(contextWithUserID(req.Context(), userID))
		rr := httptest.NewRecorder()
		handler.Logout(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Empty(t, rr.Body.String())
		mockService.AssertExpectations(t)
	})

	t.Run("異常系: コンテキストにユーザーIDがない", func(t *testing.T) {
		mockService := new(svc_mocks.AuthService)
		handler := setupTestProfileHandler(mockService)

		req := newJsonRequest(t, http.MethodDelete, "/api/v1/logout", nil)
		rr := httptest.NewRecorder()
		handler.Logout(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		mockService.AssertNotCalled(t, "Logout", mock.Anything, mock.Anything)
	})
}
