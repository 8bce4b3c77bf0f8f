package handlers_test // テスト対象とは別のパッケージ名

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"smart_parking_auth/internal/handlers"
	"smart_parking_auth/internal/model"
	svc_mocks "smart_parking_auth/internal/service/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- ヘルパー: モックハンドラーのセットアップ ---
func setupTestAuthHandler(mockService *svc_mocks.AuthService) *handlers.AuthHandler {
	testLogger := slog.New(slog.NewTextHandler(io.Discard, nil)) // ログ出力を抑制
	return handlers.NewAuthHandler(mockService, testLogger)
}

// --- ヘルパー: JSONボディの作成 ---
func newJsonRequest(t *testing.T, method string, target string, body interface{}) *http.Request {
	var reqBody io.Reader
	if body != nil {
		if bodyStr, ok := body.(string); ok {
			reqBody = strings.NewReader(bodyStr)
		} else {
			jsonData, err := json.Marshal(body)
			require.NoError(t, err)
			reqBody = bytes.NewBuffer(jsonData)
		}
	}
	req, err := http.NewRequest(method, target, reqBody)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// --- Test Register ---
func TestAuthHandler_Register(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name       string
		body       interface{}
		setupMock  func(m *svc_mocks.AuthService)
		wantStatus int
	}{
		{
			name: "正常系: 登録成功で201とユーザーIDを返す",
			body: model.RegisterRequest{Email: "new@example.com", Password: "password123"},
			setupMock: func(m *svc_mocks.AuthService) {
				m.On("Register", mock.Anything, mock.AnythingOfType("*model.RegisterRequest")).
					Return(&model.RegisterResponse{UserID: userID}, nil).Once()
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "異常系: 壊れたJSONボディ",
			body:       `{"email": `,
			setupMock:  func(m *svc_mocks.AuthService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "異常系: メールアドレスの形式が不正",
			body:       model.RegisterRequest{Email: "not-an-email", Password: "password123"},
			setupMock:  func(m *svc_mocks.AuthService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "異常系: パスワードが短すぎる",
			body:       model.RegisterRequest{Email: "new@example.com", Password: "short"},
			setupMock:  func(m *svc_mocks.AuthService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "異常系: メールアドレスの重複で409",
			body: model.RegisterRequest{Email: "taken@example.com", Password: "password123"},
			setupMock: func(m *svc_mocks.AuthService) {
				m.On("Register", mock.Anything, mock.AnythingOfType("*model.RegisterRequest")).
					Return(nil, model.NewAppError("DUPLICATE_EMAIL", "このメールアドレスは既に使用されています。", "email", model.ErrConflict)).Once()
			},
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(svc_mocks.AuthService)
			tt.setupMock(mockService)
			handler := setupTestAuthHandler(mockService)

			req := newJsonRequest(t, http.MethodPost, "/api/v1/register", tt.body)
			rr := httptest.NewRecorder()
			handler.Register(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusCreated {
				var resp model.RegisterResponse
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, userID, resp.UserID)
			}
			mockService.AssertExpectations(t)
		})
	}
}

// --- Test VerifyAccount ---
func TestAuthHandler_VerifyAccount(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name       string
		body       interface{}
		setupMock  func(m *svc_mocks.AuthService)
		wantStatus int
	}{
		{
			name: "正常系: 認証成功で200とトークンペアを返す",
			body: model.VerifyRequest{UserID: userID, Code: "123456"},
			setupMock: func(m *svc_mocks.AuthService) {
				m.On("VerifyAccount", mock.Anything, mock.AnythingOfType("*model.VerifyRequest")).
					Return(&model.LoginResponse{UserID: userID, AccessToken: "access", RefreshToken: "refresh"}, nil).Once()
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "異常系: コードが6桁でない",
			body:       model.VerifyRequest{UserID: userID, Code: "123"},
			setupMock:  func(m *svc_mocks.AuthService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "異常系: コード不一致で401",
			body: model.VerifyRequest{UserID: userID, Code: "000000"},
			setupMock: func(m *svc_mocks.AuthService) {
				m.On("VerifyAccount", mock.Anything, mock.AnythingOfType("*model.VerifyRequest")).
					Return(nil, model.NewAppError("VERIFICATION_FAILED", "認証コードが正しくありません。", "code", model.ErrUnauthorized)).Once()
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "異常系: コードの期限切れで403",
			body: model.VerifyRequest{UserID: userID, Code: "123456"},
			setupMock: func(m *svc_mocks.AuthService) {
				m.On("VerifyAccount", mock.Anything, mock.AnythingOfType("*model.VerifyRequest")).
					Return(nil, model.NewAppError("VERIFICATION_CODE_EXPIRED", "認証コードの有効期限が切れています。", "code", model.ErrForbidden)).Once()
			},
			wantStatus: http.StatusForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(svc_mocks.AuthService)
			tt.setupMock(mockService)
			handler := setupTestAuthHandler(mockService)

			req := newJsonRequest(t, http.MethodPost, "/api/v1/verify", tt.body)
			rr := httptest.NewRecorder()
			handler.VerifyAccount(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusOK {
				var resp model.LoginResponse
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.NotEmpty(t, resp.AccessToken)
				assert.NotEmpty(t, resp.RefreshToken)
			}
			mockService.AssertExpectations(t)
		})
	}
}

// --- Test Login ---
func TestAuthHandler_Login(t *testing.T) {
	userID := uuid.New()

	tests := []struct {
		name       string
		body       interface{}
		setupMock  func(m *svc_mocks.AuthService)
		wantStatus int
	}{
		{
			name: "正常系: ログイン成功で200とトークンペアを返す",
			body: model.LoginRequest{Email: "user@example.com", Password: "password123"},
			setupMock: func(m *svc_mocks.AuthService) {
				m.On("Login", mock.Anything, mock.AnythingOfType("*model.LoginRequest")).
					Return(&model.LoginResponse{UserID: userID, AccessToken: "access", RefreshToken: "refresh"}, nil).Once()
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "異常系: 認証失敗で401",
			body: model.LoginRequest{Email: "user@example.com", Password: "wrong"},
			setupMock: func(m *svc_mocks.AuthService) {
				m.On("Login", mock.Anything, mock.AnythingOfType("*model.LoginRequest")).
					Return(nil, model.NewAppError("AUTHENTICATION_FAILED", "メールアドレスまたはパスワードが正しくありません。", "", model.ErrUnauthorized)).Once()
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "異常系: 未認証アカウントで403",
			body: model.LoginRequest{Email: "pending@example.com", Password: "password123"},
			setupMock: func(m *svc_mocks.AuthService) {
				m.On("Login", mock.Anything, mock.AnythingOfType("*model.LoginRequest")).
					Return(nil, model.NewAppError("ACCOUNT_NOT_VERIFIED", "アカウントが有効化されていません。", "", model.ErrForbidden)).Once()
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "異常系: パスワード未指定",
			body:       model.LoginRequest{Email: "user@example.com"},
			setupMock:  func(m *svc_mocks.AuthService) {},
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(svc_mocks.AuthService)
			tt.setupMock(mockService)
			handler := setupTestAuthHandler(mockService)

			req := newJsonRequest(t, http.MethodPost, "/api/v1/login", tt.body)
			rr := httptest.NewRecorder()
			handler.Login(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			mockService.AssertExpectations(t)
		})
	}
}

// --- Test RefreshToken ---
func TestAuthHandler_RefreshToken(t *testing.T) {
	tests := []struct {
		name       string
		body       interface{}
		setupMock  func(m *svc_mocks.AuthService)
		wantStatus int
	}{
		{
			name: "正常系: 再発行成功で200とアクセストークンのみを返す",
			body: model.RefreshRequest{RefreshToken: "valid-refresh"},
			setupMock: func(m *svc_mocks.AuthService) {
				m.On("RefreshToken", mock.Anything, "valid-refresh").
					Return(&model.RefreshResponse{AccessToken: "new-access"}, nil).Once()
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "異常系: トークン未指定で401",
			body: model.RefreshRequest{},
			setupMock: func(m *svc_mocks.AuthService) {
				m.On("RefreshToken", mock.Anything, "").
					Return(nil, model.NewAppError("UNAUTHORIZED", "リフレッシュトークンが必要です。", "refresh_token", model.ErrUnauthorized)).Once()
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "異常系: 無効なトークンで403",
			body: model.RefreshRequest{RefreshToken: "revoked-refresh"},
			setupMock: func(m *svc_mocks.AuthService) {
				m.On("RefreshToken", mock.Anything, "revoked-refresh").
					Return(nil, model.NewAppError("invalid", "リフレッシュトークンが無効です。", "", model.ErrForbidden)).Once()
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name: "異常系: ユーザーが存在しないので404",
			body: model.RefreshRequest{RefreshToken: "orphan-refresh"},
			setupMock: func(m *svc_mocks.AuthService) {
				m.On("RefreshToken", mock.Anything, "orphan-refresh").
					Return(nil, model.NewAppError("USER_NOT_FOUND", "ユーザーが見つかりません。", "", model.ErrNotFound)).Once()
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(svc_mocks.AuthService)
			tt.setupMock(mockService)
			handler := setupTestAuthHandler(mockService)

			req := newJsonRequest(t, http.MethodPost, "/api/v1/token", tt.body)
			rr := httptest.NewRecorder()
			handler.RefreshToken(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			if tt.wantStatus == http.StatusOK {
				var resp map[string]interface{}
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
				assert.Equal(t, "new-access", resp["access_token"])
				// リフレッシュトークンはレスポンスに含まれない
				assert.NotContains(t, resp, "refresh_token")
			}
			mockService.AssertExpectations(t)
		})
	}
}

// --- Test RegisterFederated / LoginFederated ---
func TestAuthHandler_Federated(t *testing.T) {
	userID := uuid.New()

	t.Run("正常系: 外部ID登録は201でトークンペアを返す", func(t *testing.T) {
		mockService := new(svc_mocks.AuthService)
		mockService.On("RegisterFederated", mock.Anything, mock.AnythingOfType("*model.FederatedRegisterRequest")).
			Return(&model.LoginResponse{UserID: userID, AccessToken: "access", RefreshToken: "refresh"}, nil).Once()
		handler := setupTestAuthHandler(mockService)

		req := newJsonRequest(t, http.MethodPost, "/api/v1/register/federated", model.FederatedRegisterRequest{
			Email:    "fed@example.com",
			Password: "placeholder",
			Name:     "Taro",
			Method:   model.AuthMethodGoogle,
		})
		rr := httptest.NewRecorder()
		handler.RegisterFederated(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("異常系: methodが未知の値なら400", func(t *testing.T) {
		mockService := new(svc_mocks.AuthService)
		handler := setupTestAuthHandler(mockService)

		req := newJsonRequest(t, http.MethodPost, "/api/v1/register/federated", model.FederatedRegisterRequest{
			Email:    "fed@example.com",
			Password: "placeholder",
			Name:     "Taro",
			Method:   "github",
		})
		rr := httptest.NewRecorder()
		handler.RegisterFederated(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		mockService.AssertNotCalled(t, "RegisterFederated", mock.Anything, mock.Anything)
	})

	t.Run("正常系: 外部IDログインは200", func(t *testing.T) {
		mockService := new(svc_mocks.AuthService)
		mockService.On("LoginFederated", mock.Anything, mock.AnythingOfType("*model.FederatedLoginRequest")).
			Return(&model.LoginResponse{UserID: userID, AccessToken: "access", RefreshToken: "refresh"}, nil).Once()
		handler := setupTestAuthHandler(mockService)

		req := newJsonRequest(t, http.MethodPost, "/api/v1/login/federated", model.FederatedLoginRequest{Email: "fed@example.com"})
		rr := httptest.NewRecorder()
		handler.LoginFederated(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		mockService.AssertExpectations(t)
	})

	t.Run("異常系: 未登録の外部IDログインは401", func(t *testing.T) {
		mockService := new(svc_mocks.AuthService)
		mockService.On("LoginFederated", mock.Anything, mock.AnythingOfType("*model.FederatedLoginRequest")).
			Return(nil, model.NewAppError("AUTHENTICATION_FAILED", "認証に失敗しました。", "", model.ErrUnauthorized)).Once()
		handler := setupTestAuthHandler(mockService)

		req := newJsonRequest(t, http.MethodPost, "/api/v1/login/federated", model.FederatedLoginRequest{Email: "unknown@example.com"})
		rr := httptest.NewRecorder()
		handler.LoginFederated(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		mockService.AssertExpectations(t)
	})
}
