// internal/service/token_service_test.go
package service

import (
	"testing"
	"time"

	"smart_parking_auth/internal/config"
	"smart_parking_auth/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTokenConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Name: "test-app"},
		JWT: config.JWTConfig{
			AccessSecret:    "test-access-secret",
			RefreshSecret:   "test-refresh-secret",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 720 * time.Hour,
		},
	}
}

func Test_jwtTokenService_IssuePairAndVerify(t *testing.T) {
	ts := NewTokenService(newTestTokenConfig())
	userID := uuid.New()

	accessToken, refreshToken, err := ts.IssuePair(userID)
	require.NoError(t, err)
	require.NotEmpty(t, accessToken)
	require.NotEmpty(t, refreshToken)
	// ペアは別の秘密鍵で署名されるので同一にはならない
	assert.NotEqual(t, accessToken, refreshToken)

	gotFromAccess, err := ts.VerifyAccess(accessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, gotFromAccess)

	gotFromRefresh, err := ts.VerifyRefresh(refreshToken)
	require.NoError(t, err)
	assert.Equal(t, userID, gotFromRefresh)
}

func Test_jwtTokenService_CrossVerificationFails(t *testing.T) {
	ts := NewTokenService(newTestTokenConfig())
	userID := uuid.New()

	accessToken, refreshToken, err := ts.IssuePair(userID)
	require.NoError(t, err)

	// アクセストークンをリフレッシュトークンとして検証しても通らない (逆も同様)
	_, err = ts.VerifyRefresh(accessToken)
	assert.ErrorIs(t, err, model.ErrTokenMalformed)

	_, err = ts.VerifyAccess(refreshToken)
	assert.ErrorIs(t, err, model.ErrTokenMalformed)
}

func Test_jwtTokenService_ExpiredToken(t *testing.T) {
	cfg := newTestTokenConfig()
	cfg.JWT.AccessTokenTTL = -1 * time.Minute // 発行時点で期限切れ
	cfg.JWT.RefreshTokenTTL = -1 * time.Minute
	ts := NewTokenService(cfg)
	userID := uuid.New()

	accessToken, refreshToken, err := ts.IssuePair(userID)
	require.NoError(t, err)

	_, err = ts.VerifyAccess(accessToken)
	assert.ErrorIs(t, err, model.ErrTokenExpired)

	_, err = ts.VerifyRefresh(refreshToken)
	assert.ErrorIs(t, err, model.ErrTokenExpired)
}

func Test_jwtTokenService_MalformedToken(t *testing.T) {
	ts := NewTokenService(newTestTokenConfig())

	tests := []struct {
		name  string
		token string
	}{
		{name: "空文字列", token: ""},
		{name: "JWT形式でない文字列", token: "not-a-jwt"},
		{name: "別の鍵で署名されたトークン", token: func() string {
			other := NewTokenService(&config.Config{
				App: config.AppConfig{Name: "other"},
				JWT: config.JWTConfig{
					AccessSecret:    "completely-different-secret",
					RefreshSecret:   "another-different-secret",
					AccessTokenTTL:  time.Minute,
					RefreshTokenTTL: time.Minute,
				},
			})
			tok, _, err := other.IssuePair(uuid.New())
			require.NoError(t, err)
			return tok
		}()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.VerifyAccess(tt.token)
			assert.ErrorIs(t, err, model.ErrTokenMalformed)
		})
	}
}
