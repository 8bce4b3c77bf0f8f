//go:generate mockery --name TokenService --output ./mocks --outpkg mocks --case=underscore
package service

import (
	"errors"
	"time"

	"smart_parking_auth/internal/config"
	"smart_parking_auth/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenService はアクセストークンとリフレッシュトークンのペアを発行・検証します。
// ペイロードはユーザーID (subject) のみ。2つのトークンは独立した秘密鍵で署名される。
// 検証失敗は model.ErrTokenExpired / model.ErrTokenMalformed のタグ付き結果で返します
type TokenService interface {
	IssuePair(userID uuid.UUID) (accessToken, refreshToken string, err error)
	VerifyAccess(tokenString string) (uuid.UUID, error)
	VerifyRefresh(tokenString string) (uuid.UUID, error)
}

type jwtTokenService struct {
	issuer        string
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewTokenService は設定からJWTベースの TokenService を生成します
func NewTokenService(cfg *config.Config) TokenService {
	return &jwtTokenService{
		issuer:        cfg.App.Name,
		accessSecret:  []byte(cfg.JWT.AccessSecret),
		refreshSecret: []byte(cfg.JWT.RefreshSecret),
		accessTTL:     cfg.JWT.AccessTokenTTL,
		refreshTTL:    cfg.JWT.RefreshTokenTTL,
	}
}

func (s *jwtTokenService) IssuePair(userID uuid.UUID) (string, string, error) {
	accessToken, err := s.sign(userID, s.accessSecret, s.accessTTL)
	if err != nil {
		return "", "", err
	}
	refreshToken, err := s.sign(userID, s.refreshSecret, s.refreshTTL)
	if err != nil {
		return "", "", err
	}
	return accessToken, refreshToken, nil
}

func (s *jwtTokenService) VerifyAccess(tokenString string) (uuid.UUID, error) {
	return s.verify(tokenString, s.accessSecret)
}

func (s *jwtTokenService) VerifyRefresh(tokenString string) (uuid.UUID, error) {
	return s.verify(tokenString, s.refreshSecret)
}

func (s *jwtTokenService) sign(userID uuid.UUID, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &model.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (s *jwtTokenService) verify(tokenString string, secret []byte) (uuid.UUID, error) {
	token, err := jwt.ParseWithClaims(tokenString, &model.TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		// 署名アルゴリズムが期待通り(HMAC)かチェック
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, model.ErrTokenExpired
		}
		return uuid.Nil, model.ErrTokenMalformed
	}

	claims, ok := token.Claims.(*model.TokenClaims)
	if !ok || !token.Valid {
		return uuid.Nil, model.ErrTokenMalformed
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, model.ErrTokenMalformed
	}
	return userID, nil
}
