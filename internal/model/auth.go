package model

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// RegisterRequest は新規登録APIのリクエストボディ (DTO)
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// RegisterResponse は登録成功時のレスポンス。
// メール認証が完了するまでトークンは発行されない
type RegisterResponse struct {
	UserID uuid.UUID `json:"user_id"`
}

// FederatedRegisterRequest は外部IDプロバイダ経由の登録リクエスト。
// 呼び出し元 (ゲートウェイ等) が身元検証済みであることが前提。
// Password はプロバイダ側のプレースホルダ値でも良い
type FederatedRegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Name     string `json:"name" validate:"required,min=1,max=100"`
	Method   string `json:"method" validate:"omitempty,oneof=email google"`
}

// VerifyRequest はメール認証APIのリクエストボディ
type VerifyRequest struct {
	UserID uuid.UUID `json:"user_id" validate:"required"`
	Code   string    `json:"code" validate:"required,len=6,numeric"`
}

// LoginRequest はログインAPIのリクエストボディ
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// FederatedLoginRequest は外部IDプロバイダ経由のログインリクエスト。
// パスワード検証は行わない (信頼境界は呼び出し元)
type FederatedLoginRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// LoginResponse はトークンペア発行時のレスポンス (ログイン・認証完了・外部ID登録)
type LoginResponse struct {
	UserID       uuid.UUID `json:"user_id"`
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
}

// RefreshRequest はトークン再発行APIのリクエストボディ
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// RefreshResponse はトークン再発行時のレスポンス。
// ローテーション後のリフレッシュトークンはサーバー側にのみ保存される
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
}

// UpdateProfileRequest はプロフィール部分更新のリクエストボディ。
// nil のフィールドは更新しない
type UpdateProfileRequest struct {
	Email   string     `json:"email" validate:"required,email"`
	Name    *string    `json:"name" validate:"omitempty,min=1,max=100"`
	Address *string    `json:"address"`
	Phone   *string    `json:"phone"`
	Birth   *time.Time `json:"birth"`
}

// ProfileResponse はクライアントに返すユーザー情報の構造体。
// パスワードハッシュ・リフレッシュトークン・認証コードは含めない
type ProfileResponse struct {
	UserID     uuid.UUID  `json:"user_id"`
	Email      string     `json:"email"`
	Name       string     `json:"name"`
	Address    *string    `json:"address,omitempty"`
	Phone      *string    `json:"phone,omitempty"`
	Birth      *time.Time `json:"birth,omitempty"`
	IsAdmin    bool       `json:"is_admin"`
	IsVerified bool       `json:"is_verified"`
	AuthMethod string     `json:"auth_method"`
	CreatedAt  time.Time  `json:"created_at"`
}

// NewProfileResponse は User から公開可能なフィールドだけを写します
func NewProfileResponse(u *User) *ProfileResponse {
	return &ProfileResponse{
		UserID:     u.UserID,
		Email:      u.Email,
		Name:       u.Name,
		Address:    u.Address,
		Phone:      u.Phone,
		Birth:      u.Birth,
		IsAdmin:    u.IsAdmin,
		IsVerified: u.IsVerified,
		AuthMethod: u.AuthMethod,
		CreatedAt:  u.CreatedAt,
	}
}

// TokenClaims はJWTに含めるクレーム。ペイロードはユーザーIDのみ
// (権限判定は下流の責務なのでロール等は含めない)
type TokenClaims struct {
	jwt.RegisteredClaims
}
