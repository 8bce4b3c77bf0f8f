package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	AuthMethodEmail  = "email"  // パスワード認証
	AuthMethodGoogle = "google" // 外部IDプロバイダ経由 (パスワードは保持しない)
)

// User はユーザーの基本情報と認証状態を保持します。
// RefreshToken は常に最新の1件のみ保持するシングルスロット方式です
// (トークン発行のたびに上書き、ログアウトでクリア)。
type User struct {
	UserID       uuid.UUID  `gorm:"type:uuid;primaryKey" json:"user_id"`
	Email        string     `gorm:"unique;not null" json:"email"`
	PasswordHash *string    `gorm:"default:null" json:"-"` // 外部ID経由の場合は null
	Name         string     `gorm:"not null;default:'User'" json:"name"`
	Address      *string    `json:"address,omitempty"`
	Phone        *string    `json:"phone,omitempty"`
	Birth        *time.Time `json:"birth,omitempty"`
	IsAdmin      bool       `gorm:"default:false" json:"is_admin"`
	IsVerified   bool       `gorm:"default:false" json:"is_verified"`
	AuthMethod   string     `gorm:"type:varchar(20);not null;default:'email'" json:"auth_method"`
	RefreshToken *string    `gorm:"default:null" json:"-"`

	// メール認証用。認証完了後はクリアされる
	VerificationCode          *string    `json:"-"`
	VerificationCodeExpiresAt *time.Time `json:"-"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string {
	return "users"
}

type ContextKey string

const (
	UserIDKey ContextKey = "userID"
)
