package model

import (
	"time"

	"github.com/google/uuid"
)

// Employment はメールアドレスと勤務先情報を紐付けるレコードです。
// 作成に成功すると、同じメールアドレスのユーザーが存在すれば
// 管理者権限が付与される (存在しなければ何もしない)
type Employment struct {
	EmploymentID uuid.UUID `gorm:"type:uuid;primaryKey" json:"employment_id"`
	Email        string    `gorm:"not null;index" json:"email"`
	Address      string    `gorm:"not null" json:"address"`
	Identifier   string    `gorm:"unique;not null" json:"identifier"` // 社員番号等の一意な識別子
	Company      string    `gorm:"not null" json:"company"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Employment) TableName() string {
	return "employments"
}

// EmploymentRequest は勤務先登録APIのリクエストボディ
type EmploymentRequest struct {
	Email      string `json:"email" validate:"required,email"`
	Address    string `json:"address" validate:"required"`
	Identifier string `json:"identifier" validate:"required"`
	Company    string `json:"company" validate:"required"`
}
