package service

import (
	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher はパスワードの一方向ダイジェスト化と照合を行います。
// 同じ入力からは常に照合可能なダイジェストが得られ、照合は定数時間で行われます
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
}

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher は bcrypt ベースの PasswordHasher を生成します
func NewBcryptHasher() PasswordHasher {
	return &bcryptHasher{cost: bcrypt.DefaultCost}
}

func (h *bcryptHasher) Hash(password string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (h *bcryptHasher) Compare(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
