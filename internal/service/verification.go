package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"time"

	"smart_parking_auth/internal/middleware"
)

// 認証コードの形式: 6桁の数字 (100000〜999999)、有効期限は発行から1時間
const (
	verificationCodeMin = 100000
	verificationCodeMax = 999999
	verificationCodeTTL = time.Hour
)

// VerificationService はメール認証用の数字コードを発行・配送します。
// 発行 (Issue) と配送 (Deliver) は分離されており、呼び出し側はコードを
// 永続化したあとに Deliver を呼ぶ。コミット前に配送してしまうと、
// ロールバックされたアカウントにコードだけが届いてしまうため。
// メール送信はベストエフォート (非同期・失敗はログのみ)。
// 利用者にコードが届かない可能性は既知の弱点として許容している
type VerificationService interface {
	Issue(ctx context.Context, email string) (code string, expiresAt time.Time)
	Deliver(ctx context.Context, email, code string)
}

type verificationService struct {
	mailer  Mailer
	appName string
}

func NewVerificationService(mailer Mailer, appName string) VerificationService {
	return &verificationService{mailer: mailer, appName: appName}
}

func (s *verificationService) Issue(ctx context.Context, email string) (string, time.Time) {
	logger := middleware.GetLogger(ctx)

	code := generateVerificationCode()
	expiresAt := time.Now().Add(verificationCodeTTL)

	logger.Info("Verification code issued", "to", email, "expires_at", expiresAt)
	return code, expiresAt
}

func (s *verificationService) Deliver(ctx context.Context, email, code string) {
	logger := middleware.GetLogger(ctx)

	subject := fmt.Sprintf("【%s】メールアドレスの確認コード", s.appName)
	body := fmt.Sprintf("以下の確認コードを入力してアカウントを有効化してください:\n\n%s\n\nこのコードの有効期限は1時間です。", code)

	// 配送はリクエストから切り離す。失敗しても登録結果には影響させない
	go func() {
		if err := s.mailer.Send(context.Background(), email, subject, body); err != nil {
			logger.Error("Failed to send verification email", "error", err, "to", email)
		}
	}()
}

// generateVerificationCode は 100000〜999999 の一様乱数コードを生成します
func generateVerificationCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(verificationCodeMax-verificationCodeMin+1))
	if err != nil {
		// crypto/rand が失敗するのはOSの乱数源が壊れている場合のみ
		panic(err)
	}
	return fmt.Sprintf("%06d", n.Int64()+verificationCodeMin)
}
