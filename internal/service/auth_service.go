//go:generate mockery --name AuthService --output ./mocks --outpkg mocks --case=underscore
package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"smart_parking_auth/internal/middleware"
	"smart_parking_auth/internal/model"
	"smart_parking_auth/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// AuthService は register → verify → login → refresh → logout の
// 認証プロトコル全体を取りまとめるサービスです
type AuthService interface {
	Register(ctx context.Context, req *model.RegisterRequest) (*model.RegisterResponse, error)
	RegisterFederated(ctx context.Context, req *model.FederatedRegisterRequest) (*model.LoginResponse, error)
	VerifyAccount(ctx context.Context, req *model.VerifyRequest) (*model.LoginResponse, error)
	Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error)
	LoginFederated(ctx context.Context, req *model.FederatedLoginRequest) (*model.LoginResponse, error)
	RefreshToken(ctx context.Context, refreshToken string) (*model.RefreshResponse, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*model.ProfileResponse, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, req *model.UpdateProfileRequest) (*model.ProfileResponse, error)
	Logout(ctx context.Context, userID uuid.UUID) error
}

type authService struct {
	db           *gorm.DB
	userRepo     repository.UserRepository
	hasher       PasswordHasher
	tokens       TokenService
	verification VerificationService
}

// NewAuthService は AuthService の新しいインスタンスを生成します
func NewAuthService(db *gorm.DB, userRepo repository.UserRepository, hasher PasswordHasher, tokens TokenService, verification VerificationService) AuthService {
	return &authService{
		db:           db,
		userRepo:     userRepo,
		hasher:       hasher,
		tokens:       tokens,
		verification: verification,
	}
}

// Register は新しいユーザーを未認証状態で作成し、確認コードの送信をトリガーします。
// メール認証が完了するまでトークンは発行しない
func (s *authService) Register(ctx context.Context, req *model.RegisterRequest) (*model.RegisterResponse, error) {
	logger := middleware.GetLogger(ctx)
	var newUser *model.User
	var issuedCode string

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Emailでの重複チェック
		_, err := s.userRepo.FindByEmail(ctx, tx, req.Email)
		if err == nil {
			logger.Warn("Email already exists", "email", req.Email)
			return model.NewAppError("DUPLICATE_EMAIL", "このメールアドレスは既に使用されています。", "email", model.ErrConflict)
		}
		if !errors.Is(err, model.ErrNotFound) {
			logger.Error("Failed to check email existence", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "", err)
		}

		// パスワードのハッシュ化
		hashedPassword, err := s.hasher.Hash(req.Password)
		if err != nil {
			logger.Error("Failed to hash password", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "パスワードの処理中にエラーが発生しました。", "", err)
		}

		// 確認コードを発行する。配送はコミット後まで遅延させる
		code, expiresAt := s.verification.Issue(ctx, req.Email)
		issuedCode = code

		user := &model.User{
			UserID:                    uuid.New(),
			Email:                     req.Email,
			PasswordHash:              &hashedPassword,
			AuthMethod:                model.AuthMethodEmail,
			IsVerified:                false,
			VerificationCode:          &code,
			VerificationCodeExpiresAt: &expiresAt,
		}

		if err := s.userRepo.Create(ctx, tx, user); err != nil {
			// Create内で重複エラーが検知された場合 (レースコンディション対策)
			if errors.Is(err, model.ErrConflict) {
				logger.Warn("Conflict during user creation (race condition)", "error", err)
				return model.NewAppError("DUPLICATE_EMAIL", "このメールアドレスは既に使用されています。", "email", model.ErrConflict)
			}
			logger.Error("Failed to create user in DB", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "ユーザーの作成に失敗しました。", "", err)
		}
		newUser = user
		return nil
	})

	if err != nil {
		return nil, err
	}

	// ロールバックされた登録にコードが届かないよう、配送はコミット後に行う
	s.verification.Deliver(ctx, req.Email, issuedCode)

	logger.Info("User registered, pending verification", "user_id", newUser.UserID, "email", newUser.Email)
	return &model.RegisterResponse{UserID: newUser.UserID}, nil
}

// RegisterFederated は外部IDプロバイダで検証済みのユーザーを作成します。
// メール認証をスキップし、即座にトークンペアを発行する。
// パスワードダイジェストは保持しない (digest は null のまま)
func (s *authService) RegisterFederated(ctx context.Context, req *model.FederatedRegisterRequest) (*model.LoginResponse, error) {
	logger := middleware.GetLogger(ctx)
	var resp *model.LoginResponse

	method := req.Method
	if method == "" {
		method = model.AuthMethodGoogle
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := s.userRepo.FindByEmail(ctx, tx, req.Email)
		if err == nil {
			logger.Warn("Email already exists", "email", req.Email)
			return model.NewAppError("DUPLICATE_EMAIL", "このメールアドレスは既に使用されています。", "email", model.ErrConflict)
		}
		if !errors.Is(err, model.ErrNotFound) {
			logger.Error("Failed to check email existence", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部でエラーが発生しました。", "", err)
		}

		user := &model.User{
			UserID:     uuid.New(),
			Email:      req.Email,
			Name:       req.Name,
			AuthMethod: method,
			IsVerified: true, // 身元は呼び出し元が検証済み
		}

		if err := s.userRepo.Create(ctx, tx, user); err != nil {
			if errors.Is(err, model.ErrConflict) {
				return model.NewAppError("DUPLICATE_EMAIL", "このメールアドレスは既に使用されています。", "email", model.ErrConflict)
			}
			logger.Error("Failed to create federated user in DB", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "ユーザーの作成に失敗しました。", "", err)
		}

		accessToken, refreshToken, err := s.issueAndStoreTokens(ctx, tx, user.UserID)
		if err != nil {
			return err
		}
		resp = &model.LoginResponse{UserID: user.UserID, AccessToken: accessToken, RefreshToken: refreshToken}
		return nil
	})

	if err != nil {
		return nil, err
	}

	logger.Info("Federated user registered", "user_id", resp.UserID, "method", method)
	return resp, nil
}

// VerifyAccount は確認コードを照合してアカウントを有効化し、初回のトークンペアを発行します。
// ユーザー不在とコード不一致はどちらも 401 で返す (存在の推測を防ぐため NotFound は使わない)
func (s *authService) VerifyAccount(ctx context.Context, req *model.VerifyRequest) (*model.LoginResponse, error) {
	logger := middleware.GetLogger(ctx).With("user_id", req.UserID.String())
	var resp *model.LoginResponse

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		user, err := s.userRepo.FindByID(ctx, tx, req.UserID)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				logger.Warn("Verification failed: user not found")
				return model.NewAppError("VERIFICATION_FAILED", "認証コードが正しくありません。", "", model.ErrUnauthorized)
			}
			logger.Error("Verification failed: db error on FindByID", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
		}

		// コード照合 (認証済みアカウントはコードがクリアされているので常に不一致)
		if user.VerificationCode == nil || subtle.ConstantTimeCompare([]byte(*user.VerificationCode), []byte(req.Code)) != 1 {
			logger.Warn("Verification failed: code mismatch")
			return model.NewAppError("VERIFICATION_FAILED", "認証コードが正しくありません。", "code", model.ErrUnauthorized)
		}

		// 有効期限のチェック (期限切れは不一致とは別のエラーとして返す)
		if user.VerificationCodeExpiresAt != nil && time.Now().After(*user.VerificationCodeExpiresAt) {
			logger.Warn("Verification failed: code expired", "expires_at", user.VerificationCodeExpiresAt)
			return model.NewAppError("VERIFICATION_CODE_EXPIRED", "認証コードの有効期限が切れています。再度登録してください。", "code", model.ErrForbidden)
		}

		// アカウントを有効化し、使用済みコードをクリア
		if err := s.userRepo.Update(ctx, tx, user.UserID, map[string]interface{}{
			"is_verified":                  true,
			"verification_code":            nil,
			"verification_code_expires_at": nil,
		}); err != nil {
			logger.Error("Failed to activate user account", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "アカウントの有効化に失敗しました。", "", err)
		}

		accessToken, refreshToken, err := s.issueAndStoreTokens(ctx, tx, user.UserID)
		if err != nil {
			return err
		}
		resp = &model.LoginResponse{UserID: user.UserID, AccessToken: accessToken, RefreshToken: refreshToken}
		return nil
	})

	if err != nil {
		return nil, err
	}

	logger.Info("Account verified successfully")
	return resp, nil
}

// Login はメールアドレスとパスワードでユーザーを認証し、トークンペアを発行します。
// ユーザー不在とパスワード不一致は同じエラーにする (アカウント列挙を防ぐ)
func (s *authService) Login(ctx context.Context, req *model.LoginRequest) (*model.LoginResponse, error) {
	logger := middleware.GetLogger(ctx).With("email", req.Email)

	user, err := s.userRepo.FindByEmail(ctx, s.db, req.Email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Warn("Login failed: user not found")
			return nil, model.NewAppError("AUTHENTICATION_FAILED", "メールアドレスまたはパスワードが正しくありません。", "", model.ErrUnauthorized)
		}
		logger.Error("Login failed: db error on FindByEmail", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}

	// 外部ID経由のアカウントはパスワードを持たない
	if user.PasswordHash == nil || !s.hasher.Compare(*user.PasswordHash, req.Password) {
		logger.Warn("Login failed: password mismatch", "user_id", user.UserID)
		return nil, model.NewAppError("AUTHENTICATION_FAILED", "メールアドレスまたはパスワードが正しくありません。", "", model.ErrUnauthorized)
	}

	if !user.IsVerified {
		logger.Warn("Login failed: account not verified", "user_id", user.UserID)
		return nil, model.NewAppError("ACCOUNT_NOT_VERIFIED", "アカウントが有効化されていません。登録時に送信されたメールをご確認ください。", "", model.ErrForbidden)
	}

	accessToken, refreshToken, err := s.issueAndStoreTokens(ctx, s.db, user.UserID)
	if err != nil {
		return nil, err
	}

	logger.Info("Login successful", "user_id", user.UserID)
	return &model.LoginResponse{UserID: user.UserID, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// LoginFederated は外部IDプロバイダで検証済みのメールアドレスでログインします。
// パスワード照合は行わない (信頼境界は呼び出し元のプロバイダ検証)
func (s *authService) LoginFederated(ctx context.Context, req *model.FederatedLoginRequest) (*model.LoginResponse, error) {
	logger := middleware.GetLogger(ctx).With("email", req.Email)

	user, err := s.userRepo.FindByEmail(ctx, s.db, req.Email)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Warn("Federated login failed: user not found")
			return nil, model.NewAppError("AUTHENTICATION_FAILED", "認証に失敗しました。", "", model.ErrUnauthorized)
		}
		logger.Error("Federated login failed: db error on FindByEmail", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}

	// パスワード認証のアカウントは外部IDログインの対象外。
	// パスワード照合も認証ゲートも通さずにトークンが取れてしまうのを防ぐ
	if user.PasswordHash != nil || !user.IsVerified {
		logger.Warn("Federated login failed: account is not a federated identity", "user_id", user.UserID)
		return nil, model.NewAppError("AUTHENTICATION_FAILED", "認証に失敗しました。", "", model.ErrUnauthorized)
	}

	accessToken, refreshToken, err := s.issueAndStoreTokens(ctx, s.db, user.UserID)
	if err != nil {
		return nil, err
	}

	logger.Info("Federated login successful", "user_id", user.UserID)
	return &model.LoginResponse{UserID: user.UserID, AccessToken: accessToken, RefreshToken: refreshToken}, nil
}

// RefreshToken はリフレッシュトークンを検証し、トークンペアをローテーションします。
// 保存中のトークンと一致しない場合 (ログアウト済み・ローテーション済み) は 403。
// レスポンスには新しいアクセストークンのみを含める
func (s *authService) RefreshToken(ctx context.Context, refreshToken string) (*model.RefreshResponse, error) {
	logger := middleware.GetLogger(ctx)

	if refreshToken == "" {
		logger.Warn("Refresh failed: no refresh token provided")
		return nil, model.NewAppError("UNAUTHORIZED", "リフレッシュトークンが必要です。", "refresh_token", model.ErrUnauthorized)
	}

	userID, err := s.tokens.VerifyRefresh(refreshToken)
	if err != nil {
		if errors.Is(err, model.ErrTokenExpired) {
			logger.Warn("Refresh failed: token expired")
			return nil, model.NewAppError("expired", "リフレッシュトークンの有効期限が切れています。", "", model.ErrTokenExpired)
		}
		logger.Warn("Refresh failed: token malformed", "error", err)
		return nil, model.NewAppError("invalid", "リフレッシュトークンが無効です。", "", model.ErrTokenMalformed)
	}

	user, err := s.userRepo.FindByID(ctx, s.db, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Warn("Refresh failed: user no longer exists", "user_id", userID.String())
			return nil, model.NewAppError("USER_NOT_FOUND", "ユーザーが見つかりません。", "", model.ErrNotFound)
		}
		logger.Error("Refresh failed: db error on FindByID", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}

	// シングルスロット: 保存中のトークンと一致しなければ無効
	// (ローテーション済みの旧トークンやログアウト後のトークンはここで弾かれる)
	if user.RefreshToken == nil || subtle.ConstantTimeCompare([]byte(*user.RefreshToken), []byte(refreshToken)) != 1 {
		logger.Warn("Refresh failed: token does not match stored token", "user_id", userID.String())
		return nil, model.NewAppError("invalid", "リフレッシュトークンが無効です。", "", model.ErrForbidden)
	}

	// ローテーション: 新しいペアを発行して保存中のトークンを上書き
	accessToken, _, err := s.issueAndStoreTokens(ctx, s.db, user.UserID)
	if err != nil {
		return nil, err
	}

	logger.Info("Token pair rotated", "user_id", user.UserID)
	return &model.RefreshResponse{AccessToken: accessToken}, nil
}

// GetProfile は指定されたIDのユーザー情報を返します。
// ダイジェスト・リフレッシュトークン・認証コードはレスポンスに含めない
func (s *authService) GetProfile(ctx context.Context, userID uuid.UUID) (*model.ProfileResponse, error) {
	logger := middleware.GetLogger(ctx)

	user, err := s.userRepo.FindByID(ctx, s.db, userID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			logger.Warn("User not found", "user_id", userID.String())
			return nil, model.NewAppError("USER_NOT_FOUND", "ユーザーが見つかりません。", "", model.ErrNotFound)
		}
		logger.Error("Error finding user by ID", "error", err)
		return nil, model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
	}

	return model.NewProfileResponse(user), nil
}

// UpdateProfile はプロフィールを部分更新します。nil のフィールドは変更しない
func (s *authService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *model.UpdateProfileRequest) (*model.ProfileResponse, error) {
	logger := middleware.GetLogger(ctx).With("user_id", userID.String())
	var resp *model.ProfileResponse

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.userRepo.FindByID(ctx, tx, userID); err != nil {
			if errors.Is(err, model.ErrNotFound) {
				return model.NewAppError("USER_NOT_FOUND", "ユーザーが見つかりません。", "", model.ErrNotFound)
			}
			return model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
		}

		fields := map[string]interface{}{
			"email": req.Email,
		}
		if req.Name != nil {
			fields["name"] = *req.Name
		}
		if req.Address != nil {
			fields["address"] = *req.Address
		}
		if req.Phone != nil {
			fields["phone"] = *req.Phone
		}
		if req.Birth != nil {
			fields["birth"] = *req.Birth
		}

		if err := s.userRepo.Update(ctx, tx, userID, fields); err != nil {
			if errors.Is(err, model.ErrConflict) {
				logger.Warn("Profile update failed: email already in use", "email", req.Email)
				return model.NewAppError("DUPLICATE_EMAIL", "このメールアドレスは既に使用されています。", "email", model.ErrConflict)
			}
			logger.Error("Failed to update profile", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "プロフィールの更新に失敗しました。", "", err)
		}

		updated, err := s.userRepo.FindByID(ctx, tx, userID)
		if err != nil {
			return model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
		}
		resp = model.NewProfileResponse(updated)
		return nil
	})

	if err != nil {
		return nil, err
	}

	logger.Info("Profile updated")
	return resp, nil
}

// Logout は保存中のリフレッシュトークンをクリアします。
// 対象が存在しなくても成功として扱う (冪等)。
// 発行済みアクセストークンはTTLまで有効なまま (即時失効はしない)
func (s *authService) Logout(ctx context.Context, userID uuid.UUID) error {
	logger := middleware.GetLogger(ctx)

	if err := s.userRepo.Update(ctx, s.db, userID, map[string]interface{}{"refresh_token": nil}); err != nil {
		logger.Error("Logout failed: db error on Update", "error", err, "user_id", userID.String())
		return model.NewAppError("INTERNAL_SERVER_ERROR", "ログアウト処理に失敗しました。", "", err)
	}

	logger.Info("Logged out", "user_id", userID.String())
	return nil
}

// --- ヘルパー関数 ---

// issueAndStoreTokens はトークンペアを発行し、リフレッシュトークンをユーザーに保存します
func (s *authService) issueAndStoreTokens(ctx context.Context, db *gorm.DB, userID uuid.UUID) (string, string, error) {
	logger := middleware.GetLogger(ctx)

	accessToken, refreshToken, err := s.tokens.IssuePair(userID)
	if err != nil {
		logger.Error("Failed to issue token pair", "error", err, "user_id", userID.String())
		return "", "", model.NewAppError("INTERNAL_SERVER_ERROR", "トークンの生成に失敗しました。", "", err)
	}

	if err := s.userRepo.Update(ctx, db, userID, map[string]interface{}{"refresh_token": refreshToken}); err != nil {
		logger.Error("Failed to store refresh token", "error", err, "user_id", userID.String())
		return "", "", model.NewAppError("INTERNAL_SERVER_ERROR", "トークンの保存に失敗しました。", "", err)
	}

	return accessToken, refreshToken, nil
}
