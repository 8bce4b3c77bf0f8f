//go:generate mockery --name EmploymentService --output ./mocks --outpkg mocks --case=underscore
package service

import (
	"context"
	"errors"

	"smart_parking_auth/internal/middleware"
	"smart_parking_auth/internal/model"
	"smart_parking_auth/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EmploymentService は従業員レコードの登録を扱うサービスです
type EmploymentService interface {
	Create(ctx context.Context, req *model.EmploymentRequest) (*model.Employment, error)
}

type employmentService struct {
	db             *gorm.DB
	employmentRepo repository.EmploymentRepository
	userRepo       repository.UserRepository
}

// NewEmploymentService は EmploymentService の新しいインスタンスを生成します
func NewEmploymentService(db *gorm.DB, employmentRepo repository.EmploymentRepository, userRepo repository.UserRepository) EmploymentService {
	return &employmentService{
		db:             db,
		employmentRepo: employmentRepo,
		userRepo:       userRepo,
	}
}

// Create は従業員レコードを作成し、同じメールアドレスのユーザーが存在すれば
// 管理者権限を付与します。ユーザーが存在しない場合の権限付与は何もしない
func (s *employmentService) Create(ctx context.Context, req *model.EmploymentRequest) (*model.Employment, error) {
	logger := middleware.GetLogger(ctx)
	var created *model.Employment

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 識別子の重複チェック
		_, err := s.employmentRepo.FindByIdentifier(ctx, tx, req.Identifier)
		if err == nil {
			logger.Warn("Employment identifier already exists", "identifier", req.Identifier)
			return model.NewAppError("DUPLICATE_IDENTIFIER", "この識別子は既に登録されています。", "identifier", model.ErrConflict)
		}
		if !errors.Is(err, model.ErrNotFound) {
			logger.Error("Failed to check identifier existence", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
		}

		employment := &model.Employment{
			EmploymentID: uuid.New(),
			Email:        req.Email,
			Address:      req.Address,
			Identifier:   req.Identifier,
			Company:      req.Company,
		}

		if err := s.employmentRepo.Create(ctx, tx, employment); err != nil {
			if errors.Is(err, model.ErrConflict) {
				return model.NewAppError("DUPLICATE_IDENTIFIER", "この識別子は既に登録されています。", "identifier", model.ErrConflict)
			}
			logger.Error("Failed to create employment record", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "従業員レコードの作成に失敗しました。", "", err)
		}

		// 同じメールアドレスのユーザーが存在すれば管理者に昇格させる
		user, err := s.userRepo.FindByEmail(ctx, tx, req.Email)
		if err != nil {
			if errors.Is(err, model.ErrNotFound) {
				logger.Info("No user account for employment email, skipping elevation", "email", req.Email)
				created = employment
				return nil
			}
			logger.Error("Failed to look up user for elevation", "error", err)
			return model.NewAppError("INTERNAL_SERVER_ERROR", "サーバー内部エラー", "", err)
		}

		if !user.IsAdmin {
			if err := s.userRepo.Update(ctx, tx, user.UserID, map[string]interface{}{"is_admin": true}); err != nil {
				logger.Error("Failed to elevate user to admin", "error", err, "user_id", user.UserID)
				return model.NewAppError("INTERNAL_SERVER_ERROR", "権限の更新に失敗しました。", "", err)
			}
			logger.Info("User elevated to admin", "user_id", user.UserID, "email", req.Email)
		}

		created = employment
		return nil
	})

	if err != nil {
		return nil, err
	}

	logger.Info("Employment record created", "identifier", created.Identifier, "company", created.Company)
	return created, nil
}
