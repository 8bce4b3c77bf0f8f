// internal/service/employment_service_test.go
package service

import (
	"context"
	"testing"

	"smart_parking_auth/internal/model"
	"smart_parking_auth/internal/repository"
	repo_mocks "smart_parking_auth/internal/repository/mocks"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestEmploymentService() (EmploymentService, *repo_mocks.EmploymentRepository, *repo_mocks.UserRepository) {
	db := setupTestDBAuth()
	employmentRepo := new(repo_mocks.EmploymentRepository)
	userRepo := new(repo_mocks.UserRepository)
	s := NewEmploymentService(db, employmentRepo, userRepo)
	return s, employmentRepo, userRepo
}

func Test_employmentService_Create(t *testing.T) {
	ctx := context.Background()

	req := &model.EmploymentRequest{
		Email:      "employee@example.com",
		Address:    "Tokyo",
		Identifier: "EMP-0001",
		Company:    "Example Inc.",
	}

	t.Run("正常系: レコード作成と既存ユーザーの管理者昇格", func(t *testing.T) {
		s, employmentRepo, userRepo := newTestEmploymentService()
		user := &model.User{UserID: uuid.New(), Email: req.Email, IsVerified: true}

		employmentRepo.On("FindByIdentifier", ctx, mock.AnythingOfType("*gorm.DB"), "EMP-0001").
			Return(nil, model.ErrNotFound).Once()
		employmentRepo.On("Create", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.Employment")).
			Run(func(args mock.Arguments) {
				emp := args.Get(2).(*model.Employment)
				// 主キーは保存前に採番されていること
				assert.NotEqual(t, uuid.Nil, emp.EmploymentID)
				assert.Equal(t, req.Email, emp.Email)
				assert.Equal(t, req.Identifier, emp.Identifier)
				assert.Equal(t, req.Company, emp.Company)
			}).Return(nil).Once()
		userRepo.On("FindByEmail", ctx, mock.AnythingOfType("*gorm.DB"), req.Email).
			Return(user, nil).Once()
		userRepo.On("Update", ctx, mock.AnythingOfType("*gorm.DB"), user.UserID, mock.MatchedBy(func(fields map[string]interface{}) bool {
			v, ok := fields["is_admin"]
			return ok && v == true
		})).Return(nil).Once()

		created, err := s.Create(ctx, req)
		require.NoError(t, err)
		require.NotNil(t, created)
		employmentRepo.AssertExpectations(t)
		userRepo.AssertExpectations(t)
	})

	t.Run("正常系: ユーザーが存在しない場合は昇格をスキップして成功", func(t *testing.T) {
		s, employmentRepo, userRepo := newTestEmploymentService()

		employmentRepo.On("FindByIdentifier", ctx, mock.AnythingOfType("*gorm.DB"), "EMP-0001").
			Return(nil, model.ErrNotFound).Once()
		employmentRepo.On("Create", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.Employment")).
			Return(nil).Once()
		userRepo.On("FindByEmail", ctx, mock.AnythingOfType("*gorm.DB"), req.Email).
			Return(nil, model.ErrNotFound).Once()

		created, err := s.Create(ctx, req)
		require.NoError(t, err)
		require.NotNil(t, created)
		userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("正常系: 既に管理者なら再更新しない", func(t *testing.T) {
		s, employmentRepo, userRepo := newTestEmploymentService()
		admin := &model.User{UserID: uuid.New(), Email: req.Email, IsAdmin: true}

		employmentRepo.On("FindByIdentifier", ctx, mock.AnythingOfType("*gorm.DB"), "EMP-0001").
			Return(nil, model.ErrNotFound).Once()
		employmentRepo.On("Create", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.Employment")).
			Return(nil).Once()
		userRepo.On("FindByEmail", ctx, mock.AnythingOfType("*gorm.DB"), req.Email).
			Return(admin, nil).Once()

		created, err := s.Create(ctx, req)
		require.NoError(t, err)
		require.NotNil(t, created)
		userRepo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("異常系: 識別子の重複", func(t *testing.T) {
		s, employmentRepo, _ := newTestEmploymentService()
		existing := &model.Employment{Identifier: "EMP-0001"}

		employmentRepo.On("FindByIdentifier", ctx, mock.AnythingOfType("*gorm.DB"), "EMP-0001").
			Return(existing, nil).Once()

		created, err := s.Create(ctx, req)
		assert.Nil(t, created)
		assert.ErrorIs(t, err, model.ErrConflict)
		employmentRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("異常系: Create時の一意制約違反 (レースコンディション)", func(t *testing.T) {
		s, employmentRepo, _ := newTestEmploymentService()

		employmentRepo.On("FindByIdentifier", ctx, mock.AnythingOfType("*gorm.DB"), "EMP-0001").
			Return(nil, model.ErrNotFound).Once()
		employmentRepo.On("Create", ctx, mock.AnythingOfType("*gorm.DB"), mock.AnythingOfType("*model.Employment")).
			Return(model.ErrConflict).Once()

		created, err := s.Create(ctx, req)
		assert.Nil(t, created)
		assert.ErrorIs(t, err, model.ErrConflict)
	})
}

// 実DBに対して、識別子が異なる複数レコードをそれぞれ別の主キーで保存できることを確認する
func Test_employmentService_Create_MultipleRecords(t *testing.T) {
	ctx := context.Background()

	db, err := gorm.Open(sqlite.Open("file:employment_create_test?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.User{}, &model.Employment{}))

	s := NewEmploymentService(db, repository.NewGormEmploymentRepository(), repository.NewGormUserRepository())

	first, err := s.Create(ctx, &model.EmploymentRequest{
		Email:      "first@example.com",
		Address:    "Tokyo",
		Identifier: "EMP-0001",
		Company:    "Example Inc.",
	})
	require.NoError(t, err)

	second, err := s.Create(ctx, &model.EmploymentRequest{
		Email:      "second@example.com",
		Address:    "Osaka",
		Identifier: "EMP-0002",
		Company:    "Example Inc.",
	})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, first.EmploymentID)
	assert.NotEqual(t, uuid.Nil, second.EmploymentID)
	assert.NotEqual(t, first.EmploymentID, second.EmploymentID)

	var count int64
	require.NoError(t, db.Model(&model.Employment{}).Count(&count).Error)
	assert.EqualValues(t, 2, count)
}
