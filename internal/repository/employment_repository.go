//go:generate mockery --name EmploymentRepository --output ./mocks --outpkg mocks --case=underscore
package repository

import (
	"context"
	"errors"
	"fmt"

	"smart_parking_auth/internal/middleware"
	"smart_parking_auth/internal/model"

	"gorm.io/gorm"
)

type EmploymentRepository interface {
	Create(ctx context.Context, db *gorm.DB, employment *model.Employment) error
	FindByIdentifier(ctx context.Context, db *gorm.DB, identifier string) (*model.Employment, error)
}

type gormEmploymentRepository struct{}

func NewGormEmploymentRepository() EmploymentRepository {
	return &gormEmploymentRepository{}
}

func (r *gormEmploymentRepository) Create(ctx context.Context, db *gorm.DB, employment *model.Employment) error {
	logger := middleware.GetLogger(ctx)

	result := db.WithContext(ctx).Create(employment)
	if result.Error != nil {
		if isUniqueViolation(result.Error) {
			logger.Warn(
				"Duplicate key error on create employment",
				"error", result.Error,
				"identifier", employment.Identifier,
			)
			return model.ErrConflict
		}
		logger.Error(
			"Error creating employment in DB",
			"error", result.Error,
			"identifier", employment.Identifier,
		)
		return fmt.Errorf("gormEmploymentRepository.Create: %w", result.Error)
	}

	return nil
}

func (r *gormEmploymentRepository) FindByIdentifier(ctx context.Context, db *gorm.DB, identifier string) (*model.Employment, error) {
	logger := middleware.GetLogger(ctx)
	var employment model.Employment

	result := db.WithContext(ctx).Where("identifier = ?", identifier).First(&employment)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, model.ErrNotFound
		}
		logger.Error(
			"Error finding employment by identifier in DB",
			"error", result.Error,
			"identifier", identifier,
		)
		return nil, fmt.Errorf("gormEmploymentRepository.FindByIdentifier: %w", result.Error)
	}
	return &employment, nil
}
