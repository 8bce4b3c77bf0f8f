// internal/handlers/employment_handler.go
package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"smart_parking_auth/internal/model"
	"smart_parking_auth/internal/service"
	"smart_parking_auth/internal/webutil"

	"github.com/go-playground/validator/v10"
)

type EmploymentHandler struct {
	service service.EmploymentService
	logger  *slog.Logger
}

func NewEmploymentHandler(s service.EmploymentService, logger *slog.Logger) *EmploymentHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &EmploymentHandler{
		service: s,
		logger:  logger,
	}
}

// PostEmployment は従業員レコードを作成するハンドラ
func (h *EmploymentHandler) PostEmployment(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "PostEmployment"))

	var req model.EmploymentRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode request body", slog.String("error", err.Error()))
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	if err := webutil.Validator.Struct(req); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			logger.Warn("Validation failed", slog.String("errors", validationErrors.Error()))
			webutil.HandleError(w, logger, webutil.NewValidationErrorResponse(validationErrors))
		} else {
			logger.Error("Unexpected error during validation", slog.Any("error", err))
			webutil.HandleError(w, logger, err)
		}
		return
	}

	employment, err := h.service.Create(r.Context(), &req)
	if err != nil {
		logger.Warn("Error creating employment in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Employment created successfully", slog.String("identifier", employment.Identifier))
	webutil.RespondWithJSON(w, http.StatusCreated, employment, logger)
}
