// internal/handlers/auth_handler.go
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

type AuthHandler struct {
	service service.AuthService
	logger  *slog.Logger
}

func NewAuthHandler(s service.AuthService, logger *slog.Logger) *AuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthHandler{
		service: s,
		logger:  logger,
	}
}

// Register は新しいユーザーを登録し、確認コードの送信をトリガーするハンドラ
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "Register"))

	var req model.RegisterRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode request body", slog.String("error", err.Error()))
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	if err := h.validate(w, logger, req); err != nil {
		return
	}

	resp, err := h.service.Register(r.Context(), &req)
	if err != nil {
		logger.Warn("Error registering user in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("User registered successfully", slog.String("user_id", resp.UserID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, resp, logger)
}

// RegisterFederated は外部IDプロバイダ経由のユーザーを登録するハンドラ。
// メール認証をスキップし、即座にトークンペアを返す
func (h *AuthHandler) RegisterFederated(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "RegisterFederated"))

	var req model.FederatedRegisterRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode request body", slog.String("error", err.Error()))
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	if err := h.validate(w, logger, req); err != nil {
		return
	}

	resp, err := h.service.RegisterFederated(r.Context(), &req)
	if err != nil {
		logger.Warn("Error registering federated user in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Federated user registered successfully", slog.String("user_id", resp.UserID.String()))
	webutil.RespondWithJSON(w, http.StatusCreated, resp, logger)
}

// VerifyAccount は確認コードを照合してアカウントを有効化するハンドラ
func (h *AuthHandler) VerifyAccount(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "VerifyAccount"))

	var req model.VerifyRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode request body", slog.String("error", err.Error()))
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	if err := h.validate(w, logger, req); err != nil {
		return
	}

	resp, err := h.service.VerifyAccount(r.Context(), &req)
	if err != nil {
		logger.Warn("Error verifying account in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Account verified successfully", slog.String("user_id", resp.UserID.String()))
	webutil.RespondWithJSON(w, http.StatusOK, resp, logger)
}

// Login はメールアドレスとパスワードで認証してトークンペアを返すハンドラ
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "Login"))

	var req model.LoginRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode request body", slog.String("error", err.Error()))
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	if err := h.validate(w, logger, req); err != nil {
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		logger.Warn("Error logging in user in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Login successful", slog.String("user_id", resp.UserID.String()))
	webutil.RespondWithJSON(w, http.StatusOK, resp, logger)
}

// LoginFederated は外部IDプロバイダで検証済みのメールアドレスでログインするハンドラ
func (h *AuthHandler) LoginFederated(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "LoginFederated"))

	var req model.FederatedLoginRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode request body", slog.String("error", err.Error()))
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	if err := h.validate(w, logger, req); err != nil {
		return
	}

	resp, err := h.service.LoginFederated(r.Context(), &req)
	if err != nil {
		logger.Warn("Error logging in federated user in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Federated login successful", slog.String("user_id", resp.UserID.String()))
	webutil.RespondWithJSON(w, http.StatusOK, resp, logger)
}

// RefreshToken はリフレッシュトークンを検証して新しいアクセストークンを返すハンドラ
func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	logger := h.logger.With(slog.String("handler", "RefreshToken"))

	var req model.RefreshRequest
	if err := webutil.DecodeJSONBody(r, &req); err != nil {
		logger.Warn("Failed to decode request body", slog.String("error", err.Error()))
		appErr := model.NewAppError("INVALID_REQUEST_BODY", "リクエストボディの形式が正しくありません。", "", model.ErrInvalidInput)
		webutil.HandleError(w, logger, appErr)
		return
	}

	resp, err := h.service.RefreshToken(r.Context(), req.RefreshToken)
	if err != nil {
		logger.Warn("Error refreshing token in service", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
		return
	}

	logger.Info("Token refreshed successfully")
	webutil.RespondWithJSON(w, http.StatusOK, resp, logger)
}

// validate はリクエストDTOを検証し、エラー時はレスポンスを書き込んで non-nil を返します
func (h *AuthHandler) validate(w http.ResponseWriter, logger *slog.Logger, req interface{}) error {
	err := webutil.Validator.Struct(req)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		logger.Warn("Validation failed", slog.String("errors", validationErrors.Error()))
		webutil.HandleError(w, logger, webutil.NewValidationErrorResponse(validationErrors))
	} else {
		logger.Error("Unexpected error during validation", slog.Any("error", err))
		webutil.HandleError(w, logger, err)
	}
	return err
}
