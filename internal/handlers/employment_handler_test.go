package handlers_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"smart_parking_auth/internal/handlers"
	"smart_parking_auth/internal/model"
	svc_mocks "smart_parking_auth/internal/service/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func setupTestEmploymentHandler(mockService *svc_mocks.EmploymentService) *handlers.EmploymentHandler {
	testLogger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return handlers.NewEmploymentHandler(mockService, testLogger)
}

func TestEmploymentHandler_PostEmployment(t *testing.T) {
	validReq := model.EmploymentRequest{
		Email:      "employee@example.com",
		Address:    "Tokyo",
		Identifier: "EMP-0001",
		Company:    "Example Inc.",
	}

	tests := []struct {
		name       string
		body       interface{}
		setupMock  func(m *svc_mocks.EmploymentService)
		wantStatus int
	}{
		{
			name: "正常系: 作成成功で201",
			body: validReq,
			setupMock: func(m *svc_mocks.EmploymentService) {
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.EmploymentRequest")).
					Return(&model.Employment{
						Email:      validReq.Email,
						Address:    validReq.Address,
						Identifier: validReq.Identifier,
						Company:    validReq.Company,
					}, nil).Once()
			},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "異常系: 必須フィールドの欠如で400",
			body:       model.EmploymentRequest{Email: "employee@example.com"},
			setupMock:  func(m *svc_mocks.EmploymentService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "異常系: 壊れたJSONボディ",
			body:       `{"email"`,
			setupMock:  func(m *svc_mocks.EmploymentService) {},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "異常系: 識別子の重複で409",
			body: validReq,
			setupMock: func(m *svc_mocks.EmploymentService) {
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.EmploymentRequest")).
					Return(nil, model.NewAppError("DUPLICATE_IDENTIFIER", "この識別子は既に登録されています。", "identifier", model.ErrConflict)).Once()
			},
			wantStatus: http.StatusConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(svc_mocks.EmploymentService)
			tt.setupMock(mockService)
			handler := setupTestEmploymentHandler(mockService)

			req := newJsonRequest(t, http.MethodPost, "/api/v1/employments", tt.body)
			rr := httptest.NewRecorder()
			handler.PostEmployment(rr, req)

			assert.Equal(t, tt.wantStatus, rr.Code)
			mockService.AssertExpectations(t)
		})
	}
}
