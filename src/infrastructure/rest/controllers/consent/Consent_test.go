package consent

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	consentUseCase "condo-notify-api/src/application/usecases/consent"
	"condo-notify-api/src/domain/common"
	domainErrors "condo-notify-api/src/domain/errors"
	"condo-notify-api/src/infrastructure/helper"
	logger "condo-notify-api/src/infrastructure/logger"
	"condo-notify-api/src/infrastructure/rest/middlewares"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupLogger(t *testing.T) *logger.Logger {
	loggerInstance, err := logger.NewLogger()
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	return loggerInstance
}

type consentUseCaseMock struct {
	HandleWebhookFn func(eventType, phone, buttonID string) (string, error)
	RequestOptInFn  func(residentID int) error
}

func (m *consentUseCaseMock) HandleWebhook(eventType, phone, buttonID string) (string, error) {
	return m.HandleWebhookFn(eventType, phone, buttonID)
}

func (m *consentUseCaseMock) RequestOptIn(residentID int) error {
	return m.RequestOptInFn(residentID)
}

func setupRouter(t *testing.T, useCase consentUseCase.IConsentUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	controller := NewConsentController(common.NewCommonService(helper.NewValidator()), useCase, setupLogger(t))

	router := gin.New()
	router.Use(middlewares.ErrorHandler())
	router.POST("/v1/consent/webhook", controller.Webhook)
	router.POST("/v1/consent/request", controller.RequestOptIn)
	return router
}

func TestWebhook_AcceptedResult(t *testing.T) {
	useCase := &consentUseCaseMock{
		HandleWebhookFn: func(eventType, phone, buttonID string) (string, error) {
			assert.Equal(t, consentUseCase.EventButtonClicked, eventType)
			assert.Equal(t, consentUseCase.ButtonOptInYes, buttonID)
			return consentUseCase.ResultAccepted, nil
		},
	}
	router := setupRouter(t, useCase)

	body, _ := json.Marshal(WebhookRequest{
		EventType: consentUseCase.EventButtonClicked,
		Phone:     "+5511999998888",
		ButtonID:  consentUseCase.ButtonOptInYes,
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/v1/consent/webhook", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var response WebhookResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, consentUseCase.ResultAccepted, response.Result)
}

func TestWebhook_MissingPhoneIsBadRequest(t *testing.T) {
	useCase := &consentUseCaseMock{
		HandleWebhookFn: func(eventType, phone, buttonID string) (string, error) {
			t.Fatal("use case must not run on an invalid body")
			return "", nil
		},
	}
	router := setupRouter(t, useCase)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/v1/consent/webhook", bytes.NewBufferString(`{"event_type":"message_button_clicked"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "phone")
}

func TestWebhook_SkippedResultStillOK(t *testing.T) {
	useCase := &consentUseCaseMock{
		HandleWebhookFn: func(eventType, phone, buttonID string) (string, error) {
			return consentUseCase.ResultSkipped, nil
		},
	}
	router := setupRouter(t, useCase)

	body, _ := json.Marshal(WebhookRequest{
		EventType: consentUseCase.EventButtonClicked,
		Phone:     "+5511999998888",
		ButtonID:  "unknown_button",
	})
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/v1/consent/webhook", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), consentUseCase.ResultSkipped)
}

func TestRequestOptIn_Accepted(t *testing.T) {
	useCase := &consentUseCaseMock{
		RequestOptInFn: func(residentID int) error {
			assert.Equal(t, 5, residentID)
			return nil
		},
	}
	router := setupRouter(t, useCase)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/v1/consent/request", bytes.NewBufferString(`{"resident_id":5}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Contains(t, w.Body.String(), "sent")
}

func TestRequestOptIn_NoActiveConfigIsUnprocessable(t *testing.T) {
	useCase := &consentUseCaseMock{
		RequestOptInFn: func(residentID int) error {
			return domainErrors.NewAppErrorWithType(domainErrors.UnprocessableError)
		},
	}
	router := setupRouter(t, useCase)

	w := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodPost, "/v1/consent/request", bytes.NewBufferString(`{"resident_id":5}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
