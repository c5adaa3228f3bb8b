package consent

import (
	"errors"
	"net/http"

	consentUseCase "condo-notify-api/src/application/usecases/consent"
	"condo-notify-api/src/domain/common"
	logger "condo-notify-api/src/infrastructure/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type IConsentController interface {
	Webhook(ctx *gin.Context)
	RequestOptIn(ctx *gin.Context)
}

type ConsentController struct {
	commonService  common.CommonService
	consentUseCase consentUseCase.IConsentUseCase
	Logger         *logger.Logger
}

func NewConsentController(
	commonService common.CommonService,
	useCase consentUseCase.IConsentUseCase,
	loggerInstance *logger.Logger,
) IConsentController {
	return &ConsentController{
		commonService:  commonService,
		consentUseCase: useCase,
		Logger:         loggerInstance,
	}
}

// Webhook receives button-click events from the gateway. Unknown phones and
// button ids are acknowledged as skipped so the gateway does not retry.
func (c *ConsentController) Webhook(ctx *gin.Context) {
	var request WebhookRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		c.Logger.Error("Invalid consent webhook payload", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			c.commonService.AppendValidationErrors(ctx, ve, request)
			return
		}
		_ = ctx.AbortWithError(http.StatusBadRequest, err)
		return
	}

	result, err := c.consentUseCase.HandleWebhook(request.EventType, request.Phone, request.ButtonID)
	if err != nil {
		_ = ctx.Error(err)
		return
	}

	c.Logger.Info("Consent webhook processed", zap.String("result", result))
	ctx.JSON(http.StatusOK, WebhookResponse{Result: result})
}

func (c *ConsentController) RequestOptIn(ctx *gin.Context) {
	var request OptInRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		c.Logger.Error("Invalid opt-in request", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			c.commonService.AppendValidationErrors(ctx, ve, request)
			return
		}
		_ = ctx.AbortWithError(http.StatusBadRequest, err)
		return
	}

	if err := c.consentUseCase.RequestOptIn(request.ResidentID); err != nil {
		_ = ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusAccepted, OptInResponse{Status: "sent"})
}
