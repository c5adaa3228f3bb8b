package auth

import (
	"errors"
	"net/http"
	"time"

	authUseCase "condo-notify-api/src/application/usecases/auth"
	"condo-notify-api/src/domain/common"
	logger "condo-notify-api/src/infrastructure/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type IAuthController interface {
	Login(ctx *gin.Context)
	GetAccessTokenByRefreshToken(ctx *gin.Context)
}

type AuthController struct {
	commonService common.CommonService
	authUseCase   authUseCase.IAuthUseCase
	Logger        *logger.Logger
}

func NewAuthController(
	commonService common.CommonService,
	useCase authUseCase.IAuthUseCase,
	loggerInstance *logger.Logger,
) IAuthController {
	return &AuthController{
		commonService: commonService,
		authUseCase:   useCase,
		Logger:        loggerInstance,
	}
}

func (c *AuthController) Login(ctx *gin.Context) {
	var request LoginRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		c.Logger.Error("Invalid login request", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			c.commonService.AppendValidationErrors(ctx, ve, request)
			return
		}
		_ = ctx.AbortWithError(http.StatusBadRequest, err)
		return
	}

	operator, tokens, err := c.authUseCase.Login(request.Email, request.Password)
	if err != nil {
		_ = ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, loginResponse(operator.ID, operator.Name, operator.Email, operator.Role, tokens))
}

func (c *AuthController) GetAccessTokenByRefreshToken(ctx *gin.Context) {
	var request AccessTokenByRefreshTokenRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		c.Logger.Error("Invalid refresh token request", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			c.commonService.AppendValidationErrors(ctx, ve, request)
			return
		}
		_ = ctx.AbortWithError(http.StatusBadRequest, err)
		return
	}

	operator, tokens, err := c.authUseCase.AccessTokenByRefreshToken(request.RefreshToken)
	if err != nil {
		_ = ctx.Error(err)
		return
	}

	ctx.JSON(http.StatusOK, loginResponse(operator.ID, operator.Name, operator.Email, operator.Role, tokens))
}

func loginResponse(id int, name, email, role string, tokens *authUseCase.AuthTokens) LoginResponse {
	return LoginResponse{
		ID:    id,
		Name:  name,
		Email: email,
		Role:  role,
		Security: SecurityData{
			JWTAccessToken:            tokens.AccessToken,
			JWTRefreshToken:           tokens.RefreshToken,
			ExpirationAccessDateTime:  tokens.ExpirationAccessDateTime.Format(time.RFC3339),
			ExpirationRefreshDateTime: tokens.ExpirationRefreshDateTime.Format(time.RFC3339),
		},
	}
}
