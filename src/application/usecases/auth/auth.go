package auth

import (
	"errors"
	"time"

	domainErrors "condo-notify-api/src/domain/errors"
	domainOperator "condo-notify-api/src/domain/operator"
	logger "condo-notify-api/src/infrastructure/logger"
	"condo-notify-api/src/infrastructure/security"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type AuthTokens struct {
	AccessToken               string
	RefreshToken              string
	ExpirationAccessDateTime  time.Time
	ExpirationRefreshDateTime time.Time
}

type IAuthUseCase interface {
	Login(email, password string) (*domainOperator.Operator, *AuthTokens, error)
	AccessTokenByRefreshToken(refreshToken string) (*domainOperator.Operator, *AuthTokens, error)
}

type AuthUseCase struct {
	OperatorRepository domainOperator.Repository
	JWTService         security.IJWTService
	Logger             *logger.Logger
}

func NewAuthUseCase(
	operatorRepository domainOperator.Repository,
	jwtService security.IJWTService,
	loggerInstance *logger.Logger,
) IAuthUseCase {
	return &AuthUseCase{
		OperatorRepository: operatorRepository,
		JWTService:         jwtService,
		Logger:             loggerInstance,
	}
}

func (s *AuthUseCase) Login(email, password string) (*domainOperator.Operator, *AuthTokens, error) {
	s.Logger.Info("Operator login attempt", zap.String("email", email))

	op, err := s.OperatorRepository.GetByEmail(email)
	if err != nil {
		s.Logger.Warn("Login failed: operator not found", zap.String("email", email))
		return nil, nil, domainErrors.NewAppError(errors.New("email or password does not match"), domainErrors.NotAuthenticated)
	}
	if !op.Status {
		s.Logger.Warn("Login failed: operator disabled", zap.String("email", email))
		return nil, nil, domainErrors.NewAppError(errors.New("account disabled"), domainErrors.NotAuthenticated)
	}
	if bcrypt.CompareHashAndPassword([]byte(op.HashPassword), []byte(password)) != nil {
		s.Logger.Warn("Login failed: invalid password", zap.String("email", email))
		return nil, nil, domainErrors.NewAppError(errors.New("email or password does not match"), domainErrors.NotAuthenticated)
	}

	tokens, err := s.issueTokens(op)
	if err != nil {
		return nil, nil, err
	}

	s.Logger.Info("Operator logged in", zap.Int("operatorID", op.ID))
	return op, tokens, nil
}

func (s *AuthUseCase) AccessTokenByRefreshToken(refreshToken string) (*domainOperator.Operator, *AuthTokens, error) {
	claims, err := s.JWTService.GetClaimsAndVerifyToken(refreshToken, security.Refresh)
	if err != nil {
		return nil, nil, domainErrors.NewAppError(err, domainErrors.NotAuthenticated)
	}

	operatorID, ok := claims["id"].(float64)
	if !ok {
		return nil, nil, domainErrors.NewAppErrorWithType(domainErrors.NotAuthenticated)
	}

	op, err := s.OperatorRepository.GetByID(int(operatorID))
	if err != nil {
		return nil, nil, domainErrors.NewAppErrorWithType(domainErrors.NotAuthenticated)
	}

	tokens, err := s.issueTokens(op)
	if err != nil {
		return nil, nil, err
	}
	return op, tokens, nil
}

func (s *AuthUseCase) issueTokens(op *domainOperator.Operator) (*AuthTokens, error) {
	accessToken, err := s.JWTService.GenerateJWTToken(op.ID, op.Role, security.Access)
	if err != nil {
		s.Logger.Error("Error generating access token", zap.Error(err))
		return nil, domainErrors.NewAppErrorWithType(domainErrors.UnknownError)
	}
	refreshToken, err := s.JWTService.GenerateJWTToken(op.ID, op.Role, security.Refresh)
	if err != nil {
		s.Logger.Error("Error generating refresh token", zap.Error(err))
		return nil, domainErrors.NewAppErrorWithType(domainErrors.UnknownError)
	}

	return &AuthTokens{
		AccessToken:               accessToken.Token,
		RefreshToken:              refreshToken.Token,
		ExpirationAccessDateTime:  accessToken.ExpirationTime,
		ExpirationRefreshDateTime: refreshToken.ExpirationTime,
	}, nil
}
