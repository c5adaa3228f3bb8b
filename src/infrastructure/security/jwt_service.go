package security

import (
	"errors"
	"fmt"
	"time"

	"condo-notify-api/src/infrastructure/utils"

	"github.com/golang-jwt/jwt/v4"
)

const (
	Access  = "access"
	Refresh = "refresh"
)

// AppToken is an issued token plus its expiry, returned to the client.
type AppToken struct {
	Token          string
	TokenType      string
	ExpirationTime time.Time
}

type IJWTService interface {
	GenerateJWTToken(operatorID int, role, tokenType string) (*AppToken, error)
	GetClaimsAndVerifyToken(tokenString, tokenType string) (jwt.MapClaims, error)
}

type JWTService struct{}

func NewJWTService() IJWTService {
	return &JWTService{}
}

func (s *JWTService) secretAndTTL(tokenType string) ([]byte, time.Duration, error) {
	switch tokenType {
	case Access:
		secret := utils.GetEnv("JWT_ACCESS_SECRET_KEY", "")
		if secret == "" {
			return nil, 0, errors.New("JWT_ACCESS_SECRET_KEY not configured")
		}
		minutes := utils.GetEnvInt("JWT_ACCESS_TIME_MINUTE", 30)
		return []byte(secret), time.Duration(minutes) * time.Minute, nil
	case Refresh:
		secret := utils.GetEnv("JWT_REFRESH_SECRET_KEY", "")
		if secret == "" {
			return nil, 0, errors.New("JWT_REFRESH_SECRET_KEY not configured")
		}
		hours := utils.GetEnvInt("JWT_REFRESH_TIME_HOUR", 24)
		return []byte(secret), time.Duration(hours) * time.Hour, nil
	default:
		return nil, 0, fmt.Errorf("unknown token type: %s", tokenType)
	}
}

func (s *JWTService) GenerateJWTToken(operatorID int, role, tokenType string) (*AppToken, error) {
	secret, ttl, err := s.secretAndTTL(tokenType)
	if err != nil {
		return nil, err
	}

	expirationTime := time.Now().Add(ttl)
	claims := jwt.MapClaims{
		"id":   operatorID,
		"role": role,
		"type": tokenType,
		"exp":  expirationTime.Unix(),
		"iat":  time.Now().Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	if err != nil {
		return nil, err
	}

	return &AppToken{
		Token:          signed,
		TokenType:      tokenType,
		ExpirationTime: expirationTime,
	}, nil
}

func (s *JWTService) GetClaimsAndVerifyToken(tokenString, tokenType string) (jwt.MapClaims, error) {
	secret, _, err := s.secretAndTTL(tokenType)
	if err != nil {
		return nil, err
	}

	claims := jwt.MapClaims{}
	_, err = jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	if t, ok := claims["type"].(string); !ok || t != tokenType {
		return nil, errors.New("token type mismatch")
	}
	if exp, ok := claims["exp"].(float64); !ok || int64(exp) < jwt.TimeFunc().Unix() {
		return nil, errors.New("token expired")
	}
	return claims, nil
}
