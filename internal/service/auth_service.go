package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ielts-prep/internal/config"
	"ielts-prep/internal/dto"
	"ielts-prep/internal/logger"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
)

var ErrInvalidJWTToken = errors.New("invalid jwt token")

// AuthService verifies access tokens issued by the backend platform. Sign-in
// itself happens there.
type AuthService interface {
	ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error)
	CreateJWT(ctx context.Context, userID string, ttl time.Duration) (string, error)
}

type authServiceImpl struct {
	secret []byte
	issuer string
}

func NewAuthService(cfg config.AuthConfig) (AuthService, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("auth.jwt_secret is not configured")
	}
	return &authServiceImpl{secret: []byte(cfg.JWTSecret), issuer: cfg.Issuer}, nil
}

// CreateJWT signs an HS256 token for userID. The platform normally issues
// tokens; this exists for local tooling and tests.
func (s *authServiceImpl) CreateJWT(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := dto.AuthClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *authServiceImpl) ValidateJWT(ctx context.Context, tokenString string) (*dto.AuthClaims, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired()}
	if s.issuer != "" {
		opts = append(opts, jwt.WithIssuer(s.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &dto.AuthClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			logger.Get().Debug("JWT token expired", zap.Error(err))
		} else {
			logger.Get().Warn("JWT validation failed", zap.Error(err))
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidJWTToken, err)
	}

	claims, ok := token.Claims.(*dto.AuthClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidJWTToken
	}
	return claims, nil
}
