package services

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/pquerna/otp/totp"
	"github.com/sirupsen/logrus"

	"scavnger-backend/internal/dto"
)

// ErrInvalidCredentials indicates a failed admin login attempt. The caller
// must not distinguish a bad username from a bad code.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AdminAuthService issues short-lived JWTs to operators who pass TOTP
// verification. There are no admin passwords; the authenticator code is the
// only factor.
type AdminAuthService struct {
	username   string
	totpSecret string
	jwtSecret  []byte
	tokenTTL   time.Duration
	logger     *logrus.Logger
}

func NewAdminAuthService(username, totpSecret, jwtSecret string, logger *logrus.Logger) *AdminAuthService {
	if logger == nil {
		logger = logrus.New()
	}
	return &AdminAuthService{
		username:   username,
		totpSecret: totpSecret,
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   8 * time.Hour,
		logger:     logger,
	}
}

// Login validates the TOTP code and returns a signed admin token.
func (s *AdminAuthService) Login(username, code string) (string, time.Time, error) {
	if s.username == "" || s.totpSecret == "" || len(s.jwtSecret) == 0 {
		return "", time.Time{}, errors.New("admin authentication is not configured")
	}
	if username != s.username || !totp.Validate(code, s.totpSecret) {
		s.logger.WithField("username", username).Warn("🔒 Admin login rejected")
		return "", time.Time{}, ErrInvalidCredentials
	}

	expiresAt := time.Now().Add(s.tokenTTL)
	claims := dto.AdminJWTClaims{
		Username: username,
		Role:     "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", time.Time{}, err
	}

	s.logger.WithField("username", username).Info("🔑 Admin login succeeded")
	return token, expiresAt, nil
}

// ValidateToken parses and verifies an admin token, returning its claims.
func (s *AdminAuthService) ValidateToken(tokenString string) (*dto.AdminJWTClaims, error) {
	claims := &dto.AdminJWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid || claims.Role != "admin" {
		return nil, errors.New("invalid admin token")
	}
	return claims, nil
}
