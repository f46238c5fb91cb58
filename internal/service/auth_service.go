package service

import (
	"errors"
	"fmt"
	"time"

	"surveyassistant/internal/config"
	"surveyassistant/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

const respondentTokenTTL = 24 * time.Hour

// AuthService issues host tokens and session-scoped respondent tokens
type AuthService struct {
	hostUsername string
	hostPassword string
	jwtSecret    []byte
	now          func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(cfg *config.Config) *AuthService {
	return &AuthService{
		hostUsername: cfg.HostUsername,
		hostPassword: cfg.HostPassword,
		jwtSecret:    []byte(cfg.JWTSecret),
		now:          time.Now,
	}
}

// Login validates host credentials and returns a non-expiring host token
func (s *AuthService) Login(username, password string) (*model.LoginResponse, error) {
	if username != s.hostUsername || password != s.hostPassword {
		return nil, ErrInvalidCredentials
	}

	hostID := "host_" + uuid.New().String()[:8]
	claims := &model.HostClaims{
		HostID: hostID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(s.now()),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("sign host token: %w", err)
	}
	return &model.LoginResponse{
		Token:  token,
		HostID: hostID,
	}, nil
}

// ValidateHostToken validates a host JWT and returns claims
func (s *AuthService) ValidateHostToken(tokenString string) (*model.HostClaims, error) {
	claims := &model.HostClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.HostID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// GenerateRespondentToken creates a token that only grants access to one session
func (s *AuthService) GenerateRespondentToken(sessionID string) (string, error) {
	now := s.now()
	claims := &model.RespondentClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(respondentTokenTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
}

// ValidateRespondentToken validates a respondent JWT and returns claims
func (s *AuthService) ValidateRespondentToken(tokenString string) (*model.RespondentClaims, error) {
	claims := &model.RespondentClaims{}
	if err := s.parse(tokenString, claims); err != nil {
		return nil, err
	}
	if claims.SessionID == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func (s *AuthService) parse(tokenString string, claims jwt.Claims) error {
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return ErrInvalidToken
	}
	return nil
}
