// Package service provides the business logic layer: login and session
// control, the transfer/loan rule engine, account closure and the rendered
// ledger views.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hmoraes/bankist-api/internal/domain"
	"github.com/hmoraes/bankist-api/internal/infra/lockout"
	"github.com/hmoraes/bankist-api/internal/infra/observability"
	"github.com/hmoraes/bankist-api/internal/port"
	"github.com/hmoraes/bankist-api/internal/session"
	"github.com/hmoraes/bankist-api/internal/view"

	"github.com/golang-jwt/jwt/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

var authTracer = otel.Tracer("service/auth")

// AuthService handles login, logout and token validation. Credentials are
// a user ID plus numeric PIN compared in plaintext against the seed data —
// the tutorial model keeps no hashed secrets.
type AuthService struct {
	store    port.AccountStore
	sessions *session.Manager
	lockout  *lockout.Registry
	metrics  *observability.Metrics
	logger   *zap.Logger

	jwtSecret []byte
	accessTTL time.Duration
}

// NewAuthService creates the auth service.
func NewAuthService(
	store port.AccountStore,
	sessions *session.Manager,
	lockoutReg *lockout.Registry,
	metrics *observability.Metrics,
	logger *zap.Logger,
	jwtSecret string,
	accessTTL time.Duration,
) *AuthService {
	return &AuthService{
		store:     store,
		sessions:  sessions,
		lockout:   lockoutReg,
		metrics:   metrics,
		logger:    logger,
		jwtSecret: []byte(jwtSecret),
		accessTTL: accessTTL,
	}
}

// Login handles the login-submit event. A failed login leaves the session
// exactly as it was: no state mutation, no countdown reset. A successful
// login replaces any previous session, resets the sort toggle and arms the
// idle countdown.
func (s *AuthService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	ctx, span := authTracer.Start(ctx, "AuthService.Login")
	defer span.End()
	span.SetAttributes(attribute.String("user.id", req.UserID))

	if req.UserID == "" {
		return nil, &domain.ErrValidation{Field: "user_id", Message: "required"}
	}

	var owner string
	err := s.lockout.Attempt(req.UserID, func() error {
		acc, err := s.store.Snapshot(req.UserID)
		if err != nil || acc.PIN != req.PIN {
			return &domain.ErrInvalidCredentials{}
		}
		owner = acc.Owner
		return nil
	})
	if errors.Is(err, lockout.ErrLocked) {
		s.metrics.IncrLogin("locked")
		s.logger.Warn("login: account locked", zap.String("user_id", req.UserID))
		return nil, &domain.ErrAccountLocked{UserID: req.UserID}
	}
	if err != nil {
		s.metrics.IncrLogin("invalid")
		s.logger.Warn("login: invalid credentials", zap.String("user_id", req.UserID))
		return nil, err
	}

	sessionID := s.sessions.Start(req.UserID)

	token, err := s.signSessionToken(req.UserID, sessionID)
	if err != nil {
		// Token signing failed after the session started; roll the
		// session back so state matches what the caller sees.
		s.sessions.End("logout")
		return nil, fmt.Errorf("sign session token: %w", err)
	}

	s.metrics.IncrLogin("success")
	s.logger.Info("user logged in", zap.String("user_id", req.UserID))

	return &domain.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int(s.accessTTL.Seconds()),
		UserID:      req.UserID,
		Owner:       owner,
		Greeting:    view.Welcome(owner, time.Now()),
	}, nil
}

// Logout ends the session explicitly. Pending loan applications are not
// cancelled: the account still exists and the credit stays valid.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	_, span := authTracer.Start(ctx, "AuthService.Logout")
	defer span.End()

	if active, ok := s.sessions.Active(); !ok || active != userID {
		return &domain.ErrNoSession{}
	}
	s.sessions.End("logout")
	return nil
}

// SessionClaims are the custom claims in session tokens.
type SessionClaims struct {
	Sub  string `json:"sub"`
	SID  string `json:"sid"`
	Type string `json:"type"`
	jwt.RegisteredClaims
}

// Authenticate validates a token and cross-checks it against the live
// session: a structurally valid token whose session has since ended (idle
// timeout, logout or closure) is refused. Returns the authenticated user ID.
func (s *AuthService) Authenticate(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return "", &domain.ErrUnauthorized{Message: "invalid or expired token"}
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.Type != "session" {
		return "", &domain.ErrUnauthorized{Message: "invalid token"}
	}

	if !s.sessions.Validate(claims.Sub, claims.SID) {
		return "", &domain.ErrNoSession{}
	}
	return claims.Sub, nil
}

func (s *AuthService) signSessionToken(userID, sessionID string) (string, error) {
	now := time.Now()
	claims := SessionClaims{
		Sub:  userID,
		SID:  sessionID,
		Type: "session",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			Issuer:    "bankist-api",
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}
