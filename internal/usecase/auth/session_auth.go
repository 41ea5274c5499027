package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/gdugdh24/bookswap-backend/internal/domain"
	"github.com/gdugdh24/bookswap-backend/internal/repository"
	"github.com/golang-jwt/jwt/v5"
)

type SessionAuthUseCase struct {
	sessions  repository.SessionStore
	jwtSecret string
	expiry    time.Duration
	now       func() time.Time
}

func NewSessionAuthUseCase(sessions repository.SessionStore, jwtSecret string, expiry time.Duration) *SessionAuthUseCase {
	return &SessionAuthUseCase{
		sessions:  sessions,
		jwtSecret: jwtSecret,
		expiry:    expiry,
		now:       time.Now,
	}
}

// Claims is the JWT payload of a session token.
type Claims struct {
	UserID     string            `json:"user_id"`
	Permission domain.Permission `json:"permission"`
	jwt.RegisteredClaims
}

// AuthResponse represents the issued session
type AuthResponse struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expires_at"`
	Principal domain.Principal `json:"principal"`
}

// IssueToken creates a signed token and registers its session.
func (uc *SessionAuthUseCase) IssueToken(ctx context.Context, userID string, permission domain.Permission) (*AuthResponse, error) {
	if userID == "" {
		return nil, domain.NewValidationError(domain.CodeUnauthorized, "user id is required")
	}
	if !permission.Valid() {
		return nil, domain.NewValidationError(domain.CodeForbidden, fmt.Sprintf("unknown permission %q", permission))
	}

	issuedAt := uc.now()
	expiresAt := issuedAt.Add(uc.expiry)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		UserID:     userID,
		Permission: permission,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	})

	tokenString, err := token.SignedString([]byte(uc.jwtSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	if err := uc.sessions.Save(ctx, hashToken(tokenString), userID, uc.expiry); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return &AuthResponse{
		Token:     tokenString,
		ExpiresAt: expiresAt,
		Principal: domain.Principal{UserID: userID, Permission: permission},
	}, nil
}

// VerifyToken checks the signature and that the session was not logged out.
func (uc *SessionAuthUseCase) VerifyToken(ctx context.Context, tokenString string) (*domain.Principal, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, domain.ErrInvalidToken
		}
		return []byte(uc.jwtSecret), nil
	}, jwt.WithTimeFunc(uc.now))
	if err != nil || !token.Valid {
		return nil, domain.ErrInvalidToken
	}
	if claims.UserID == "" || !claims.Permission.Valid() {
		return nil, domain.ErrInvalidToken
	}

	exists, err := uc.sessions.Exists(ctx, hashToken(tokenString))
	if err != nil {
		return nil, fmt.Errorf("failed to check session: %w", err)
	}
	if !exists {
		return nil, domain.ErrSessionNotFound
	}

	return &domain.Principal{UserID: claims.UserID, Permission: claims.Permission}, nil
}

// Logout deletes user session
func (uc *SessionAuthUseCase) Logout(ctx context.Context, tokenString string) error {
	err := uc.sessions.Delete(ctx, hashToken(tokenString))
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		return err
	}
	return nil
}

// hashToken creates SHA256 hash of token for storage
func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return hex.EncodeToString(h[:])
}
