package serverutils

import (
	"errors"
	"fmt"
	"strings"

	"legalai-be/pkg/guard"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

const (
	LocalUserID = "user_id"
	LocalRole   = "role"
)

var ErrMissingToken = errors.New("missing token")

// SessionReader verifies the bearer token issued by the auth service.
type SessionReader struct {
	secret []byte
}

func NewSessionReader(secret string) *SessionReader {
	return &SessionReader{secret: []byte(secret)}
}

// Token extracts the raw token from the Authorization header or, for
// websocket upgrades, the token query parameter.
func Token(ctx *fiber.Ctx) string {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return ctx.Query("token")
}

// Verify returns the subject carried in the user_id claim.
func (r *SessionReader) Verify(tokenStr string) (string, error) {
	if tokenStr == "" {
		return "", ErrMissingToken
	}
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return r.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}
	subject, _ := claims["user_id"].(string)
	if subject == "" {
		return "", errors.New("token has no user_id")
	}
	return subject, nil
}

// Read builds a guard session. An invalid token yields an unauthenticated session.
func (r *SessionReader) Read(ctx *fiber.Ctx) guard.Session {
	raw := Token(ctx)
	subject, err := r.Verify(raw)
	if err != nil {
		return guard.Session{}
	}
	return guard.Session{Subject: subject, Token: raw}
}

func SubjectFrom(ctx *fiber.Ctx) string {
	subject, _ := ctx.Locals(LocalUserID).(string)
	return subject
}
