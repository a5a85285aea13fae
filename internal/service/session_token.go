package service

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionTokenService emite y valida los tokens firmados que viajan en la
// cookie de sesión. El token solo transporta el id de sesión; la identidad
// de usuario ligada a esa sesión vive en identity.Store.
type SessionTokenService struct {
	secret []byte
	ttl    time.Duration
	issuer string
}

// SessionClaims son los claims del token de sesión.
type SessionClaims struct {
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

var (
	ErrSessionTokenInvalid = errors.New("session token invalid")
	ErrSessionTokenExpired = errors.New("session token expired")
)

func NewSessionTokenService(secret string, ttl time.Duration) *SessionTokenService {
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &SessionTokenService{
		secret: []byte(secret),
		ttl:    ttl,
		issuer: "vexara-llm",
	}
}

// Issue acuña un id de sesión nuevo y devuelve el token firmado que lo porta.
func (s *SessionTokenService) Issue() (string, string, error) {
	if len(s.secret) == 0 {
		return "", "", ErrSessionTokenInvalid
	}
	sessionID := uuid.NewString()
	now := time.Now().UTC()
	claims := SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.issuer,
			Subject:   sessionID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", "", err
	}
	return signed, sessionID, nil
}

// Parse valida un token de sesión y devuelve el id de sesión que porta.
func (s *SessionTokenService) Parse(tokenString string) (string, error) {
	if len(s.secret) == 0 || strings.TrimSpace(tokenString) == "" {
		return "", ErrSessionTokenInvalid
	}

	var claims SessionClaims
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	_, err := parser.ParseWithClaims(tokenString, &claims, func(_ *jwt.Token) (any, error) {
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrSessionTokenExpired
		}
		return "", ErrSessionTokenInvalid
	}

	if strings.TrimSpace(claims.SessionID) == "" || claims.Issuer != s.issuer {
		return "", ErrSessionTokenInvalid
	}
	return claims.SessionID, nil
}

// TTL expone la vigencia configurada, usada para el Max-Age de la cookie.
func (s *SessionTokenService) TTL() time.Duration {
	return s.ttl
}
