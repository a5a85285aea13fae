package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"vexara-llm/internal/domain"
)

var ErrNoSession = errors.New("identity: missing session id")

// Resolver deriva una identidad estable de usuario a partir del estado de
// sesión, de un token de cliente, o acuñando un guest id nuevo.
//
// Reglas:
//   - Una identidad ya ligada a la sesión nunca se sobreescribe en Resolve.
//   - BindGuest siempre acuña una identidad nueva, descartando la anterior.
//   - Clear borra la ligadura (logout).
type Resolver struct {
	store Store
	ttl   time.Duration
}

func NewResolver(store Store, ttl time.Duration) *Resolver {
	return &Resolver{store: store, ttl: ttl}
}

// Resolve devuelve la identidad de la sesión. Si no hay ninguna ligada,
// adopta el token de cliente (sanitizado) o acuña un guest id, y lo liga.
func (r *Resolver) Resolve(ctx context.Context, sessionID, clientToken string) (string, error) {
	if sessionID == "" {
		return "", ErrNoSession
	}

	bound, err := r.store.Get(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("get session identity: %w", err)
	}
	if bound != "" {
		return bound, nil
	}

	userID := domain.SanitizeID(clientToken)
	if userID == "" {
		userID = uuid.NewString()
	}
	if err := r.store.Bind(ctx, sessionID, userID, r.ttl); err != nil {
		return "", fmt.Errorf("bind session identity: %w", err)
	}
	return userID, nil
}

// BindGuest acuña una identidad guest nueva de forma incondicional,
// reemplazando cualquier identidad previa de la sesión.
func (r *Resolver) BindGuest(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", ErrNoSession
	}
	userID := uuid.NewString()
	if err := r.store.Bind(ctx, sessionID, userID, r.ttl); err != nil {
		return "", fmt.Errorf("bind guest identity: %w", err)
	}
	return userID, nil
}

// Clear borra la identidad ligada a la sesión (logout).
func (r *Resolver) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrNoSession
	}
	return r.store.Clear(ctx, sessionID)
}
