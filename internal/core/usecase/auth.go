package usecase

import (
	"context"
	"errors"

	"github.com/chargedocs/chargedocs/internal/core/domain"
	"github.com/chargedocs/chargedocs/internal/core/ports"
)

// AuthUseCase drives the session store. It is the only writer of the
// token; everything else reads it through the store.
type AuthUseCase struct {
	api     ports.DocumentAPI
	session ports.SessionStore
}

func NewAuthUseCase(api ports.DocumentAPI, session ports.SessionStore) *AuthUseCase {
	return &AuthUseCase{api: api, session: session}
}

func (uc *AuthUseCase) Login(ctx context.Context, username, password string) error {
	if username == "" || password == "" {
		return domain.WrapError(domain.ErrInvalidInput, "login", errors.New("username and password are required"))
	}
	session, err := uc.api.Login(ctx, username, password)
	if err != nil {
		return err
	}
	uc.session.Set(*session)
	return nil
}

func (uc *AuthUseCase) Logout() {
	uc.session.Clear()
}
