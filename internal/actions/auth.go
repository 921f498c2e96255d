package actions

import (
	"context"
	"strings"

	"github.com/featherpost/client/internal/gateway"
	"github.com/featherpost/client/internal/models"
)

// Sessions is the session store surface the auth workflows drive.
type Sessions interface {
	Login(ctx context.Context, screenName, password string) error
	Logout(ctx context.Context)
}

// Registrar creates new accounts.
type Registrar interface {
	Register(ctx context.Context, reg gateway.Registration) (models.ViewerProfile, error)
}

// Auth is the login/register workflow.
type Auth struct {
	sessions  Sessions
	registrar Registrar
	latch     latch
}

// NewAuth constructs an Auth surface.
func NewAuth(sessions Sessions, registrar Registrar) *Auth {
	if sessions == nil || registrar == nil {
		panic("actions: all auth dependencies must be non-nil")
	}
	return &Auth{sessions: sessions, registrar: registrar}
}

// Login establishes a session from credentials.
func (a *Auth) Login(ctx context.Context, screenName, password string) error {
	if err := validateCredentials(screenName, password, 1); err != nil {
		return err
	}
	if !a.latch.acquire() {
		return ErrBusy
	}
	defer a.latch.release()

	return a.sessions.Login(ctx, strings.TrimSpace(screenName), password)
}

// Register creates an account. The backend returns the created user without a
// token; the caller logs in afterwards.
func (a *Auth) Register(ctx context.Context, reg gateway.Registration) (models.ViewerProfile, error) {
	// Mirrors the backend's constraints: non-blank screen name, password of
	// at least six characters.
	if err := validateCredentials(reg.ScreenName, reg.Password, 6); err != nil {
		return models.ViewerProfile{}, err
	}
	if !a.latch.acquire() {
		return models.ViewerProfile{}, ErrBusy
	}
	defer a.latch.release()

	reg.ScreenName = strings.TrimSpace(reg.ScreenName)
	return a.registrar.Register(ctx, reg)
}

// Logout ends the session locally. It never fails and never calls the
// network.
func (a *Auth) Logout(ctx context.Context) {
	a.sessions.Logout(ctx)
}

func validateCredentials(screenName, password string, minPassword int) error {
	fields := map[string]string{}
	if strings.TrimSpace(screenName) == "" {
		fields["screenName"] = "screen name must not be blank"
	}
	if len(password) < minPassword {
		if minPassword > 1 {
			fields["password"] = "password must be at least 6 characters"
		} else {
			fields["password"] = "password must not be blank"
		}
	}
	if len(fields) > 0 {
		return &gateway.ValidationError{Message: "Validation failed", Fields: fields}
	}
	return nil
}
