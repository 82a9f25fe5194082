package orchestrators

import (
	"context"
	"errors"
	"log/slog"

	"clubhouse/internal/application/syncstore"
	"clubhouse/internal/domain/auth"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrAuthDisabled       = errors.New("authentication is not required")
	ErrAuthUserNotFound   = errors.New("user not found")
)

// AuthDeps holds dependencies for the auth orchestrators. The auth
// collection is local-only; its store carries no remote mirror.
type AuthDeps struct {
	Auth       *syncstore.Store
	Verifier   auth.Verifier
	GenerateID func() string
}

// LoginInput carries the submitted credentials. Username is ignored in
// shared-password mode.
type LoginInput struct {
	Username string
	Password string
}

// LoginResult carries the identity for session creation.
type LoginResult struct {
	UserID string
	Name   string
	Role   string
}

// ExecuteLogin validates credentials against the configured auth mode.
// Shared-password mode grants the admin role; multi-user mode looks the
// username up in the allow-list.
// POST: Returns identity on success; every failure path reports the same
// ErrInvalidCredentials
func ExecuteLogin(ctx context.Context, input LoginInput, deps AuthDeps) (LoginResult, error) {
	var cfg auth.Settings
	if err := deps.Auth.Decode(&cfg); err != nil {
		return LoginResult{}, err
	}
	if !cfg.RequireAuth {
		return LoginResult{}, ErrAuthDisabled
	}
	if input.Password == "" {
		return LoginResult{}, ErrInvalidCredentials
	}

	switch cfg.AuthType {
	case auth.TypeMultiUser:
		for _, u := range cfg.AllowedUsers {
			if u.Username != input.Username {
				continue
			}
			if !deps.Verifier.Verify(u.Password, input.Password) {
				break
			}
			slog.Info("auth_event", "event", "login_success", "username", u.Username, "role", u.Role)
			return LoginResult{UserID: u.ID, Name: u.Name, Role: u.Role}, nil
		}
		slog.Info("auth_event", "event", "login_failed", "username", input.Username)
		return LoginResult{}, ErrInvalidCredentials

	default: // shared password
		if !deps.Verifier.Verify(cfg.AdminPassword, input.Password) {
			slog.Info("auth_event", "event", "login_failed", "mode", "password")
			return LoginResult{}, ErrInvalidCredentials
		}
		slog.Info("auth_event", "event", "login_success", "mode", "password")
		return LoginResult{UserID: "admin", Name: "Admin", Role: auth.RoleAdmin}, nil
	}
}

// AddAuthUserInput carries the fields for a new allow-list entry.
type AddAuthUserInput struct {
	Name     string
	Username string
	Password string
	Role     string
}

// ExecuteAddAuthUser appends a user to the multi-user allow-list.
func ExecuteAddAuthUser(ctx context.Context, input AddAuthUserInput, deps AuthDeps) (auth.User, error) {
	var cfg auth.Settings
	if err := deps.Auth.Decode(&cfg); err != nil {
		return auth.User{}, err
	}

	u := auth.User{
		ID:       deps.GenerateID(),
		Name:     input.Name,
		Username: input.Username,
		Password: input.Password,
		Role:     input.Role,
	}
	if err := cfg.AddUser(u); err != nil {
		return auth.User{}, err
	}
	if err := deps.Auth.SetData(ctx, cfg); err != nil {
		return auth.User{}, err
	}

	slog.Info("auth_event", "event", "user_added", "username", u.Username, "role", u.Role)
	return u, nil
}

// ExecuteRemoveAuthUser removes a user from the allow-list.
func ExecuteRemoveAuthUser(ctx context.Context, id string, deps AuthDeps) error {
	var cfg auth.Settings
	if err := deps.Auth.Decode(&cfg); err != nil {
		return err
	}
	before := len(cfg.AllowedUsers)
	cfg.RemoveUser(id)
	if len(cfg.AllowedUsers) == before {
		return ErrAuthUserNotFound
	}
	if err := deps.Auth.SetData(ctx, cfg); err != nil {
		return err
	}

	slog.Info("auth_event", "event", "user_removed", "user_id", id)
	return nil
}

// ExecuteUpdateAuthSettings replaces the auth configuration wholesale.
func ExecuteUpdateAuthSettings(ctx context.Context, updated auth.Settings, deps AuthDeps) error {
	if err := updated.Validate(); err != nil {
		return err
	}
	if err := deps.Auth.SetData(ctx, updated); err != nil {
		return err
	}
	slog.Info("auth_event", "event", "settings_updated", "auth_type", updated.AuthType, "require_auth", updated.RequireAuth)
	return nil
}
