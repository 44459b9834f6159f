package auth

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	errors "github.com/frahmantamala/stock-management/internal"
	userDatamodel "github.com/frahmantamala/stock-management/internal/core/datamodel/user"
	coreUser "github.com/frahmantamala/stock-management/internal/core/user"
)

// CredentialStore is the slice of the user repository the auth service
// needs. Lookups return nil, nil for unknown accounts.
type CredentialStore interface {
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	GetByUsername(ctx context.Context, username string) (*userDatamodel.User, error)
	UpdatePassword(ctx context.Context, id int64, hash string) error
}

// SessionStore persists sessions. GetSession returns nil, nil when the id
// is unknown.
type SessionStore interface {
	CreateSession(ctx context.Context, s *userDatamodel.Session) error
	GetSession(ctx context.Context, id string) (*userDatamodel.Session, error)
	RevokeSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error)
}

type Service struct {
	users        CredentialStore
	sessions     SessionStore
	tokens       *JWTTokenGenerator
	logger       *slog.Logger
	bcryptCost   int
	queryTimeout time.Duration
}

func NewService(users CredentialStore, sessions SessionStore, tokens *JWTTokenGenerator, logger *slog.Logger, bcryptCost int, queryTimeout time.Duration) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		users:        users,
		sessions:     sessions,
		tokens:       tokens,
		logger:       logger,
		bcryptCost:   bcryptCost,
		queryTimeout: queryTimeout,
	}
}

// Login verifies the credentials and opens a new session. Unknown usernames
// and wrong passwords yield the same ErrInvalidCredentials.
func (s *Service) Login(ctx context.Context, dto LoginDTO) (*coreUser.Principal, *SessionToken, error) {
	if err := dto.Validate(); err != nil {
		return nil, nil, err
	}

	ctx, cancel := errors.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	username := strings.TrimSpace(dto.Username)
	account, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, nil, s.storageError("get credentials", err)
	}
	if account == nil || !VerifyPassword(account.PasswordHash, account.Seeded, dto.Password) {
		s.logger.Warn("login failed", "username", username)
		return nil, nil, errors.ErrInvalidCredentials
	}

	now := time.Now().UTC()
	session := &Session{
		ID:        uuid.NewString(),
		UserID:    account.ID,
		ExpiresAt: now.Add(SessionTTL),
		CreatedAt: now,
	}
	if err := s.sessions.CreateSession(ctx, SessionToDataModel(session)); err != nil {
		return nil, nil, s.storageError("create session", err, "user_id", account.ID)
	}

	principal := PrincipalFromDataModel(account)
	token, err := s.tokens.Generate(session, principal)
	if err != nil {
		s.logger.Error("failed to sign session token", "error", err)
		return nil, nil, errors.NewInternalError("failed to issue session token", err)
	}

	s.logger.Info("user logged in", "user_id", account.ID, "username", account.Username)
	return principal, &SessionToken{Token: token, ExpiresAt: session.ExpiresAt}, nil
}

// Logout revokes the session behind token. Tokens that no longer verify
// have nothing left to revoke.
func (s *Service) Logout(ctx context.Context, token string) error {
	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		return nil
	}

	ctx, cancel := errors.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	if err := s.sessions.RevokeSession(ctx, claims.SessionID()); err != nil {
		return s.storageError("revoke session", err, "session_id", claims.SessionID())
	}

	s.logger.Info("user logged out", "user_id", claims.UserID)
	return nil
}

// CurrentUser resolves token to the account that owns a live session.
func (s *Service) CurrentUser(ctx context.Context, token string) (*coreUser.Principal, error) {
	if token == "" {
		return nil, errors.ErrUnauthenticated
	}

	claims, err := s.tokens.ValidateToken(token)
	if err != nil {
		s.logger.Debug("session token rejected", "error", err)
		return nil, errors.ErrUnauthenticated
	}

	ctx, cancel := errors.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	row, err := s.sessions.GetSession(ctx, claims.SessionID())
	if err != nil {
		return nil, s.storageError("get session", err)
	}
	if row == nil || row.UserID != claims.UserID {
		return nil, errors.ErrUnauthenticated
	}
	if !SessionFromDataModel(row).Active(time.Now()) {
		return nil, errors.ErrUnauthenticated
	}

	account, err := s.users.GetByID(ctx, claims.UserID)
	if err != nil {
		return nil, s.storageError("get user", err, "user_id", claims.UserID)
	}
	if account == nil {
		return nil, errors.ErrUnauthenticated
	}
	return PrincipalFromDataModel(account), nil
}

// Authorize decides whether token grants the required role. The error is
// only set for storage failures.
func (s *Service) Authorize(ctx context.Context, token string, required coreUser.Role) (Decision, *coreUser.Principal, error) {
	principal, err := s.CurrentUser(ctx, token)
	if err != nil {
		if appErr, ok := errors.IsAppError(err); ok && appErr.Type == errors.ErrorTypeUnauthorized {
			return Unauthenticated, nil, nil
		}
		return Unauthenticated, nil, err
	}
	if !principal.Satisfies(required) {
		return Forbidden, principal, nil
	}
	return Authorized, principal, nil
}

func (s *Service) RequireAuthenticated(ctx context.Context, token string) (*coreUser.Principal, error) {
	return s.require(ctx, token, coreUser.RoleUser)
}

func (s *Service) RequireAdmin(ctx context.Context, token string) (*coreUser.Principal, error) {
	return s.require(ctx, token, coreUser.RoleAdmin)
}

func (s *Service) require(ctx context.Context, token string, role coreUser.Role) (*coreUser.Principal, error) {
	decision, principal, err := s.Authorize(ctx, token, role)
	if err != nil {
		return nil, err
	}
	switch decision {
	case Authorized:
		return principal, nil
	case Forbidden:
		s.logger.Warn("access denied", "user_id", principal.ID, "role", principal.Role, "required_role", role)
		return nil, errors.ErrAdminRequired
	default:
		return nil, errors.ErrUnauthenticated
	}
}

// ChangePassword replaces the credential of username after checking the
// current one. The new credential is always stored hashed.
func (s *Service) ChangePassword(ctx context.Context, username, current, next string) error {
	if err := (ChangePasswordDTO{CurrentPassword: current, NewPassword: next}).Validate(); err != nil {
		return err
	}

	ctx, cancel := errors.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	account, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return s.storageError("get credentials", err)
	}
	if account == nil {
		return errors.ErrUserNotFound
	}
	if !VerifyPassword(account.PasswordHash, account.Seeded, current) {
		return errors.ErrWrongPassword
	}

	hash, err := HashPassword(next, s.bcryptCost)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return errors.NewInternalError("failed to hash password", err)
	}
	if err := s.users.UpdatePassword(ctx, account.ID, hash); err != nil {
		return s.storageError("update password", err, "user_id", account.ID)
	}

	s.logger.Info("password changed", "user_id", account.ID)
	return nil
}

// PurgeExpiredSessions drops sessions that expired before now.
func (s *Service) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	ctx, cancel := errors.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	n, err := s.sessions.DeleteExpiredSessions(ctx, time.Now().UTC())
	if err != nil {
		return 0, s.storageError("purge sessions", err)
	}
	if n > 0 {
		s.logger.Info("expired sessions purged", "count", n)
	}
	return n, nil
}

func (s *Service) storageError(op string, err error, attrs ...any) error {
	s.logger.Error("auth storage failure", append([]any{"op", op, "error", err}, attrs...)...)
	return errors.NewUnavailableError("Storage unavailable, please retry", err)
}
