package user

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	errors "github.com/frahmantamala/stock-management/internal"
	userDatamodel "github.com/frahmantamala/stock-management/internal/core/datamodel/user"
)

// RepositoryAPI lookups return nil, nil for missing rows. Create returns
// ErrUsernameTaken when the username is already stored. Update and Delete
// refuse to leave zero admins (ErrLastAdminRole, ErrLastAdminDelete) and must
// check and write atomically.
type RepositoryAPI interface {
	List(ctx context.Context) ([]*userDatamodel.User, error)
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	GetByUsername(ctx context.Context, username string) (*userDatamodel.User, error)
	Create(ctx context.Context, u *userDatamodel.User) error
	Update(ctx context.Context, u *userDatamodel.User) error
	Delete(ctx context.Context, id int64) (bool, error)
}

type Service struct {
	repo         RepositoryAPI
	logger       *slog.Logger
	bcryptCost   int
	queryTimeout time.Duration
}

func NewService(repo RepositoryAPI, logger *slog.Logger, bcryptCost int, queryTimeout time.Duration) *Service {
	if bcryptCost == 0 {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		repo:         repo,
		logger:       logger,
		bcryptCost:   bcryptCost,
		queryTimeout: queryTimeout,
	}
}

func (s *Service) List(ctx context.Context) ([]*User, error) {
	ctx, cancel := errors.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, s.storageError("list users", err)
	}

	users := make([]*User, 0, len(rows))
	for _, row := range rows {
		users = append(users, FromDataModel(row))
	}
	return users, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*User, error) {
	ctx, cancel := errors.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.storageError("get user", err, "user_id", id)
	}
	if row == nil {
		return nil, errors.ErrUserNotFound
	}
	return FromDataModel(row), nil
}

func (s *Service) Create(ctx context.Context, dto CreateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := errors.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	username := cleanUsername(dto.Username)
	existing, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, s.storageError("get user by username", err)
	}
	if existing != nil {
		return nil, errors.ErrUsernameTaken
	}

	hash, err := s.hash(dto.Password)
	if err != nil {
		return nil, err
	}

	row := &userDatamodel.User{
		Username:     username,
		Name:         cleanUsername(dto.Name),
		Role:         dto.Role,
		PasswordHash: hash,
	}
	if err := s.repo.Create(ctx, row); err != nil {
		return nil, s.storageError("create user", err)
	}

	s.logger.Info("user created", "user_id", row.ID, "username", row.Username, "role", row.Role)
	return FromDataModel(row), nil
}

// Update applies the optional fields. Demoting the only remaining admin is
// rejected.
func (s *Service) Update(ctx context.Context, id int64, dto UpdateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := errors.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, s.storageError("get user", err, "user_id", id)
	}
	if row == nil {
		return nil, errors.ErrUserNotFound
	}

	if dto.Name != nil {
		row.Name = cleanUsername(*dto.Name)
	}
	if dto.Role != nil {
		row.Role = *dto.Role
	}
	if dto.Password != nil && *dto.Password != "" {
		hash, err := s.hash(*dto.Password)
		if err != nil {
			return nil, err
		}
		row.PasswordHash = hash
	}

	if err := s.repo.Update(ctx, row); err != nil {
		return nil, s.storageError("update user", err, "user_id", id)
	}

	s.logger.Info("user updated", "user_id", id, "by", errors.UserIDFromContext(ctx))
	return FromDataModel(row), nil
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	ctx, cancel := errors.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	row, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return s.storageError("get user", err, "user_id", id)
	}
	if row == nil {
		return errors.ErrUserNotFound
	}
	if row.Seeded {
		return errors.ErrSeededUserDelete
	}

	found, err := s.repo.Delete(ctx, id)
	if err != nil {
		return s.storageError("delete user", err, "user_id", id)
	}
	if !found {
		return errors.ErrUserNotFound
	}

	s.logger.Info("user deleted", "user_id", id, "by", errors.UserIDFromContext(ctx))
	return nil
}

// EnsureDefaultAccounts provisions the demo accounts that are missing. It is
// safe to call on every start.
func (s *Service) EnsureDefaultAccounts(ctx context.Context) error {
	ctx, cancel := errors.WithTimeout(ctx, s.queryTimeout)
	defer cancel()

	for _, account := range DefaultAccounts {
		existing, err := s.repo.GetByUsername(ctx, account.Username)
		if err != nil {
			return s.storageError("get user by username", err, "username", account.Username)
		}
		if existing != nil {
			continue
		}

		hash, err := s.hash(account.Password)
		if err != nil {
			return err
		}
		row := &userDatamodel.User{
			Username:     account.Username,
			Name:         account.Name,
			Role:         string(account.Role),
			PasswordHash: hash,
			Seeded:       true,
		}
		if err := s.repo.Create(ctx, row); err != nil {
			return s.storageError("create default account", err, "username", account.Username)
		}
		s.logger.Info("default account provisioned", "username", account.Username, "role", account.Role)
	}
	return nil
}

func (s *Service) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return "", errors.NewInternalError("failed to hash password", err)
	}
	return string(hash), nil
}

func (s *Service) storageError(op string, err error, attrs ...any) error {
	if appErr, ok := errors.IsAppError(err); ok {
		return appErr
	}
	s.logger.Error("user storage failure", append([]any{"op", op, "error", err}, attrs...)...)
	return errors.NewUnavailableError("Storage unavailable, please retry", err)
}
