package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	appErrors "github.com/frahmantamala/stock-management/internal"
	userDatamodel "github.com/frahmantamala/stock-management/internal/core/datamodel/user"
	coreUser "github.com/frahmantamala/stock-management/internal/core/user"
)

// UserRepository serves both the user directory and the credential lookups
// of the auth service.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) List(ctx context.Context) ([]*userDatamodel.User, error) {
	var users []*userDatamodel.User
	err := r.db.WithContext(ctx).Order("username ASC").Find(&users).Error
	return users, err
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*userDatamodel.User, error) {
	return r.first(ctx, "id = ?", id)
}

func (r *UserRepository) GetByUsername(ctx context.Context, username string) (*userDatamodel.User, error) {
	return r.first(ctx, "username = ?", username)
}

func (r *UserRepository) Create(ctx context.Context, u *userDatamodel.User) error {
	err := r.db.WithContext(ctx).Create(u).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return appErrors.ErrUsernameTaken
	}
	return err
}

// Update stores name, role and password hash. Demoting the last admin fails
// with ErrLastAdminRole.
func (r *UserRepository) Update(ctx context.Context, u *userDatamodel.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if u.Role != string(coreUser.RoleAdmin) {
			if err := requireAnotherAdmin(tx, u.ID, appErrors.ErrLastAdminRole); err != nil {
				return err
			}
		}
		return tx.Model(u).Updates(map[string]interface{}{
			"name":          u.Name,
			"role":          u.Role,
			"password_hash": u.PasswordHash,
		}).Error
	})
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, hash string) error {
	return r.db.WithContext(ctx).
		Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Update("password_hash", hash).Error
}

// Delete removes the user and its sessions. Deleting the last admin fails
// with ErrLastAdminDelete.
func (r *UserRepository) Delete(ctx context.Context, id int64) (bool, error) {
	var found bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := requireAnotherAdmin(tx, id, appErrors.ErrLastAdminDelete); err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", id).Delete(&userDatamodel.Session{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&userDatamodel.User{}, id)
		found = res.RowsAffected > 0
		return res.Error
	})
	return found, err
}

// requireAnotherAdmin locks every admin row until tx ends, so a concurrent
// delete or demotion waits and then sees the committed admin set.
func requireAnotherAdmin(tx *gorm.DB, id int64, violation error) error {
	var adminIDs []int64
	err := tx.Model(&userDatamodel.User{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("role = ?", string(coreUser.RoleAdmin)).
		Pluck("id", &adminIDs).Error
	if err != nil {
		return err
	}

	for _, adminID := range adminIDs {
		if adminID == id && len(adminIDs) <= 1 {
			return violation
		}
	}
	return nil
}

func (r *UserRepository) first(ctx context.Context, query string, arg interface{}) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Where(query, arg).First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}
