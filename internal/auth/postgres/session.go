package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	userDatamodel "github.com/frahmantamala/stock-management/internal/core/datamodel/user"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) CreateSession(ctx context.Context, s *userDatamodel.Session) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *SessionRepository) GetSession(ctx context.Context, id string) (*userDatamodel.Session, error) {
	var s userDatamodel.Session
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *SessionRepository) RevokeSession(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&userDatamodel.Session{}).
		Where("id = ?", id).
		Update("revoked", true).Error
}

func (r *SessionRepository) DeleteExpiredSessions(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at < ?", before).Delete(&userDatamodel.Session{})
	return res.RowsAffected, res.Error
}
