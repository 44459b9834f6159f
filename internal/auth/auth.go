package auth

import (
	"errors"
	"time"

	userDatamodel "github.com/frahmantamala/stock-management/internal/core/datamodel/user"
	coreUser "github.com/frahmantamala/stock-management/internal/core/user"
)

// SessionTTL is how long a login stays valid.
const SessionTTL = 7 * 24 * time.Hour

// Decision is the outcome of a capability check.
type Decision int

const (
	Authorized Decision = iota
	Unauthenticated
	Forbidden
)

func (d Decision) String() string {
	switch d {
	case Authorized:
		return "authorized"
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	default:
		return "unknown"
	}
}

type Session struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
	Revoked   bool
	CreatedAt time.Time
}

// Active reports whether the session can still authenticate requests.
func (s *Session) Active(now time.Time) bool {
	return s != nil && !s.Revoked && now.Before(s.ExpiresAt)
}

// SessionToken is the signed value handed to the client.
type SessionToken struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type LoginResponse struct {
	User      *coreUser.Principal `json:"user"`
	Token     string              `json:"token"`
	ExpiresAt time.Time           `json:"expires_at"`
}

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)

func PrincipalFromDataModel(u *userDatamodel.User) *coreUser.Principal {
	return &coreUser.Principal{
		ID:       u.ID,
		Username: u.Username,
		Name:     u.Name,
		Role:     coreUser.Role(u.Role),
	}
}

func SessionToDataModel(s *Session) *userDatamodel.Session {
	return &userDatamodel.Session{
		ID:        s.ID,
		UserID:    s.UserID,
		ExpiresAt: s.ExpiresAt,
		Revoked:   s.Revoked,
		CreatedAt: s.CreatedAt,
	}
}

func SessionFromDataModel(s *userDatamodel.Session) *Session {
	return &Session{
		ID:        s.ID,
		UserID:    s.UserID,
		ExpiresAt: s.ExpiresAt,
		Revoked:   s.Revoked,
		CreatedAt: s.CreatedAt,
	}
}
