package user

import (
	"time"

	userDatamodel "github.com/frahmantamala/stock-management/internal/core/datamodel/user"
	coreUser "github.com/frahmantamala/stock-management/internal/core/user"
)

type User struct {
	ID           int64         `json:"id"`
	Username     string        `json:"username"`
	Name         string        `json:"name"`
	Role         coreUser.Role `json:"role"`
	PasswordHash string        `json:"-"`
	Seeded       bool          `json:"seeded"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// DefaultAccount describes a demo account provisioned at startup.
type DefaultAccount struct {
	Username string
	Password string
	Name     string
	Role     coreUser.Role
}

var DefaultAccounts = []DefaultAccount{
	{Username: "admin", Password: "admin123", Name: "Administrator", Role: coreUser.RoleAdmin},
	{Username: "user", Password: "user123", Name: "Regular User", Role: coreUser.RoleUser},
}

func FromDataModel(u *userDatamodel.User) *User {
	return &User{
		ID:           u.ID,
		Username:     u.Username,
		Name:         u.Name,
		Role:         coreUser.Role(u.Role),
		PasswordHash: u.PasswordHash,
		Seeded:       u.Seeded,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}
