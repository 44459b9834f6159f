package user

import (
	"strings"

	errors "github.com/frahmantamala/stock-management/internal"
	"github.com/frahmantamala/stock-management/internal/core/common/validation"
	coreUser "github.com/frahmantamala/stock-management/internal/core/user"
)

var roles = []string{string(coreUser.RoleAdmin), string(coreUser.RoleUser)}

type CreateUserDTO struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

func (dto CreateUserDTO) Validate() error {
	v := validation.NewValidator()
	v.Field("username", dto.Username).Required().MaxLength(validation.MaxNameLength)
	v.Field("name", dto.Name).Required().MaxLength(validation.MaxNameLength)
	v.Field("password", dto.Password).Required().MinLength(validation.MinPasswordLength, errors.ErrCodePasswordTooShort)
	v.Field("role", dto.Role).Required().OneOf(errors.ErrCodeInvalidRole, roles...)
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

// UpdateUserDTO fields are optional; nil leaves the stored value untouched.
type UpdateUserDTO struct {
	Name     *string `json:"name,omitempty"`
	Role     *string `json:"role,omitempty"`
	Password *string `json:"password,omitempty"`
}

func (dto UpdateUserDTO) Validate() error {
	v := validation.NewValidator()
	if dto.Name != nil {
		v.Field("name", *dto.Name).Required().MaxLength(validation.MaxNameLength)
	}
	if dto.Role != nil {
		v.Field("role", *dto.Role).OneOf(errors.ErrCodeInvalidRole, roles...)
	}
	if dto.Password != nil && *dto.Password != "" {
		v.Field("password", *dto.Password).MinLength(validation.MinPasswordLength, errors.ErrCodePasswordTooShort)
	}
	if err := v.Validate(); err != nil {
		return err
	}
	return nil
}

func cleanUsername(username string) string {
	return strings.TrimSpace(username)
}

type UsersResponse struct {
	Users []*User `json:"users"`
}
