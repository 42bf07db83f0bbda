// FILE: internal/entity/user_entity.go
package entity

type UserRole string

const (
	UserRoleUser  UserRole = "USER"
	UserRoleAdmin UserRole = "ADMIN"
)

// Valid reports whether r is one of the roles the console understands.
func (r UserRole) Valid() bool {
	return r == UserRoleUser || r == UserRoleAdmin
}

type Authority struct {
	Authority string `json:"authority"`
}

type User struct {
	Id                    int64       `json:"id"`
	Email                 string      `json:"email"`
	Role                  string      `json:"role"`
	Enabled               bool        `json:"enabled"`
	Username              string      `json:"username"`
	Authorities           []Authority `json:"authorities"`
	CredentialsNonExpired bool        `json:"credentialsNonExpired"`
	AccountNonExpired     bool        `json:"accountNonExpired"`
	AccountNonLocked      bool        `json:"accountNonLocked"`
}
