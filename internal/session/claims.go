package session

import (
	"fmt"
	"strings"

	"github.com/Gatu-1548/plagio-ia/internal/entity"
	"github.com/golang-jwt/jwt/v5"
)

// Claims mirrors the payload the gateway signs into its tokens.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64              `json:"id"`
	Roles  []entity.Authority `json:"roles"`
}

// DecodeIdentity reads the token payload without verifying the signature.
// The result is for display only and must never gate access.
func DecodeIdentity(token string) (Identity, error) {
	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return Identity{}, fmt.Errorf("decode token: %w", err)
	}

	id := Identity{
		UserID:  claims.UserID,
		Subject: claims.Subject,
		Role:    roleFromAuthorities(claims.Roles),
	}
	return id, nil
}

func roleFromAuthorities(roles []entity.Authority) entity.UserRole {
	if len(roles) == 0 {
		return ""
	}
	for _, r := range roles {
		name := strings.TrimPrefix(strings.ToUpper(r.Authority), "ROLE_")
		if name == string(entity.UserRoleAdmin) {
			return entity.UserRoleAdmin
		}
	}
	return entity.UserRoleUser
}
