package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleSuperAdmin UserRole = "SUPERADMIN"
	RoleAdmin      UserRole = "ADMIN"
	RoleDPO        UserRole = "DPO"
	RoleViewer     UserRole = "VIEWER"
)

// JWTClaims represents the JWT payload for access tokens.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}

// Actor identifies who performed a workflow action.
type Actor struct {
	UserID string
	Email  string
	IP     string
	Agent  string
}

// ActorFromClaims builds an actor from validated claims; nil claims yield the system actor.
func ActorFromClaims(claims *JWTClaims) Actor {
	if claims == nil {
		return Actor{UserID: "system"}
	}
	return Actor{UserID: claims.UserID, Email: claims.Email}
}
