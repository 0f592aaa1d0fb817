package models

import "github.com/golang-jwt/jwt/v5"

// UserRole represents the roles issued by the identity provider.
type UserRole string

const (
	RoleAdmin         UserRole = "ADMIN"
	RoleDirector      UserRole = "DIRECTOR"
	RoleAnalyst       UserRole = "ANALYST"
	RoleSchoolManager UserRole = "SCHOOL_MANAGER"
)

// JWTClaims represents the access token payload minted by the identity provider.
type JWTClaims struct {
	UserID   string   `json:"user_id"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	FullName string   `json:"full_name"`
	jwt.RegisteredClaims
}

// Actor is the identity performing an engine call.
type Actor struct {
	ID   string
	Role UserRole
}

// ActorFromClaims converts validated token claims into an Actor.
func ActorFromClaims(claims *JWTClaims) Actor {
	if claims == nil {
		return Actor{}
	}
	return Actor{ID: claims.UserID, Role: claims.Role}
}
