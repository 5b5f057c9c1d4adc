package entity

const RoleAdmin = "admin"

// User is the identity the external provider asserts via its access token.
type User struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Role          string `json:"role"`
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
