package models

// Role is the advisory role carried by the session. Authorization is enforced
// by the API; the client only uses it to hide admin pages.
type Role string

const (
	RoleCustomer Role = "CUSTOMER"
	RoleAdmin    Role = "ADMIN"
)

// User is the authenticated account as returned by the auth endpoints.
type User struct {
	ID        uint   `json:"id"`
	Email     string `json:"email"`
	Name      string `json:"name,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
	Role      Role   `json:"role"`
}

// IsAdmin reports whether the user carries the ADMIN role.
func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// DisplayName prefers the name and falls back to the email.
func (u User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}
