package domain

// User is the authenticated MoonBound account, as returned by GET /me.
type User struct {
	Email  string `json:"email"`
	Nombre string `json:"nombre,omitempty"`
}

// DisplayName returns the name shown in the shell header: the optional
// display name, falling back to the account email.
func (u User) DisplayName() string {
	if u.Nombre != "" {
		return u.Nombre
	}
	return u.Email
}
