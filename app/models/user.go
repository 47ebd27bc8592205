package models

// Role is the authorisation level of a signed-in user.
type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// User is the identity held by a session.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

// Credentials are submitted by the login form.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse is the backend's reply to a successful login.
type AuthResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

const (
	FontScaleMin     = 75
	FontScaleMax     = 150
	FontScaleStep    = 10
	FontScaleDefault = 100
)

// Accessibility holds the visitor's display preferences.
type Accessibility struct {
	HighContrast bool `json:"highContrast"`
	FontScale    int  `json:"fontScale"`
}

// DefaultAccessibility is normal contrast at 100% font size.
func DefaultAccessibility() Accessibility {
	return Accessibility{FontScale: FontScaleDefault}
}

// Normalize clamps FontScale into range; zero means unset and becomes the default.
func (a Accessibility) Normalize() Accessibility {
	switch {
	case a.FontScale == 0:
		a.FontScale = FontScaleDefault
	case a.FontScale < FontScaleMin:
		a.FontScale = FontScaleMin
	case a.FontScale > FontScaleMax:
		a.FontScale = FontScaleMax
	}
	return a
}
