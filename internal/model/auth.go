package model

// Credentials is the body of POST /auth/login.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the body of POST /auth/register.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginResult is what the server answers on a successful login.
// Only Token is required; the rest is kept when the backend sends it.
type LoginResult struct {
	Token   string `json:"token"`
	Message string `json:"message,omitempty"`
	User    *User  `json:"user,omitempty"`
}

type User struct {
	ID    ItemID `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}
