package entity

// UserLoginData identifies the caller of a token-protected route.
type UserLoginData struct {
	ID       string `json:"id"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email"`
}
