package models

// CheckUserRequest asks whether a handle may still set its password
type CheckUserRequest struct {
	Handle string `json:"handle" binding:"required"`
}

// CredentialsRequest is used by both signup and login
type CredentialsRequest struct {
	Handle   string `json:"handle" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// CurrentUser is the authenticated principal attached to a request
type CurrentUser struct {
	ID      string `json:"id"`
	Handle  string `json:"handle"`
	IsAdmin bool   `json:"isAdmin"`
}

// AuthResponse is returned after a successful signup or login
type AuthResponse struct {
	Token string `json:"token"`
	User  *User  `json:"user"`
}
