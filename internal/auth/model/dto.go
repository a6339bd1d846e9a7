package model

// RegisterRequest creates an unverified user account.
type RegisterRequest struct {
	Name      string `json:"name" binding:"required,max=64"`
	Email     string `json:"email" binding:"required,ctfemail,max=255"`
	Password  string `json:"password" binding:"required,max=72"`
	Password2 string `json:"password2" binding:"required,eqfield=Password"`
	RealName  string `json:"real_name" binding:"required,max=64"`
	IDCard    string `json:"id_card" binding:"required,idcard"`
}

// LoginRequest opens a user session.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,max=255"`
	Password string `json:"password" binding:"required"`
}

// AdminLoginRequest opens an admin session.
type AdminLoginRequest struct {
	Name     string `json:"name" binding:"required,max=64"`
	Password string `json:"password" binding:"required"`
}

// ResendRequest asks for a new confirmation mail.
type ResendRequest struct {
	Email string `json:"email" binding:"required,ctfemail"`
}

// SessionResponse is returned after a successful login.
type SessionResponse struct {
	Token     string `json:"token"`
	Name      string `json:"name"`
	Role      Role   `json:"role"`
	ExpiresIn int64  `json:"expires_in"`
}

// StatusResponse reports the caller's session.
type StatusResponse struct {
	LoggedIn bool   `json:"logged_in"`
	Role     Role   `json:"role,omitempty"`
	Name     string `json:"name,omitempty"`
}
