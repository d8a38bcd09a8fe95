package dto

// LoginRequest body para POST /api/auth/login.
type LoginRequest struct {
	User     string `json:"user" validate:"required,max=100"`
	Password string `json:"password" validate:"required,max=200"`
}

// LoginResponse token emitido al operador.
type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"` // segundos
	Role      string `json:"role"`
}
