package dto

// Data Transfer Objects for the signup / token-exchange flow

// SignupRequest: payload for passwordless signup
type SignupRequest struct {
	Username string `json:"username" binding:"required,max=150"`
	Email    string `json:"email" binding:"required,email,max=254"`
}

// SignupResponse echoes the accepted identity
type SignupResponse struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// TokenRequest: payload for exchanging a confirmation code
type TokenRequest struct {
	Username         string `json:"username" binding:"required,max=150"`
	ConfirmationCode string `json:"confirmation_code" binding:"required,max=30"`
}

// TokenResponse carries the signed access token
type TokenResponse struct {
	Token string `json:"token"`
}
