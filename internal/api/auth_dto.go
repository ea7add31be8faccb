package api

// LoginRequest is the payload for POST /v1/auth/login.
type LoginRequest struct {
	PIN string `json:"pin" binding:"required"`
}

// LoginResponse is the response for POST /v1/auth/login.
type LoginResponse struct {
	AccessToken string `json:"access_token"`
}
