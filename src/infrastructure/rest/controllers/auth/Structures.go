package auth

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AccessTokenByRefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type SecurityData struct {
	JWTAccessToken            string `json:"jwt_access_token"`
	JWTRefreshToken           string `json:"jwt_refresh_token"`
	ExpirationAccessDateTime  string `json:"expiration_access_datetime"`
	ExpirationRefreshDateTime string `json:"expiration_refresh_datetime"`
}

type LoginResponse struct {
	ID       int          `json:"id"`
	Name     string       `json:"name"`
	Email    string       `json:"email"`
	Role     string       `json:"role"`
	Security SecurityData `json:"security"`
}
