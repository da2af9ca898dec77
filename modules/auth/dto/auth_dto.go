package dto

import "time"

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Token string `json:"token"`
}

type ValidateRequest struct {
	Token string `json:"token"`
}

type ValidateResponse struct {
	Valid bool `json:"valid"`
}

type RegisterAdministratorRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AdministratorResponse struct {
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"createdAt"`
}
