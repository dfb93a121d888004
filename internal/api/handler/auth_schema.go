package handler

import (
	"time"

	"github.com/viatero/expense-system/internal/core/domain"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

// --- Request / Response types ---

type signUpRequest struct {
	Login       string `json:"login"        validate:"required,max=50"`
	Password    string `json:"password"     validate:"required"`
	DisplayName string `json:"display_name" validate:"max=200"`
}

type signInRequest struct {
	Login    string `json:"login"    validate:"required"`
	Password string `json:"password" validate:"required"`
	// Remember asks for a persistent cookie instead of a browser-session one.
	Remember bool `json:"remember"`
}

type userResponse struct {
	ID          int64     `json:"id"`
	Login       string    `json:"login"`
	DisplayName string    `json:"display_name"`
	Role        string    `json:"role"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type sessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      userResponse `json:"user"`
}

type resetRequestBody struct {
	Login string `json:"login" validate:"required"`
}

type resetRequestResponse struct {
	Message   string    `json:"message"`
	ExpiresAt time.Time `json:"expires_at"`
	// Code is only present when the service is configured to echo recovery
	// codes instead of relying on mail delivery.
	Code     string `json:"code,omitempty"`
	Degraded bool   `json:"degraded,omitempty"`
}

type resetVerifyBody struct {
	Login string `json:"login" validate:"required"`
	Code  string `json:"code"  validate:"required"`
}

type resetConfirmBody struct {
	Login       string `json:"login"        validate:"required"`
	Code        string `json:"code"         validate:"required"`
	NewPassword string `json:"new_password" validate:"required"`
}

type updateProfileRequest struct {
	DisplayName string `json:"display_name" validate:"required,max=200"`
}

type updateRoleRequest struct {
	Role string `json:"role" validate:"required,oneof=manager employee"`
}

type listUsersResponse struct {
	Data []userResponse `json:"data"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func toUserResponse(u *domain.User) userResponse {
	return userResponse{
		ID:          u.ID,
		Login:       u.Login,
		DisplayName: u.DisplayName,
		Role:        u.Role,
		UpdatedAt:   u.UpdatedAt,
	}
}
