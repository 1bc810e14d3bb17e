package dto

import (
	"hostel/infras/jwt"
	userModel "hostel/internal/domains/user/model"
	"hostel/shared/constant"
	gModel "hostel/shared/model"
	"hostel/shared/timezone"
	"strings"
	"time"

	"github.com/google/uuid"
)

type RegisterRequest struct {
	Name     string `json:"name"     validate:"required,max=120"`
	Username string `json:"username" validate:"required,min=3,max=50,alphanum"`
	Email    string `json:"email"    validate:"omitempty,email"`
	Phone    string `json:"phone"    validate:"omitempty,phone"`
	Password string `json:"password" validate:"required,min=8"`
}

// ToUserModel builds an active user with the default role. Blank optional
// contact fields are stored as NULL.
func (r *RegisterRequest) ToUserModel(actor string, hashedPassword string) userModel.User {
	user := userModel.User{
		ID:       uuid.NewString(),
		Name:     strings.TrimSpace(r.Name),
		Username: strings.ToLower(strings.TrimSpace(r.Username)),
		Password: hashedPassword,
		Role:     constant.RoleUser,
		Active:   true,
		Metadata: gModel.NewMetadata(timezone.Now(), actor),
	}

	if email := strings.TrimSpace(r.Email); email != "" {
		user.Email = &email
	}

	if phone := strings.TrimSpace(r.Phone); phone != "" {
		user.Phone = &phone
	}

	return user
}

type LoginRequest struct {
	Identifier string `json:"username" validate:"required"`
	Password   string `json:"password" validate:"required"`
}

type UpdateLastLoginRequest struct {
	LastLogin time.Time `db:"last_login" json:"lastLogin" validate:"required"`
}

type LoginResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	TokenType    string `json:"tokenType"`
	ExpiresIn    int64  `json:"expiresIn"`
}

func (l *LoginResponse) FromTokenPair(tokenPair *jwt.TokenPair) {
	l.AccessToken = tokenPair.AccessToken
	l.RefreshToken = tokenPair.RefreshToken
	l.TokenType = tokenPair.TokenType
	l.ExpiresIn = tokenPair.ExpiresIn
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type RefreshTokenResponse = LoginResponse

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword"     validate:"required,min=8,nefield=CurrentPassword"`
}

type UpdatePasswordRequest struct {
	Password string `db:"password" json:"password" validate:"required"`
}
