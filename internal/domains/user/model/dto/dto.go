package dto

import (
	"hostel/internal/domains/user/model"
	"hostel/shared"
	gDto "hostel/shared/dto"
	"hostel/shared/timezone"
	"time"
)

type UserResponse struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Username  string  `json:"username"`
	Email     *string `json:"email,omitempty"`
	Phone     *string `json:"phone,omitempty"`
	Role      string  `json:"role"`
	Active    bool    `json:"active"`
	LastLogin *string `json:"lastLogin,omitempty"`
	gDto.Metadata
}

func (r *UserResponse) FromModel(model model.User) {
	r.ID = model.ID
	r.Name = model.Name
	r.Username = model.Username
	r.Email = model.Email
	r.Phone = model.Phone
	r.Role = model.Role
	r.Active = model.Active

	if model.LastLogin != nil {
		lastLogin := timezone.Format(*model.LastLogin, time.RFC3339)
		r.LastLogin = &lastLogin
	}

	r.Metadata.FromModel(model.Metadata)
}

type GetUsersResponse struct {
	Users     []UserResponse `json:"users"`
	TotalPage int            `json:"totalPage"`
	TotalData int            `json:"totalData"`
}

func (r *GetUsersResponse) FromModels(models []model.User, totalData, limit int) {
	r.TotalData = totalData
	r.TotalPage = shared.CalculateTotalPage(totalData, limit)

	r.Users = make([]UserResponse, len(models))
	for i, mod := range models {
		r.Users[i].FromModel(mod)
	}
}

type UpdateUserRequest struct {
	Name   string `json:"name"   db:"name"   validate:"omitempty,max=120"`
	Phone  string `json:"phone"  db:"phone"  validate:"omitempty,phone"`
	Role   string `json:"role"   db:"role"   validate:"omitempty,oneof=admin staff user"`
	Active *bool  `json:"active" db:"active"`
}
