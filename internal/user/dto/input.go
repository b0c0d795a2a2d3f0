package dto

import "github.com/pawdesk/petshop-service/internal/model"

type RegisterInput struct {
	StoreID  string
	Email    string
	Name     string
	Password string
	Role     string
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginResult struct {
	Token string      `json:"token"`
	User  *model.User `json:"user"`
}
