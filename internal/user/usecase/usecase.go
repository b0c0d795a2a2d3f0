package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pawdesk/petshop-service/internal/apperrors"
	"github.com/pawdesk/petshop-service/internal/auth"
	"github.com/pawdesk/petshop-service/internal/model"
	"github.com/pawdesk/petshop-service/internal/user"
	"github.com/pawdesk/petshop-service/internal/user/dto"
	"github.com/pawdesk/petshop-service/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

type userUseCase struct {
	repo        user.Repository
	jwtSecret   string
	tokenExpiry time.Duration
	logger      logger.ZapLogger
}

func NewUserUseCase(repo user.Repository, jwtSecret string, tokenExpiry time.Duration, log logger.ZapLogger) user.UseCase {
	return &userUseCase{
		repo:        repo,
		jwtSecret:   jwtSecret,
		tokenExpiry: tokenExpiry,
		logger:      log,
	}
}

func validRole(role string) bool {
	switch role {
	case model.RoleAdmin, model.RoleManager, model.RoleStaff:
		return true
	}
	return false
}

func (uc *userUseCase) Register(ctx context.Context, input *dto.RegisterInput) (*model.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.NewValidation("a valid email is required")
	}
	if len(input.Password) < 8 {
		return nil, apperrors.NewValidation("password must be at least 8 characters")
	}
	if !validRole(input.Role) {
		return nil, apperrors.NewValidation("invalid role %q", input.Role)
	}

	existing, err := uc.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.NewConflict("email %s is already registered", email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	u := &model.User{
		BaseModel:    model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		StoreID:      input.StoreID,
		Email:        email,
		Name:         input.Name,
		PasswordHash: string(hash),
		Role:         input.Role,
		IsActive:     true,
	}

	if err := uc.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (uc *userUseCase) Login(ctx context.Context, input *dto.LoginInput) (*dto.LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	u, err := uc.repo.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil || !u.IsActive {
		return nil, apperrors.NewValidation("invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(input.Password)); err != nil {
		return nil, apperrors.NewValidation("invalid email or password")
	}

	token, err := auth.GenerateToken(uc.jwtSecret, uc.tokenExpiry, auth.Principal{
		UserID:  u.ID,
		StoreID: u.StoreID,
		Role:    u.Role,
	})
	if err != nil {
		return nil, err
	}

	return &dto.LoginResult{Token: token, User: u}, nil
}

func (uc *userUseCase) GetUser(ctx context.Context, id string) (*model.User, error) {
	u, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, apperrors.NewNotFound("user", id)
	}
	return u, nil
}
