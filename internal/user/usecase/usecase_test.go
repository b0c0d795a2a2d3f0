package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/pawdesk/petshop-service/internal/apperrors"
	"github.com/pawdesk/petshop-service/internal/auth"
	"github.com/pawdesk/petshop-service/internal/model"
	"github.com/pawdesk/petshop-service/internal/user/dto"
	"github.com/pawdesk/petshop-service/pkg/logger"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users map[string]*model.User // keyed by email
}

func (f *fakeUserRepo) Create(ctx context.Context, u *model.User) error {
	cp := *u
	f.users[u.Email] = &cp
	return nil
}

func (f *fakeUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f *fakeUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	u, ok := f.users[email]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func newUC() (*userUseCase, *fakeUserRepo) {
	repo := &fakeUserRepo{users: map[string]*model.User{}}
	log := logger.NewZapLogger(&logger.ZapLoggerConfig{Level: "error", Encoding: "console"})
	uc := NewUserUseCase(repo, "test-secret", time.Hour, log).(*userUseCase)
	return uc, repo
}

func TestRegisterAndLogin(t *testing.T) {
	uc, _ := newUC()
	ctx := context.Background()

	u, err := uc.Register(ctx, &dto.RegisterInput{
		StoreID:  "store-1",
		Email:    "  Dana@Example.COM ",
		Name:     "Dana",
		Password: "hunter2hunter2",
		Role:     model.RoleManager,
	})
	require.NoError(t, err)
	require.Equal(t, "dana@example.com", u.Email)
	require.NotEqual(t, "hunter2hunter2", u.PasswordHash)

	result, err := uc.Login(ctx, &dto.LoginInput{Email: "dana@example.com", Password: "hunter2hunter2"})
	require.NoError(t, err)
	require.NotEmpty(t, result.Token)

	p, err := auth.ParseToken("test-secret", result.Token)
	require.NoError(t, err)
	require.Equal(t, u.ID, p.UserID)
	require.Equal(t, "store-1", p.StoreID)
	require.Equal(t, model.RoleManager, p.Role)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	uc, _ := newUC()
	ctx := context.Background()

	input := &dto.RegisterInput{
		StoreID: "store-1", Email: "a@b.co", Name: "A",
		Password: "longenough", Role: model.RoleStaff,
	}
	_, err := uc.Register(ctx, input)
	require.NoError(t, err)

	_, err = uc.Register(ctx, input)
	require.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestRegisterValidation(t *testing.T) {
	uc, _ := newUC()
	ctx := context.Background()

	_, err := uc.Register(ctx, &dto.RegisterInput{Email: "not-an-email", Password: "longenough", Role: model.RoleStaff})
	require.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	_, err = uc.Register(ctx, &dto.RegisterInput{Email: "a@b.co", Password: "short", Role: model.RoleStaff})
	require.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	_, err = uc.Register(ctx, &dto.RegisterInput{Email: "a@b.co", Password: "longenough", Role: "superuser"})
	require.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	uc, repo := newUC()
	ctx := context.Background()

	_, err := uc.Register(ctx, &dto.RegisterInput{
		StoreID: "store-1", Email: "a@b.co", Name: "A",
		Password: "longenough", Role: model.RoleStaff,
	})
	require.NoError(t, err)

	_, err = uc.Login(ctx, &dto.LoginInput{Email: "a@b.co", Password: "wrongwrong"})
	require.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	_, err = uc.Login(ctx, &dto.LoginInput{Email: "nobody@b.co", Password: "longenough"})
	require.True(t, apperrors.IsKind(err, apperrors.KindValidation))

	// Deactivated accounts cannot sign in.
	repo.users["a@b.co"].IsActive = false
	_, err = uc.Login(ctx, &dto.LoginInput{Email: "a@b.co", Password: "longenough"})
	require.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}
