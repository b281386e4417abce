package usecase_test

import (
	"context"
	"testing"
	"time"

	"app/internal/domain/model"
	repo "app/internal/repository"
	"app/internal/usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

type AuthUserRepoMock struct{ mock.Mock }

func (m *AuthUserRepoMock) Create(ctx context.Context, u model.User) (model.User, error) {
	args := m.Called(ctx, u)
	created, _ := args.Get(0).(model.User)
	return created, args.Error(1)
}

func (m *AuthUserRepoMock) FindByEmail(ctx context.Context, email string) (model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(model.User)
	return u, args.Error(1)
}

func (m *AuthUserRepoMock) FindByID(ctx context.Context, userID int64) (model.User, error) {
	panic("not used in AuthUsecase tests")
}

func TestAuthUsecase_Register_InvalidEmail(t *testing.T) {
	uc := usecase.NewAuthUsecase(new(AuthUserRepoMock), "secret", time.Minute)

	_, err := uc.Register(context.Background(), usecase.RegisterInput{Email: "not-an-email", Password: "password123"})
	assertErrContains(t, err, "invalid email")
}

func TestAuthUsecase_Register_PasswordTooShort(t *testing.T) {
	uc := usecase.NewAuthUsecase(new(AuthUserRepoMock), "secret", time.Minute)

	_, err := uc.Register(context.Background(), usecase.RegisterInput{Email: "a@example.com", Password: "short"})
	assertErrContains(t, err, "password too short")
}

func TestAuthUsecase_Register_DuplicateEmail(t *testing.T) {
	uRepo := new(AuthUserRepoMock)
	uc := usecase.NewAuthUsecase(uRepo, "secret", time.Minute)

	uRepo.On("FindByEmail", mock.Anything, "a@example.com").Return(model.User{ID: 1}, nil)

	_, err := uc.Register(context.Background(), usecase.RegisterInput{Email: "A@Example.com", Password: "password123"})
	assertErrContains(t, err, "email already used")
}

func TestAuthUsecase_Register_Success_IssuesToken(t *testing.T) {
	uRepo := new(AuthUserRepoMock)
	uc := usecase.NewAuthUsecase(uRepo, "secret", time.Minute)

	uRepo.On("FindByEmail", mock.Anything, "a@example.com").Return(model.User{}, repo.ErrNotFound)
	uRepo.On("Create", mock.Anything, mock.MatchedBy(func(u model.User) bool {
		// 不明なロールはUSERに落ちる。パスワードは平文で保存しない
		return u.Email == "a@example.com" && u.Role == model.RoleUser && u.PasswordHash != "password123"
	})).Return(model.User{ID: 42, Email: "a@example.com", Role: model.RoleUser}, nil)

	out, err := uc.Register(context.Background(), usecase.RegisterInput{
		Email:    "A@Example.com",
		Password: "password123",
		Role:     "SUPERADMIN",
	})
	assert.NoError(t, err)
	assert.Equal(t, int64(42), out.UserID)

	// トークンはHS256で検証でき、sub/roleが入っている
	token, err := jwt.Parse(out.Token, func(t *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	assert.NoError(t, err)
	claims := token.Claims.(jwt.MapClaims)
	assert.Equal(t, "42", claims["sub"])
	assert.Equal(t, "USER", claims["role"])
}

func TestAuthUsecase_Login_WrongPassword(t *testing.T) {
	uRepo := new(AuthUserRepoMock)
	uc := usecase.NewAuthUsecase(uRepo, "secret", time.Minute)

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	uRepo.On("FindByEmail", mock.Anything, "a@example.com").
		Return(model.User{ID: 1, Email: "a@example.com", PasswordHash: string(hash)}, nil)

	_, err := uc.Login(context.Background(), "a@example.com", "wrongpassword")
	assertErrContains(t, err, "invalid credentials")
}

func TestAuthUsecase_Login_UnknownEmailLooksLikeWrongPassword(t *testing.T) {
	uRepo := new(AuthUserRepoMock)
	uc := usecase.NewAuthUsecase(uRepo, "secret", time.Minute)

	uRepo.On("FindByEmail", mock.Anything, "ghost@example.com").Return(model.User{}, repo.ErrNotFound)

	_, err := uc.Login(context.Background(), "ghost@example.com", "password123")
	assertErrContains(t, err, "invalid credentials")
}

func TestAuthUsecase_Login_Success(t *testing.T) {
	uRepo := new(AuthUserRepoMock)
	uc := usecase.NewAuthUsecase(uRepo, "secret", time.Minute)

	hash, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	uRepo.On("FindByEmail", mock.Anything, "shop@example.com").
		Return(model.User{ID: 7, Email: "shop@example.com", PasswordHash: string(hash), Role: model.RoleShop}, nil)

	out, err := uc.Login(context.Background(), "shop@example.com", "password123")
	assert.NoError(t, err)
	assert.Equal(t, int64(7), out.UserID)
	assert.Equal(t, "SHOP", out.Role)
	assert.NotEmpty(t, out.Token)
}
