package service

import (
	"context"
	"testing"
	"time"

	"github.com/ds124wfegd/learnlink/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

type stubIssuer struct{}

func (stubIssuer) Issue(userID int64, role entity.Role) (string, time.Time, error) {
	return "token-" + string(role), testNow.Add(time.Hour), nil
}

func newAuthService(users *mockUserRepo) *authService {
	svc := NewAuthService(users, stubIssuer{}, "USD").(*authService)
	svc.hashCost = bcrypt.MinCost
	return svc
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	users := &mockUserRepo{}
	users.On("Create", ctx, mock.AnythingOfType("*entity.User")).Return(nil)
	svc := newAuthService(users)

	user, err := svc.Register(ctx, &RegisterRequest{Email: " Ann@Example.com ", Password: "secret123", Name: "Ann", Role: entity.RoleStudent})

	require.NoError(t, err)
	assert.Equal(t, "ann@example.com", user.Email)
	assert.NotEqual(t, "secret123", user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret123")))

	for _, req := range []RegisterRequest{
		{Email: "not-an-email", Password: "secret123", Name: "A", Role: entity.RoleStudent},
		{Email: "a@b.c", Password: "short", Name: "A", Role: entity.RoleStudent},
		{Email: "a@b.c", Password: "secret123", Name: "A", Role: "ADMIN"},
	} {
		_, err := svc.Register(ctx, &req)
		assert.ErrorIs(t, err, entity.ErrValidation)
	}
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	users := &mockUserRepo{}
	users.On("GetByEmail", ctx, "ann@example.com").Return(&entity.User{ID: 1, Role: entity.RoleProfessor, PasswordHash: string(hash)}, nil)
	users.On("GetByEmail", ctx, "ghost@example.com").Return(nil, entity.ErrUserNotFound)
	svc := newAuthService(users)

	resp, err := svc.Login(ctx, &LoginRequest{Email: "ann@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "token-PROFESSOR", resp.Token)

	_, err = svc.Login(ctx, &LoginRequest{Email: "ann@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, entity.ErrInvalidCredentials)

	_, err = svc.Login(ctx, &LoginRequest{Email: "ghost@example.com", Password: "secret123"})
	assert.ErrorIs(t, err, entity.ErrUnauthenticated)
}

func TestUpdateProfile_RateIsProfessorOnly(t *testing.T) {
	ctx := context.Background()
	users := &mockUserRepo{}
	users.On("GetByID", ctx, student.ID).Return(&entity.User{ID: student.ID, Role: entity.RoleStudent}, nil)
	users.On("GetByID", ctx, professor.ID).Return(&entity.User{ID: professor.ID, Role: entity.RoleProfessor}, nil)
	users.On("Update", ctx, mock.AnythingOfType("*entity.User")).Return(nil)
	svc := newAuthService(users)
	rate := int64(5000)

	_, err := svc.UpdateProfile(ctx, student, &UpdateProfileRequest{HourlyRate: &rate})
	assert.ErrorIs(t, err, entity.ErrForbidden)

	user, err := svc.UpdateProfile(ctx, professor, &UpdateProfileRequest{HourlyRate: &rate, Subjects: []string{"math"}})
	require.NoError(t, err)
	assert.Equal(t, rate, user.HourlyRate)
	assert.Equal(t, []string{"math"}, user.Subjects)
}

func TestRequireRoleAndOwnership(t *testing.T) {
	assert.NoError(t, RequireRole(student, entity.RoleStudent))
	assert.ErrorIs(t, RequireRole(student, entity.RoleProfessor), entity.ErrForbidden)
	assert.NoError(t, RequireOwnership(professor, professor.ID))
	assert.ErrorIs(t, RequireOwnership(professor, 99), entity.ErrNotOwner)
}
