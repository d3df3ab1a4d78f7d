package service

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"grocery-store/internal/entity"
)

var testSecret = []byte("test-secret")

func TestRegisterHashesPassword(t *testing.T) {
	svc := NewUserService(newFakeUserStore(), nil, testSecret)

	user, err := svc.Register(context.Background(), "Asha", "asha@example.com", "hunter2")
	require.NoError(t, err)

	assert.Equal(t, entity.RoleCustomer, user.Role)
	assert.NotEqual(t, "hunter2", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("hunter2")))
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := NewUserService(newFakeUserStore(), nil, testSecret)

	_, err := svc.Register(context.Background(), "Asha", "asha@example.com", "hunter2")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "Other", "asha@example.com", "something")
	assert.Error(t, err)
}

func TestLoginIssuesToken(t *testing.T) {
	svc := NewUserService(newFakeUserStore(), nil, testSecret)

	_, err := svc.Register(context.Background(), "Asha", "asha@example.com", "hunter2")
	require.NoError(t, err)

	signed, err := svc.Login(context.Background(), "asha@example.com", "hunter2")
	require.NoError(t, err)

	token, err := jwt.ParseWithClaims(signed, &JwtCustomClaims{}, func(t *jwt.Token) (interface{}, error) {
		return testSecret, nil
	})
	require.NoError(t, err)

	claims := token.Claims.(*JwtCustomClaims)
	assert.Equal(t, "asha@example.com", claims.Email)
	assert.Equal(t, entity.RoleCustomer, claims.Role)
	assert.NotZero(t, claims.UserID)
}

func TestLoginWrongPassword(t *testing.T) {
	svc := NewUserService(newFakeUserStore(), nil, testSecret)

	_, err := svc.Register(context.Background(), "Asha", "asha@example.com", "hunter2")
	require.NoError(t, err)

	_, err = svc.Login(context.Background(), "asha@example.com", "wrong")
	assert.Error(t, err)
}

func TestLoginUnknownUser(t *testing.T) {
	svc := NewUserService(newFakeUserStore(), nil, testSecret)

	_, err := svc.Login(context.Background(), "nobody@example.com", "pw")
	assert.ErrorIs(t, err, entity.ErrUserNotFound)
}
