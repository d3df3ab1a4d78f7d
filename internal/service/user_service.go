package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"grocery-store/internal/entity"
)

const sessionTTL = 24 * time.Hour

// JwtCustomClaims identifies the caller for the authorization gate; handlers
// pass UserID and Role down to the services, which trust them.
type JwtCustomClaims struct {
	UserID int         `json:"user_id"`
	Name   string      `json:"name"`
	Email  string      `json:"email"`
	Role   entity.Role `json:"role"`
	jwt.RegisteredClaims
}

type UserService struct {
	users     UserStore
	rdb       *redis.Client
	jwtSecret []byte
}

func NewUserService(users UserStore, rdb *redis.Client, jwtSecret []byte) *UserService {
	return &UserService{users: users, rdb: rdb, jwtSecret: jwtSecret}
}

// Register creates a user with a bcrypt-hashed password. New users are
// customers; admin accounts are provisioned out of band.
func (s *UserService) Register(ctx context.Context, name, email, password string) (*entity.User, error) {
	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("email %s already registered", email)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		Name:     name,
		Email:    email,
		Password: string(hash),
		Role:     entity.RoleCustomer,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		logger.Error().Err(err).Str("email", email).Msg("Error creating user")
		return nil, err
	}
	return created, nil
}

// Login verifies the password and issues a signed JWT, cached in Redis so
// sessions can be looked up and revoked.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", entity.ErrUserNotFound
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", errors.New("invalid credentials")
	}

	claims := &JwtCustomClaims{
		UserID: user.ID,
		Name:   user.Name,
		Email:  user.Email,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(sessionTTL)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", err
	}

	if s.rdb != nil {
		if err := s.rdb.Set(ctx, sessionKey(email), signed, sessionTTL).Err(); err != nil {
			logger.Error().Err(err).Str("email", email).Msg("Error caching session")
		}
	}
	return signed, nil
}

// ValidateSession returns the cached token for an email, or an error when no
// session exists.
func (s *UserService) ValidateSession(ctx context.Context, email string) (string, error) {
	if s.rdb == nil {
		return "", errors.New("sessions disabled")
	}

	token, err := s.rdb.Get(ctx, sessionKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", errors.New("session not found")
		}
		return "", err
	}
	return token, nil
}

func (s *UserService) GetUser(ctx context.Context, id int) (*entity.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, entity.ErrUserNotFound
	}
	return user, nil
}

func sessionKey(email string) string {
	return "session:" + email
}
