// Package auth verifies credentials and issues/validates bearer tokens.
package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"task-manager-go/internal/apperrors"
	"task-manager-go/internal/models"
	"task-manager-go/internal/store"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
)

// Claims is the user identity embedded in a session token.
type Claims struct {
	UserID   string
	Username string
}

type Service struct {
	users  store.UserStore
	secret []byte
	ttl    time.Duration
}

func NewService(users store.UserStore, secret []byte, ttl time.Duration) *Service {
	return &Service{users: users, secret: secret, ttl: ttl}
}

// Register stores a new user with a bcrypt-hashed password and returns the
// public record plus a fresh session token.
func (s *Service) Register(ctx context.Context, username, email, password string) (*models.PublicUser, string, error) {
	if username == "" || email == "" || password == "" {
		return nil, "", apperrors.Validation("Username, email, and password are required")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}

	u := &models.User{
		Username: username,
		Email:    email,
		Password: string(hashed),
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, "", err
	}

	token, err := s.issueToken(u)
	if err != nil {
		return nil, "", err
	}
	pub := u.Public()
	return &pub, token, nil
}

// Login authenticates by email and password. Unknown email and wrong password
// produce the identical error so callers cannot enumerate users.
func (s *Service) Login(ctx context.Context, email, password string) (*models.PublicUser, string, error) {
	if email == "" || password == "" {
		return nil, "", apperrors.Validation("Email and password are required")
	}

	u, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", apperrors.Auth("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, "", apperrors.Auth("Invalid credentials")
	}

	token, err := s.issueToken(u)
	if err != nil {
		return nil, "", err
	}
	pub := u.Public()
	return &pub, token, nil
}

// Verify checks signature and expiry and returns the embedded identity.
// There is no server-side session record, so revocation is not possible.
func (s *Service) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, apperrors.Auth("Invalid or expired token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, apperrors.Auth("Invalid or expired token")
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, apperrors.Auth("Invalid or expired token")
	}
	username, _ := claims["username"].(string)
	return &Claims{UserID: userID, Username: username}, nil
}

// ParseBearer extracts the token from an "Authorization: Bearer <t>" value.
func ParseBearer(header string) (string, error) {
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", apperrors.Auth("Access token required")
	}
	return parts[1], nil
}

func (s *Service) issueToken(u *models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  u.ID,
		"username": u.Username,
		"exp":      time.Now().Add(s.ttl).Unix(),
	})
	return token.SignedString(s.secret)
}
