package service

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/go-chi/jwtauth"
	"github.com/iutcalais-offroy/nodejs-api-pokedex-jordy005/internal/apisvc/models"
	"golang.org/x/crypto/bcrypt"
)

type UserStore interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateUser(ctx context.Context, email, username, passwordHash string) (*models.User, error)
}

type AuthService struct {
	users     UserStore
	tokenAuth *jwtauth.JWTAuth
}

func NewAuthService(users UserStore, tokenAuth *jwtauth.JWTAuth) *AuthService {
	return &AuthService{users: users, tokenAuth: tokenAuth}
}

// NewTokenAuth builds the HS256 verifier/signer from JWT_SECRET_KEY.
func NewTokenAuth() *jwtauth.JWTAuth {
	return jwtauth.New("HS256", []byte(os.Getenv("JWT_SECRET_KEY")), nil)
}

// AuthResult is the signed token plus the public view of the account.
type AuthResult struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

func (s *AuthService) SignUp(ctx context.Context, email, username, password string) (*AuthResult, error) {
	if email == "" || username == "" || password == "" {
		return nil, badRequest("missing fields")
	}

	existing, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, &RequestError{Status: 409, Message: "email already in use"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.users.CreateUser(ctx, email, username, string(hash))
	if err != nil {
		return nil, err
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) SignIn(ctx context.Context, email, password string) (*AuthResult, error) {
	if email == "" || password == "" {
		return nil, badRequest("missing fields")
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	// same answer for unknown email and wrong password
	if user == nil {
		return nil, &RequestError{Status: 401, Message: "invalid email or password"}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, &RequestError{Status: 401, Message: "invalid email or password"}
	}

	token, err := s.issueToken(user)
	if err != nil {
		return nil, err
	}

	return &AuthResult{Token: token, User: user}, nil
}

func (s *AuthService) issueToken(user *models.User) (string, error) {
	_, tokenString, err := s.tokenAuth.Encode(map[string]interface{}{
		"user_id": user.ID,
		"email":   user.Email,
		"exp":     time.Now().Add(7 * 24 * time.Hour).Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return tokenString, nil
}
