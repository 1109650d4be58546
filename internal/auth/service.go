package auth

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"menuwise/internal/apperror"
	"menuwise/internal/health"
	"menuwise/internal/user"

	"golang.org/x/crypto/bcrypt"
)

const minPasswordLength = 6

var ErrInvalidCredentials = apperror.Unauthorized("invalid email or password")

// Users is the part of the user service that authentication needs.
type Users interface {
	Register(ctx context.Context, u *user.User) error
	FindByEmail(ctx context.Context, email string) (*user.User, error)
	Get(ctx context.Context, id string) (*user.User, error)
	RecordLogin(ctx context.Context, id string) (*user.User, error)
}

type Service struct {
	users  Users
	tokens *TokenIssuer
}

func NewService(users Users, tokens *TokenIssuer) *Service {
	return &Service{users: users, tokens: tokens}
}

type RegisterInput struct {
	Name               string               `json:"name" yaml:"name"`
	Email              string               `json:"email" yaml:"email"`
	Password           string               `json:"password" yaml:"password"`
	Age                int                  `json:"age" yaml:"age"`
	Gender             health.Gender        `json:"gender" yaml:"gender"`
	Weight             float64              `json:"weight" yaml:"weight"`
	Height             float64              `json:"height" yaml:"height"`
	ActivityLevel      health.ActivityLevel `json:"activityLevel" yaml:"activityLevel"`
	MedicalConditions  []string             `json:"medicalConditions" yaml:"medicalConditions"`
	Allergies          []string             `json:"allergies" yaml:"allergies"`
	DietaryPreferences []string             `json:"dietaryPreferences" yaml:"dietaryPreferences"`
}

// Register validates the profile, hashes the password and issues a token.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*user.User, string, error) {
	u := &user.User{
		Name:               in.Name,
		Email:              in.Email,
		Age:                in.Age,
		Gender:             in.Gender,
		Weight:             in.Weight,
		Height:             in.Height,
		ActivityLevel:      in.ActivityLevel,
		MedicalConditions:  in.MedicalConditions,
		Allergies:          in.Allergies,
		DietaryPreferences: in.DietaryPreferences,
	}
	u.Normalize()
	if err := u.Validate(); err != nil {
		return nil, "", err
	}
	if utf8.RuneCountInString(in.Password) < minPasswordLength {
		return nil, "", apperror.ValidationFailed("password", "password must be at least 6 characters")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", err
	}
	u.Password = string(hashedPassword)

	if err := s.users.Register(ctx, u); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Generate(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Login checks credentials and records the visit for the activity streak.
func (s *Service) Login(ctx context.Context, email, password string) (*user.User, string, error) {
	u, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, "", ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	u, err = s.users.RecordLogin(ctx, u.ID)
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Generate(u.ID)
	if err != nil {
		return nil, "", err
	}
	return u, token, nil
}

// Verify resolves a token to the user it belongs to.
func (s *Service) Verify(ctx context.Context, token string) (*user.User, error) {
	id, err := s.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	u, err := s.users.Get(ctx, id)
	if errors.Is(err, apperror.ErrNotFound) {
		return nil, apperror.Unauthorized("user no longer exists")
	}
	return u, err
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
