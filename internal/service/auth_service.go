package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"taskboard/internal/domain"
	"taskboard/internal/repository"
	"taskboard/internal/token"
)

// AuthService handles registration, login, and profile reads.
type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*domain.User, string, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	GetProfile(ctx context.Context, userID int64) (*domain.User, error)
	ResolveUser(ctx context.Context, userID int64) (*domain.User, error)
}

type authService struct {
	users      repository.UserRepository
	tokens     *token.Service
	bcryptCost int
}

func NewAuthService(users repository.UserRepository, tokens *token.Service, bcryptCost int) AuthService {
	if bcryptCost < bcrypt.DefaultCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &authService{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
	}
}

// Register validates the input, enforces email uniqueness, hashes the
// password, persists the user, and issues a session token.
func (s *authService) Register(ctx context.Context, name, email, password string) (*domain.User, string, error) {
	name = strings.TrimSpace(name)

	var fields []FieldError
	if name == "" {
		fields = append(fields, FieldError{Field: "name", Message: "Name is required"})
	}
	if !validEmail(email) {
		fields = append(fields, FieldError{Field: "email", Message: "Valid email is required"})
	}
	if len(password) < 4 {
		fields = append(fields, FieldError{Field: "password", Message: "Password must be at least 4 characters"})
	}
	if len(fields) > 0 {
		return nil, "", validationError(fields...)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return nil, "", ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, "", err
	}

	user := &domain.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
	}

	// the store's unique constraint is the real guard against the
	// check-then-create race
	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", err
	}

	tok, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return sanitizeUser(user), tok, nil
}

// Login verifies the credentials against the stored digest and issues a token.
func (s *authService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	var fields []FieldError
	if !validEmail(email) {
		fields = append(fields, FieldError{Field: "email", Message: "Valid email is required"})
	}
	if password == "" {
		fields = append(fields, FieldError{Field: "password", Message: "Password is required"})
	}
	if len(fields) > 0 {
		return nil, "", validationError(fields...)
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrEmailNotRegistered
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrPasswordIncorrect
	}

	tok, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, "", err
	}
	return sanitizeUser(user), tok, nil
}

// GetProfile returns the public fields of the given user.
func (s *authService) GetProfile(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return sanitizeUser(user), nil
}

// ResolveUser looks up a user for the auth guard. Unlike GetProfile it is
// called on every protected request.
func (s *authService) ResolveUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return sanitizeUser(user), nil
}

func validEmail(email string) bool {
	if email == "" {
		return false
	}
	addr, err := mail.ParseAddress(email)
	// reject the name-and-brackets forms ParseAddress also accepts
	return err == nil && addr.Address == email
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		Name:      user.Name,
		Email:     user.Email,
		CreatedAt: user.CreatedAt,
	}
}
