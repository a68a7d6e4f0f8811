package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/yeremiapane/honda-dealer/models"
	"github.com/yeremiapane/honda-dealer/utils"
)

type UserService struct {
	users UserRepository
}

func NewUserService(users UserRepository) *UserService {
	return &UserService{users: users}
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// Register creates a customer account.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	var errs ValidationErrors
	if strings.TrimSpace(in.Name) == "" {
		errs = append(errs, &ValidationError{Field: "name", Message: "wajib diisi"})
	}
	if _, err := mail.ParseAddress(in.Email); err != nil {
		errs = append(errs, &ValidationError{Field: "email", Message: "invalid email address"})
	}
	if len(in.Password) < 8 {
		errs = append(errs, &ValidationError{Field: "password", Message: "must be at least 8 characters"})
	}
	if err := errs.orNil(); err != nil {
		return nil, err
	}

	if _, err := s.users.FindUserByEmail(ctx, in.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Name:     strings.TrimSpace(in.Name),
		Email:    strings.ToLower(in.Email),
		Phone:    in.Phone,
		Password: string(hash),
		Role:     models.RoleCustomer,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	utils.InfoLogger.WithField("user_id", user.ID).Info("user registered")
	return user, nil
}

// Login checks the credentials and returns a signed token with the user.
func (s *UserService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.users.FindUserByEmail(ctx, strings.ToLower(email))
	if errors.Is(err, ErrUserNotFound) {
		return "", nil, ErrInvalidCredentials
	}
	if err != nil {
		return "", nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, ErrInvalidCredentials
	}

	token, err := utils.GenerateToken(user.ID, user.Name, user.Email, user.Phone, user.Role)
	if err != nil {
		return "", nil, err
	}
	return token, user, nil
}

// SessionFor builds the explicit session carried through the order flow.
func SessionFor(u *models.User) Session {
	return Session{UserID: u.ID, Name: u.Name, Email: u.Email, Phone: u.Phone, Role: u.Role}
}

// EnsureAdmin creates the admin account when it does not exist yet.
func (s *UserService) EnsureAdmin(ctx context.Context, name, email, password string) (*models.User, error) {
	existing, err := s.users.FindUserByEmail(ctx, strings.ToLower(email))
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	admin := &models.User{Name: name, Email: strings.ToLower(email), Password: string(hash), Role: models.RoleAdmin}
	if err := s.users.CreateUser(ctx, admin); err != nil {
		return nil, err
	}
	return admin, nil
}
