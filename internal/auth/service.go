package auth

import (
	"errors"

	"samachar/internal/core"
)

// Common authentication errors
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Service provides registration, login and token validation
type Service struct {
	users  *UserModel
	tokens *TokenManager
	logger *core.Logger
}

// NewService creates a new authentication service
func NewService(db *core.Database, logger *core.Logger, config *core.Config) *Service {
	return &Service{
		users:  NewUserModel(db, logger),
		tokens: NewTokenManager(config.Auth.JWTSecret, config.Auth.TokenTTL),
		logger: logger.ForFeature("auth"),
	}
}

// Users exposes the underlying user model (for migrations)
func (s *Service) Users() *UserModel {
	return s.users
}

// Register creates a new user and issues an authentication token
func (s *Service) Register(name, email, password string) (*User, string, error) {
	user := &User{
		Name:   name,
		Email:  email,
		Avatar: DefaultAvatar,
	}

	if err := user.Password.Set(password); err != nil {
		return nil, "", err
	}

	if err := s.users.Insert(user); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("Registered user", "user_id", user.ID, "email", user.Email)
	return user, token, nil
}

// Login authenticates a user with email and password and issues a token
func (s *Service) Login(email, password string) (*User, string, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		switch {
		case errors.Is(err, ErrRecordNotFound):
			return nil, "", ErrInvalidCredentials
		default:
			return nil, "", err
		}
	}

	match, err := user.Password.Matches(password)
	if err != nil {
		return nil, "", err
	}
	if !match {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user)
	if err != nil {
		return nil, "", err
	}

	s.logger.Info("User logged in", "user_id", user.ID)
	return user, token, nil
}

// ValidateToken verifies a token and loads the user it belongs to
func (s *Service) ValidateToken(tokenString string) (*User, error) {
	claims, err := s.tokens.Verify(tokenString)
	if err != nil {
		return nil, err
	}

	id, err := claims.UserID()
	if err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(id)
	if err != nil {
		switch {
		case errors.Is(err, ErrRecordNotFound):
			return nil, ErrInvalidToken
		default:
			return nil, err
		}
	}

	return user, nil
}

// UpdateProfile applies profile changes and returns the updated user
func (s *Service) UpdateProfile(userID int, name, email, avatar string) (*User, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}

	if name != "" {
		user.Name = name
	}
	if email != "" {
		user.Email = email
	}
	if avatar != "" {
		user.Avatar = avatar
	}

	if err := s.users.Update(user); err != nil {
		return nil, err
	}

	s.logger.Info("Updated profile", "user_id", user.ID)
	return user, nil
}
