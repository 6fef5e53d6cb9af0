package user

import (
	"context"
	"golang.org/x/crypto/bcrypt"
	"pricecrowd-backend/domain"
	"pricecrowd-backend/entities"
	"pricecrowd-backend/internal/logging"
	"pricecrowd-backend/pkg/jwt"
	"strings"
)

type (
	UserService interface {
		Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error)
		SeedAdmin(ctx context.Context, username, password string) error
	}

	userService struct {
		userRepository UserRepository
		jwtService     jwt.JWTService
		logger         logging.Logger
	}
)

func NewUserService(userRepository UserRepository, jwtService jwt.JWTService, logger logging.Logger) UserService {
	return &userService{
		userRepository: userRepository,
		jwtService:     jwtService,
		logger:         logger,
	}
}

func (s *userService) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	user, err := s.userRepository.FindByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		return domain.LoginResponse{}, domain.Internal("find user", err)
	}
	if user == nil || user.PasswordHash == "" {
		return domain.LoginResponse{}, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return domain.LoginResponse{}, domain.ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateTokenUser(user.ID.String(), user.Username, user.Role)
	if err != nil {
		return domain.LoginResponse{}, domain.Internal("sign token", err)
	}
	return domain.LoginResponse{Token: token, Username: user.Username, Role: user.Role}, nil
}

// SeedAdmin creates the admin account, or resets its password and role when
// it already exists. Empty credentials disable seeding.
func (s *userService) SeedAdmin(ctx context.Context, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.Internal("hash password", err)
	}

	existing, err := s.userRepository.FindByUsername(ctx, username)
	if err != nil {
		return domain.Internal("find admin", err)
	}
	if existing != nil {
		if err := s.userRepository.UpdatePassword(ctx, username, string(hash), domain.RoleAdmin); err != nil {
			return domain.Internal("update admin", err)
		}
		s.logger.Info(ctx, "admin account refreshed", "username", username)
		return nil
	}

	admin := &entities.User{Username: username, PasswordHash: string(hash), Role: domain.RoleAdmin}
	if err := s.userRepository.Create(ctx, admin); err != nil {
		return domain.Internal("create admin", err)
	}
	s.logger.Info(ctx, "admin account created", "username", username)
	return nil
}
