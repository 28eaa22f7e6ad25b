package users

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/user/storefront-go/apperror"
	"github.com/user/storefront-go/auth"
	"github.com/user/storefront-go/config"
	"github.com/user/storefront-go/validation"
)

// invalidCredentials is the single message for every failed login. Whether the
// email was unknown or the password wrong must not be distinguishable.
const invalidCredentials = "Invalid email or password"

// Service holds the business rules for accounts and login.
type Service interface {
	Register(ctx context.Context, req RegisterRequest) (*UserResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AuthResponse, error)
	List(ctx context.Context, filter Filter) ([]UserResponse, error)
	Get(ctx context.Context, idParam string) (*UserResponse, error)
	Update(ctx context.Context, idParam string, req UpdateUserRequest) (*UserResponse, error)
	Delete(ctx context.Context, idParam string) error
}

type serviceImpl struct {
	repo    Repository
	authCfg config.AuthConfig
}

// NewService creates the user service on top of the given repository.
func NewService(repo Repository, authCfg config.AuthConfig) Service {
	return &serviceImpl{repo: repo, authCfg: authCfg}
}

func parseID(idParam string) (uuid.UUID, error) {
	id, err := uuid.Parse(idParam)
	if err != nil {
		return uuid.Nil, apperror.NewNotFoundError(fmt.Sprintf("User with ID %s not found", idParam), err)
	}
	return id, nil
}

func (s *serviceImpl) Register(ctx context.Context, req RegisterRequest) (*UserResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, apperror.NewValidationError(validation.Message(err), err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperror.NewInternalError("failed to hash password", err)
	}

	user, err := s.repo.Create(ctx, req.Username, strings.ToLower(req.Email), hash)
	if err != nil {
		return nil, err
	}

	resp := user.ToResponse()
	return &resp, nil
}

func (s *serviceImpl) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, apperror.NewValidationError(validation.Message(err), err)
	}

	user, err := s.repo.GetByEmail(ctx, strings.ToLower(req.Email))
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.NewAuthError(invalidCredentials, nil)
		}
		return nil, err
	}

	if !auth.VerifyPassword(req.Password, user.Password) {
		return nil, apperror.NewAuthError(invalidCredentials, nil)
	}

	token, err := auth.IssueToken(user.ID, user.Username, user.Email, s.authCfg.JWTSecret, s.authCfg.TokenDuration)
	if err != nil {
		return nil, apperror.NewInternalError("failed to issue token", err)
	}

	return &AuthResponse{User: user.ToResponse(), Token: token}, nil
}

func (s *serviceImpl) List(ctx context.Context, filter Filter) ([]UserResponse, error) {
	if filter.Limit != nil && *filter.Limit < 0 {
		return nil, apperror.NewValidationError("limit cannot be negative", nil)
	}
	if filter.Offset != nil && *filter.Offset < 0 {
		return nil, apperror.NewValidationError("offset cannot be negative", nil)
	}

	users, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, users[i].ToResponse())
	}
	return responses, nil
}

func (s *serviceImpl) Get(ctx context.Context, idParam string) (*UserResponse, error) {
	id, err := parseID(idParam)
	if err != nil {
		return nil, err
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := user.ToResponse()
	return &resp, nil
}

func (s *serviceImpl) Update(ctx context.Context, idParam string, req UpdateUserRequest) (*UserResponse, error) {
	id, err := parseID(idParam)
	if err != nil {
		return nil, err
	}
	if err := validation.Struct(req); err != nil {
		return nil, apperror.NewValidationError(validation.Message(err), err)
	}

	email := req.Email
	if email != nil {
		lowered := strings.ToLower(*email)
		email = &lowered
	}

	// Re-hash only when a new password was supplied.
	var passwordHash *string
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, apperror.NewInternalError("failed to hash password", err)
		}
		passwordHash = &hash
	}

	user, err := s.repo.Update(ctx, id, req.Username, email, passwordHash)
	if err != nil {
		return nil, err
	}

	resp := user.ToResponse()
	return &resp, nil
}

func (s *serviceImpl) Delete(ctx context.Context, idParam string) error {
	id, err := parseID(idParam)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
