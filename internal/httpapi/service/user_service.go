package service

import (
	"context"
	"fmt"

	"reviewhub/internal/apperr"
	"reviewhub/internal/auth"
	"reviewhub/internal/httpapi/dto"
	"reviewhub/internal/httpapi/models"
	"reviewhub/internal/httpapi/repository"
	"reviewhub/internal/permissions"
)

type UserService interface {
	List(ctx context.Context, actor permissions.Actor, search string) ([]dto.UserResponse, error)
	Get(ctx context.Context, actor permissions.Actor, username string) (*dto.UserResponse, error)
	Create(ctx context.Context, actor permissions.Actor, req dto.AdminUserRequest) (*dto.UserResponse, error)
	Update(ctx context.Context, actor permissions.Actor, username string, req dto.UserUpdateRequest) (*dto.UserResponse, error)
	Delete(ctx context.Context, actor permissions.Actor, username string) error
	GetSelf(ctx context.Context, actor permissions.Actor) (*dto.UserResponse, error)
	UpdateSelf(ctx context.Context, actor permissions.Actor, req dto.SelfUpdateRequest) (*dto.UserResponse, error)
}

type userService struct {
	userRepo repository.UserRepository
}

func NewUserService(userRepo repository.UserRepository) UserService {
	return &userService{userRepo: userRepo}
}

func (s *userService) List(ctx context.Context, actor permissions.Actor, search string) ([]dto.UserResponse, error) {
	if err := permissions.Allow(actor, permissions.VerbList, permissions.DomainUsers, false); err != nil {
		return nil, err
	}
	users, err := s.userRepo.List(ctx, search)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	resp := make([]dto.UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, dto.UserFromModel(u))
	}
	return resp, nil
}

func (s *userService) Get(ctx context.Context, actor permissions.Actor, username string) (*dto.UserResponse, error) {
	if err := permissions.Allow(actor, permissions.VerbRetrieve, permissions.DomainUsers, false); err != nil {
		return nil, err
	}
	user, err := s.findByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	resp := dto.UserFromModel(*user)
	return &resp, nil
}

func (s *userService) Create(ctx context.Context, actor permissions.Actor, req dto.AdminUserRequest) (*dto.UserResponse, error) {
	if err := permissions.Allow(actor, permissions.VerbCreate, permissions.DomainUsers, false); err != nil {
		return nil, err
	}
	if err := models.ValidateUsername(req.Username); err != nil {
		return nil, apperr.Validation("username", err.Error())
	}
	if err := s.checkUnique(ctx, req.Username, req.Email, ""); err != nil {
		return nil, err
	}

	user := &models.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Bio:       req.Bio,
	}
	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	if err := user.SetRole(role); err != nil {
		return nil, apperr.Validation("role", err.Error())
	}
	if req.Password != "" {
		hash, err := auth.HashPassword(req.Password)
		if err != nil {
			return nil, apperr.Internal(err)
		}
		user.Password = hash
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperr.Conflict("username", "username or email already in use")
		}
		return nil, apperr.Internal(err)
	}
	resp := dto.UserFromModel(*user)
	return &resp, nil
}

func (s *userService) Update(ctx context.Context, actor permissions.Actor, username string, req dto.UserUpdateRequest) (*dto.UserResponse, error) {
	if err := permissions.Allow(actor, permissions.VerbUpdate, permissions.DomainUsers, false); err != nil {
		return nil, err
	}
	user, err := s.findByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if req.Email != nil {
		if err := s.checkUnique(ctx, "", *req.Email, user.ID); err != nil {
			return nil, err
		}
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if req.Role != nil {
		if err := user.SetRole(*req.Role); err != nil {
			return nil, apperr.Validation("role", err.Error())
		}
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperr.Conflict("email", "email already in use")
		}
		return nil, apperr.Internal(err)
	}
	resp := dto.UserFromModel(*user)
	return &resp, nil
}

func (s *userService) Delete(ctx context.Context, actor permissions.Actor, username string) error {
	if err := permissions.Allow(actor, permissions.VerbDelete, permissions.DomainUsers, false); err != nil {
		return err
	}
	user, err := s.findByUsername(ctx, username)
	if err != nil {
		return err
	}
	if err := s.userRepo.Delete(ctx, user); err != nil {
		return apperr.Internal(err)
	}
	return nil
}

func (s *userService) GetSelf(ctx context.Context, actor permissions.Actor) (*dto.UserResponse, error) {
	if err := permissions.Allow(actor, permissions.VerbRetrieve, permissions.DomainSelf, true); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, actor.ID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal(err)
	}
	resp := dto.UserFromModel(*user)
	return &resp, nil
}

// UpdateSelf applies profile fields only; the role is read-only through
// this path no matter who the actor is.
func (s *userService) UpdateSelf(ctx context.Context, actor permissions.Actor, req dto.SelfUpdateRequest) (*dto.UserResponse, error) {
	if err := permissions.Allow(actor, permissions.VerbUpdate, permissions.DomainSelf, true); err != nil {
		return nil, err
	}
	user, err := s.userRepo.FindByID(ctx, actor.ID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal(err)
	}
	if req.Email != nil {
		if err := s.checkUnique(ctx, "", *req.Email, user.ID); err != nil {
			return nil, err
		}
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Bio != nil {
		user.Bio = *req.Bio
	}
	if err := s.userRepo.Update(ctx, user); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, apperr.Conflict("email", "email already in use")
		}
		return nil, apperr.Internal(err)
	}
	resp := dto.UserFromModel(*user)
	return &resp, nil
}

func (s *userService) findByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, apperr.NotFound(fmt.Sprintf("user %q not found", username))
		}
		return nil, apperr.Internal(err)
	}
	return user, nil
}

// checkUnique is the one uniqueness-validation path shared by signup-time
// and admin-time user writes. Empty username/email skips that check;
// excludeID ignores the record being updated.
func (s *userService) checkUnique(ctx context.Context, username, email, excludeID string) error {
	if username != "" {
		existing, err := s.userRepo.FindByUsername(ctx, username)
		if err == nil && existing.ID != excludeID {
			return apperr.Conflict("username", fmt.Sprintf("username %q is already taken", username))
		}
		if err != nil && !repository.IsNotFound(err) {
			return apperr.Internal(err)
		}
	}
	if email != "" {
		existing, err := s.userRepo.FindByEmail(ctx, email)
		if err == nil && existing.ID != excludeID {
			return apperr.Conflict("email", fmt.Sprintf("a user with email %q already exists", email))
		}
		if err != nil && !repository.IsNotFound(err) {
			return apperr.Internal(err)
		}
	}
	return nil
}
