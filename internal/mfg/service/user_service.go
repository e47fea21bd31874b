package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/DeathRay00/trackmint/internal/mfg/engine"
	"github.com/DeathRay00/trackmint/internal/mfg/entity"
	"github.com/DeathRay00/trackmint/internal/mfg/repository"
)

// UserService 用户管理
type UserService struct {
	userRepo *repository.UserRepository
}

func NewUserService(userRepo *repository.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Get 用户详情
func (s *UserService) Get(ctx context.Context, id string) (*entity.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, engine.NewNotFound("User", id)
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// List 用户列表
func (s *UserService) List(ctx context.Context, page, pageSize int) ([]entity.User, int64, error) {
	return s.userRepo.List(ctx, page, pageSize)
}

type UpdateUserRequest struct {
	Email     *string `json:"email"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Avatar    *string `json:"avatar"`
	Role      *string `json:"role"`
	IsActive  *bool   `json:"is_active"`
	Password  *string `json:"password"`
}

// Update 更新用户，角色与启用状态只能走此管理入口
func (s *UserService) Update(ctx context.Context, id, actorID string, req *UpdateUserRequest) (*entity.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Role != nil {
		if len(engine.PermissionsForRole(*req.Role)) == 0 {
			return nil, engine.NewValidation("Unknown role", "role", *req.Role)
		}
		user.Role = *req.Role
	}
	if req.IsActive != nil {
		user.IsActive = *req.IsActive
	}

	if err := s.applyProfile(ctx, user, req); err != nil {
		return nil, err
	}
	user.UpdatedByID = actorID

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// UpdateMe 更新本人资料，角色与启用状态不可自改
func (s *UserService) UpdateMe(ctx context.Context, actorID string, req *UpdateUserRequest) (*entity.User, error) {
	if req.Role != nil {
		return nil, engine.NewValidation("Role can only be changed by an administrator", "role", *req.Role)
	}
	if req.IsActive != nil {
		return nil, engine.NewValidation("Active flag can only be changed by an administrator", "is_active", *req.IsActive)
	}

	user, err := s.Get(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if err := s.applyProfile(ctx, user, req); err != nil {
		return nil, err
	}
	user.UpdatedByID = actorID

	if err := s.userRepo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

// Delete 软删除用户并停用
func (s *UserService) Delete(ctx context.Context, id, actorID string) error {
	user, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	user.IsActive = false
	user.Retire(time.Now(), actorID)
	if err := s.userRepo.Update(ctx, user); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}

func (s *UserService) applyProfile(ctx context.Context, user *entity.User, req *UpdateUserRequest) error {
	if req.Email != nil && *req.Email != user.Email {
		exists, err := s.userRepo.EmailExists(ctx, *req.Email, user.ID)
		if err != nil {
			return fmt.Errorf("check email: %w", err)
		}
		if exists {
			return engine.NewConflict("Email already registered", "email", *req.Email)
		}
		user.Email = *req.Email
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if req.Avatar != nil {
		user.Avatar = *req.Avatar
	}
	if req.Password != nil {
		if len(*req.Password) < 8 {
			return engine.NewValidation("Password must be at least 8 characters", "password", len(*req.Password))
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}
	return nil
}
