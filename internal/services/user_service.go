package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/models"
	"github.com/example/storefront/internal/utils"
)

// UserPatch carries optional admin edits; nil fields are left untouched.
type UserPatch struct {
	FullName    *string
	PhoneNumber *string
	Role        *models.Role
}

// UserList is one admin page of users plus role totals.
type UserList struct {
	Users          []models.User
	TotalUsers     int64
	NumberOfUsers  int64
	NumberOfAdmins int64
}

// UserService exposes user lookups and administration.
type UserService struct {
	db *gorm.DB
}

// NewUserService constructs UserService.
func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Get loads a single user.
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, err
	}
	return &user, nil
}

// AdminList returns users whose name or phone number contains search.
func (s *UserService) AdminList(ctx context.Context, search string, pg utils.Pagination) (*UserList, error) {
	db := s.db.WithContext(ctx)
	list := &UserList{}

	if err := db.Model(&models.User{}).Count(&list.TotalUsers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleUser).Count(&list.NumberOfUsers).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&list.NumberOfAdmins).Error; err != nil {
		return nil, err
	}

	query := db.Model(&models.User{}).Order("created_at desc")
	if search = strings.TrimSpace(search); search != "" {
		pattern := likePattern(search)
		query = query.Where(db.Where(likeClause("full_name"), pattern).Or(likeClause("phone_number"), pattern))
	}

	users := make([]models.User, 0)
	if err := paginate(query, pg).Find(&users).Error; err != nil {
		return nil, err
	}
	list.Users = users
	return list, nil
}

// Edit applies patch to a user. A phone number held by someone else is a conflict.
func (s *UserService) Edit(ctx context.Context, id uuid.UUID, patch UserPatch) (*models.User, error) {
	db := s.db.WithContext(ctx)

	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.FullName != nil {
		updates["full_name"] = *patch.FullName
	}
	if patch.PhoneNumber != nil {
		var count int64
		if err := db.Model(&models.User{}).
			Where("phone_number = ? AND id <> ?", *patch.PhoneNumber, id).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, apperr.Conflict("this phone number is already registered")
		}
		updates["phone_number"] = *patch.PhoneNumber
	}
	if patch.Role != nil {
		updates["role"] = *patch.Role
	}

	if len(updates) > 0 {
		if err := db.Model(user).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, apperr.Conflict("this phone number is already registered")
			}
			return nil, err
		}
	}

	return s.Get(ctx, id)
}
