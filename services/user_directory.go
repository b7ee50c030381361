package services

import (
	"context"
	"strings"

	"github.com/kendall-kelly/private-messaging-api/models"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// UserDirectory resolves user identities for message addressing
type UserDirectory interface {
	// FindByUserName returns the user with the given name in the tenant, or ErrUserNotFound
	FindByUserName(ctx context.Context, tenantID *string, userName string) (*models.User, error)

	// GetByIDs returns the users that exist among ids; missing ids are left out
	GetByIDs(ctx context.Context, ids []uint) ([]models.User, error)

	// FindByAuth0ID returns the user provisioned for an Auth0 subject, or ErrUserNotFound
	FindByAuth0ID(ctx context.Context, auth0ID string) (*models.User, error)
}

// GormUserDirectory reads users from the users table
type GormUserDirectory struct {
	db *gorm.DB
}

// NewGormUserDirectory creates a directory backed by db
func NewGormUserDirectory(db *gorm.DB) *GormUserDirectory {
	return &GormUserDirectory{db: db}
}

func (d *GormUserDirectory) FindByUserName(ctx context.Context, tenantID *string, userName string) (*models.User, error) {
	userName = strings.TrimSpace(userName)
	var user models.User
	err := d.db.WithContext(ctx).
		Scopes(tenantScope(tenantID)).
		Where("user_name = ?", userName).
		First(&user).Error
	if err != nil {
		if isRecordNotFound(err) {
			return nil, userNotFoundError(userName)
		}
		return nil, storageError("look up user", err)
	}
	return &user, nil
}

func (d *GormUserDirectory) GetByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	users := []models.User{}
	ids = lo.Uniq(ids)
	if len(ids) == 0 {
		return users, nil
	}
	if err := d.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, storageError("look up users", err)
	}
	return users, nil
}

func (d *GormUserDirectory) FindByAuth0ID(ctx context.Context, auth0ID string) (*models.User, error) {
	var user models.User
	if err := d.db.WithContext(ctx).Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		if isRecordNotFound(err) {
			return nil, &ServiceError{Code: CodeUserNotFound, Message: "User profile not found. Please create a profile first."}
		}
		return nil, storageError("look up user", err)
	}
	return &user, nil
}
