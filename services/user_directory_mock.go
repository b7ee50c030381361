package services

import (
	"context"
	"sync"

	"github.com/kendall-kelly/private-messaging-api/models"
	"github.com/samber/lo"
)

// MockUserDirectory is an in-memory UserDirectory for testing
type MockUserDirectory struct {
	users []models.User
	err   error
	mu    sync.RWMutex
}

// NewMockUserDirectory creates a mock directory holding users
func NewMockUserDirectory(users ...models.User) *MockUserDirectory {
	return &MockUserDirectory{users: users}
}

// FailWith makes every lookup return err
func (m *MockUserDirectory) FailWith(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

func (m *MockUserDirectory) FindByUserName(ctx context.Context, tenantID *string, userName string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.err != nil {
		return nil, m.err
	}
	user, ok := lo.Find(m.users, func(u models.User) bool {
		return u.UserName == userName && sameTenant(u.TenantID, tenantID)
	})
	if !ok {
		return nil, userNotFoundError(userName)
	}
	return &user, nil
}

func (m *MockUserDirectory) GetByIDs(ctx context.Context, ids []uint) ([]models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.err != nil {
		return nil, m.err
	}
	return lo.Filter(m.users, func(u models.User, _ int) bool {
		return lo.Contains(ids, u.ID)
	}), nil
}

func (m *MockUserDirectory) FindByAuth0ID(ctx context.Context, auth0ID string) (*models.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.err != nil {
		return nil, m.err
	}
	user, ok := lo.Find(m.users, func(u models.User) bool {
		return u.Auth0ID == auth0ID
	})
	if !ok {
		return nil, &ServiceError{Code: CodeUserNotFound, Message: "User profile not found. Please create a profile first."}
	}
	return &user, nil
}

func sameTenant(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
