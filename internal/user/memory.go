package user

import (
	"context"
	"sync"

	"gorm.io/gorm"
)

// Store abstracts user persistence so auth also works on the memory
// database driver. Missing rows surface as gorm.ErrRecordNotFound on
// both implementations.
type Store interface {
	Create(ctx context.Context, u *User) error
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
}

// MemRepo is the in-memory Store implementation.
type MemRepo struct {
	mu    sync.RWMutex
	users map[string]User
}

// NewMemRepo returns an empty in-memory user store.
func NewMemRepo() *MemRepo {
	return &MemRepo{users: make(map[string]User)}
}

func (r *MemRepo) Create(ctx context.Context, u *User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[u.ID] = *u
	return nil
}

func (r *MemRepo) FindByEmail(ctx context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := u
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *MemRepo) FindByID(ctx context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := u
	return &cp, nil
}
