// Package repository defines storage interfaces implemented by concrete backends.
package repository

import (
	"context"

	"github.com/daviddatuX25/securecat-sub001/internal/model"
)

// UserRepository provides access to staff accounts.
type UserRepository interface {
	// Create inserts a new user and sets u.ID.
	Create(ctx context.Context, u *model.User) error
	// GetByID loads a user by ID.
	GetByID(ctx context.Context, id int64) (*model.User, error)
	// GetByEmail loads a user by email.
	GetByEmail(ctx context.Context, email string) (*model.User, error)
}

// TxManager runs fn in a single database transaction. Repositories called
// with the ctx passed to fn join that transaction.
type TxManager interface {
	InTx(ctx context.Context, fn func(ctx context.Context) error) error
}
