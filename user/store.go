package user

import (
	"context"

	"github.com/xraph/wami/id"
)

// Store defines persistence operations for users and access keys.
type Store interface {
	// CreateUser persists a new user.
	CreateUser(ctx context.Context, u *User) error

	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, userID id.UserID) (*User, error)

	// GetUserByName retrieves a user by tenant and name.
	GetUserByName(ctx context.Context, tenantID, name string) (*User, error)

	// UpdateUser persists changes to a user.
	UpdateUser(ctx context.Context, u *User) error

	// DeleteUser removes a user by ID.
	DeleteUser(ctx context.Context, userID id.UserID) error

	// ListUsers returns users matching the filter.
	ListUsers(ctx context.Context, filter *ListFilter) ([]*User, error)

	// CountUsers returns the number of users matching the filter.
	CountUsers(ctx context.Context, filter *ListFilter) (int64, error)

	// CreateAccessKey persists a new access key.
	CreateAccessKey(ctx context.Context, k *AccessKey) error

	// GetAccessKey retrieves an access key by ID.
	GetAccessKey(ctx context.Context, keyID id.AccessKeyID) (*AccessKey, error)

	// UpdateAccessKeyStatus activates or deactivates an access key.
	UpdateAccessKeyStatus(ctx context.Context, keyID id.AccessKeyID, status KeyStatus) error

	// DeleteAccessKey removes an access key by ID.
	DeleteAccessKey(ctx context.Context, keyID id.AccessKeyID) error

	// ListAccessKeys returns a user's access keys.
	ListAccessKeys(ctx context.Context, tenantID, userName string) ([]*AccessKey, error)

	// DeleteUsersByTenant removes all users and their keys for a tenant.
	DeleteUsersByTenant(ctx context.Context, tenantID string) error
}
