package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/oksasatya/inventory-sales-api/internal/domain/entity"
)

var (
	ErrNotFound          = errors.New("record not found")
	ErrDuplicate         = errors.New("duplicate record")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// UserRepository defines the interface for user-related database operations.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id bson.ObjectID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	// FindByIDs returns the users that exist among ids, in no particular order.
	FindByIDs(ctx context.Context, ids []bson.ObjectID) ([]entity.User, error)
	SetVerificationCode(ctx context.Context, id bson.ObjectID, code string) error
	MarkVerified(ctx context.Context, id bson.ObjectID) error
	// UpdatePassword replaces the hash and clears any pending reset code.
	UpdatePassword(ctx context.Context, id bson.ObjectID, hash string) error
	SetResetCode(ctx context.Context, id bson.ObjectID, code string, expiresAt time.Time) error
	// GetByResetCode finds the user whose unexpired reset code matches.
	GetByResetCode(ctx context.Context, email, code string, now time.Time) (*entity.User, error)
	UpdateImage(ctx context.Context, id bson.ObjectID, url string) error
}
