package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/oksasatya/inventory-sales-api/internal/domain/entity"
)

// CategoryRepository mutations take the owner and match on {_id, owner}:
// a category owned by someone else is reported as ErrNotFound.
type CategoryRepository interface {
	Create(ctx context.Context, c *entity.Category) error
	GetByID(ctx context.Context, id bson.ObjectID) (*entity.Category, error)
	ListByOwner(ctx context.Context, owner bson.ObjectID) ([]entity.Category, error)
	Rename(ctx context.Context, id, owner bson.ObjectID, name string) (*entity.Category, error)
	Delete(ctx context.Context, id, owner bson.ObjectID) (*entity.Category, error)
	AttachOutcome(ctx context.Context, id, owner, outcomeID bson.ObjectID) error
	SetSum(ctx context.Context, id bson.ObjectID, sum float64) (*entity.Category, error)
}

type OutcomeRepository interface {
	Create(ctx context.Context, o *entity.Outcome) error
	FindByIDs(ctx context.Context, ids []bson.ObjectID) ([]entity.Outcome, error)
	// SumValues adds up the value of the given outcomes; unknown ids count as zero.
	SumValues(ctx context.Context, ids []bson.ObjectID) (float64, error)
	DeleteByIDs(ctx context.Context, ids []bson.ObjectID) error
}
