package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/oksasatya/inventory-sales-api/internal/domain/entity"
)

// ProductUpdate holds the optional fields of a partial product update.
// Only non-nil fields are written.
type ProductUpdate struct {
	Name          *string
	NumberInStock *int
	BuyingPrice   *float64
	PriceToSell   *float64
	BuyingDate    *time.Time
	Sizes         *[]entity.SizeStock
	Photo         *string
	PhotoKey      *string
}

// Empty reports whether no field is set.
func (u ProductUpdate) Empty() bool {
	return u.Name == nil && u.NumberInStock == nil && u.BuyingPrice == nil && u.PriceToSell == nil &&
		u.BuyingDate == nil && u.Sizes == nil && u.Photo == nil && u.PhotoKey == nil
}

type ProductRepository interface {
	Create(ctx context.Context, p *entity.Product) error
	GetByID(ctx context.Context, id bson.ObjectID) (*entity.Product, error)
	GetByName(ctx context.Context, name string) (*entity.Product, error)
	// List returns every product, most recently bought first.
	List(ctx context.Context) ([]entity.Product, error)
	FindByIDs(ctx context.Context, ids []bson.ObjectID) ([]entity.Product, error)
	SearchByName(ctx context.Context, q string, limit int) ([]entity.Product, error)
	Update(ctx context.Context, id bson.ObjectID, upd ProductUpdate) (*entity.Product, error)
	// RecordSale decrements stock and appends the sale in one atomic step.
	// It returns ErrInsufficientStock when the stock (or the size stock) is
	// lower than the quantity, leaving the product untouched.
	RecordSale(ctx context.Context, id bson.ObjectID, sale entity.Sale) (*entity.Product, error)
	IncreaseStock(ctx context.Context, id bson.ObjectID, amount int, size string) (*entity.Product, error)
	// Delete removes the product and returns what was deleted.
	Delete(ctx context.Context, id bson.ObjectID) (*entity.Product, error)
}
