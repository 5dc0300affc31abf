package mongodb

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/oksasatya/inventory-sales-api/internal/domain/entity"
	"github.com/oksasatya/inventory-sales-api/internal/domain/repository"
)

const productCollection = "products"

type ProductRepository struct {
	coll *mongo.Collection
}

func NewProductRepository(db *mongo.Database) *ProductRepository {
	return &ProductRepository{coll: db.Collection(productCollection)}
}

func (r *ProductRepository) Create(ctx context.Context, p *entity.Product) error {
	if p.CreationDate.IsZero() {
		p.CreationDate = time.Now().UTC()
	}
	// $push on a null field fails, so sales always start as an empty array.
	if p.Sales == nil {
		p.Sales = []entity.Sale{}
	}
	res, err := r.coll.InsertOne(ctx, p)
	if err != nil {
		return translate(err)
	}
	id, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return errors.New("failed to convert inserted ID to ObjectID")
	}
	p.ID = id
	return nil
}

func (r *ProductRepository) findOne(ctx context.Context, filter bson.M) (*entity.Product, error) {
	var p entity.Product
	if err := r.coll.FindOne(ctx, filter).Decode(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id bson.ObjectID) (*entity.Product, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *ProductRepository) GetByName(ctx context.Context, name string) (*entity.Product, error) {
	return r.findOne(ctx, bson.M{"name": name})
}

func (r *ProductRepository) find(ctx context.Context, filter bson.M, opts ...options.Lister[options.FindOptions]) ([]entity.Product, error) {
	cursor, err := r.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]entity.Product, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *ProductRepository) List(ctx context.Context) ([]entity.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "buying_date", Value: -1}, {Key: "_id", Value: -1}})
	return r.find(ctx, bson.M{}, opts)
}

func (r *ProductRepository) FindByIDs(ctx context.Context, ids []bson.ObjectID) ([]entity.Product, error) {
	if len(ids) == 0 {
		return []entity.Product{}, nil
	}
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *ProductRepository) SearchByName(ctx context.Context, q string, limit int) ([]entity.Product, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}
	filter := bson.M{"name": bson.M{"$regex": regexp.QuoteMeta(q), "$options": "i"}}
	return r.find(ctx, filter, opts)
}

func (r *ProductRepository) Update(ctx context.Context, id bson.ObjectID, upd repository.ProductUpdate) (*entity.Product, error) {
	if upd.Empty() {
		return r.GetByID(ctx, id)
	}
	set := bson.M{}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.NumberInStock != nil {
		set["number_in_stock"] = *upd.NumberInStock
	}
	if upd.BuyingPrice != nil {
		set["buying_price"] = *upd.BuyingPrice
	}
	if upd.PriceToSell != nil {
		set["price_to_sell"] = *upd.PriceToSell
	}
	if upd.BuyingDate != nil {
		set["buying_date"] = *upd.BuyingDate
	}
	if upd.Sizes != nil {
		set["sizes"] = *upd.Sizes
	}
	if upd.Photo != nil {
		set["photo"] = *upd.Photo
	}
	if upd.PhotoKey != nil {
		set["photo_key"] = *upd.PhotoKey
	}

	var p entity.Product
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, afterUpdate()).Decode(&p)
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

// saleFilter matches the product only while it still holds enough stock
// (and enough of the size, when one is given).
func saleFilter(id bson.ObjectID, qty int, size string) bson.M {
	filter := bson.M{"_id": id, "number_in_stock": bson.M{"$gte": qty}}
	if size != "" {
		filter["sizes"] = bson.M{"$elemMatch": bson.M{"size": size, "stock": bson.M{"$gte": qty}}}
	}
	return filter
}

func stockInc(delta int, size string) bson.M {
	inc := bson.M{"number_in_stock": delta}
	if size != "" {
		inc["sizes.$.stock"] = delta
	}
	return inc
}

func (r *ProductRepository) RecordSale(ctx context.Context, id bson.ObjectID, sale entity.Sale) (*entity.Product, error) {
	update := bson.M{
		"$inc":  stockInc(-sale.QuantitySold, sale.Size),
		"$push": bson.M{"sales": sale},
	}
	var p entity.Product
	err := r.coll.FindOneAndUpdate(ctx, saleFilter(id, sale.QuantitySold, sale.Size), update, afterUpdate()).Decode(&p)
	if errors.Is(err, mongo.ErrNoDocuments) {
		if _, gErr := r.GetByID(ctx, id); gErr != nil {
			return nil, gErr
		}
		return nil, repository.ErrInsufficientStock
	}
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *ProductRepository) IncreaseStock(ctx context.Context, id bson.ObjectID, amount int, size string) (*entity.Product, error) {
	filter := bson.M{"_id": id}
	if size != "" {
		filter["sizes.size"] = size
	}
	var p entity.Product
	err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$inc": stockInc(amount, size)}, afterUpdate()).Decode(&p)
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id bson.ObjectID) (*entity.Product, error) {
	var p entity.Product
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}
