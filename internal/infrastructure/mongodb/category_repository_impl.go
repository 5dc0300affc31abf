package mongodb

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/oksasatya/inventory-sales-api/internal/domain/entity"
	"github.com/oksasatya/inventory-sales-api/internal/domain/repository"
)

const (
	categoryCollection = "categories"
	outcomeCollection  = "outcomes"
)

type CategoryRepository struct {
	coll *mongo.Collection
}

func NewCategoryRepository(db *mongo.Database) *CategoryRepository {
	return &CategoryRepository{coll: db.Collection(categoryCollection)}
}

func (r *CategoryRepository) Create(ctx context.Context, c *entity.Category) error {
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.Outcomes == nil {
		c.Outcomes = []bson.ObjectID{}
	}
	res, err := r.coll.InsertOne(ctx, c)
	if err != nil {
		return translate(err)
	}
	id, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return errors.New("failed to convert inserted ID to ObjectID")
	}
	c.ID = id
	return nil
}

func (r *CategoryRepository) GetByID(ctx context.Context, id bson.ObjectID) (*entity.Category, error) {
	var c entity.Category
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *CategoryRepository) ListByOwner(ctx context.Context, owner bson.ObjectID) ([]entity.Category, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"owner": owner}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]entity.Category, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *CategoryRepository) update(ctx context.Context, filter bson.M, set bson.M) (*entity.Category, error) {
	set["updated_at"] = time.Now().UTC()
	var c entity.Category
	if err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, afterUpdate()).Decode(&c); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *CategoryRepository) Rename(ctx context.Context, id, owner bson.ObjectID, name string) (*entity.Category, error) {
	return r.update(ctx, bson.M{"_id": id, "owner": owner}, bson.M{"name": name})
}

func (r *CategoryRepository) SetSum(ctx context.Context, id bson.ObjectID, sum float64) (*entity.Category, error) {
	return r.update(ctx, bson.M{"_id": id}, bson.M{"sum": sum})
}

func (r *CategoryRepository) Delete(ctx context.Context, id, owner bson.ObjectID) (*entity.Category, error) {
	var c entity.Category
	if err := r.coll.FindOneAndDelete(ctx, bson.M{"_id": id, "owner": owner}).Decode(&c); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}

func (r *CategoryRepository) AttachOutcome(ctx context.Context, id, owner, outcomeID bson.ObjectID) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "owner": owner},
		bson.M{
			"$push": bson.M{"outcomes": outcomeID},
			"$set":  bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

type OutcomeRepository struct {
	coll *mongo.Collection
}

func NewOutcomeRepository(db *mongo.Database) *OutcomeRepository {
	return &OutcomeRepository{coll: db.Collection(outcomeCollection)}
}

func (r *OutcomeRepository) Create(ctx context.Context, o *entity.Outcome) error {
	o.CreatedAt = time.Now().UTC()
	res, err := r.coll.InsertOne(ctx, o)
	if err != nil {
		return translate(err)
	}
	id, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return errors.New("failed to convert inserted ID to ObjectID")
	}
	o.ID = id
	return nil
}

func (r *OutcomeRepository) FindByIDs(ctx context.Context, ids []bson.ObjectID) ([]entity.Outcome, error) {
	out := make([]entity.Outcome, 0, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	cursor, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *OutcomeRepository) SumValues(ctx context.Context, ids []bson.ObjectID) (float64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.M{"_id": bson.M{"$in": ids}}}},
		{{Key: "$group", Value: bson.M{"_id": nil, "sum": bson.M{"$sum": "$value"}}}},
	}
	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Sum float64 `bson:"sum"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Sum, nil
}

func (r *OutcomeRepository) DeleteByIDs(ctx context.Context, ids []bson.ObjectID) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.coll.DeleteMany(ctx, bson.M{"_id": bson.M{"$in": ids}})
	return err
}
