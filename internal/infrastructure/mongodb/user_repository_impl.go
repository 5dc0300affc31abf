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

const userCollection = "users"

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(userCollection)}
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now

	res, err := r.coll.InsertOne(ctx, u)
	if err != nil {
		return translate(err)
	}
	id, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return errors.New("failed to convert inserted ID to ObjectID")
	}
	u.ID = id
	return nil
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*entity.User, error) {
	var u entity.User
	if err := r.coll.FindOne(ctx, filter).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id bson.ObjectID) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) FindByIDs(ctx context.Context, ids []bson.ObjectID) ([]entity.User, error) {
	users := []entity.User{}
	if len(ids) == 0 {
		return users, nil
	}
	opts := options.Find().SetProjection(bson.M{"_id": 1, "full_name": 1, "email": 1})
	cur, err := r.coll.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, translate(err)
	}
	if err := cur.All(ctx, &users); err != nil {
		return nil, translate(err)
	}
	return users, nil
}

func (r *UserRepository) GetByResetCode(ctx context.Context, email, code string, now time.Time) (*entity.User, error) {
	return r.findOne(ctx, bson.M{
		"email":                 email,
		"reset_code":            code,
		"reset_code_expires_at": bson.M{"$gt": now},
	})
}

// set applies $set to a single user and reports ErrNotFound when nothing matched.
func (r *UserRepository) set(ctx context.Context, id bson.ObjectID, fields bson.M, unset bson.M) error {
	fields["updated_at"] = time.Now().UTC()
	update := bson.M{"$set": fields}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) SetVerificationCode(ctx context.Context, id bson.ObjectID, code string) error {
	return r.set(ctx, id, bson.M{"verification_code": code}, nil)
}

func (r *UserRepository) MarkVerified(ctx context.Context, id bson.ObjectID) error {
	return r.set(ctx, id, bson.M{"verified": true}, nil)
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id bson.ObjectID, hash string) error {
	return r.set(ctx, id, bson.M{"password": hash}, bson.M{"reset_code": "", "reset_code_expires_at": ""})
}

func (r *UserRepository) SetResetCode(ctx context.Context, id bson.ObjectID, code string, expiresAt time.Time) error {
	return r.set(ctx, id, bson.M{"reset_code": code, "reset_code_expires_at": expiresAt}, nil)
}

func (r *UserRepository) UpdateImage(ctx context.Context, id bson.ObjectID, url string) error {
	return r.set(ctx, id, bson.M{"img": url}, nil)
}
