package entity

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Category groups outcomes of one owner. Sum is a cached aggregate of the
// referenced outcome values and is recomputed, never incremented.
type Category struct {
	ID        bson.ObjectID   `bson:"_id,omitempty"`
	Name      string          `bson:"name"`
	Owner     bson.ObjectID   `bson:"owner"`
	Outcomes  []bson.ObjectID `bson:"outcomes"`
	Sum       float64         `bson:"sum"`
	CreatedAt time.Time       `bson:"created_at"`
	UpdatedAt time.Time       `bson:"updated_at"`
}

// Outcome is a single expense entry referenced by a category.
type Outcome struct {
	ID        bson.ObjectID `bson:"_id,omitempty"`
	Name      string        `bson:"name"`
	Value     float64       `bson:"value"`
	Owner     bson.ObjectID `bson:"owner"`
	CreatedAt time.Time     `bson:"created_at"`
}
