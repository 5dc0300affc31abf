package mongodb

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/oksasatya/inventory-sales-api/internal/domain/repository"
)

func TestMigrationURL(t *testing.T) {
	u, err := MigrationURL("mongodb://user:pw@localhost:27017/?authSource=admin", "inventory")
	require.NoError(t, err)
	require.Equal(t, "mongodb://user:pw@localhost:27017/inventory?authSource=admin", u)

	u, err = MigrationURL("mongodb://localhost:27017/other", "inventory")
	require.NoError(t, err)
	require.Equal(t, "mongodb://localhost:27017/inventory", u)

	_, err = MigrationURL("postgres://localhost/db", "inventory")
	require.Error(t, err)

	_, err = MigrationURL("mongodb://localhost", "")
	require.Error(t, err)
}

func TestSaleFilterRequiresStock(t *testing.T) {
	id := bson.NewObjectID()

	f := saleFilter(id, 3, "")
	require.Equal(t, id, f["_id"])
	require.Equal(t, bson.M{"$gte": 3}, f["number_in_stock"])
	require.NotContains(t, f, "sizes")

	f = saleFilter(id, 2, "M")
	require.Equal(t, bson.M{"$elemMatch": bson.M{"size": "M", "stock": bson.M{"$gte": 2}}}, f["sizes"])
}

func TestStockInc(t *testing.T) {
	require.Equal(t, bson.M{"number_in_stock": -3}, stockInc(-3, ""))
	require.Equal(t, bson.M{"number_in_stock": 5, "sizes.$.stock": 5}, stockInc(5, "L"))
}

func TestTranslate(t *testing.T) {
	require.NoError(t, translate(nil))
	require.ErrorIs(t, translate(mongo.ErrNoDocuments), repository.ErrNotFound)
	require.ErrorIs(t, translate(fmt.Errorf("find: %w", mongo.ErrNoDocuments)), repository.ErrNotFound)

	dup := mongo.WriteException{WriteErrors: []mongo.WriteError{{Code: 11000, Message: "E11000 duplicate key"}}}
	require.ErrorIs(t, translate(dup), repository.ErrDuplicate)

	other := errors.New("boom")
	require.Equal(t, other, translate(other))
}
