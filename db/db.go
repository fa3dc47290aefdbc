package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	CollectionProducts = "products"
	CollectionImports  = "imported_product"
)

// LatestProductsLimit caps the latest-products listing.
const LatestProductsLimit = 6

// Store is the document-store surface the API depends on. Every method
// performs exactly one store operation and hands the driver's native
// result object back to the caller; the HTTP layer serialises it
// without translation.
type Store interface {
	Ping(ctx context.Context) error

	ProductCreate(ctx context.Context, doc bson.M) (*mongo.InsertOneResult, error)
	ProductGet(ctx context.Context, id primitive.ObjectID) (bson.M, error)
	ProductList(ctx context.Context, exporterEmail string) ([]bson.M, error)
	ProductsLatest(ctx context.Context, limit int64) ([]bson.M, error)
	ProductUpdate(ctx context.Context, id primitive.ObjectID, fields bson.M) (*mongo.UpdateResult, error)
	ProductQuantitySet(ctx context.Context, id primitive.ObjectID, quantity interface{}) (*mongo.UpdateResult, error)
	ProductDelete(ctx context.Context, id primitive.ObjectID) (*mongo.DeleteResult, error)

	ImportCreate(ctx context.Context, doc bson.M) (*mongo.InsertOneResult, error)
	ImportList(ctx context.Context, importerEmail string) ([]bson.M, error)
	ImportDelete(ctx context.Context, id primitive.ObjectID) (*mongo.DeleteResult, error)
}

// Mongo implements Store over a single shared client.
type Mongo struct {
	client   *mongo.Client
	products *mongo.Collection
	imports  *mongo.Collection
}

func NewMongo(client *mongo.Client, databaseName string) *Mongo {
	database := client.Database(databaseName)
	return &Mongo{
		client:   client,
		products: database.Collection(CollectionProducts),
		imports:  database.Collection(CollectionImports),
	}
}

// Ping confirms connectivity the same way the server does at boot, a
// ping command against the admin database.
func (m *Mongo) Ping(ctx context.Context) error {
	return m.client.Database("admin").RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}
