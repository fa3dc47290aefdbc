package db

import (
	"context"
	"errors"

	"github.com/ninja-software/terror/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ProductCreate inserts a new product document as supplied.
func (m *Mongo) ProductCreate(ctx context.Context, doc bson.M) (*mongo.InsertOneResult, error) {
	result, err := m.products.InsertOne(ctx, doc)
	if err != nil {
		return nil, terror.Error(err)
	}
	return result, nil
}

// ProductGet returns a product by given ID. A missing document is not
// an error; the caller receives a nil document.
func (m *Mongo) ProductGet(ctx context.Context, id primitive.ObjectID) (bson.M, error) {
	product := bson.M{}
	err := m.products.FindOne(ctx, bson.M{"_id": id}).Decode(&product)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, terror.Error(err)
	}
	return product, nil
}

// ProductList returns products, filtered on exporter_email when an
// email is given. An empty email means every document.
func (m *Mongo) ProductList(ctx context.Context, exporterEmail string) ([]bson.M, error) {
	filter := bson.M{}
	if exporterEmail != "" {
		filter["exporter_email"] = exporterEmail
	}

	cursor, err := m.products.Find(ctx, filter)
	if err != nil {
		return nil, terror.Error(err)
	}

	products := []bson.M{}
	err = cursor.All(ctx, &products)
	if err != nil {
		return nil, terror.Error(err)
	}
	return products, nil
}

// ProductsLatest returns the newest products by creation time, id
// descending as the tiebreak so equal timestamps list deterministically.
func (m *Mongo) ProductsLatest(ctx context.Context, limit int64) ([]bson.M, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}}).
		SetLimit(limit)

	cursor, err := m.products.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, terror.Error(err)
	}

	products := []bson.M{}
	err = cursor.All(ctx, &products)
	if err != nil {
		return nil, terror.Error(err)
	}
	return products, nil
}

// ProductUpdate sets the supplied field set on a product. Matched and
// modified counts in the result reveal whether the id existed.
func (m *Mongo) ProductUpdate(ctx context.Context, id primitive.ObjectID, fields bson.M) (*mongo.UpdateResult, error) {
	result, err := m.products.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": fields})
	if err != nil {
		return nil, terror.Error(err)
	}
	return result, nil
}

// ProductQuantitySet updates only availableQuantity. The new value is
// recorded by the caller, not computed here.
func (m *Mongo) ProductQuantitySet(ctx context.Context, id primitive.ObjectID, quantity interface{}) (*mongo.UpdateResult, error) {
	result, err := m.products.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"availableQuantity": quantity}})
	if err != nil {
		return nil, terror.Error(err)
	}
	return result, nil
}

// ProductDelete removes a product by id. Deleting an absent id yields
// a zero deleted count, not an error.
func (m *Mongo) ProductDelete(ctx context.Context, id primitive.ObjectID) (*mongo.DeleteResult, error) {
	result, err := m.products.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, terror.Error(err)
	}
	return result, nil
}
