package db

import (
	"context"

	"github.com/ninja-software/terror/v2"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// ImportCreate inserts an import record as supplied by the importer.
func (m *Mongo) ImportCreate(ctx context.Context, doc bson.M) (*mongo.InsertOneResult, error) {
	result, err := m.imports.InsertOne(ctx, doc)
	if err != nil {
		return nil, terror.Error(err)
	}
	return result, nil
}

// ImportList returns import records, filtered on importer_email when
// an email is given.
func (m *Mongo) ImportList(ctx context.Context, importerEmail string) ([]bson.M, error) {
	filter := bson.M{}
	if importerEmail != "" {
		filter["importer_email"] = importerEmail
	}

	cursor, err := m.imports.Find(ctx, filter)
	if err != nil {
		return nil, terror.Error(err)
	}

	records := []bson.M{}
	err = cursor.All(ctx, &records)
	if err != nil {
		return nil, terror.Error(err)
	}
	return records, nil
}

// ImportDelete removes an import record by id.
func (m *Mongo) ImportDelete(ctx context.Context, id primitive.ObjectID) (*mongo.DeleteResult, error) {
	result, err := m.imports.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return nil, terror.Error(err)
	}
	return result, nil
}
