package tradedb

import (
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
)

// Client is the process-wide store handle. The mongo client maintains
// its own connection pool and is safe for concurrent use.
var Client *mongo.Client

func New(client *mongo.Client) error {
	if Client != nil {
		return fmt.Errorf("db already initialised")
	}
	Client = client
	return nil
}
