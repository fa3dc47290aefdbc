package types

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ImportRecord is a document in the imported_product collection. The
// payload is importer-supplied and free-form; importer_email identifies
// the owner for deletion.
type ImportRecord struct {
	ID            primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	ProductID     string             `json:"productId" bson:"productId"`
	ProductName   string             `json:"productName" bson:"productName"`
	Quantity      int                `json:"quantity" bson:"quantity"`
	ImporterEmail string             `json:"importer_email" bson:"importer_email"`
	CreatedAt     time.Time          `json:"created_at" bson:"created_at"`
}
