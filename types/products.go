package types

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a document in the products collection. Handlers pass
// request bodies through to the store without reshaping them, so this
// struct documents the well-formed shape rather than enforcing it.
type Product struct {
	ID                primitive.ObjectID `json:"_id,omitempty" bson:"_id,omitempty"`
	ProductName       string             `json:"productName" bson:"productName"`
	Image             string             `json:"image" bson:"image"`
	Price             float64            `json:"price" bson:"price"`
	OriginCountry     string             `json:"originCountry" bson:"originCountry"`
	Rating            float64            `json:"rating" bson:"rating"`
	AvailableQuantity int                `json:"availableQuantity" bson:"availableQuantity"`
	ExporterEmail     string             `json:"exporter_email" bson:"exporter_email"`
	CreatedAt         time.Time          `json:"created_at" bson:"created_at"`
}
