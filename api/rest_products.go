package api

import (
	"encoding/json"
	"net/http"

	"tradeport-services/db"

	"github.com/go-chi/chi/v5"
	"github.com/ninja-software/terror/v2"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductController holds connection data for product handlers. Each
// handler maps one verb+path to one store operation; the store's
// native result object is the response body.
type ProductController struct {
	Log   *zerolog.Logger
	Store db.Store
}

func NewProductController(log *zerolog.Logger, store db.Store) *ProductController {
	return &ProductController{
		Log:   log,
		Store: store,
	}
}

// productID parses the path identifier. A malformed id fails the same
// way a bad store identifier would, as a 400.
func productID(r *http.Request) (primitive.ObjectID, int, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return primitive.NilObjectID, http.StatusBadRequest, terror.Error(err, "Invalid product id")
	}
	return id, http.StatusOK, nil
}

// Create inserts a new product owned by the verified exporter.
func (c *ProductController) Create(w http.ResponseWriter, r *http.Request) (int, error) {
	doc := bson.M{}
	err := json.NewDecoder(r.Body).Decode(&doc)
	if err != nil {
		return http.StatusBadRequest, terror.Error(err, "Invalid request body")
	}

	code, err := RequireOwner(r, bodyEmail(doc, "exporter_email"))
	if err != nil {
		return code, err
	}

	result, err := c.Store.ProductCreate(r.Context(), doc)
	if err != nil {
		return http.StatusInternalServerError, terror.Error(err, "Failed to create product")
	}
	return writeJSON(w, result)
}

// Latest lists the newest products, capped at six.
func (c *ProductController) Latest(w http.ResponseWriter, r *http.Request) (int, error) {
	products, err := c.Store.ProductsLatest(r.Context(), db.LatestProductsLimit)
	if err != nil {
		return http.StatusInternalServerError, terror.Error(err, "Failed to list products")
	}
	return writeJSON(w, products)
}

// Get returns one product by id, null when the id matches nothing.
func (c *ProductController) Get(w http.ResponseWriter, r *http.Request) (int, error) {
	id, code, err := productID(r)
	if err != nil {
		return code, err
	}

	product, err := c.Store.ProductGet(r.Context(), id)
	if err != nil {
		return http.StatusInternalServerError, terror.Error(err, "Failed to get product")
	}
	return writeJSON(w, product)
}

// List returns the caller's products when an email filter is given,
// every product otherwise.
func (c *ProductController) List(w http.ResponseWriter, r *http.Request) (int, error) {
	email := r.URL.Query().Get("email")
	code, err := RequireOwner(r, email)
	if err != nil {
		return code, err
	}

	products, err := c.Store.ProductList(r.Context(), email)
	if err != nil {
		return http.StatusInternalServerError, terror.Error(err, "Failed to list products")
	}
	return writeJSON(w, products)
}

// ListAll returns every product, unauthenticated.
func (c *ProductController) ListAll(w http.ResponseWriter, r *http.Request) (int, error) {
	products, err := c.Store.ProductList(r.Context(), "")
	if err != nil {
		return http.StatusInternalServerError, terror.Error(err, "Failed to list products")
	}
	return writeJSON(w, products)
}

// Replace sets the full field set of a product from the request body.
func (c *ProductController) Replace(w http.ResponseWriter, r *http.Request) (int, error) {
	id, code, err := productID(r)
	if err != nil {
		return code, err
	}

	doc := bson.M{}
	err = json.NewDecoder(r.Body).Decode(&doc)
	if err != nil {
		return http.StatusBadRequest, terror.Error(err, "Invalid request body")
	}

	code, err = RequireOwner(r, bodyEmail(doc, "exporter_email"))
	if err != nil {
		return code, err
	}

	// _id is immutable; a client echoing it back would fail the $set
	delete(doc, "_id")

	result, err := c.Store.ProductUpdate(r.Context(), id, doc)
	if err != nil {
		return http.StatusInternalServerError, terror.Error(err, "Failed to update product")
	}
	return writeJSON(w, result)
}

// QuantitySet records a new availableQuantity for a product. The body
// carries no email, so the ownership check has nothing to compare and
// passes through.
func (c *ProductController) QuantitySet(w http.ResponseWriter, r *http.Request) (int, error) {
	id, code, err := productID(r)
	if err != nil {
		return code, err
	}

	doc := bson.M{}
	err = json.NewDecoder(r.Body).Decode(&doc)
	if err != nil {
		return http.StatusBadRequest, terror.Error(err, "Invalid request body")
	}

	code, err = RequireOwner(r, bodyEmail(doc, "exporter_email"))
	if err != nil {
		return code, err
	}

	result, err := c.Store.ProductQuantitySet(r.Context(), id, doc["availableQuantity"])
	if err != nil {
		return http.StatusInternalServerError, terror.Error(err, "Failed to update product quantity")
	}
	return writeJSON(w, result)
}

// Delete removes one product by id. A zero deleted count in the result
// is how an absent id reads; it is not an error.
func (c *ProductController) Delete(w http.ResponseWriter, r *http.Request) (int, error) {
	id, code, err := productID(r)
	if err != nil {
		return code, err
	}

	code, err = RequireOwner(r, r.URL.Query().Get("email"))
	if err != nil {
		return code, err
	}

	result, err := c.Store.ProductDelete(r.Context(), id)
	if err != nil {
		return http.StatusInternalServerError, terror.Error(err, "Failed to delete product")
	}
	return writeJSON(w, result)
}
