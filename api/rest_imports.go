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

// ImportController holds connection data for import record handlers.
//
// Creating an import record and decrementing the product's quantity
// are two independent client calls with no atomicity between them; a
// crash between the two leaves the collections briefly inconsistent.
type ImportController struct {
	Log   *zerolog.Logger
	Store db.Store
}

func NewImportController(log *zerolog.Logger, store db.Store) *ImportController {
	return &ImportController{
		Log:   log,
		Store: store,
	}
}

// Create inserts an import record owned by the verified importer.
func (c *ImportController) Create(w http.ResponseWriter, r *http.Request) (int, error) {
	doc := bson.M{}
	err := json.NewDecoder(r.Body).Decode(&doc)
	if err != nil {
		return http.StatusBadRequest, terror.Error(err, "Invalid request body")
	}

	code, err := RequireOwner(r, bodyEmail(doc, "importer_email"))
	if err != nil {
		return code, err
	}

	result, err := c.Store.ImportCreate(r.Context(), doc)
	if err != nil {
		return http.StatusInternalServerError, terror.Error(err, "Failed to create import record")
	}
	return writeJSON(w, result)
}

// List returns the caller's import records when an email filter is
// given, every record otherwise.
func (c *ImportController) List(w http.ResponseWriter, r *http.Request) (int, error) {
	email := r.URL.Query().Get("email")
	code, err := RequireOwner(r, email)
	if err != nil {
		return code, err
	}

	records, err := c.Store.ImportList(r.Context(), email)
	if err != nil {
		return http.StatusInternalServerError, terror.Error(err, "Failed to list import records")
	}
	return writeJSON(w, records)
}

// Delete removes one import record by id.
func (c *ImportController) Delete(w http.ResponseWriter, r *http.Request) (int, error) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		return http.StatusBadRequest, terror.Error(err, "Invalid import record id")
	}

	code, err := RequireOwner(r, r.URL.Query().Get("email"))
	if err != nil {
		return code, err
	}

	result, err := c.Store.ImportDelete(r.Context(), id)
	if err != nil {
		return http.StatusInternalServerError, terror.Error(err, "Failed to delete import record")
	}
	return writeJSON(w, result)
}
