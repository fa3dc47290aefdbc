package api

import (
	"net/http"

	"tradeport-services/db"

	"github.com/ninja-software/terror/v2"
	"github.com/rs/zerolog"
)

// CheckController holds connection data for handlers
type CheckController struct {
	Log   *zerolog.Logger
	Store db.Store
}

func NewCheckController(log *zerolog.Logger, store db.Store) *CheckController {
	return &CheckController{
		Log:   log,
		Store: store,
	}
}

func (c *CheckController) Greet(w http.ResponseWriter, r *http.Request) (int, error) {
	_, err := w.Write([]byte("Hello from server"))
	if err != nil {
		return http.StatusInternalServerError, terror.Error(err, "Failed to send")
	}
	return http.StatusOK, nil
}

func (c *CheckController) Check(w http.ResponseWriter, r *http.Request) (int, error) {
	err := c.Store.Ping(r.Context())
	if err != nil {
		return http.StatusInternalServerError, terror.Error(err, "Store unreachable")
	}
	_, err = w.Write([]byte("ok"))
	if err != nil {
		return http.StatusInternalServerError, terror.Error(err, "Failed to send")
	}
	return http.StatusOK, nil
}
