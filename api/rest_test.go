package api_test

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"tradeport-services/api"

	"github.com/ninja-software/terror/v2"
)

func TestWithErrorFriendlyMessage(t *testing.T) {
	handler := api.WithError(func(w http.ResponseWriter, r *http.Request) (int, error) {
		return http.StatusInternalServerError, terror.Error(fmt.Errorf("cursor failed"), "Failed to list products")
	})

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products", nil))

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("code %d, want 500", w.Code)
	}
	errObj := api.ErrorObject{}
	err := json.Unmarshal(w.Body.Bytes(), &errObj)
	if err != nil {
		t.Fatal(err)
	}
	if errObj.Message != "Failed to list products" {
		t.Fatalf("message %q, want friendly message", errObj.Message)
	}
	if errObj.ErrorCode != "500" {
		t.Fatalf("error_code %q, want 500", errObj.ErrorCode)
	}
}

func TestWithErrorGenericMessages(t *testing.T) {
	codes := map[int]api.ErrorMessage{
		http.StatusBadRequest:          api.InputError,
		http.StatusUnauthorized:        api.Unauthorised,
		http.StatusForbidden:           api.Forbidden,
		http.StatusInternalServerError: api.InternalErrorTryAgain,
	}

	for code, want := range codes {
		code := code
		handler := api.WithError(func(w http.ResponseWriter, r *http.Request) (int, error) {
			// no friendly message set, the boundary substitutes a generic one
			return code, terror.Error(fmt.Errorf("raw internals"))
		})

		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

		if w.Code != code {
			t.Fatalf("code %d, want %d", w.Code, code)
		}
		errObj := api.ErrorObject{}
		err := json.Unmarshal(w.Body.Bytes(), &errObj)
		if err != nil {
			t.Fatal(err)
		}
		if errObj.Message != want.String() {
			t.Fatalf("code %d message %q, want %q", code, errObj.Message, want)
		}
	}
}

func TestWithErrorSuccessPassthrough(t *testing.T) {
	handler := api.WithError(func(w http.ResponseWriter, r *http.Request) (int, error) {
		_, _ = w.Write([]byte(`{"ok":true}`))
		return http.StatusOK, nil
	})

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	if w.Code != http.StatusOK || w.Body.String() != `{"ok":true}` {
		t.Fatalf("code %d body %q", w.Code, w.Body.String())
	}
}
