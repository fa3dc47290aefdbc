package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/ioutil"
	"net/http"

	"tradeport-services/tradelog"

	"github.com/ninja-software/terror/v2"
)

type ErrorMessage string

const (
	Unauthorised          ErrorMessage = "Unauthorised - Please log in or contact System Administrator"
	Forbidden             ErrorMessage = "Forbidden - You do not have permissions for this, please contact System Administrator"
	InternalErrorTryAgain ErrorMessage = "Internal Error - Please try again in a few minutes or Contact Support"
	InputError            ErrorMessage = "Input Error - Please try again"
)

func (errMsg ErrorMessage) String() string {
	return string(errMsg)
}

// ErrorObject is the JSON error body consumed by the front end.
type ErrorObject struct {
	Message   string `json:"message"`
	ErrorCode string `json:"error_code"`
}

// WithError is the per-request error boundary. Handler failures become
// structured JSON error responses instead of escaping the request; a
// failing store call can never take the process down.
func WithError(next func(w http.ResponseWriter, r *http.Request) (int, error)) http.HandlerFunc {
	fn := func(w http.ResponseWriter, r *http.Request) {
		contents, _ := ioutil.ReadAll(r.Body)
		r.Body = ioutil.NopCloser(bytes.NewReader(contents))
		defer r.Body.Close()

		code, err := next(w, r)
		if err != nil {
			errObj := &ErrorObject{
				Message:   err.Error(),
				ErrorCode: fmt.Sprintf("%d", code),
			}
			var bErr *terror.TError
			if errors.As(err, &bErr) {
				errObj.Message = bErr.Message

				switch bErr.Level {
				case terror.ErrLevelWarn:
					tradelog.L.Warn().Err(err).Msg("rest error")
				default:
					tradelog.L.Err(err).Msg("rest error")
				}

				// set generic messages if friendly message not set making generic messages overrideable
				if bErr.Error() == bErr.Message {
					if code == 500 {
						errObj.Message = InternalErrorTryAgain.String()
					}
					if code == 403 {
						errObj.Message = Forbidden.String()
					}
					if code == 401 {
						errObj.Message = Unauthorised.String()
					}
					if code == 400 {
						errObj.Message = InputError.String()
					}
				}
			} else {
				tradelog.L.Err(err).Str("r.URL.Path", r.URL.Path).Msg("rest error")
			}

			jsonErr, err := json.Marshal(errObj)
			if err != nil {
				terror.Echo(err)
				http.Error(w, `{"message":"JSON failed, please contact IT.","error_code":"00001"}`, code)
				return
			}

			http.Error(w, string(jsonErr), code)
			return
		}
	}
	return fn
}

// writeJSON serialises a store result verbatim as the response body.
func writeJSON(w http.ResponseWriter, v interface{}) (int, error) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(v)
	if err != nil {
		return http.StatusInternalServerError, terror.Error(err, "Failed to encode JSON")
	}
	return http.StatusOK, nil
}
