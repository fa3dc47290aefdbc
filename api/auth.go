package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"tradeport-services/idp"

	"github.com/ninja-software/terror/v2"
)

// ErrNoToken is returned when the Authorization header carries no bearer credential.
var ErrNoToken = fmt.Errorf("no token provided")

// ErrEmailMismatch is returned when the caller-supplied email does not match the verified identity.
var ErrEmailMismatch = fmt.Errorf("email does not match verified identity")

type contextKey string

const contextVerifiedEmail contextKey = "verified_email"

// WithIdentity verifies the bearer credential before the wrapped
// handler runs and attaches the verified email to the request context.
// Any verification failure, including a provider outage, is answered
// with 401; the two cases are not distinguished.
func WithIdentity(verifier idp.TokenVerifier, next func(w http.ResponseWriter, r *http.Request) (int, error)) func(w http.ResponseWriter, r *http.Request) (int, error) {
	fn := func(w http.ResponseWriter, r *http.Request) (int, error) {
		header := r.Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			return http.StatusUnauthorized, terror.Warn(ErrNoToken, "Unauthorised access - no token provided")
		}

		email, err := verifier.Verify(r.Context(), strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			return http.StatusUnauthorized, terror.Warn(err, "Unauthorised access - invalid token")
		}

		r = r.WithContext(context.WithValue(r.Context(), contextVerifiedEmail, email))
		return next(w, r)
	}
	return fn
}

// VerifiedEmail returns the email attached by WithIdentity, empty on
// unprotected routes.
func VerifiedEmail(r *http.Request) string {
	email, _ := r.Context().Value(contextVerifiedEmail).(string)
	return email
}

// RequireOwner compares the caller-supplied email against the verified
// one. An absent caller email passes unchecked, so a list call without
// an email filter returns every owner's documents even on protected
// routes. Tightening it means defaulting supplied to the verified
// email here.
func RequireOwner(r *http.Request, supplied string) (int, error) {
	if supplied == "" {
		return http.StatusOK, nil
	}
	if supplied != VerifiedEmail(r) {
		return http.StatusForbidden, terror.Error(ErrEmailMismatch, "Forbidden access")
	}
	return http.StatusOK, nil
}

// bodyEmail pulls an email field out of an already decoded body document.
func bodyEmail(doc map[string]interface{}, field string) string {
	email, _ := doc[field].(string)
	return email
}
