package api

import (
	"context"
	"net/http"

	"tradeport-services/db"
	"tradeport-services/idp"
	"tradeport-services/tradelog"
	"tradeport-services/types"

	sentryhttp "github.com/getsentry/sentry-go/http"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ninja-software/log_helpers"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// API server
type API struct {
	Log      *zerolog.Logger
	Routes   chi.Router
	Addr     string
	Store    db.Store
	Verifier idp.TokenVerifier
}

// NewAPI registers routes. Every path is declared here exactly once,
// with its authorization policy alongside it; chi panics at startup on
// a duplicate method+path registration.
func NewAPI(
	log *zerolog.Logger,
	store db.Store,
	verifier idp.TokenVerifier,
	config *types.Config,
) (*API, chi.Router) {
	api := &API{
		Log:      log_helpers.NamedLogger(log, "api"),
		Addr:     config.APIAddr,
		Store:    store,
		Verifier: verifier,
	}

	cc := NewCheckController(log_helpers.NamedLogger(log, "check"), store)
	pc := NewProductController(log_helpers.NamedLogger(log, "products"), store)
	ic := NewImportController(log_helpers.NamedLogger(log, "imports"), store)

	r := chi.NewRouter()
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler)
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(tradelog.ChiLogger(zerolog.InfoLevel))

	sentryHandler := sentryhttp.New(sentryhttp.Options{})
	r.Use(sentryHandler.Handle)

	r.Handle("/metrics", promhttp.Handler())
	r.Get("/", WithError(cc.Greet))
	r.Get("/check", WithError(cc.Check))

	r.Post("/products", WithError(WithIdentity(verifier, pc.Create)))
	r.Get("/latest-products", WithError(pc.Latest))
	r.Get("/allproducts", WithError(pc.ListAll))
	r.Get("/products", WithError(WithIdentity(verifier, pc.List)))
	r.Get("/products/{id}", WithError(pc.Get))
	r.Put("/products/{id}", WithError(WithIdentity(verifier, pc.Replace)))
	r.Patch("/products/{id}", WithError(WithIdentity(verifier, pc.QuantitySet)))
	r.Delete("/products/{id}", WithError(WithIdentity(verifier, pc.Delete)))

	r.Post("/import", WithError(WithIdentity(verifier, ic.Create)))
	r.Get("/import", WithError(WithIdentity(verifier, ic.List)))
	r.Delete("/import/{id}", WithError(WithIdentity(verifier, ic.Delete)))

	api.Routes = r
	return api, r
}

// Run the API service
func (api *API) Run(ctx context.Context) error {
	api.Log.Info().Str("addr", api.Addr).Msg("Starting API")

	server := &http.Server{
		Addr:    api.Addr,
		Handler: api.Routes,
	}

	go func() {
		<-ctx.Done()
		api.Log.Info().Msg("Stopping API")
		err := server.Shutdown(context.Background())
		if err != nil {
			api.Log.Warn().Err(err).Msg("")
		}
	}()

	return server.ListenAndServe()
}
