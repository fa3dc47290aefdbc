package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"time"

	"tradeport-services/api"
	"tradeport-services/db"
	"tradeport-services/idp"
	"tradeport-services/seed"
	"tradeport-services/tradedb"
	"tradeport-services/tradelog"
	"tradeport-services/types"

	"github.com/ninja-software/log_helpers"
	"github.com/ninja-software/terror/v2"
	"github.com/oklog/run"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Variable passed in at compile time using `-ldflags`
var (
	Version   string // -X main.Version=$(git describe --tags --abbrev=0)
	GitHash   string // -X main.GitHash=$(git rev-parse HEAD)
	GitBranch string // -X main.GitBranch=$(git rev-parse --abbrev-ref HEAD)
	BuildDate string // -X main.BuildDate=$(date -u +%Y%m%d%H%M%S)
)

const SentryReleasePrefix = "tradeport-api"
const envPrefix = "TRADEPORT"

func main() {
	app := &cli.App{
		Compiled: time.Now(),
		Usage:    "Run the tradeport server or database administration commands",
		Flags:    []cli.Flag{},
		Commands: []*cli.Command{
			{
				Name: "version",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "full", Usage: "Prints full version and build info", Value: false},
				},
				Action: func(c *cli.Context) error {
					if c.Bool("full") {
						fmt.Printf("Version=%s\n", Version)
						fmt.Printf("Commit=%s\n", GitHash)
						fmt.Printf("Branch=%s\n", GitBranch)
						fmt.Printf("BuildDate=%s\n", BuildDate)
						return nil
					}
					fmt.Printf("%s\n", Version)
					return nil
				},
			},
			{
				Name:    "serve",
				Aliases: []string{"s"},
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "database_user", Value: "tradeport", EnvVars: []string{envPrefix + "_DATABASE_USER", "DB_USER"}, Usage: "The database user"},
					&cli.StringFlag{Name: "database_pass", Value: "dev", EnvVars: []string{envPrefix + "_DATABASE_PASS", "DB_PASSWORD"}, Usage: "The database pass"},
					&cli.StringFlag{Name: "database_host", Value: "cluster0.edix7i0.mongodb.net", EnvVars: []string{envPrefix + "_DATABASE_HOST", "DATABASE_HOST"}, Usage: "The database cluster host"},
					&cli.StringFlag{Name: "database_name", Value: "import_export_db", EnvVars: []string{envPrefix + "_DATABASE_NAME", "DATABASE_NAME"}, Usage: "The database name"},

					&cli.StringFlag{Name: "api_addr", Value: ":3000", EnvVars: []string{envPrefix + "_API_ADDR", "PORT"}, Usage: "host:port to run the API"},
					&cli.StringFlag{Name: "identity_credentials", Value: "", EnvVars: []string{envPrefix + "_IDENTITY_CREDENTIALS", "IDENTITY_CREDENTIALS"}, Usage: "Base64 encoded identity provider service account blob"},

					&cli.StringFlag{Name: "environment", Value: "development", DefaultText: "development", EnvVars: []string{envPrefix + "_ENVIRONMENT", "ENVIRONMENT"}, Usage: "This program environment (development, testing, training, staging, production), it sets the log levels"},
					&cli.StringFlag{Name: "log_level", Value: "InfoLevel", EnvVars: []string{envPrefix + "_LOG_LEVEL"}, Usage: "Set the log level for zerolog (Options: PanicLevel, FatalLevel, ErrorLevel, WarnLevel, InfoLevel, DebugLevel, TraceLevel"},

					&cli.StringFlag{Name: "sentry_dsn_backend", Value: "", EnvVars: []string{envPrefix + "_SENTRY_DSN_BACKEND", "SENTRY_DSN_BACKEND"}, Usage: "Sends error to remote server. If set, it will send error."},
					&cli.StringFlag{Name: "sentry_server_name", Value: "dev-pc", EnvVars: []string{envPrefix + "_SENTRY_SERVER_NAME", "SENTRY_SERVER_NAME"}, Usage: "The machine name that this program is running on."},
					&cli.Float64Flag{Name: "sentry_sample_rate", Value: 1, EnvVars: []string{envPrefix + "_SENTRY_SAMPLE_RATE", "SENTRY_SAMPLE_RATE"}, Usage: "The percentage of trace sample to collect (0.0-1)"},
				},
				Usage: "run server",
				Action: func(c *cli.Context) error {
					ctx, cancel := context.WithCancel(c.Context)
					environment := c.String("environment")
					level := c.String("log_level")
					log := log_helpers.LoggerInitZero(environment, level)
					if environment == "production" || environment == "staging" {
						logPtr := zerolog.New(os.Stdout)
						log = &logPtr
					}
					tradelog.New(environment, level)

					g := &run.Group{}
					g.Add(run.SignalHandler(ctx, os.Interrupt))
					g.Add(func() error { return ServeFunc(c, ctx, log) }, func(err error) { cancel() })

					err := g.Run()
					if errors.Is(err, run.SignalError{Signal: os.Interrupt}) {
						err = terror.Warn(err)
					}
					log_helpers.TerrorEcho(ctx, err, log)
					return nil
				},
			},
			{
				Name: "db",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "database_user", Value: "tradeport", EnvVars: []string{envPrefix + "_DATABASE_USER", "DB_USER"}, Usage: "The database user"},
					&cli.StringFlag{Name: "database_pass", Value: "dev", EnvVars: []string{envPrefix + "_DATABASE_PASS", "DB_PASSWORD"}, Usage: "The database pass"},
					&cli.StringFlag{Name: "database_host", Value: "cluster0.edix7i0.mongodb.net", EnvVars: []string{envPrefix + "_DATABASE_HOST", "DATABASE_HOST"}, Usage: "The database cluster host"},
					&cli.StringFlag{Name: "database_name", Value: "import_export_db", EnvVars: []string{envPrefix + "_DATABASE_NAME", "DATABASE_NAME"}, Usage: "The database name"},
					&cli.BoolFlag{Name: "seed", EnvVars: []string{envPrefix + "_DB_SEED", "DB_SEED"}, Usage: "seed the database"},
				},
				Usage: "check store connectivity, optionally seed demo data",
				Action: func(c *cli.Context) error {
					tradelog.New("development", "InfoLevel")
					ctx := c.Context

					client, err := mongoConnect(
						ctx,
						c.String("database_user"),
						c.String("database_pass"),
						c.String("database_host"),
					)
					if err != nil {
						return terror.Panic(err)
					}
					defer func() { _ = client.Disconnect(ctx) }()

					store := db.NewMongo(client, c.String("database_name"))
					err = store.Ping(ctx)
					if err != nil {
						return terror.Panic(err, "could not reach database")
					}
					tradelog.L.Info().Msg("pinged your deployment, successfully connected")

					if c.Bool("seed") {
						seeder := seed.NewSeeder(store)
						return seeder.Run(ctx)
					}
					return nil
				},
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		terror.Echo(err)
		os.Exit(1) // so ci knows it no good
	}
}

// mongoConnect dials the cluster with server API v1, matching the
// hosted deployment's pinned API version.
func mongoConnect(ctx context.Context, databaseUser, databasePass, databaseHost string) (*mongo.Client, error) {
	connString := fmt.Sprintf("mongodb+srv://%s:%s@%s/?retryWrites=true&w=majority",
		url.QueryEscape(databaseUser),
		url.QueryEscape(databasePass),
		databaseHost,
	)

	serverAPI := options.ServerAPI(options.ServerAPIVersion1).
		SetStrict(true).
		SetDeprecationErrors(true)

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(connString).SetServerAPIOptions(serverAPI))
	if err != nil {
		return nil, terror.Panic(err, "could not initialise database")
	}
	return client, nil
}

func ServeFunc(ctxCLI *cli.Context, ctx context.Context, log *zerolog.Logger) error {
	environment := ctxCLI.String("environment")
	sentryDSNBackend := ctxCLI.String("sentry_dsn_backend")
	sentryServerName := ctxCLI.String("sentry_server_name")
	sentryTraceRate := ctxCLI.Float64("sentry_sample_rate")
	sentryRelease := fmt.Sprintf("%s@%s", SentryReleasePrefix, Version)
	err := log_helpers.SentryInit(sentryDSNBackend, sentryServerName, sentryRelease, environment, sentryTraceRate, log)
	switch errors.Unwrap(err) {
	case log_helpers.ErrSentryInitEnvironment:
		return terror.Error(err, fmt.Sprintf("got environment %s", environment))
	case log_helpers.ErrSentryInitDSN, log_helpers.ErrSentryInitVersion:
		if terror.GetLevel(err) == terror.ErrLevelPanic {
			// if the level is panic then in a prod environment
			// so keep panicing
			return terror.Panic(err)
		}
	default:
		if err != nil {
			return terror.Error(err)
		}
	}

	client, err := mongoConnect(
		ctx,
		ctxCLI.String("database_user"),
		ctxCLI.String("database_pass"),
		ctxCLI.String("database_host"),
	)
	if err != nil {
		return terror.Panic(err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()

	err = tradedb.New(client)
	if err != nil {
		return terror.Panic(err)
	}

	store := db.NewMongo(tradedb.Client, ctxCLI.String("database_name"))
	err = store.Ping(ctx)
	if err != nil {
		return terror.Panic(err, "could not reach database")
	}
	tradelog.L.Info().Msg("pinged your deployment, successfully connected")

	identityCredentials := ctxCLI.String("identity_credentials")
	if identityCredentials == "" {
		return terror.Panic(fmt.Errorf("missing identity credentials"))
	}
	sa, err := idp.DecodeServiceAccount(identityCredentials)
	if err != nil {
		return terror.Panic(err)
	}
	verifier, err := idp.NewVerifier(ctx, sa)
	if err != nil {
		return terror.Panic(err)
	}

	config := &types.Config{
		APIAddr:             ctxCLI.String("api_addr"),
		Environment:         environment,
		DatabaseName:        ctxCLI.String("database_name"),
		IdentityCredentials: identityCredentials,
	}

	apiServer, _ := api.NewAPI(log, store, verifier, config)
	return apiServer.Run(ctx)
}
