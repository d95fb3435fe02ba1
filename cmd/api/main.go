package main

import (
	"context"
	"expvar"
	"flag"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"myflix.interimme.net/internal/data"
	"myflix.interimme.net/internal/jsonlog"
	"myflix.interimme.net/internal/mailer"
)

// Build information, set at link time.
var (
	buildTime string
	version   string
)

// config holds all configuration settings for the application.
type config struct {
	port int    // Port for the API server
	env  string // Environment (development, staging, production)
	db   struct {
		uri      string // MongoDB connection URI
		database string // Database name holding the entity collections
	}
	limiter struct {
		enabled bool    // Enable rate limiter
		rps     float64 // Maximum requests per second
		burst   int     // Maximum burst size
	}
	smtp struct {
		host     string
		port     int
		username string
		password string
		sender   string
	}
	cors struct {
		trustedOrigins []string
	}
	jwt struct {
		secret string // Secret key for signing JWTs
	}
}

// application holds the dependencies shared by the HTTP handlers: config,
// logger, data models, the rule registry resolved at startup, and the mailer.
type application struct {
	config config
	logger *jsonlog.Logger
	models data.Models
	rules  *ruleRegistry
	mailer mailer.Mailer
	wg     sync.WaitGroup
}

func main() {
	// A .env file, when present, feeds the flag defaults below.
	_ = godotenv.Load()

	var cfg config

	flag.IntVar(&cfg.port, "port", 8000, "API server port")
	flag.StringVar(&cfg.env, "env", "development", "Environment (development|staging|production)")

	flag.StringVar(&cfg.db.uri, "db-uri", envString("MYFLIX_DB_URI", "mongodb://localhost:27017"), "MongoDB connection URI")
	flag.StringVar(&cfg.db.database, "db-name", envString("MYFLIX_DB_NAME", "myflix"), "MongoDB database name")

	flag.BoolVar(&cfg.limiter.enabled, "limiter-enabled", true, "Enable rate limiter")
	flag.Float64Var(&cfg.limiter.rps, "limiter-rps", 2, "Rate limiter maximum requests per second")
	flag.IntVar(&cfg.limiter.burst, "limiter-burst", 4, "Rate limiter maximum burst")

	flag.StringVar(&cfg.smtp.host, "smtp-host", envString("MYFLIX_SMTP_HOST", "smtp.mailtrap.io"), "SMTP host")
	flag.IntVar(&cfg.smtp.port, "smtp-port", 2525, "SMTP port")
	flag.StringVar(&cfg.smtp.username, "smtp-username", envString("MYFLIX_SMTP_USERNAME", ""), "SMTP username")
	flag.StringVar(&cfg.smtp.password, "smtp-password", envString("MYFLIX_SMTP_PASSWORD", ""), "SMTP password")
	flag.StringVar(&cfg.smtp.sender, "smtp-sender", "myFlix <no-reply@myflix.interimme.net>", "SMTP sender")

	flag.Func("cors-trusted-origins", "Trusted CORS origins (space separated)", func(val string) error {
		cfg.cors.trustedOrigins = strings.Fields(val)
		return nil
	})

	flag.StringVar(&cfg.jwt.secret, "jwt-secret", envString("JWT_SECRET", ""), "JWT secret")

	displayVersion := flag.Bool("version", false, "Display version and exit")

	flag.Parse()

	if *displayVersion {
		fmt.Printf("Version:\t%s\n", version)
		fmt.Printf("Build time:\t%s\n", buildTime)
		os.Exit(0)
	}

	logger := jsonlog.New(os.Stdout, jsonlog.LevelInfo)

	client, err := openDB(cfg)
	if err != nil {
		logger.PrintFatal(err, nil)
	}
	defer client.Disconnect(context.Background())

	logger.PrintInfo("database connection established", map[string]string{
		"database": cfg.db.database,
	})

	db := client.Database(cfg.db.database)

	// Unique indexes on the natural keys back the duplicate pre-checks in the
	// rule chains; the index is the final arbiter for concurrent creates.
	err = data.EnsureIndexes(context.Background(), db)
	if err != nil {
		logger.PrintFatal(err, nil)
	}

	expvar.NewString("version").Set(version)
	expvar.Publish("goroutines", expvar.Func(func() interface{} {
		return runtime.NumGoroutine()
	}))
	expvar.Publish("timestamp", expvar.Func(func() interface{} {
		return time.Now().Unix()
	}))

	models := data.NewModels(db)

	app := &application{
		config: cfg,
		logger: logger,
		models: models,
		rules:  newRuleRegistry(models),
		mailer: mailer.New(cfg.smtp.host, cfg.smtp.port, cfg.smtp.username, cfg.smtp.password, cfg.smtp.sender),
	}

	err = app.serve()
	if err != nil {
		logger.PrintFatal(err, nil)
	}
}

// envString reads an environment variable, falling back to a default.
func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// openDB connects to MongoDB and verifies the connection with a ping.
func openDB(cfg config) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.db.uri))
	if err != nil {
		return nil, err
	}

	err = client.Ping(ctx, readpref.Primary())
	if err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}

	return client, nil
}
