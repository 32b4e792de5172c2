package config

import (
	"errors"
	"log"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	Port               string
	MongoURI           string
	DBName             string
	FirebaseServiceKey string
	JWTSecret          string
	StripeSecretKey    string
	SiteDomain         string
	AllowedOrigins     []string
	Currency           string
	RequestTimeout     time.Duration
	Env                string
	LogLevel           string
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = FromEnv()
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() Config {
	site := getEnvOrDefault("SITE_DOMAIN", "http://localhost:5173")
	return Config{
		Port:               getEnvOrDefault("PORT", "5000"),
		MongoURI:           getEnvOrDefault("MONGODB_URI", ""),
		DBName:             getEnvOrDefault("DB_NAME", "BloodDonationAppDB"),
		FirebaseServiceKey: getEnvOrDefault("FB_SERVICE_KEY", ""),
		JWTSecret:          getEnvOrDefault("JWT_SECRET", ""),
		StripeSecretKey:    getEnvOrDefault("STRIPE_SECRET_KEY", ""),
		SiteDomain:         site,
		AllowedOrigins:     getListEnv("CLIENT_ORIGINS", []string{site}),
		Currency:           getEnvOrDefault("PAYMENT_CURRENCY", "usd"),
		RequestTimeout:     getDurationEnv("REQUEST_TIMEOUT", 5, time.Second),
		Env:                getEnvOrDefault("APP_ENV", "development"),
		LogLevel:           getEnvOrDefault("LOG_LEVEL", "info"),
	}
}

var (
	ErrMissingMongoURI = errors.New("MONGODB_URI is required")
	ErrMissingIdentity = errors.New("either FB_SERVICE_KEY or JWT_SECRET is required")
)

func (c Config) Validate() error {
	var errs []error
	if c.MongoURI == "" {
		errs = append(errs, ErrMissingMongoURI)
	}
	if c.FirebaseServiceKey == "" && c.JWTSecret == "" {
		errs = append(errs, ErrMissingIdentity)
	}
	return errors.Join(errs...)
}
