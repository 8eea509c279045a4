// Package config loads application settings from defaults, command line flags
// and environment variables (in increasing priority), and validates them.
package config

import (
	"flag"
	"log"
	"os"
	"time"

	env "github.com/caarlos0/env/v6"
	validator "github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config holds the runtime settings of the accounts service.
type Config struct {
	// RunAddr is the address and port the HTTP server listens on.
	RunAddr string `env:"SERVER_ADDRESS" validate:"hostname_port"`

	// LogLevel is the zap logging level.
	LogLevel string `env:"LOG_LEVEL" validate:"loglevel"`

	// DBFileName is the JSON file used by the file storage fallback.
	DBFileName string `env:"FILE_STORAGE_PATH" validate:"filepath"`

	// DatabaseDSN selects the PostgreSQL storage when non-empty.
	DatabaseDSN string `env:"DATABASE_DSN"`

	// DBConnectionTimeout bounds storage pings.
	DBConnectionTimeout time.Duration `env:"DB_CONNECTION_TIMEOUT"`

	// MigrationsDir is the goose migrations directory.
	MigrationsDir string `env:"MIGRATIONS_DIR"`

	// TokenSigningSecretKey is the base64url-encoded secret used to sign
	// session tokens. It is injected into the auth layer at construction.
	TokenSigningSecretKey string `env:"SECRET_KEY" validate:"required"`

	// TokenTTL is the session token lifetime.
	TokenTTL time.Duration `env:"TOKEN_TTL"`

	// TrustedSubnet guards the internal stats endpoint, CIDR notation.
	TrustedSubnet string `env:"TRUSTED_SUBNET" validate:"omitempty,cidr"`
}

var defaultConfig = Config{
	RunAddr:               ":8080",
	LogLevel:              "info",
	DBFileName:            "",
	DatabaseDSN:           "",
	DBConnectionTimeout:   10 * time.Second,
	MigrationsDir:         "cmd/accounts/migrations",
	TokenSigningSecretKey: "c2hydGFjY291bnRzLWRldi1zaWduaW5nLWtleQ==",
	TokenTTL:              12 * time.Hour,
	TrustedSubnet:         "",
}

func applyDefaults(cfg *Config, defaults Config) {
	*cfg = defaults
}

func validateFilePath(fieldLevel validator.FieldLevel) bool {
	path := fieldLevel.Field().String()
	if path == "" {
		return true
	}
	_, err := os.Stat(path)

	return err == nil || os.IsNotExist(err)
}

func validateLogLevel(fieldLevel validator.FieldLevel) bool {
	value := fieldLevel.Field().String()

	allowedLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
		"fatal": true,
	}

	return allowedLogLevels[value]
}

func (c *Config) validate() error {
	validate := validator.New()

	err := validate.RegisterValidation("loglevel", validateLogLevel)
	if err != nil {
		return err
	}

	err = validate.RegisterValidation("filepath", validateFilePath)
	if err != nil {
		return err
	}

	return validate.Struct(c)
}

// InitOption configures the behavior of New.
type InitOption func(*initOptions)

type initOptions struct {
	disableFlagsParsing bool
}

// WithDisableFlagsParsing disables command line flag parsing.
// It is intended for tests, where os.Args belongs to the test binary.
func WithDisableFlagsParsing(disableFlagsParsing bool) InitOption {
	return func(options *initOptions) {
		options.disableFlagsParsing = disableFlagsParsing
	}
}

// New builds a validated Config from defaults, flags and environment.
func New(optionsProto ...InitOption) (*Config, error) {
	options := &initOptions{
		disableFlagsParsing: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	if err := godotenv.Load(); err != nil {
		log.Printf("Unable to load .env file: %v", err)
	}

	values := &Config{}
	applyDefaults(values, defaultConfig)

	if !options.disableFlagsParsing {
		flags := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
		flags.StringVar(&values.RunAddr, "a", values.RunAddr, "address and port to run server")
		flags.StringVar(&values.LogLevel, "l", values.LogLevel, "logger level")
		flags.StringVar(&values.DBFileName, "f", values.DBFileName, "JSON file name with database")
		flags.StringVar(&values.DatabaseDSN, "d", values.DatabaseDSN, "a string with the database connection details")
		flags.StringVar(&values.MigrationsDir, "m", values.MigrationsDir, "the goose migrations directory")
		flags.StringVar(&values.TrustedSubnet, "t", values.TrustedSubnet, "trusted subnet for internal endpoints in CIDR notation")
		if err := flags.Parse(os.Args[1:]); err != nil {
			return nil, err
		}
	}

	valuesFromEnv := Config{}
	if err := env.Parse(&valuesFromEnv); err != nil {
		return nil, err
	}

	if valuesFromEnv.RunAddr != "" {
		values.RunAddr = valuesFromEnv.RunAddr
	}

	if valuesFromEnv.LogLevel != "" {
		values.LogLevel = valuesFromEnv.LogLevel
	}

	if valuesFromEnv.DBFileName != "" {
		values.DBFileName = valuesFromEnv.DBFileName
	}

	if valuesFromEnv.DatabaseDSN != "" {
		values.DatabaseDSN = valuesFromEnv.DatabaseDSN
	}

	if valuesFromEnv.DBConnectionTimeout != 0 {
		values.DBConnectionTimeout = valuesFromEnv.DBConnectionTimeout
	}

	if valuesFromEnv.MigrationsDir != "" {
		values.MigrationsDir = valuesFromEnv.MigrationsDir
	}

	if valuesFromEnv.TokenSigningSecretKey != "" {
		values.TokenSigningSecretKey = valuesFromEnv.TokenSigningSecretKey
	}

	if valuesFromEnv.TokenTTL != 0 {
		values.TokenTTL = valuesFromEnv.TokenTTL
	}

	if valuesFromEnv.TrustedSubnet != "" {
		values.TrustedSubnet = valuesFromEnv.TrustedSubnet
	}

	if err := values.validate(); err != nil {
		return nil, err
	}

	return values, nil
}
