package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
)

// New reads the service configuration from environment variables.
func New() (Config, error) {
	var c Config
	if err := Parse(&c); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Parse loads environment variables into target.
func Parse(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

type Config struct {
	Environment    string        `env:"ENVIRONMENT" envDefault:"production"`
	BasePath       string        `env:"BASE_PATH"`
	Port           int           `env:"PORT" envDefault:"8080"`
	AllowedOrigins []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:","`
	Logging        Logging       `envPrefix:"LOG_"`
	Postgresql     Postgresql    `envPrefix:"DATABASE_"`
	Redis          Redis         `envPrefix:"REDIS_"`
	RabbitMq       RabbitMq      `envPrefix:"RABBITMQ_"`
	S3             S3            `envPrefix:"S3_"`
	ShutdownGrace  time.Duration `env:"SHUTDOWN_GRACE" envDefault:"10s"`
	Tracing        Tracing
	Roster         Roster
}

type Logging struct {
	Level  slog.Level `env:"LEVEL" envDefault:"INFO"`
	Pretty bool       `env:"PRETTY"`
}

type Postgresql struct {
	Host         string `env:"HOST,required"`
	Port         int    `env:"PORT" envDefault:"5432"`
	Username     string `env:"USERNAME,required"`
	Password     string `env:"PASSWORD,required"`
	DatabaseName string `env:"NAME,required"`
}

func (p Postgresql) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=disable", p.Host, p.Username, p.Password, p.DatabaseName, p.Port)
}

type Redis struct {
	Host string `env:"HOST,required"`
	Port int    `env:"PORT" envDefault:"6379"`
}

func (r Redis) Address() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type RabbitMq struct {
	Host     string `env:"HOST,required"`
	Port     int    `env:"PORT" envDefault:"5672"`
	Username string `env:"USERNAME,required"`
	Password string `env:"PASSWORD,required"`
	Exchange string `env:"EXCHANGE" envDefault:"roster.invalidations"`
}

func (r RabbitMq) GetUrl() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%d/", r.Username, r.Password, r.Host, r.Port)
}

type S3 struct {
	Bucket string `env:"BUCKET,required"`
	Region string `env:"REGION" envDefault:"eu-west-1"`
	// Endpoint overrides the AWS endpoint, used for localstack
	Endpoint string `env:"ENDPOINT"`
}

type Tracing struct {
	JaegerEndpoint string `env:"JAEGER_ENDPOINT"`
	ServiceName    string `env:"SERVICE_NAME" envDefault:"wedding-manager"`
}

type Roster struct {
	LookupCacheTTL     time.Duration `env:"LOOKUP_CACHE_TTL" envDefault:"5m"`
	// ProjectionMaxAge bounds how long a projection is served without a reload
	ProjectionMaxAge   time.Duration `env:"PROJECTION_MAX_AGE" envDefault:"2m"`
	MatrixSessionIdle  time.Duration `env:"MATRIX_SESSION_IDLE" envDefault:"30m"`
	MatrixExpiryPeriod time.Duration `env:"MATRIX_EXPIRY_PERIOD" envDefault:"1m"`
}
