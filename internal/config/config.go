// Package config handles loading and validating the application settings
// and the optional pipeline definition file.
package config

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/BartekS5/salesflow/pkg/database"
)

type Storage struct {
	Backend   string `envconfig:"BACKEND" default:"s3" validate:"oneof=s3 gcs memory"`
	Endpoint  string `envconfig:"ENDPOINT" default:"localhost:9000"`
	AccessKey string `envconfig:"ACCESS_KEY" default:"minioadmin"`
	SecretKey string `envconfig:"SECRET_KEY" default:"minioadmin"`
	Region    string `envconfig:"REGION" default:"us-east-1"`
	UseSSL    bool   `envconfig:"USE_SSL" default:"false"`
	ProjectID string `envconfig:"PROJECT_ID"`
	// CredentialsFile is only read by the gcs backend.
	CredentialsFile string `envconfig:"CREDENTIALS_FILE"`
	Bucket          string `envconfig:"BUCKET" default:"testlineage" validate:"required"`
	Object          string `envconfig:"OBJECT" default:"sales_data.parquet" validate:"required"`
}

type Database struct {
	Driver   string `envconfig:"DRIVER" default:"mysql" validate:"oneof=mysql sqlserver"`
	DSN      string `envconfig:"DSN"`
	Host     string `envconfig:"HOST" default:"localhost"`
	Port     int    `envconfig:"PORT" default:"3306" validate:"min=1,max=65535"`
	User     string `envconfig:"USER" default:"root"`
	Password string `envconfig:"PASSWORD" default:"root"`
	Name     string `envconfig:"NAME" default:"openlineage_demo" validate:"required"`
	Table    string `envconfig:"TABLE" default:"sales_data" validate:"required"`
}

// ConnString returns DSN when set, otherwise builds one from the parts.
func (d Database) ConnString() (string, error) {
	if d.DSN != "" {
		return d.DSN, nil
	}
	return database.ConnParams{
		Driver:   d.Driver,
		Host:     d.Host,
		Port:     d.Port,
		User:     d.User,
		Password: d.Password,
		Name:     d.Name,
	}.DSN()
}

// Namespace is the lineage namespace of the destination database.
func (d Database) Namespace() string {
	return fmt.Sprintf("%s://%s", d.Driver, net.JoinHostPort(d.Host, strconv.Itoa(d.Port)))
}

type Lineage struct {
	Enabled         bool          `envconfig:"ENABLED" default:"false" yaml:"enabled"`
	Transport       string        `envconfig:"TRANSPORT" default:"console" validate:"oneof=console http kafka mongo" yaml:"transport"`
	Namespace       string        `envconfig:"NAMESPACE" default:"minio_to_mysql_pipeline" yaml:"namespace"`
	URL             string        `envconfig:"URL" validate:"required_if=Transport http"`
	APIKey          string        `envconfig:"API_KEY"`
	Timeout         time.Duration `envconfig:"TIMEOUT" default:"5s"`
	KafkaBrokers    string        `envconfig:"KAFKA_BROKERS" validate:"required_if=Transport kafka"`
	KafkaTopic      string        `envconfig:"KAFKA_TOPIC" default:"openlineage.events"`
	MongoURI        string        `envconfig:"MONGO_URI" validate:"required_if=Transport mongo"`
	MongoDatabase   string        `envconfig:"MONGO_DATABASE" default:"lineage"`
	MongoCollection string        `envconfig:"MONGO_COLLECTION" default:"run_events"`
}

type Schedule struct {
	Interval   time.Duration `envconfig:"INTERVAL" default:"24h" validate:"gt=0" yaml:"interval"`
	Retries    int           `envconfig:"RETRIES" default:"1" validate:"min=0" yaml:"retries"`
	RetryDelay time.Duration `envconfig:"RETRY_DELAY" default:"5m" validate:"min=0" yaml:"retry_delay"`
}

type Generator struct {
	Seed uint64 `envconfig:"SEED" default:"42"`
	Rows int    `envconfig:"ROWS" default:"1000" validate:"min=1"`
}

type Log struct {
	Level string `envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn warning error"`
	File  string `envconfig:"FILE"`
}

type App struct {
	PipelineName string    `envconfig:"PIPELINE_NAME" default:"minio_to_mysql_pipeline" validate:"required"`
	Storage      Storage   `envconfig:"STORAGE"`
	DB           Database  `envconfig:"DB"`
	Lineage      Lineage   `envconfig:"LINEAGE"`
	Schedule     Schedule  `envconfig:"SCHEDULE"`
	Generator    Generator `envconfig:"GENERATOR"`
	Log          Log       `envconfig:"LOG"`
}

func maskValue(key string) string {
	if len(key) <= 6 {
		return "****"
	}
	return key[:2] + "****" + key[len(key)-4:]
}
