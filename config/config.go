package config

import (
	"fmt"
	"time"
)

type Configs struct {
	Env string

	Database   DatabaseConfigs
	ApiServer  APIServerConfigs
	Auth       AuthConfigs
	Redis      RedisConfigs
	Kafka      KafkaConfigs
	Faction    FactionConfigs
	Prometheus PrometheusConfigs
	Log        LogConfigs
}

type DatabaseConfigs struct {
	// Kind is either sqlite or mysql.
	Kind     string
	Host     string
	Port     string
	Database string
	User     string
	Password string
	LogLevel string

	// SQLitePath is only used when Kind is sqlite.
	SQLitePath string
}

func (d *DatabaseConfigs) ConnectionString() string {
	if d.Kind == "sqlite" {
		return d.SQLitePath
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.User,
		d.Password,
		d.Host,
		d.Port,
		d.Database,
	)
}

type APIServerConfigs struct {
	ServerConfigs `mapstructure:",squash"`

	MaxLimit       int
	DefaultLimit   int
	AllowedOrigins []string
}

type ServerConfigs struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

func (s ServerConfigs) Address() string {
	return fmt.Sprintf("%s:%s", s.Host, s.Port)
}

type AuthConfigs struct {
	TokenSecret string
	AccessToken TokenConfigs
}

type TokenConfigs struct {
	Name       string
	Expiration time.Duration
}

type RedisConfigs struct {
	Enable bool
	Addr   string
}

type KafkaConfigs struct {
	Enable  bool
	Addr    string
	GroupID string
}

type FactionConfigs struct {
	// CatalogPath points to a toml catalog. The embedded catalog is used if it is empty.
	CatalogPath string

	WelcomeBonus        int64
	QRCodeTTL           time.Duration
	EnforceQRCodeExpiry bool
	TopMembers          int
	SnowflakeNode       int64
}

type PrometheusConfigs struct {
	Enable bool
	Path   string
}

type LogConfigs struct {
	Level string
	JSON  bool
}
