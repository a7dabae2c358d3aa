package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const envPrefix = "FACTION"

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")

	v.SetDefault("database.kind", "sqlite")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "3306")
	v.SetDefault("database.database", "faction")
	v.SetDefault("database.user", "faction")
	v.SetDefault("database.password", "")
	v.SetDefault("database.loglevel", "warn")
	v.SetDefault("database.sqlitepath", "faction.db")

	v.SetDefault("apiserver.host", "")
	v.SetDefault("apiserver.port", "8080")
	v.SetDefault("apiserver.readtimeout", 10*time.Second)
	v.SetDefault("apiserver.writetimeout", 15*time.Second)
	v.SetDefault("apiserver.shutdowntimeout", 10*time.Second)
	v.SetDefault("apiserver.maxlimit", 50)
	v.SetDefault("apiserver.defaultlimit", 10)
	v.SetDefault("apiserver.allowedorigins", []string{"*"})

	v.SetDefault("auth.tokensecret", "")
	v.SetDefault("auth.accesstoken.name", "access_token")
	v.SetDefault("auth.accesstoken.expiration", 24*time.Hour)

	v.SetDefault("redis.enable", false)
	v.SetDefault("redis.addr", "localhost:6379")

	v.SetDefault("kafka.enable", false)
	v.SetDefault("kafka.addr", "localhost:9092")
	v.SetDefault("kafka.groupid", "faction-audit")

	v.SetDefault("faction.catalogpath", "")
	v.SetDefault("faction.welcomebonus", 25)
	v.SetDefault("faction.qrcodettl", 30*24*time.Hour)
	v.SetDefault("faction.enforceqrcodeexpiry", true)
	v.SetDefault("faction.topmembers", 10)
	v.SetDefault("faction.snowflakenode", 1)

	v.SetDefault("prometheus.enable", true)
	v.SetDefault("prometheus.path", "/metrics")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
}

// Load reads the configurations from the toml file at path (optional) and from the environment
// variables prefixed by FACTION_, e.g. FACTION_APISERVER_PORT overrides apiserver.port.
func Load(path string) (*Configs, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("toml")
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	var cfg Configs
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Configs) validate() error {
	if c.Auth.TokenSecret == "" {
		return errors.New("auth.tokensecret is required")
	}

	if c.Database.Kind != "sqlite" && c.Database.Kind != "mysql" {
		return errors.New("database.kind must be sqlite or mysql")
	}

	if c.Faction.WelcomeBonus < 0 {
		return errors.New("faction.welcomebonus must not be negative")
	}

	if c.ApiServer.DefaultLimit <= 0 || c.ApiServer.MaxLimit < c.ApiServer.DefaultLimit {
		return errors.New("apiserver limits are invalid")
	}

	return nil
}
