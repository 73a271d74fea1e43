package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	DBUrl      string `mapstructure:"DB_URL"`
	RedisURL   string `mapstructure:"REDIS_URL"`
	ServerPort string `mapstructure:"SERVER_PORT"`
	Env        string `mapstructure:"ENV"`
	JWTSecret  string `mapstructure:"JWT_SECRET"`

	// Store selects the persistence backend: "postgres" or "memory".
	// Memory mode needs no database or redis and is meant for local
	// development.
	Store string `mapstructure:"STORE"`

	// OfferTimeout releases a provisional driver hold that got no
	// answer. Zero keeps holds open until the driver responds.
	OfferTimeout time.Duration `mapstructure:"OFFER_TIMEOUT"`

	// StrictTransitions turns on the booking transition table instead
	// of accepting any enumerated status.
	StrictTransitions bool `mapstructure:"STRICT_TRANSITIONS"`
}

func Load() (Config, error) {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("STORE", "postgres")
	viper.SetDefault("OFFER_TIMEOUT", time.Duration(0))
	viper.SetDefault("STRICT_TRANSITIONS", false)

	// .env is optional; environment variables alone are fine
	_ = viper.ReadInConfig()

	var cfg Config
	err := viper.Unmarshal(&cfg)
	return cfg, err
}
