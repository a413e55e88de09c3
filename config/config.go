package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Log          Logger       `mapstructure:"logger"`
	DB           Database     `mapstructure:"database"`
	API          API          `mapstructure:"api"`
	Scheduler    Scheduler    `mapstructure:"scheduler"`
	Mailer       Mailer       `mapstructure:"mailer"`
	Notification Notification `mapstructure:"notification"`
	Cache        Cache        `mapstructure:"cache"`
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type Database struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	TimeZone        string `mapstructure:"time_zone"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
}

type API struct {
	Port int `mapstructure:"port"`
}

type Scheduler struct {
	Timezone          string        `mapstructure:"timezone"`
	MaxConcurrency    int           `mapstructure:"max_concurrency"`
	DispatchTimeout   time.Duration `mapstructure:"dispatch_timeout"`
	RecoverySpec      string        `mapstructure:"recovery_spec"`
	SendRatePerSecond float64       `mapstructure:"send_rate_per_second"`
	SendBurst         int           `mapstructure:"send_burst"`
}

const (
	MailerModeGateway  = "gateway"
	MailerModeTelegram = "telegram"
)

type Mailer struct {
	Mode             string        `mapstructure:"mode"`
	FromAddress      string        `mapstructure:"from_address"`
	GatewayURL       string        `mapstructure:"gateway_url"`
	GatewayToken     string        `mapstructure:"gateway_token"`
	TelegramBotToken string        `mapstructure:"telegram_bot_token"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

type Notification struct {
	Subject       string `mapstructure:"subject"`
	ActionURLBase string `mapstructure:"action_url_base"`
}

type Cache struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

func Load() (*Config, error) {
	// Local development convenience, a missing .env is fine.
	_ = godotenv.Load()

	viper.SetConfigType("yaml")
	viper.SetConfigName("config")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.encoding", "json")
	viper.SetDefault("api.port", 8080)
	viper.SetDefault("scheduler.max_concurrency", 8)
	viper.SetDefault("scheduler.dispatch_timeout", "15s")
	viper.SetDefault("scheduler.recovery_spec", "@every 5m")
	viper.SetDefault("scheduler.send_rate_per_second", 5.0)
	viper.SetDefault("scheduler.send_burst", 10)
	viper.SetDefault("mailer.mode", MailerModeGateway)
	viper.SetDefault("mailer.timeout", "10s")
	viper.SetDefault("notification.subject", "Task reminder")
	viper.SetDefault("cache.default_expiration", "5m")
	viper.SetDefault("cache.cleanup_interval", "10m")
}
