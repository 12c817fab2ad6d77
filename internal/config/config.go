package config

import (
	"os"
	"strings"
	"time"
	_ "time/tzdata" // salon timezones must resolve in minimal containers

	"github.com/spf13/viper"
)

// Config holds the configuration settings for the application.
// It includes the environment type, telegram and database settings,
// the salon's opening hours and the pacing of bot replies.
type Config struct {
	Env        string           `yaml:"env"`         // Env is the current environment: local, dev, prod.
	Locale     string           `yaml:"locale"`      // Locale is the language replies are rendered in
	Telegram   TelegramConfig   `yaml:"telegram"`    // Telegram holds the bot settings
	Database   PostgresConfig   `yaml:"postgres"`    // Database holds the postgres database configuration
	Monitoring MonitoringConfig `yaml:"monitoring"`  // Monitoring holds the health and metrics server settings
	Salon      SalonConfig      `yaml:"salon"`       // Salon holds the opening hours and contact details
	Pacing     PacingConfig     `yaml:"pacing"`      // Pacing holds the delays between consecutive replies
	SessionTTL time.Duration    `yaml:"session_ttl"` // SessionTTL is how long an idle conversation is kept
}

// TelegramConfig holds the telegram bot settings.
type TelegramConfig struct {
	Token       string        `yaml:"token"`         // Token is an unique telegram bot token
	Timeout     time.Duration `yaml:"timeout"`       // Timeout is the long polling timeout
	AdminChatID int64         `yaml:"admin_chat_id"` // AdminChatID receives daily reports and may request them
}

// PostgresConfig struct holds the configuration details for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `yaml:"host"`     // Host is the database server address.
	Port     string `yaml:"port"`     // Port is the database server port.
	User     string `yaml:"user"`     // User is the database user.
	Password string `yaml:"password"` // Password is the database user's password.
	Name     string `yaml:"db_name"`  // Name is the name of the database.
}

// MonitoringConfig holds the monitoring server settings.
type MonitoringConfig struct {
	Port int `yaml:"port"`
}

// SalonConfig describes when and where the salon works.
type SalonConfig struct {
	Timezone     string         `yaml:"timezone"`
	Location     *time.Location `yaml:"-"`
	Open         string         `yaml:"open"`  // Open is the first slot, HH:MM
	Close        string         `yaml:"close"` // Close is when the last slot must end, HH:MM
	SlotDuration time.Duration  `yaml:"slot_duration"`
	ClosedDays   []time.Weekday `yaml:"closed_days"`
	ContactPhone string         `yaml:"contact_phone"`
}

// PacingConfig holds the delays applied to a batch of replies.
type PacingConfig struct {
	Base time.Duration `yaml:"base"`
	Step time.Duration `yaml:"step"`
}

// MustLoad loads the configuration from a YAML file and returns a Config struct.
// Every key may be overridden by an environment variable with the STYLEBOOK_ prefix,
// e.g. STYLEBOOK_TELEGRAM_TOKEN.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		panic("config path is empty")
	}

	// check if file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		panic("config file does not exist: " + configPath)
	}

	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetEnvPrefix("STYLEBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		panic("config error: " + err.Error())
	}

	location, err := time.LoadLocation(v.GetString("salon.timezone"))
	if err != nil {
		panic("invalid salon timezone: " + err.Error())
	}

	closedDays, err := parseWeekdays(v.GetStringSlice("salon.closed_days"))
	if err != nil {
		panic("invalid salon closed days: " + err.Error())
	}

	return &Config{
		Env:    v.GetString("env"),
		Locale: v.GetString("locale"),
		Telegram: TelegramConfig{
			Token:       v.GetString("telegram.token"),
			Timeout:     v.GetDuration("telegram.timeout"),
			AdminChatID: v.GetInt64("telegram.admin_chat_id"),
		},
		Database: PostgresConfig{
			Host:     v.GetString("postgres.host"),
			Port:     v.GetString("postgres.port"),
			User:     v.GetString("postgres.user"),
			Password: v.GetString("postgres.password"),
			Name:     v.GetString("postgres.db_name"),
		},
		Monitoring: MonitoringConfig{
			Port: v.GetInt("monitoring.port"),
		},
		Salon: SalonConfig{
			Timezone:     v.GetString("salon.timezone"),
			Location:     location,
			Open:         v.GetString("salon.open"),
			Close:        v.GetString("salon.close"),
			SlotDuration: v.GetDuration("salon.slot_duration"),
			ClosedDays:   closedDays,
			ContactPhone: v.GetString("salon.contact_phone"),
		},
		Pacing: PacingConfig{
			Base: v.GetDuration("pacing.base"),
			Step: v.GetDuration("pacing.step"),
		},
		SessionTTL: v.GetDuration("session_ttl"),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "local")
	v.SetDefault("locale", "en")
	v.SetDefault("telegram.timeout", 10*time.Second)
	v.SetDefault("telegram.admin_chat_id", 0)
	v.SetDefault("postgres.port", "5432")
	v.SetDefault("monitoring.port", 8080) //nolint:mnd // default port
	v.SetDefault("salon.timezone", "Africa/Johannesburg")
	v.SetDefault("salon.open", "09:00")
	v.SetDefault("salon.close", "17:00")
	v.SetDefault("salon.slot_duration", time.Hour)
	v.SetDefault("salon.closed_days", []string{"sunday"})
	v.SetDefault("salon.contact_phone", "(011) 123-4567")
	v.SetDefault("pacing.base", 500*time.Millisecond) //nolint:mnd // default pacing
	v.SetDefault("pacing.step", time.Second)
	v.SetDefault("session_ttl", 24*time.Hour) //nolint:mnd // one day
}
