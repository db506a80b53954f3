package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "FRESHMART"

	EnvDevelopment = "development"
	EnvProduction  = "production"

	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
	DriverMongo    = "mongo"
)

// Configはアプリ全体の設定
type Config struct {
	Env  string `envconfig:"FRESHMART_ENV" default:"development"`
	Port string `envconfig:"FRESHMART_PORT" default:"5000"`

	DB       DBConfig
	Mongo    MongoConfig
	JWT      JWTConfig
	Razorpay RazorpayConfig
	SMTP     SMTPConfig
	Notify   NotifyConfig
	Redis    RedisConfig
	Log      LogConfig

	BcryptCost int `envconfig:"FRESHMART_BCRYPT_COST" default:"10"`

	// オンライン決済でも在庫を減らすか（既定は減らさない）
	OnlineDecrementsStock bool `envconfig:"FRESHMART_ONLINE_DECREMENTS_STOCK" default:"false"`
}

type DBConfig struct {
	Driver string `envconfig:"FRESHMART_DB_DRIVER" default:"postgres"`
	DSN    string `envconfig:"FRESHMART_DB_DSN"`
}

type MongoConfig struct {
	URI      string `envconfig:"FRESHMART_MONGO_URI" default:"mongodb://localhost:27017"`
	Database string `envconfig:"FRESHMART_MONGO_DATABASE" default:"freshmart"`
}

type JWTConfig struct {
	Secret string        `envconfig:"FRESHMART_JWT_SECRET" required:"true"`
	TTL    time.Duration `envconfig:"FRESHMART_JWT_TTL" default:"168h"`
}

type RazorpayConfig struct {
	KeyID     string `envconfig:"FRESHMART_RAZORPAY_KEY_ID"`
	KeySecret string `envconfig:"FRESHMART_RAZORPAY_KEY_SECRET"`
}

// IsMockはRazorpayの資格情報が未設定かプレースホルダのまま
func (r RazorpayConfig) IsMock() bool {
	return r.KeyID == "" || strings.Contains(r.KeyID, "YOUR_KEY_HERE")
}

type SMTPConfig struct {
	Host     string `envconfig:"FRESHMART_SMTP_HOST"`
	Port     int    `envconfig:"FRESHMART_SMTP_PORT" default:"587"`
	User     string `envconfig:"FRESHMART_SMTP_USER"`
	Password string `envconfig:"FRESHMART_SMTP_PASS"`
	From     string `envconfig:"FRESHMART_SMTP_FROM" default:"FreshMart <no-reply@freshmart.local>"`
}

func (s SMTPConfig) Enabled() bool {
	return s.Host != ""
}

type NotifyConfig struct {
	Workers int `envconfig:"FRESHMART_NOTIFY_WORKERS" default:"8"`
}

type RedisConfig struct {
	URL            string        `envconfig:"FRESHMART_REDIS_URL"`
	AuthRateLimit  int64         `envconfig:"FRESHMART_AUTH_RATE_LIMIT" default:"20"`
	AuthRateWindow time.Duration `envconfig:"FRESHMART_AUTH_RATE_LIMIT_WINDOW" default:"1m"`
}

type LogConfig struct {
	Level string `envconfig:"FRESHMART_LOG_LEVEL" default:"info"`
	File  string `envconfig:"FRESHMART_LOG_FILE"`
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Env, EnvProduction)
}

// Loadは.env（あれば）と環境変数から設定を読む
func Load() (Config, error) {
	// .envは任意
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validateはドライバごとの必須チェック
func (c Config) Validate() error {
	switch c.DB.Driver {
	case DriverPostgres, DriverSQLite:
		if c.DB.DSN == "" {
			return fmt.Errorf("%s_DB_DSN is required for driver %s", EnvPrefix, c.DB.Driver)
		}
	case DriverMongo:
		if c.Mongo.URI == "" {
			return fmt.Errorf("%s_MONGO_URI is required", EnvPrefix)
		}
	default:
		return fmt.Errorf("unsupported db driver %q", c.DB.Driver)
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("%s_JWT_SECRET is required", EnvPrefix)
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("%s_JWT_TTL must be positive", EnvPrefix)
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("%s_BCRYPT_COST must be between 4 and 31", EnvPrefix)
	}
	if c.Notify.Workers <= 0 {
		return fmt.Errorf("%s_NOTIFY_WORKERS must be positive", EnvPrefix)
	}
	return nil
}
