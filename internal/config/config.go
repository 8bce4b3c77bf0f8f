// internal/config/config.go
package config

import (
	"errors"
	"log"
	"time"

	"github.com/spf13/viper"
)

type DatabaseConfig struct {
	URL string `mapstructure:"url"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

type AppConfig struct {
	Name string `mapstructure:"name"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// JWTConfig はアクセストークンとリフレッシュトークンの署名設定。
// 秘密鍵は互いに独立させる (片方の漏洩がもう片方の署名能力に波及しないように)
type JWTConfig struct {
	AccessSecret    string        `mapstructure:"access_secret"`
	RefreshSecret   string        `mapstructure:"refresh_secret"`
	AccessTokenTTL  time.Duration `mapstructure:"access_token_ttl"`
	RefreshTokenTTL time.Duration `mapstructure:"refresh_token_ttl"`
}

type MailerConfig struct {
	Type string `mapstructure:"type"` // "log", "smtp", "ses"
}

type SMTPConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	From string `mapstructure:"from"`
}

type SESConfig struct {
	Region          string `mapstructure:"region"`
	AuthType        string `mapstructure:"auth_type"` // "static_credentials" or "iam_role"
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	From            string `mapstructure:"from"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	App      AppConfig      `mapstructure:"app"`
	Log      LogConfig      `mapstructure:"log"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Mailer   MailerConfig   `mapstructure:"mailer"`
	SMTP     SMTPConfig     `mapstructure:"smtp"`
	SES      SESConfig      `mapstructure:"ses"`
	CORS     CORSConfig     `mapstructure:"cors"`
}

var Cfg Config

func LoadConfig(path string) error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(path)
	viper.AddConfigPath(".")

	// 環境変数 (例: APP_JWT_ACCESS_SECRET) でも設定できるようにする
	viper.SetEnvPrefix("APP")
	viper.AutomaticEnv()
	viper.BindEnv("database.url", "DATABASE_URL")
	viper.BindEnv("jwt.access_secret", "ACCESS_TOKEN_SECRET")
	viper.BindEnv("jwt.refresh_secret", "REFRESH_TOKEN_SECRET")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Warning: Config file not found. Using default settings or environment variables if available.")
		} else {
			log.Printf("Error reading config file: %s\n", err)
			return err
		}
	}

	if err := viper.Unmarshal(&Cfg); err != nil {
		log.Printf("Error unmarshalling config: %s\n", err)
		return err
	}

	// --- デフォルト値の設定 ---
	if Cfg.Server.Port == "" {
		log.Println("Server port not set, using default ':3333'")
		Cfg.Server.Port = ":3333"
	}
	if Cfg.App.Name == "" {
		Cfg.App.Name = "smart-parking-auth"
	}
	if Cfg.JWT.AccessTokenTTL <= 0 {
		log.Println("Access token TTL not set or invalid, using default '15m'")
		Cfg.JWT.AccessTokenTTL = 15 * time.Minute
	}
	if Cfg.JWT.RefreshTokenTTL <= 0 {
		log.Println("Refresh token TTL not set or invalid, using default '720h'")
		Cfg.JWT.RefreshTokenTTL = 30 * 24 * time.Hour
	}
	if Cfg.Database.URL == "" {
		log.Println("Warning: Database URL is not set in config.")
	}

	// 署名キーが無ければトークンを一切発行できないので起動時に落とす
	if Cfg.JWT.AccessSecret == "" || Cfg.JWT.RefreshSecret == "" {
		log.Println("Error: JWT access_secret and refresh_secret are required.")
		return errors.New("config: jwt signing secrets are required")
	}
	if Cfg.JWT.AccessSecret == Cfg.JWT.RefreshSecret {
		log.Println("Warning: access_secret and refresh_secret should be independent values.")
	}

	log.Println("Config loaded successfully")
	log.Printf("Server Port: %s", Cfg.Server.Port)
	log.Printf("Access Token TTL: %s", Cfg.JWT.AccessTokenTTL)
	log.Printf("Refresh Token TTL: %s", Cfg.JWT.RefreshTokenTTL)

	return nil
}
