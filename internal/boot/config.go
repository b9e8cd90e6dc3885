package boot

import (
	"context"
	"fmt"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Env    string `env:"ENV,default=dev"`
	Server struct {
		Addr        string `env:"LISTEN_ADDR,default=:8080"`
		MetricsAddr string `env:"METRICS_ADDR,default=:8081"`
	}
	Database struct {
		Path string `env:"DATABASE_PATH,default=chat.db"`
	}
	Auth struct {
		SecretKey     string `env:"SECRET_KEY,required"`
		TokenLifetime int    `env:"ACCESS_TOKEN_EXPIRE_MINUTES,default=60"`
	}
	Media struct {
		Dir string `env:"MEDIA_DIR,default=media"`
	}
	Translation struct {
		Enabled  bool   `env:"TRANSLATION_ENABLED,default=true"`
		Endpoint string `env:"TRANSLATION_ENDPOINT,default=https://translate.googleapis.com/translate_a/single"`
	}
}

func Load() (*Config, error) {
	config := &Config{}
	if err := envconfig.Process(context.Background(), config); err != nil {
		return nil, fmt.Errorf("parsing env vars: %w", err)
	}
	return config, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "prod"
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "dev"
}
