package config

import (
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds everything the process reads from the environment.
type Config struct {
	Token        string   `envconfig:"TOKEN" required:"true"`
	GuildID      string   `envconfig:"GUILD_ID" required:"true"`
	Owners       []string `envconfig:"OWNERS"`
	DatabasePath string   `envconfig:"DATABASE_PATH" default:"./data/prices.db"`
	LocksPath    string   `envconfig:"LOCKS_PATH" default:"./data"`
	ItemsPath    string   `envconfig:"ITEMS_PATH" default:"./data/items.json"`
	Port         string   `envconfig:"PORT" default:"3000"`
}

// Load reads the optional .env file and maps the environment onto a
// Config. A missing .env is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
