package gmapsgpx

import (
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type ServerConfig struct {
	Port int `yaml:"port" validate:"gt=0"`
}

type ResolverConfig struct {
	TimeoutMS        int      `yaml:"timeoutMS" validate:"gt=0"`
	ShortLinkHosts   []string `yaml:"shortLinkHosts" validate:"min=1"`
	DestinationHosts []string `yaml:"destinationHosts" validate:"min=1"`
}

type RateLimitConfig struct {
	MaxRequests int `yaml:"maxRequests" validate:"gt=0"`
	WindowMS    int `yaml:"windowMS" validate:"gt=0"`
	MaxClients  int `yaml:"maxClients" validate:"gt=0"`
}

type AppConfig struct {
	Server    ServerConfig    `yaml:"server"`
	Resolver  ResolverConfig  `yaml:"resolver"`
	RateLimit RateLimitConfig `yaml:"rateLimit"`
}

// Config holds the active configuration. It starts from defaults so the
// CLI works without a config file; LoadAppConfig replaces it for server
// deployments.
var Config = defaultConfig()

func defaultConfig() AppConfig {
	return AppConfig{
		Server: ServerConfig{Port: 8090},
		Resolver: ResolverConfig{
			TimeoutMS:        10000,
			ShortLinkHosts:   []string{"maps.app.goo.gl", "goo.gl"},
			DestinationHosts: []string{"www.google.com", "google.com", "maps.google.com"},
		},
		RateLimit: RateLimitConfig{
			MaxRequests: 30,
			WindowMS:    60000,
			MaxClients:  10000,
		},
	}
}

// LoadAppConfig reads the first readable path (config.yml by default) over
// the built-in defaults and validates the result.
func LoadAppConfig(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{"config.yml", "./config/config.yml"}
	}
	var data []byte
	var err error
	for _, p := range paths {
		data, err = os.ReadFile(p)
		if err == nil {
			break
		}
	}
	if err != nil {
		return err
	}

	cfg := defaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return err
	}
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return err
	}
	Config = cfg
	return nil
}
