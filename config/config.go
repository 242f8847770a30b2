package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yml
var embeddedConfig []byte

type Config struct {
	Mode   string `mapstructure:"mode"`
	Server struct {
		HTTPPort string        `mapstructure:"HTTPPort"`
		Timeout  time.Duration `mapstructure:"HTTPTimeout"`
	} `mapstructure:"server"`
	Handlers struct {
		Prometheus struct {
			Port string `mapstructure:"port"`
		} `mapstructure:"prometheus"`
	} `mapstructure:"handlers"`
	Geocoding struct {
		BaseURL   string        `mapstructure:"baseURL"`
		UserAgent string        `mapstructure:"userAgent"`
		Timeout   time.Duration `mapstructure:"timeout"`
	} `mapstructure:"geocoding"`
	Facilities struct {
		BaseURL       string        `mapstructure:"baseURL"`
		Timeout       time.Duration `mapstructure:"timeout"`
		CacheTTL      time.Duration `mapstructure:"cacheTTL"`
		DefaultRadius float64       `mapstructure:"defaultRadius"`
		MaxResults    int           `mapstructure:"maxResults"`
	} `mapstructure:"facilities"`
	Weather struct {
		BaseURL  string        `mapstructure:"baseURL"`
		Timeout  time.Duration `mapstructure:"timeout"`
		CacheTTL time.Duration `mapstructure:"cacheTTL"`
	} `mapstructure:"weather"`
	Transit struct {
		BaseURL  string        `mapstructure:"baseURL"`
		Timeout  time.Duration `mapstructure:"timeout"`
		CacheTTL time.Duration `mapstructure:"cacheTTL"`
	} `mapstructure:"transit"`
	LLM struct {
		Provider            string        `mapstructure:"provider"`
		BaseURL             string        `mapstructure:"baseURL"`
		Model               string        `mapstructure:"model"`
		Temperature         float64       `mapstructure:"temperature"`
		MaxTokens           int           `mapstructure:"maxTokens"`
		GenerateTimeout     time.Duration `mapstructure:"generateTimeout"`
		AnalysisTimeout     time.Duration `mapstructure:"analysisTimeout"`
		AvailabilityTimeout time.Duration `mapstructure:"availabilityTimeout"`
	} `mapstructure:"llm"`
}

func InitConfig() (Config, error) {
	var config Config
	v := viper.New()

	v.AddConfigPath(".")
	v.AddConfigPath("config")
	v.AddConfigPath("/app/config")

	v.SetConfigName("config")
	v.SetConfigType("yml")

	// Try to load file-based config, fall back to the embedded copy.
	err := v.ReadInConfig()
	if err != nil {
		fmt.Printf("Warning: Failed to find file-based config: %s. Falling back to embedded config.\n", err)
		if err = v.ReadConfig(bytes.NewReader(embeddedConfig)); err != nil {
			return Config{}, fmt.Errorf("failed to read embedded config: %s", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %s", err)
	}
	return config, nil
}
