package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	AI      AI      `mapstructure:"ai"`
	Content Content `mapstructure:"content"`
	Image   Image   `mapstructure:"image"`
	YouTube YouTube `mapstructure:"youtube"`
	Publish Publish `mapstructure:"publish"`
	Batch   Batch   `mapstructure:"batch"`
	Server  Server  `mapstructure:"server"`
}

// AI holds generation backend configuration
type AI struct {
	// PreferredBackend, when set, is tried before the default priority
	// order (gemini, openai, gptoss).
	PreferredBackend string       `mapstructure:"preferred_backend"`
	Gemini           GeminiConfig `mapstructure:"gemini"`
	OpenAI           OpenAIConfig `mapstructure:"openai"`
	GPTOSS           GPTOSSConfig `mapstructure:"gptoss"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Timeout     string  `mapstructure:"timeout"`
	Temperature float32 `mapstructure:"temperature"`
}

// OpenAIConfig holds OpenAI (or OpenAI-compatible) configuration
type OpenAIConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	BaseURL     string  `mapstructure:"base_url"`
	Timeout     string  `mapstructure:"timeout"`
	Temperature float32 `mapstructure:"temperature"`
}

// GPTOSSConfig holds self-hosted GPT-OSS configuration. Kind selects the
// wire format explicitly (ollama, openai_compatible, custom_hosted) instead
// of probing the endpoint with every format in turn.
type GPTOSSConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	Kind        string  `mapstructure:"kind"`
	Timeout     string  `mapstructure:"timeout"`
	Temperature float32 `mapstructure:"temperature"`
}

// Content holds writing defaults applied when a request leaves them unset
type Content struct {
	Tone     string `mapstructure:"tone"`
	Audience string `mapstructure:"audience"`
}

// Image holds image sourcing configuration
type Image struct {
	Source       string `mapstructure:"source"` // none, pexels, upload
	PexelsAPIKey string `mapstructure:"pexels_api_key"`
	Timeout      string `mapstructure:"timeout"`
}

// YouTube holds transcript extractor configuration
type YouTube struct {
	APIKey    string   `mapstructure:"api_key"` // Data API v3 key, optional
	Timeout   string   `mapstructure:"timeout"`
	Languages []string `mapstructure:"languages"`
}

// Publish holds publish adapter configuration
type Publish struct {
	Blogger   BloggerConfig   `mapstructure:"blogger"`
	WordPress WordPressConfig `mapstructure:"wordpress"`
}

// BloggerConfig holds Google Blogger configuration
type BloggerConfig struct {
	BlogID string `mapstructure:"blog_id"`
}

// WordPressConfig holds WordPress REST configuration
type WordPressConfig struct {
	BaseURL     string `mapstructure:"base_url"`
	Username    string `mapstructure:"username"`
	AppPassword string `mapstructure:"app_password"`
}

// Batch holds background batch-run configuration
type Batch struct {
	Delay string `mapstructure:"delay"`
}

// Server holds HTTP server configuration
type Server struct {
	Addr string `mapstructure:"addr"`
}

var globalConfig *Config

// Load loads the configuration from various sources
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Printf("Warning: Error loading .env file: %v\n", err)
		}
	}

	// Configure viper
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".autoblogger")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read config file if it exists
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// Reset clears the cached global configuration. Intended for tests.
func Reset() {
	globalConfig = nil
	viper.Reset()
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("ai.preferred_backend", "")
	viper.SetDefault("ai.gemini.model", "gemini-1.5-flash")
	viper.SetDefault("ai.gemini.timeout", "60s")
	viper.SetDefault("ai.gemini.temperature", 0.7)
	viper.SetDefault("ai.openai.model", "gpt-3.5-turbo")
	viper.SetDefault("ai.openai.base_url", "https://api.openai.com/v1")
	viper.SetDefault("ai.openai.timeout", "60s")
	viper.SetDefault("ai.openai.temperature", 0.7)
	viper.SetDefault("ai.gptoss.endpoint", "http://localhost:11434")
	viper.SetDefault("ai.gptoss.model", "gpt-oss-20b")
	viper.SetDefault("ai.gptoss.kind", "ollama")
	viper.SetDefault("ai.gptoss.timeout", "120s")
	viper.SetDefault("ai.gptoss.temperature", 0.7)

	viper.SetDefault("content.tone", "친근한")
	viper.SetDefault("content.audience", "일반 대중")

	viper.SetDefault("image.source", "none")
	viper.SetDefault("image.timeout", "10s")

	viper.SetDefault("youtube.timeout", "15s")
	viper.SetDefault("youtube.languages", []string{"ko", "ko-KR", "en", "en-US", "ja"})

	viper.SetDefault("batch.delay", "5s")
	viper.SetDefault("server.addr", ":5000")
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	// Gemini API key - support multiple formats
	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	bindEnvKeys("ai.openai.api_key", []string{
		"OPENAI_API_KEY",
	})

	bindEnvKeys("ai.gptoss.endpoint", []string{
		"GPTOSS_BASE_URL",
	})

	bindEnvKeys("ai.gptoss.api_key", []string{
		"GPTOSS_API_KEY",
	})

	bindEnvKeys("ai.preferred_backend", []string{
		"PREFERRED_BACKEND",
		"AI_BACKEND",
	})

	bindEnvKeys("image.pexels_api_key", []string{
		"PEXELS_API_KEY",
	})

	bindEnvKeys("youtube.api_key", []string{
		"YOUTUBE_API_KEY",
		"YOUTUBE_DATA_API_KEY",
	})

	bindEnvKeys("publish.blogger.blog_id", []string{
		"BLOGGER_BLOG_ID",
	})

	bindEnvKeys("publish.wordpress.base_url", []string{
		"WORDPRESS_BASE_URL",
	})

	bindEnvKeys("publish.wordpress.username", []string{
		"WORDPRESS_USERNAME",
	})

	bindEnvKeys("publish.wordpress.app_password", []string{
		"WORDPRESS_APP_PASSWORD",
	})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// validateConfig checks enum fields and duration strings
func validateConfig(config *Config) error {
	switch config.AI.PreferredBackend {
	case "", "gemini", "openai", "gptoss":
	default:
		return fmt.Errorf("invalid ai.preferred_backend: %s", config.AI.PreferredBackend)
	}

	switch config.AI.GPTOSS.Kind {
	case "ollama", "openai_compatible", "custom_hosted":
	default:
		return fmt.Errorf("invalid ai.gptoss.kind: %s", config.AI.GPTOSS.Kind)
	}

	switch config.Image.Source {
	case "none", "pexels", "upload":
	default:
		return fmt.Errorf("invalid image.source: %s", config.Image.Source)
	}

	durations := map[string]string{
		"ai.gemini.timeout": config.AI.Gemini.Timeout,
		"ai.openai.timeout": config.AI.OpenAI.Timeout,
		"ai.gptoss.timeout": config.AI.GPTOSS.Timeout,
		"image.timeout":     config.Image.Timeout,
		"youtube.timeout":   config.YouTube.Timeout,
		"batch.delay":       config.Batch.Delay,
	}
	for key, duration := range durations {
		if duration != "" {
			if _, err := time.ParseDuration(duration); err != nil {
				return fmt.Errorf("invalid duration for %s: %s", key, duration)
			}
		}
	}

	return nil
}

// Duration parses a duration string, falling back to def on empty or
// malformed values.
func Duration(s string, def time.Duration) time.Duration {
	if s == "" {
		return def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return def
	}
	return d
}
