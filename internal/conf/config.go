package conf

import (
	"fmt"

	"github.com/spf13/viper"
)

// PlaceholderKnowledgeBaseID is the sentinel value left in place by the
// sample configuration. A knowledge base ID equal to this value is treated
// as unconfigured.
const PlaceholderKnowledgeBaseID = "YOUR_KNOWLEDGE_BASE_ID_HERE"

type Config struct {
	Server ServerConfig `mapstructure:"server"`
	AWS    AWSConfig    `mapstructure:"aws"`
	CORS   CORSConfig   `mapstructure:"cors"`
	Log    LogConfig    `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type AWSConfig struct {
	Region          string `mapstructure:"region"`
	KnowledgeBaseID string `mapstructure:"knowledge_base_id"`
	ModelARN        string `mapstructure:"model_arn"`
}

type CORSConfig struct {
	AllowOrigins []string `mapstructure:"allow_origins"`
}

type LogConfig struct {
	Level            string        `mapstructure:"level"`
	Format           string        `mapstructure:"format"`
	Output           string        `mapstructure:"output"`
	File             FileLogConfig `mapstructure:"file"`
	EnableCaller     bool          `mapstructure:"enablecaller"`
	EnableStacktrace bool          `mapstructure:"enablestacktrace"`
}

type FileLogConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSize    int    `mapstructure:"maxsize"`
	MaxAge     int    `mapstructure:"maxage"`
	MaxBackups int    `mapstructure:"maxbackups"`
	Compress   bool   `mapstructure:"compress"`
}

// LoadConfig reads configuration from an optional YAML file and the
// environment. Environment variables override file values; the variable
// names (AWS_REGION, KNOWLEDGE_BASE_ID, MODEL_ARN, HOST, PORT) match the
// deployment convention for this service.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8000)
	v.SetDefault("aws.region", "us-west-2")
	v.SetDefault("aws.knowledge_base_id", "")
	v.SetDefault("aws.model_arn", "")
	v.SetDefault("cors.allow_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("log.output", "console")
	v.SetDefault("log.enablecaller", true)
	v.SetDefault("log.enablestacktrace", true)
	v.SetDefault("log.file.filename", "logs/app.log")
	v.SetDefault("log.file.maxsize", 100)
	v.SetDefault("log.file.maxage", 30)
	v.SetDefault("log.file.maxbackups", 10)
	v.SetDefault("log.file.compress", true)

	v.AutomaticEnv()
	bindings := map[string]string{
		"server.host":           "HOST",
		"server.port":           "PORT",
		"aws.region":            "AWS_REGION",
		"aws.knowledge_base_id": "KNOWLEDGE_BASE_ID",
		"aws.model_arn":         "MODEL_ARN",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind env %s: %w", env, err)
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if config.AWS.ModelARN == "" {
		config.AWS.ModelARN = DefaultModelARN(config.AWS.Region)
	}

	return &config, nil
}

// DefaultModelARN returns the foundation model ARN used for generation when
// no override is configured.
func DefaultModelARN(region string) string {
	return fmt.Sprintf("arn:aws:bedrock:%s::foundation-model/anthropic.claude-3-sonnet-20240229-v1:0", region)
}

// Addr returns the listen address for the HTTP server.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
