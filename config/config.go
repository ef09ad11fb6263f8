package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultHost = "0.0.0.0"
	defaultPort = "8000"
)

type Config struct {
	Server ServerConfig `yaml:"server"`
	DB     DBConfig     `yaml:"db"`
	Model  ModelConfig  `yaml:"model"`
	Search SearchConfig `yaml:"search"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
}

type DBConfig struct {
	DSN string `yaml:"dsn"`
}

type ModelConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Name    string `yaml:"name"`
}

// SearchConfig 网络搜索能力配置，api_key 为空时搜索功能不可用
type SearchConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
}

var Cfg *Config

func Load(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %v", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("failed to parse config file %s: %v", path, err)
	}

	if cfg.Server.Host == "" {
		cfg.Server.Host = defaultHost
	}
	if cfg.Server.Port == "" {
		cfg.Server.Port = defaultPort
	}

	if err := cfg.validate(); err != nil {
		return err
	}

	Cfg = &cfg
	return nil
}

// validate 启动前校验模型凭证等必填配置
func (c *Config) validate() error {
	var missing []string
	if c.Model.APIKey == "" {
		missing = append(missing, "model.api_key")
	}
	if c.Model.BaseURL == "" {
		missing = append(missing, "model.base_url")
	}
	if c.Model.Name == "" {
		missing = append(missing, "model.name")
	}
	if c.DB.DSN == "" {
		missing = append(missing, "db.dsn")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required config: %s", strings.Join(missing, ", "))
	}
	return nil
}
