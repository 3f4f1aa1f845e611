package config

import (
	"fmt"

	"budgetledger/pkg/config"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server  config.ServerConfig  `yaml:"server"`
	Store   config.StoreConfig   `yaml:"store"`
	DB      config.DBConfig      `yaml:"db"`
	MQ      config.MQConfig      `yaml:"mq"`
	Redis   config.RedisConfig   `yaml:"redis"`
	JWT     config.JWTConfig     `yaml:"jwt"`
	CORS    config.CORSConfig    `yaml:"cors"`
	Log     config.LogConfig     `yaml:"log"`
	Breaker config.BreakerConfig `yaml:"breaker"`
}

// Load 读取 configDir 下的 base.yaml 与 CONFIG_ENV 对应的环境配置
func Load(configDir string) (*Config, error) {
	env := config.GetConfigEnv()
	if configDir == "" {
		configDir = config.GetEnv("CONFIG_DIR", "config")
	}

	cfgMap, err := config.LoadConfig(env, configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// 转换为 Config 结构
	cfg := defaults()
	cfgData, err := yaml.Marshal(cfgMap)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := yaml.Unmarshal(cfgData, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 环境变量覆盖（优先级最高）
	config.OverrideServerFromEnv(&cfg.Server)
	config.OverrideStoreFromEnv(&cfg.Store)
	config.OverrideDBFromEnv(&cfg.DB)
	config.OverrideMQFromEnv(&cfg.MQ)
	config.OverrideRedisFromEnv(&cfg.Redis)
	config.OverrideJWTFromEnv(&cfg.JWT)
	config.OverrideLogFromEnv(&cfg.Log)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server: config.ServerConfig{Port: "8080", ShutdownTimeoutSeconds: 5},
		Store:  config.StoreConfig{Driver: "memory"},
		DB:     config.DBConfig{Port: 5432, SSLMode: "disable", MaxConns: 10, SlowQueryMs: 200},
		MQ:     config.MQConfig{Exchange: "events", Queue: "ledger.audit.q", Prefetch: 10, MaxRetries: 5},
		Redis:  config.RedisConfig{DedupTTLSeconds: 86400},
		Log:    config.LogConfig{Level: "info"},
		Breaker: config.BreakerConfig{
			FailureThreshold:    5,
			SuccessThreshold:    2,
			TimeoutSeconds:      30,
			HalfOpenMaxRequests: 3,
		},
	}
}

func (c *Config) validate() error {
	switch c.Store.Driver {
	case "memory", "postgres":
	default:
		return fmt.Errorf("unsupported store driver %q", c.Store.Driver)
	}
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	return nil
}

// DSN 返回 PostgreSQL 连接串
func (c *Config) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name, c.DB.SSLMode)
}
