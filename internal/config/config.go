package config

import (
	"log"

	"gopkg.in/yaml.v3"

	"habittracker/pkg/config"
)

type Config struct {
	Server      config.ServerConfig      `yaml:"server"`
	DB          config.DBConfig          `yaml:"db"`
	Redis       config.RedisConfig       `yaml:"redis"`
	MQ          config.MQConfig          `yaml:"mq"`
	OpenAI      config.OpenAIConfig      `yaml:"openai"`
	Entitlement config.EntitlementConfig `yaml:"entitlement"`
}

func Load() *Config {
	env := config.GetConfigEnv()
	configDir := config.GetEnv("CONFIG_DIR", "config")

	cfgMap, err := config.LoadConfig(env, configDir)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var cfg Config
	cfgData, err := yaml.Marshal(cfgMap)
	if err != nil {
		log.Fatalf("failed to marshal config: %v", err)
	}
	if err := yaml.Unmarshal(cfgData, &cfg); err != nil {
		log.Fatalf("failed to unmarshal config: %v", err)
	}

	// 环境变量覆盖（优先级最高）
	config.OverrideServerFromEnv(&cfg.Server)
	config.OverrideDBFromEnv(&cfg.DB)
	config.OverrideRedisFromEnv(&cfg.Redis)
	config.OverrideMQFromEnv(&cfg.MQ)
	config.OverrideOpenAIFromEnv(&cfg.OpenAI)
	config.OverrideEntitlementFromEnv(&cfg.Entitlement)

	return &cfg
}
