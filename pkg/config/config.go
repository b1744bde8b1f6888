package config

import (
	"os"
	"strconv"
)

// DBConfig 数据库配置
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
}

// RedisConfig Redis配置
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// MQConfig 消息队列配置
type MQConfig struct {
	URL string `yaml:"url"`
}

// ServerConfig 服务器配置
type ServerConfig struct {
	Port string `yaml:"port"`
}

// OpenAIConfig 文本生成服务配置
type OpenAIConfig struct {
	// 构建时内置的默认 Key，可被用户设置覆盖
	APIKey  string `yaml:"api_key"`
	BaseURL string `yaml:"base_url"`
	Model   string `yaml:"model"`
}

// EntitlementConfig 订阅权益校验配置
type EntitlementConfig struct {
	BaseURL   string `yaml:"base_url"`
	Secret    string `yaml:"secret"`
	ProductID string `yaml:"product_id"`
}

// OverrideDBFromEnv 从环境变量覆盖数据库配置
func OverrideDBFromEnv(cfg *DBConfig) {
	if host := os.Getenv("DB_HOST"); host != "" {
		cfg.Host = host
	}
	if port := os.Getenv("DB_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			cfg.Port = p
		}
	}
	if user := os.Getenv("DB_USER"); user != "" {
		cfg.User = user
	}
	if password := os.Getenv("DB_PASSWORD"); password != "" {
		cfg.Password = password
	}
	if name := os.Getenv("DB_NAME"); name != "" {
		cfg.Name = name
	}
}

// OverrideRedisFromEnv 从环境变量覆盖Redis配置
func OverrideRedisFromEnv(cfg *RedisConfig) {
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Addr = addr
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		cfg.Password = password
	}
}

// OverrideMQFromEnv 从环境变量覆盖MQ配置
func OverrideMQFromEnv(cfg *MQConfig) {
	if url := os.Getenv("MQ_URL"); url != "" {
		cfg.URL = url
	}
}

// OverrideServerFromEnv 从环境变量覆盖服务器配置
func OverrideServerFromEnv(cfg *ServerConfig) {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		cfg.Port = port
	}
}

// OverrideOpenAIFromEnv 从环境变量覆盖文本生成配置
func OverrideOpenAIFromEnv(cfg *OpenAIConfig) {
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		cfg.APIKey = key
	}
	if url := os.Getenv("OPENAI_BASE_URL"); url != "" {
		cfg.BaseURL = url
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		cfg.Model = model
	}
}

// OverrideEntitlementFromEnv 从环境变量覆盖权益校验配置
func OverrideEntitlementFromEnv(cfg *EntitlementConfig) {
	if url := os.Getenv("ENTITLEMENT_BASE_URL"); url != "" {
		cfg.BaseURL = url
	}
	if secret := os.Getenv("ENTITLEMENT_SECRET"); secret != "" {
		cfg.Secret = secret
	}
	if product := os.Getenv("ENTITLEMENT_PRODUCT_ID"); product != "" {
		cfg.ProductID = product
	}
}
