package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr        string
	Port              string
	DatabasePath      string
	SessionSecret     string
	GinMode           string
	TaskCacheTTL      time.Duration
	AdoptionThreshold int
	MaxDeadlineItems  int
}

// fileConfig 对应 CONFIG_FILE 指向的 YAML 文件，字段均为可选
type fileConfig struct {
	ListenAddr        string `yaml:"listen_addr"`
	Port              string `yaml:"port"`
	DatabasePath      string `yaml:"database_path"`
	SessionSecret     string `yaml:"session_secret"`
	GinMode           string `yaml:"gin_mode"`
	TaskCacheTTL      string `yaml:"task_cache_ttl"`
	AdoptionThreshold string `yaml:"adoption_threshold"`
	MaxDeadlineItems  string `yaml:"max_deadline_items"`
}

// Load 读取配置：先应用 CONFIG_FILE 中的值，再由环境变量覆盖，缺失项使用默认值。
func Load() (AppConfig, error) {
	var file fileConfig
	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		loaded, err := loadFile(path)
		if err != nil {
			return AppConfig{}, err
		}
		file = loaded
	}

	port := pick("PORT", file.Port, "8080")
	listenAddr := pick("LISTEN_ADDR", file.ListenAddr, fmt.Sprintf(":%s", port))

	ttl, err := time.ParseDuration(pick("TASK_CACHE_TTL", file.TaskCacheTTL, "5m"))
	if err != nil {
		return AppConfig{}, fmt.Errorf("parse TASK_CACHE_TTL: %w", err)
	}

	threshold, err := strconv.Atoi(pick("ADOPTION_THRESHOLD", file.AdoptionThreshold, "7"))
	if err != nil {
		return AppConfig{}, fmt.Errorf("parse ADOPTION_THRESHOLD: %w", err)
	}

	maxDeadline, err := strconv.Atoi(pick("MAX_DEADLINE_ITEMS", file.MaxDeadlineItems, "-1"))
	if err != nil {
		return AppConfig{}, fmt.Errorf("parse MAX_DEADLINE_ITEMS: %w", err)
	}

	return AppConfig{
		ListenAddr:        listenAddr,
		Port:              port,
		DatabasePath:      pick("DATABASE_PATH", file.DatabasePath, "dayboard.db"),
		SessionSecret:     pick("SESSION_SECRET", file.SessionSecret, "dayboard-dev-secret"),
		GinMode:           pick("GIN_MODE", file.GinMode, "release"),
		TaskCacheTTL:      ttl,
		AdoptionThreshold: threshold,
		MaxDeadlineItems:  maxDeadline,
	}, nil
}

func loadFile(path string) (fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("read config file %s: %w", path, err)
	}

	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fileConfig{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// pick 按 环境变量 > 配置文件 > 默认值 的顺序取值
func pick(envKey, fromFile, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(envKey)); value != "" {
		return value
	}
	if value := strings.TrimSpace(fromFile); value != "" {
		return value
	}
	return fallback
}
