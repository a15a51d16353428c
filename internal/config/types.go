package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Duration 提供更灵活的反序列化能力，同时兼容纯秒整数与 Go Duration 字符串。
type Duration time.Duration

// UnmarshalText 使 Viper 可以识别诸如 "30s"、"5m" 或纯数字秒值等配置写法。
func (d *Duration) UnmarshalText(text []byte) error {
	raw := strings.TrimSpace(string(text))
	if raw == "" {
		*d = Duration(0)
		return nil
	}

	if parsed, err := time.ParseDuration(raw); err == nil {
		*d = Duration(parsed)
		return nil
	}

	if intVal, err := parseInt(raw); err == nil {
		*d = Duration(time.Duration(intVal) * time.Second)
		return nil
	}

	return fmt.Errorf("invalid duration value: %s", raw)
}

// DurationValue 返回真实的 time.Duration，便于调用方计算。
func (d Duration) DurationValue() time.Duration {
	return time.Duration(d)
}

// parseInt 支持十进制或 0x 前缀的十六进制字符串解析。
func parseInt(value string) (int64, error) {
	if strings.HasPrefix(value, "0x") || strings.HasPrefix(value, "0X") {
		return strconv.ParseInt(value, 0, 64)
	}
	return strconv.ParseInt(value, 10, 64)
}

// GlobalConfig 描述全局运行时行为。
type GlobalConfig struct {
	ListenPort      int      `mapstructure:"ListenPort"`
	LogLevel        string   `mapstructure:"LogLevel"`
	LogFilePath     string   `mapstructure:"LogFilePath"`
	LogMaxSize      int      `mapstructure:"LogMaxSize"`
	LogMaxBackups   int      `mapstructure:"LogMaxBackups"`
	LogCompress     bool     `mapstructure:"LogCompress"`
	Engine          string   `mapstructure:"Engine"`
	ShutdownTimeout Duration `mapstructure:"ShutdownTimeout"`
}

// PolicyConfig 映射 [Policy] 段：显式 host 为空时将在运行期推导并缓存。
type PolicyConfig struct {
	HTTPSHost   string `mapstructure:"HTTPSHost"`
	HTTPHost    string `mapstructure:"HTTPHost"`
	RemainInSSL bool   `mapstructure:"RemainInSSL"`
}

// RouteConfig 声明一个页面前缀及其安全要求；RequireSSL 为 true 的页面
// 会在进入 handler 前触发入口钩子。
type RouteConfig struct {
	Name       string `mapstructure:"Name"`
	Path       string `mapstructure:"Path"`
	RequireSSL bool   `mapstructure:"RequireSSL"`
}

// Config 是 TOML 文件映射的整体结构。
type Config struct {
	Global GlobalConfig  `mapstructure:",squash"`
	Policy PolicyConfig  `mapstructure:"Policy"`
	Routes []RouteConfig `mapstructure:"Route"`
}
