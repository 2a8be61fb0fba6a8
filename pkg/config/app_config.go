package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig 进程级配置。玩法常量在调参文件中配置
type AppConfig struct {
	LogLevel   string   `mapstructure:"logLevel"`
	LogsDir    string   `mapstructure:"logsDir"`
	AppName    string   `mapstructure:"appName"`
	Levels     []string `mapstructure:"levels"`
	StartLevel string   `mapstructure:"startLevel"`
	Seed       uint64   `mapstructure:"seed"`
	TuningFile string   `mapstructure:"tuningFile"`

	DB DBConfig `mapstructure:"db"`

	Metrics MetricsConfig `mapstructure:"metrics"`

	Window WindowConfig `mapstructure:"window"`
}

// DBConfig 跑图历史存储的数据库配置
type DBConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	Host       string `mapstructure:"host"`
	Port       string `mapstructure:"port"`
	Username   string `mapstructure:"username"`
	Password   string `mapstructure:"password"`
	Database   string `mapstructure:"database"`
	SQLitePath string `mapstructure:"sqlitePath"`
}

// MetricsConfig 控制玩法计数器的导出,
// 输出到日志目录下每个会话独立的指标文件
type MetricsConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Interval time.Duration `mapstructure:"interval"`
}

// WindowConfig 调试宿主窗口尺寸
type WindowConfig struct {
	Width  int     `mapstructure:"width"`
	Height int     `mapstructure:"height"`
	Scale  float64 `mapstructure:"scale"` // 每个世界单位对应的屏幕像素
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logLevel", "info")
	v.SetDefault("logsDir", "./logs")
	v.SetDefault("appName", "courier")
	v.SetDefault("levels", []string{"shoreditch", "archway", "carnabyst"})
	v.SetDefault("startLevel", "shoreditch")
	v.SetDefault("seed", 0)
	v.SetDefault("tuningFile", "tuning.yaml")

	v.SetDefault("db.enabled", false)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", "5432")
	v.SetDefault("db.username", "postgres")
	v.SetDefault("db.password", "postgres")
	v.SetDefault("db.database", "courier")
	v.SetDefault("db.sqlitePath", "./courier_runs.db")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.interval", "30s")

	v.SetDefault("window.width", 1024)
	v.SetDefault("window.height", 768)
	v.SetDefault("window.scale", 0.5)
}

// LoadAppConfig 从 configDir 读取 courier.yaml(如存在),
// 应用 COURIER_* 环境变量覆盖, 其余使用默认值。
// 配置文件缺失不视为错误
func LoadAppConfig(configDir string) (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("courier")
	v.SetConfigType("yaml")
	if configDir != "" {
		v.AddConfigPath(configDir)
	}
	v.SetEnvPrefix("COURIER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate 提前检查那些否则会在运行中才失败的配置
func (c *AppConfig) Validate() error {
	if len(c.Levels) == 0 {
		return fmt.Errorf("at least one level is required")
	}
	found := false
	for _, l := range c.Levels {
		if l == c.StartLevel {
			found = true
		}
	}
	if !found {
		return fmt.Errorf("startLevel %q is not in levels %v", c.StartLevel, c.Levels)
	}
	if c.Metrics.Enabled && c.Metrics.Interval <= 0 {
		return fmt.Errorf("metrics.interval must be positive when metrics are enabled")
	}
	if c.Window.Scale <= 0 {
		return fmt.Errorf("window.scale must be positive")
	}
	return nil
}

// NextLevel 返回 current 的下一个关卡, 循环回绕
func (c *AppConfig) NextLevel(current string) string {
	for i, l := range c.Levels {
		if l == current {
			return c.Levels[(i+1)%len(c.Levels)]
		}
	}
	return c.Levels[0]
}
