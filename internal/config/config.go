package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL       = "http://localhost/api_testing"
	DefaultSheetName     = "Sheet1"
	DefaultLogLevel      = "info"
	DefaultSlowThreshold = 300 * time.Millisecond
)

// 配置文件的原始结构，时长先按字符串读入
type fileConfig struct {
	BaseURL       string `json:"base_url" yaml:"base_url"`
	Timeout       string `json:"timeout" yaml:"timeout"`
	Concurrent    int    `json:"concurrent" yaml:"concurrent"`
	ExcelPath     string `json:"excel_path" yaml:"excel_path"`
	SheetName     string `json:"sheet_name" yaml:"sheet_name"`
	HeaderRow     int    `json:"header_row" yaml:"header_row"`
	ReportPath    string `json:"report_path" yaml:"report_path"`
	MetricsPath   string `json:"metrics_path" yaml:"metrics_path"`
	LogLevel      string `json:"log_level" yaml:"log_level"`
	SlowThreshold string `json:"slow_threshold" yaml:"slow_threshold"`
}

type Config struct {
	BaseURL       string
	Timeout       time.Duration // 0 表示沿用 http.Client 默认行为
	Concurrent    int
	ExcelPath     string // 额外用例的工作簿，可选
	SheetName     string
	HeaderRow     int
	ReportPath    string // Excel 报告，可选
	MetricsPath   string // Prometheus textfile，可选
	LogLevel      string
	SlowThreshold time.Duration
}

// Load 读取配置文件（.yaml/.yml 按 YAML，其余按 JSON），再加载 .env 并应用 CATALOG_* 环境变量。
// required 为 false 时文件不存在就使用默认值；为 true 时（显式指定的路径）文件必须存在。
func Load(path string, required bool) (*Config, error) {
	_ = godotenv.Load() // .env 可选

	var raw fileConfig
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !required:
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("配置文件不存在: %s", path)
	case err != nil:
		return nil, fmt.Errorf("读取配置文件失败: %w", err)
	default:
		if err := decode(path, data, &raw); err != nil {
			return nil, fmt.Errorf("解析配置文件失败: %w", err)
		}
	}

	if err := applyEnv(&raw); err != nil {
		return nil, err
	}

	cfg := &Config{
		BaseURL:     raw.BaseURL,
		Concurrent:  raw.Concurrent,
		ExcelPath:   raw.ExcelPath,
		SheetName:   raw.SheetName,
		HeaderRow:   raw.HeaderRow,
		ReportPath:  raw.ReportPath,
		MetricsPath: raw.MetricsPath,
		LogLevel:    raw.LogLevel,
	}
	if cfg.Timeout, err = parseDuration("timeout", raw.Timeout, 0); err != nil {
		return nil, err
	}
	if cfg.SlowThreshold, err = parseDuration("slow_threshold", raw.SlowThreshold, DefaultSlowThreshold); err != nil {
		return nil, err
	}

	// 设置默认值
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.HeaderRow == 0 {
		cfg.HeaderRow = 1
	}
	if cfg.Concurrent == 0 {
		cfg.Concurrent = 1
	}
	if cfg.SheetName == "" {
		cfg.SheetName = DefaultSheetName
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("base_url 必须是 http(s) 绝对地址: %q", c.BaseURL)
	}
	if c.Concurrent < 0 {
		return fmt.Errorf("concurrent 不能为负数: %d", c.Concurrent)
	}
	if c.HeaderRow < 0 {
		return fmt.Errorf("header_row 不能为负数: %d", c.HeaderRow)
	}
	if c.Timeout < 0 {
		return fmt.Errorf("timeout 不能为负数: %s", c.Timeout)
	}
	return nil
}

func decode(path string, data []byte, raw *fileConfig) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, raw)
	default:
		return json.Unmarshal(data, raw)
	}
}

func applyEnv(raw *fileConfig) error {
	if v := os.Getenv("CATALOG_BASE_URL"); v != "" {
		raw.BaseURL = v
	}
	if v := os.Getenv("CATALOG_TIMEOUT"); v != "" {
		raw.Timeout = v
	}
	if v := os.Getenv("CATALOG_CONCURRENT"); v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("CATALOG_CONCURRENT 不是合法的整数: %q", v)
		}
		raw.Concurrent = n
	}
	if v := os.Getenv("CATALOG_LOG_LEVEL"); v != "" {
		raw.LogLevel = v
	}
	if v := os.Getenv("CATALOG_REPORT_PATH"); v != "" {
		raw.ReportPath = v
	}
	if v := os.Getenv("CATALOG_METRICS_PATH"); v != "" {
		raw.MetricsPath = v
	}
	return nil
}

func parseDuration(key, s string, def time.Duration) (time.Duration, error) {
	if strings.TrimSpace(s) == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("%s 不是合法的时长: %q", key, s)
	}
	return d, nil
}
