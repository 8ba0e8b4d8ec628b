// File: internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"github.com/xkilldash9x/hrmcheck/api/schemas"
)

// EnvPrefix is the prefix for environment variable overrides (HRMCHECK_WAIT_TIMEOUT etc.).
const EnvPrefix = "HRMCHECK"

// Config holds the entire application configuration.
type Config struct {
	Logger      LoggerConfig      `mapstructure:"logger" yaml:"logger"`
	Browser     BrowserConfig     `mapstructure:"browser" yaml:"browser"`
	Target      TargetConfig      `mapstructure:"target" yaml:"target"`
	Wait        WaitConfig        `mapstructure:"wait" yaml:"wait"`
	Credentials CredentialsConfig `mapstructure:"credentials" yaml:"credentials"`
	Employees   EmployeesConfig   `mapstructure:"employees" yaml:"employees"`
	TestData    TestDataConfig    `mapstructure:"testdata" yaml:"testdata"`
	Report      ReportConfig      `mapstructure:"report" yaml:"report"`
	Database    DatabaseConfig    `mapstructure:"database" yaml:"database"`
	// Locators overrides page element locators by key, e.g.
	// "pim_save: id=btnSave". Values use the "by=value" form. Keys use
	// underscores because viper splits nested keys on dots.
	Locators map[string]string `mapstructure:"locators" yaml:"locators"`
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig holds settings for the Chromium instance driven by the suite.
type BrowserConfig struct {
	Headless        bool              `mapstructure:"headless" yaml:"headless"`
	ExecPath        string            `mapstructure:"exec_path" yaml:"exec_path"`
	DisableCache    bool              `mapstructure:"disable_cache" yaml:"disable_cache"`
	IgnoreTLSErrors bool              `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	Args            []string          `mapstructure:"args" yaml:"args"`
	Viewport        map[string]int    `mapstructure:"viewport" yaml:"viewport"`
	Headers         map[string]string `mapstructure:"headers" yaml:"headers"`
	// ActionTimeout bounds a single driver action (click, send keys, read)
	// once its readiness condition already holds.
	ActionTimeout     time.Duration `mapstructure:"action_timeout" yaml:"action_timeout"`
	NavigationTimeout time.Duration `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
}

// TargetConfig locates the application under test.
type TargetConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
	// DashboardFragment is the substring the post-login URL must contain.
	DashboardFragment string `mapstructure:"dashboard_fragment" yaml:"dashboard_fragment"`
}

// WaitConfig tunes the bounded polling used before every interaction.
type WaitConfig struct {
	Timeout      time.Duration `mapstructure:"timeout" yaml:"timeout"`
	PollInterval time.Duration `mapstructure:"poll_interval" yaml:"poll_interval"`
}

// CredentialsConfig holds the fixed credential pairs used by the login flows.
type CredentialsConfig struct {
	Username        string `mapstructure:"username" yaml:"username"`
	Password        string `mapstructure:"password" yaml:"-"`
	InvalidPassword string `mapstructure:"invalid_password" yaml:"invalid_password"`
}

// Valid returns the credential pair expected to log in.
func (c CredentialsConfig) Valid() schemas.Credential {
	return schemas.Credential{Username: c.Username, Password: c.Password}
}

// Invalid returns the credential pair expected to be rejected.
func (c CredentialsConfig) Invalid() schemas.Credential {
	return schemas.Credential{Username: c.Username, Password: c.InvalidPassword}
}

// EmployeesConfig holds the records created and edited by the PIM flows.
type EmployeesConfig struct {
	Add  schemas.Employee `mapstructure:"add" yaml:"add"`
	Edit schemas.Employee `mapstructure:"edit" yaml:"edit"`
}

// TestDataConfig points at an optional spreadsheet of test data. Nothing is
// read unless ExcelFile is set.
type TestDataConfig struct {
	ExcelFile  string `mapstructure:"excel_file" yaml:"excel_file"`
	Sheet      string `mapstructure:"sheet" yaml:"sheet"`
	PassMarker string `mapstructure:"pass_marker" yaml:"pass_marker"`
	FailMarker string `mapstructure:"fail_marker" yaml:"fail_marker"`
}

// ReportConfig controls the end-of-run artifact.
type ReportConfig struct {
	Format      string `mapstructure:"format" yaml:"format"`
	Output      string `mapstructure:"output" yaml:"output"`
	Title       string `mapstructure:"title" yaml:"title"`
	Screenshots bool   `mapstructure:"screenshots" yaml:"screenshots"`
}

// DatabaseConfig holds the optional run-history database connection details.
type DatabaseConfig struct {
	URL string `mapstructure:"url" yaml:"url"`
}

// Supported report formats.
var reportFormats = map[string]bool{"html": true, "json": true, "junit": true, "xlsx": true}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// This should not happen with defaults, but good to be safe.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "hrmcheck")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 20)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")
	v.SetDefault("logger.colors.dpanic", "magenta")
	v.SetDefault("logger.colors.panic", "magenta")
	v.SetDefault("logger.colors.fatal", "magenta")

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.disable_cache", true)
	v.SetDefault("browser.ignore_tls_errors", false)
	v.SetDefault("browser.viewport", map[string]int{"width": 1366, "height": 768})
	v.SetDefault("browser.action_timeout", "10s")
	v.SetDefault("browser.navigation_timeout", "60s")

	// -- Target --
	v.SetDefault("target.url", "https://opensource-demo.orangehrmlive.com/web/index.php/auth/login")
	v.SetDefault("target.dashboard_fragment", "dashboard")

	// -- Wait --
	v.SetDefault("wait.timeout", "10s")
	v.SetDefault("wait.poll_interval", "250ms")

	// -- Test data --
	v.SetDefault("credentials.username", "Admin")
	v.SetDefault("credentials.password", "admin123")
	v.SetDefault("credentials.invalid_password", "InvalidPassword")
	v.SetDefault("employees.add.first_name", "David")
	v.SetDefault("employees.add.last_name", "Selvaraj")
	v.SetDefault("employees.edit.first_name", "John")
	v.SetDefault("employees.edit.last_name", "Doe")
	v.SetDefault("testdata.excel_file", "")
	v.SetDefault("testdata.sheet", "Sheet1")
	v.SetDefault("testdata.pass_marker", "TEST PASS")
	v.SetDefault("testdata.fail_marker", "TEST FAILED")

	// -- Report --
	v.SetDefault("report.format", "html")
	v.SetDefault("report.output", "report.html")
	v.SetDefault("report.title", "OrangeHRM Regression Report")
	v.SetDefault("report.screenshots", true)

	// -- Database --
	v.SetDefault("database.url", "")
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Secrets are commonly supplied through the environment rather than the file.
	_ = v.BindEnv("credentials.password", EnvPrefix+"_CREDENTIALS_PASSWORD")
	_ = v.BindEnv("database.url", EnvPrefix+"_DATABASE_URL")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.ExpandPaths(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// ExpandPaths resolves a leading "~" in every file path setting.
func (c *Config) ExpandPaths() error {
	for _, p := range []*string{&c.Logger.LogFile, &c.TestData.ExcelFile, &c.Report.Output, &c.Browser.ExecPath} {
		if *p == "" || *p == "stdout" {
			continue
		}
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("failed to expand path %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if err := c.Wait.Validate(); err != nil {
		return fmt.Errorf("wait configuration invalid: %w", err)
	}
	if err := c.Target.Validate(); err != nil {
		return fmt.Errorf("target configuration invalid: %w", err)
	}
	if c.Browser.ActionTimeout <= 0 {
		return fmt.Errorf("browser.action_timeout must be a positive duration")
	}
	if !reportFormats[strings.ToLower(c.Report.Format)] {
		return fmt.Errorf("report.format %q is not supported (html, json, junit, xlsx)", c.Report.Format)
	}
	if c.TestData.ExcelFile != "" && c.TestData.Sheet == "" {
		return fmt.Errorf("testdata.sheet is required when testdata.excel_file is set")
	}
	return nil
}

// Validate checks the polling bounds.
func (w *WaitConfig) Validate() error {
	if w.Timeout <= 0 {
		return fmt.Errorf("timeout must be a positive duration")
	}
	if w.PollInterval <= 0 {
		return fmt.Errorf("poll_interval must be a positive duration")
	}
	if w.PollInterval > w.Timeout {
		return fmt.Errorf("poll_interval (%s) must not exceed timeout (%s)", w.PollInterval, w.Timeout)
	}
	return nil
}

// Validate checks that the target URL is absolute.
func (t *TargetConfig) Validate() error {
	if t.URL == "" {
		return fmt.Errorf("target.url is required")
	}
	u, err := url.Parse(t.URL)
	if err != nil {
		return fmt.Errorf("target.url is not a valid URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("target.url must be absolute, got %q", t.URL)
	}
	if t.DashboardFragment == "" {
		return fmt.Errorf("target.dashboard_fragment is required")
	}
	return nil
}
